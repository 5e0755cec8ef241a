// Package types provides common type aliases and utilities.
package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// MoneyPlaces is the number of fractional digits persisted for unit costs and prices.
const MoneyPlaces = 2

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// LineAmount returns quantity * unit price.
func LineAmount(quantity int64, unit Money) Money {
	return unit.Mul(decimal.NewFromInt(quantity))
}

// ValidateUnitAmount rejects negative amounts and amounts with more than MoneyPlaces digits.
func ValidateUnitAmount(field string, m Money) error {
	if m.IsNegative() {
		return fmt.Errorf("%s must not be negative", field)
	}
	if !m.Equal(m.Round(MoneyPlaces)) {
		return fmt.Errorf("%s supports at most %d fractional digits", field, MoneyPlaces)
	}
	return nil
}
