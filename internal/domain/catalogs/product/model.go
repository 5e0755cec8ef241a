// Package product provides the product catalog referenced by ledger rows.
package product

import (
	"strings"
	"unicode/utf8"

	"stockledger/internal/core/apperror"
)

const maxNameLength = 200

// Product is a catalog item. ID is a string code (SP001, ...).
// Once referenced by ledger rows only descriptive fields change.
type Product struct {
	ID       string  `db:"id" json:"id"`
	Name     string  `db:"name" json:"name"`
	Material *string `db:"material" json:"material,omitempty"`
	Color    *string `db:"color" json:"color,omitempty"`
}

// Validate checks required fields.
func (p *Product) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if utf8.RuneCountInString(p.Name) > maxNameLength {
		return apperror.NewValidation("name is too long").WithDetail("field", "name")
	}
	p.Material = trimmed(p.Material)
	p.Color = trimmed(p.Color)
	return nil
}

// ListFilter narrows product listings.
type ListFilter struct {
	// Search matches id or name, case-insensitive.
	Search string
	Limit  int
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
