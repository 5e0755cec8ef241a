package stock

import (
	"context"
)

// Repository defines storage operations of the stock ledger.
// Implementations must run inside the unit of work carried by ctx when one exists.
type Repository interface {
	// GetBalanceForUpdate returns the level with a row lock held until the unit of work ends.
	// A missing row yields a zero level and found == false.
	GetBalanceForUpdate(ctx context.Context, key Key) (level Level, found bool, err error)

	// ApplyDelta creates the row at quantity 0 with threshold if missing, adds delta and
	// returns the new level. Storage must reject a negative result with OutOfStock.
	ApplyDelta(ctx context.Context, key Key, delta, threshold int64) (Level, error)

	// List returns levels ordered by warehouse, product.
	List(ctx context.Context, filter Filter) ([]Level, error)

	// Recompute sums movement history per (warehouse, product) for the filter.
	Recompute(ctx context.Context, filter Filter) ([]Balance, error)
}

// Filter restricts level and history queries. Empty fields match everything.
type Filter struct {
	WarehouseID string
	ProductID   string
	LowOnly     bool
}
