package reports

import (
	"context"
)

// Repository reads aggregates from the movement ledger. It never writes.
type Repository interface {
	// DailyRevenue sums quantity * unit price per calendar day of the export.
	DailyRevenue(ctx context.Context, q Query) ([]DailyAmount, error)

	// DailyCOGS sums quantity * latest import unit cost of the export's (warehouse, product)
	// per calendar day. The latest import is the globally newest one, not the one in force
	// at the export's time; ties on time go to the greatest import id.
	DailyCOGS(ctx context.Context, q Query) ([]DailyAmount, error)

	// TopByQuantity and TopByRevenue rank products descending, ties by product id.
	TopByQuantity(ctx context.Context, q Query, limit int) ([]TopProduct, error)
	TopByRevenue(ctx context.Context, q Query, limit int) ([]TopProduct, error)

	// Dashboard summarizes one warehouse, or every warehouse when warehouseID is empty.
	Dashboard(ctx context.Context, warehouseID string) (Dashboard, error)
}
