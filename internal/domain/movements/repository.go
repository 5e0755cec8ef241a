package movements

import (
	"context"
)

// Repository persists ledger rows. Rows are append-only.
type Repository interface {
	InsertImport(ctx context.Context, row *Import) error
	InsertExport(ctx context.Context, row *Export) error

	// InsertTransfer persists the header and all of its lines.
	InsertTransfer(ctx context.Context, header *TransferHeader) error

	ListImports(ctx context.Context, filter ImportFilter) ([]Import, error)
	ListExports(ctx context.Context, filter ExportFilter) ([]Export, error)

	// RecentTransfers returns the newest headers with their lines.
	RecentTransfers(ctx context.Context, limit int) ([]TransferHeader, error)
}

// DefaultHistoryLimit is the page size of history listings.
const DefaultHistoryLimit = 50

// MaxHistoryLimit caps a requested page size.
const MaxHistoryLimit = 500

// DefaultRecentTransfers is the number of transfers shown by RecentTransfers.
const DefaultRecentTransfers = 10

// ImportFilter narrows import history. Empty fields match everything.
type ImportFilter struct {
	WarehouseID string
	SupplierID  string
	EmployeeID  string
	Limit       int
}

// ExportFilter narrows export history. Empty fields match everything.
type ExportFilter struct {
	WarehouseID string
	VehicleID   string
	CustomerID  string
	EmployeeID  string

	// OwnOrUnstamped keeps rows stamped with this employee or with no employee.
	OwnOrUnstamped string

	Limit int
}

func normalizeLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > MaxHistoryLimit {
		return MaxHistoryLimit
	}
	return limit
}
