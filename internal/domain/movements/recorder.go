package movements

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stockledger/internal/core/numerator"
	"stockledger/internal/core/security"
	"stockledger/internal/core/tx"
	"stockledger/internal/domain/audit"
	"stockledger/internal/domain/registers/stock"
	"stockledger/pkg/logger"
)

// Invalidator is told after every committed movement so derived caches can be dropped.
type Invalidator interface {
	Bump(ctx context.Context) error
}

// Recorder records imports, exports and transfers. Each operation is one unit of work:
// the ledger row, the balance deltas and the journal entry commit together or not at all.
type Recorder struct {
	repo        Repository
	ledger      *stock.Service
	numbers     numerator.Generator
	txManager   tx.Manager
	journal     audit.Journal
	invalidator Invalidator
	now         func() time.Time
}

// NewRecorder creates a movement recorder.
func NewRecorder(
	repo Repository,
	ledger *stock.Service,
	numbers numerator.Generator,
	txManager tx.Manager,
) *Recorder {
	return &Recorder{
		repo:      repo,
		ledger:    ledger,
		numbers:   numbers,
		txManager: txManager,
		journal:   audit.Nop{},
		now:       time.Now,
	}
}

// WithJournal sets the journal written inside every movement's unit of work.
func (r *Recorder) WithJournal(j audit.Journal) *Recorder {
	r.journal = j
	return r
}

// WithInvalidator sets the cache invalidator called after commit.
func (r *Recorder) WithInvalidator(inv Invalidator) *Recorder {
	r.invalidator = inv
	return r
}

// Recorded is the outcome of an import or export: the stored document id and the new balance.
type Recorded struct {
	DocID string
	stock.Level
}

// RecordImport stores an import row and raises the balance by its quantity.
// Imports are never blocked by the stock check.
func (r *Recorder) RecordImport(ctx context.Context, caller security.CallerContext, cmd ImportCommand) (Recorded, error) {
	if err := caller.AuthorizeMutation(cmd.WarehouseID); err != nil {
		return Recorded{}, err
	}
	if err := cmd.Validate(); err != nil {
		return Recorded{}, err
	}

	docID, err := r.docID(ctx, cmd.DocID, numerator.SeriesImport)
	if err != nil {
		return Recorded{}, err
	}

	row := &Import{
		ID:          docID,
		ProductID:   cmd.ProductID,
		WarehouseID: cmd.WarehouseID,
		Quantity:    cmd.Quantity,
		UnitCost:    cmd.UnitCost,
		OccurredAt:  r.timestamp(cmd.Timestamp),
		EmployeeID:  optional(caller.StampEmployee(cmd.EmployeeID)),
		SupplierID:  optional(cmd.SupplierID),
	}

	var level stock.Level
	err = r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := r.repo.InsertImport(ctx, row); err != nil {
			return fmt.Errorf("insert import: %w", err)
		}
		var err error
		level, err = r.ledger.ApplyDelta(ctx, stock.Key{WarehouseID: row.WarehouseID, ProductID: row.ProductID}, row.Quantity, false)
		if err != nil {
			return err
		}
		return r.journal.Record(ctx, audit.Entry{
			EntityType: "import",
			EntityID:   row.ID,
			Action:     audit.ActionImport,
			UserID:     caller.UserID,
			Changes:    map[string]any{"row": row, "balance": level.Quantity},
		})
	})
	if err != nil {
		return Recorded{}, err
	}

	r.committed(ctx)
	logger.Info(ctx, "import recorded",
		"id", row.ID,
		"warehouse_id", row.WarehouseID,
		"product_id", row.ProductID,
		"quantity", row.Quantity,
		"balance", level.Quantity,
	)
	return Recorded{DocID: row.ID, Level: level}, nil
}

// RecordExport checks the balance under lock, then stores the export row and lowers the
// balance. A shortfall fails with InsufficientStock before anything is written.
func (r *Recorder) RecordExport(ctx context.Context, caller security.CallerContext, cmd ExportCommand) (Recorded, error) {
	if err := caller.AuthorizeMutation(cmd.WarehouseID); err != nil {
		return Recorded{}, err
	}
	if err := cmd.Validate(); err != nil {
		return Recorded{}, err
	}

	docID, err := r.docID(ctx, cmd.DocID, numerator.SeriesExport)
	if err != nil {
		return Recorded{}, err
	}

	row := &Export{
		ID:          docID,
		ProductID:   cmd.ProductID,
		WarehouseID: cmd.WarehouseID,
		Quantity:    cmd.Quantity,
		UnitPrice:   cmd.UnitPrice,
		OccurredAt:  r.timestamp(cmd.Timestamp),
		EmployeeID:  optional(caller.StampEmployee(cmd.EmployeeID)),
		VehicleID:   optional(cmd.VehicleID),
		CustomerID:  optional(cmd.CustomerID),
	}
	key := stock.Key{WarehouseID: row.WarehouseID, ProductID: row.ProductID}

	var level stock.Level
	err = r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := r.ledger.CheckAndReserveStock(ctx, []stock.Reservation{{Key: key, RequiredQty: row.Quantity}}); err != nil {
			return err
		}
		if err := r.repo.InsertExport(ctx, row); err != nil {
			return fmt.Errorf("insert export: %w", err)
		}
		var err error
		level, err = r.ledger.ApplyDelta(ctx, key, -row.Quantity, true)
		if err != nil {
			return err
		}
		return r.journal.Record(ctx, audit.Entry{
			EntityType: "export",
			EntityID:   row.ID,
			Action:     audit.ActionExport,
			UserID:     caller.UserID,
			Changes:    map[string]any{"row": row, "balance": level.Quantity},
		})
	})
	if err != nil {
		return Recorded{}, err
	}

	r.committed(ctx)
	logger.Info(ctx, "export recorded",
		"id", row.ID,
		"warehouse_id", row.WarehouseID,
		"product_id", row.ProductID,
		"quantity", row.Quantity,
		"balance", level.Quantity,
	)
	return Recorded{DocID: row.ID, Level: level}, nil
}

// RecordTransfer moves every line from source to destination.
// Phase one locks all touched levels in key order and checks every source balance;
// phase two applies the deltas and persists the header with its lines.
func (r *Recorder) RecordTransfer(ctx context.Context, caller security.CallerContext, cmd TransferCommand) (*TransferHeader, error) {
	if err := caller.RequireAdmin("transfer"); err != nil {
		return nil, err
	}
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	docID, err := r.docID(ctx, cmd.DocID, numerator.SeriesTransfer)
	if err != nil {
		return nil, err
	}

	header := &TransferHeader{
		ID:                     docID,
		SourceWarehouseID:      strings.TrimSpace(cmd.SourceWarehouseID),
		DestinationWarehouseID: strings.TrimSpace(cmd.DestinationWarehouseID),
		OccurredAt:             r.timestamp(cmd.Timestamp),
		Note:                   optional(cmd.Note),
		Lines:                  make([]TransferLine, 0, len(cmd.Lines)),
	}
	reservations := make([]stock.Reservation, 0, 2*len(cmd.Lines))
	for _, l := range cmd.Lines {
		productID := strings.TrimSpace(l.ProductID)
		header.Lines = append(header.Lines, TransferLine{TransferID: docID, ProductID: productID, Quantity: l.Quantity})
		reservations = append(reservations,
			stock.Reservation{Key: stock.Key{WarehouseID: header.SourceWarehouseID, ProductID: productID}, RequiredQty: l.Quantity},
			stock.Reservation{Key: stock.Key{WarehouseID: header.DestinationWarehouseID, ProductID: productID}},
		)
	}

	err = r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := r.ledger.CheckAndReserveStock(ctx, reservations); err != nil {
			return err
		}

		for _, l := range header.Lines {
			src := stock.Key{WarehouseID: header.SourceWarehouseID, ProductID: l.ProductID}
			dst := stock.Key{WarehouseID: header.DestinationWarehouseID, ProductID: l.ProductID}
			if _, err := r.ledger.ApplyDelta(ctx, src, -l.Quantity, true); err != nil {
				return err
			}
			if _, err := r.ledger.ApplyDelta(ctx, dst, l.Quantity, false); err != nil {
				return err
			}
		}

		if err := r.repo.InsertTransfer(ctx, header); err != nil {
			return fmt.Errorf("insert transfer: %w", err)
		}
		return r.journal.Record(ctx, audit.Entry{
			EntityType: "transfer",
			EntityID:   header.ID,
			Action:     audit.ActionTransfer,
			UserID:     caller.UserID,
			Changes:    map[string]any{"header": header},
		})
	})
	if err != nil {
		return nil, err
	}

	r.committed(ctx)
	logger.Info(ctx, "transfer recorded",
		"id", header.ID,
		"source", header.SourceWarehouseID,
		"destination", header.DestinationWarehouseID,
		"lines", len(header.Lines),
	)
	return header, nil
}

// NextCodes suggests the next code of each movement series.
func (r *Recorder) NextCodes(ctx context.Context) (NextCodes, error) {
	var out NextCodes
	for _, s := range []struct {
		series numerator.Series
		dst    *string
	}{
		{numerator.SeriesImport, &out.Import},
		{numerator.SeriesExport, &out.Export},
		{numerator.SeriesTransfer, &out.Transfer},
	} {
		code, err := r.numbers.Suggest(ctx, s.series)
		if err != nil {
			return NextCodes{}, fmt.Errorf("suggest %s code: %w", s.series, err)
		}
		*s.dst = code
	}
	return out, nil
}

// ListImports returns import history, newest first.
// Staff see their own warehouse only and cannot filter by employee.
func (r *Recorder) ListImports(ctx context.Context, caller security.CallerContext, filter ImportFilter) ([]Import, error) {
	view, err := caller.ResolveView(filter.WarehouseID)
	if err != nil {
		return nil, err
	}
	filter.WarehouseID = scoped(view)
	if !caller.IsAdmin() {
		filter.EmployeeID = ""
	}
	filter.Limit = normalizeLimit(filter.Limit, DefaultHistoryLimit)
	return r.repo.ListImports(ctx, filter)
}

// ListExports returns export history, newest first.
// Staff see their own warehouse only, and only rows stamped with their employee id or unstamped.
func (r *Recorder) ListExports(ctx context.Context, caller security.CallerContext, filter ExportFilter) ([]Export, error) {
	view, err := caller.ResolveView(filter.WarehouseID)
	if err != nil {
		return nil, err
	}
	filter.WarehouseID = scoped(view)
	filter.OwnOrUnstamped = ""
	if !caller.IsAdmin() {
		filter.EmployeeID = ""
		filter.OwnOrUnstamped = caller.EmployeeID
	}
	filter.Limit = normalizeLimit(filter.Limit, DefaultHistoryLimit)
	return r.repo.ListExports(ctx, filter)
}

// RecentTransfers returns the newest transfers with their lines. Admin only.
func (r *Recorder) RecentTransfers(ctx context.Context, caller security.CallerContext, limit int) ([]TransferHeader, error) {
	if err := caller.RequireAdmin("transfer history"); err != nil {
		return nil, err
	}
	return r.repo.RecentTransfers(ctx, normalizeLimit(limit, DefaultRecentTransfers))
}

func (r *Recorder) docID(ctx context.Context, requested string, series numerator.Series) (string, error) {
	if id := strings.TrimSpace(requested); id != "" {
		return id, nil
	}
	code, err := r.numbers.Suggest(ctx, series)
	if err != nil {
		return "", fmt.Errorf("suggest %s code: %w", series, err)
	}
	return code, nil
}

func (r *Recorder) timestamp(ts time.Time) time.Time {
	if ts.IsZero() {
		return r.now()
	}
	return ts
}

func (r *Recorder) committed(ctx context.Context) {
	if r.invalidator == nil {
		return
	}
	if err := r.invalidator.Bump(ctx); err != nil {
		logger.Warn(ctx, "report cache invalidation failed", "error", err)
	}
}

func scoped(view string) string {
	if view == security.AllWarehouses {
		return ""
	}
	return view
}
