package memory

import (
	"context"
	"sort"
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/domain/movements"
	"stockledger/internal/domain/registers/stock"
)

// StockRepo implements stock.Repository.
type StockRepo struct{ s *Store }

var _ stock.Repository = (*StockRepo)(nil)

// GetBalanceForUpdate reads the level. The unit of work already holds the writer lock.
func (r *StockRepo) GetBalanceForUpdate(ctx context.Context, key stock.Key) (stock.Level, bool, error) {
	var (
		level stock.Level
		found bool
	)
	err := r.s.view(ctx, func(st *state) error {
		level, found = st.levels[key]
		if !found {
			level = stock.Level{WarehouseID: key.WarehouseID, ProductID: key.ProductID}
		}
		return nil
	})
	return level, found, err
}

// ApplyDelta creates the level at 0 when missing and adds delta. A negative result is refused.
func (r *StockRepo) ApplyDelta(ctx context.Context, key stock.Key, delta, threshold int64) (stock.Level, error) {
	var level stock.Level
	err := r.s.update(ctx, func(st *state) error {
		current, ok := st.levels[key]
		if !ok {
			if err := st.checkRefs(key.WarehouseID, key.ProductID); err != nil {
				return err
			}
			current = stock.Level{WarehouseID: key.WarehouseID, ProductID: key.ProductID, Threshold: threshold}
		}
		if current.Quantity+delta < 0 {
			return apperror.NewOutOfStock(key.WarehouseID, key.ProductID, current.Quantity+delta).
				WithDetail("delta", delta)
		}
		current.Quantity += delta
		current.UpdatedAt = time.Now()
		st.levels[key] = current
		level = current
		return nil
	})
	return level, err
}

// List returns levels ordered by warehouse, product.
func (r *StockRepo) List(ctx context.Context, filter stock.Filter) ([]stock.Level, error) {
	var out []stock.Level
	err := r.s.view(ctx, func(st *state) error {
		for k, l := range st.levels {
			if !matches(filter, k) || (filter.LowOnly && !l.IsLow()) {
				continue
			}
			out = append(out, l)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Key().Less(out[j].Key()) })
	return out, err
}

// Recompute sums signed history per (warehouse, product).
func (r *StockRepo) Recompute(ctx context.Context, filter stock.Filter) ([]stock.Balance, error) {
	sums := make(map[stock.Key]int64)
	err := r.s.view(ctx, func(st *state) error {
		add := func(wh, p string, q int64) {
			if k := (stock.Key{WarehouseID: wh, ProductID: p}); matches(filter, k) {
				sums[k] += q
			}
		}
		for _, row := range st.imports {
			add(row.WarehouseID, row.ProductID, row.Quantity)
		}
		for _, row := range st.exports {
			add(row.WarehouseID, row.ProductID, -row.Quantity)
		}
		for _, h := range st.transfers {
			for _, l := range h.Lines {
				add(h.DestinationWarehouseID, l.ProductID, l.Quantity)
				add(h.SourceWarehouseID, l.ProductID, -l.Quantity)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	keys := make([]stock.Key, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	out := make([]stock.Balance, 0, len(keys))
	for _, k := range stock.SortKeys(keys) {
		out = append(out, stock.Balance{WarehouseID: k.WarehouseID, ProductID: k.ProductID, Quantity: sums[k]})
	}
	return out, nil
}

func matches(f stock.Filter, k stock.Key) bool {
	return (f.WarehouseID == "" || f.WarehouseID == k.WarehouseID) &&
		(f.ProductID == "" || f.ProductID == k.ProductID)
}

// MovementRepo implements movements.Repository.
type MovementRepo struct{ s *Store }

var _ movements.Repository = (*MovementRepo)(nil)

// InsertImport appends an import row.
func (r *MovementRepo) InsertImport(ctx context.Context, row *movements.Import) error {
	return r.s.update(ctx, func(st *state) error {
		for _, e := range st.imports {
			if e.ID == row.ID && e.ProductID == row.ProductID && e.WarehouseID == row.WarehouseID {
				return apperror.NewDuplicate("import", "id", row.ID)
			}
		}
		if err := st.checkRefs(row.WarehouseID, row.ProductID); err != nil {
			return err
		}
		if err := st.checkOptional(st.employees, "employee", row.EmployeeID); err != nil {
			return err
		}
		if err := st.checkOptional(st.suppliers, "supplier", row.SupplierID); err != nil {
			return err
		}
		st.imports = append(st.imports, *row)
		return nil
	})
}

// InsertExport appends an export row.
func (r *MovementRepo) InsertExport(ctx context.Context, row *movements.Export) error {
	return r.s.update(ctx, func(st *state) error {
		for _, e := range st.exports {
			if e.ID == row.ID && e.ProductID == row.ProductID && e.WarehouseID == row.WarehouseID {
				return apperror.NewDuplicate("export", "id", row.ID)
			}
		}
		if err := st.checkRefs(row.WarehouseID, row.ProductID); err != nil {
			return err
		}
		for _, ref := range []struct {
			table  map[string]string
			entity string
			id     *string
		}{
			{st.employees, "employee", row.EmployeeID},
			{st.vehicles, "vehicle", row.VehicleID},
			{st.customers, "customer", row.CustomerID},
		} {
			if err := st.checkOptional(ref.table, ref.entity, ref.id); err != nil {
				return err
			}
		}
		st.exports = append(st.exports, *row)
		return nil
	})
}

// InsertTransfer stores the header with its lines.
func (r *MovementRepo) InsertTransfer(ctx context.Context, header *movements.TransferHeader) error {
	return r.s.update(ctx, func(st *state) error {
		for _, h := range st.transfers {
			if h.ID == header.ID {
				return apperror.NewDuplicate("transfer", "id", header.ID)
			}
		}
		if header.SourceWarehouseID == header.DestinationWarehouseID {
			return apperror.NewInvalidTransfer("source and destination warehouses must differ")
		}
		for _, l := range header.Lines {
			if err := st.checkRefs(header.SourceWarehouseID, l.ProductID); err != nil {
				return err
			}
			if err := st.checkRefs(header.DestinationWarehouseID, l.ProductID); err != nil {
				return err
			}
		}
		stored := *header
		stored.Lines = append([]movements.TransferLine(nil), header.Lines...)
		st.transfers = append(st.transfers, stored)
		return nil
	})
}

// ListImports returns import rows newest first.
func (r *MovementRepo) ListImports(ctx context.Context, f movements.ImportFilter) ([]movements.Import, error) {
	var out []movements.Import
	err := r.s.view(ctx, func(st *state) error {
		for _, row := range st.imports {
			if (f.WarehouseID == "" || row.WarehouseID == f.WarehouseID) &&
				(f.SupplierID == "" || deref(row.SupplierID) == f.SupplierID) &&
				(f.EmployeeID == "" || deref(row.EmployeeID) == f.EmployeeID) {
				out = append(out, row)
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return newer(out[i].OccurredAt, out[i].ID, out[j].OccurredAt, out[j].ID) })
	return limit(out, f.Limit), err
}

// ListExports returns export rows newest first.
func (r *MovementRepo) ListExports(ctx context.Context, f movements.ExportFilter) ([]movements.Export, error) {
	var out []movements.Export
	err := r.s.view(ctx, func(st *state) error {
		for _, row := range st.exports {
			emp := deref(row.EmployeeID)
			if (f.WarehouseID == "" || row.WarehouseID == f.WarehouseID) &&
				(f.VehicleID == "" || deref(row.VehicleID) == f.VehicleID) &&
				(f.CustomerID == "" || deref(row.CustomerID) == f.CustomerID) &&
				(f.EmployeeID == "" || emp == f.EmployeeID) &&
				(f.OwnOrUnstamped == "" || emp == "" || emp == f.OwnOrUnstamped) {
				out = append(out, row)
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return newer(out[i].OccurredAt, out[i].ID, out[j].OccurredAt, out[j].ID) })
	return limit(out, f.Limit), err
}

// RecentTransfers returns the newest headers with their lines.
func (r *MovementRepo) RecentTransfers(ctx context.Context, n int) ([]movements.TransferHeader, error) {
	var out []movements.TransferHeader
	err := r.s.view(ctx, func(st *state) error {
		for _, h := range st.transfers {
			h.Lines = append([]movements.TransferLine(nil), h.Lines...)
			sort.Slice(h.Lines, func(i, j int) bool { return h.Lines[i].ProductID < h.Lines[j].ProductID })
			out = append(out, h)
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return newer(out[i].OccurredAt, out[i].ID, out[j].OccurredAt, out[j].ID) })
	return limit(out, n), err
}

func newer(ta time.Time, ida string, tb time.Time, idb string) bool {
	if !ta.Equal(tb) {
		return ta.After(tb)
	}
	return ida > idb
}

func limit[T any](rows []T, n int) []T {
	if rows == nil {
		rows = []T{}
	}
	if n > 0 && len(rows) > n {
		return rows[:n]
	}
	return rows
}

func (st *state) checkRefs(warehouseID, productID string) error {
	if _, ok := st.warehouses[warehouseID]; !ok {
		return apperror.NewIntegrityViolation("warehouse", warehouseID)
	}
	if _, ok := st.products[productID]; !ok {
		return apperror.NewIntegrityViolation("product", productID)
	}
	return nil
}

func (st *state) checkOptional(table map[string]string, entity string, ref *string) error {
	if ref == nil {
		return nil
	}
	if _, ok := table[*ref]; !ok {
		return apperror.NewIntegrityViolation(entity, *ref)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
