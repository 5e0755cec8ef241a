package memory

import (
	"context"
	"sort"
	"time"

	"stockledger/internal/core/types"
	"stockledger/internal/domain/movements"
	"stockledger/internal/domain/registers/stock"
	"stockledger/internal/domain/reports"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct{ s *Store }

var _ reports.Repository = (*ReportRepo)(nil)

// DailyRevenue sums quantity * unit price per export day.
func (r *ReportRepo) DailyRevenue(ctx context.Context, q reports.Query) ([]reports.DailyAmount, error) {
	var out []reports.DailyAmount
	err := r.s.view(ctx, func(st *state) error {
		out = dailySum(scopedExports(st, q), q.Location, func(e movements.Export) types.Money {
			return types.LineAmount(e.Quantity, e.UnitPrice)
		})
		return nil
	})
	return out, err
}

// DailyCOGS sums quantity * latest import cost per export day. Pairs never imported cost 0.
func (r *ReportRepo) DailyCOGS(ctx context.Context, q reports.Query) ([]reports.DailyAmount, error) {
	var out []reports.DailyAmount
	err := r.s.view(ctx, func(st *state) error {
		cost := latestCosts(st.imports)
		out = dailySum(scopedExports(st, q), q.Location, func(e movements.Export) types.Money {
			c, ok := cost[stock.Key{WarehouseID: e.WarehouseID, ProductID: e.ProductID}]
			if !ok {
				return types.Zero()
			}
			return types.LineAmount(e.Quantity, c.UnitCost)
		})
		return nil
	})
	return out, err
}

// TopByQuantity ranks products by shipped quantity, ties by product id.
func (r *ReportRepo) TopByQuantity(ctx context.Context, q reports.Query, limit int) ([]reports.TopProduct, error) {
	return r.top(ctx, q, limit, func(a, b reports.TopProduct) int {
		switch {
		case a.Quantity > b.Quantity:
			return -1
		case a.Quantity < b.Quantity:
			return 1
		}
		return 0
	})
}

// TopByRevenue ranks products by revenue, ties by product id.
func (r *ReportRepo) TopByRevenue(ctx context.Context, q reports.Query, limit int) ([]reports.TopProduct, error) {
	return r.top(ctx, q, limit, func(a, b reports.TopProduct) int {
		return -a.Revenue.Cmp(b.Revenue)
	})
}

func (r *ReportRepo) top(ctx context.Context, q reports.Query, n int, cmp func(a, b reports.TopProduct) int) ([]reports.TopProduct, error) {
	var out []reports.TopProduct
	err := r.s.view(ctx, func(st *state) error {
		byProduct := make(map[string]*reports.TopProduct)
		for _, e := range scopedExports(st, q) {
			t, ok := byProduct[e.ProductID]
			if !ok {
				name := e.ProductID
				if p, found := st.products[e.ProductID]; found {
					name = p.Name
				}
				t = &reports.TopProduct{ProductID: e.ProductID, ProductName: name, Revenue: types.Zero()}
				byProduct[e.ProductID] = t
			}
			t.Quantity += e.Quantity
			t.Revenue = t.Revenue.Add(types.LineAmount(e.Quantity, e.UnitPrice))
		}
		for _, t := range byProduct {
			out = append(out, *t)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if c := cmp(out[i], out[j]); c != 0 {
			return c < 0
		}
		return out[i].ProductID < out[j].ProductID
	})
	return limit(out, n), err
}

// Dashboard reads the landing-page counters. Empty warehouseID covers every warehouse.
func (r *ReportRepo) Dashboard(ctx context.Context, warehouseID string) (reports.Dashboard, error) {
	var d reports.Dashboard
	err := r.s.view(ctx, func(st *state) error {
		in := func(wh string) bool { return warehouseID == "" || wh == warehouseID }
		latest := func(t time.Time) {
			if d.LastMovementAt == nil || t.After(*d.LastMovementAt) {
				ts := t
				d.LastMovementAt = &ts
			}
		}

		if warehouseID == "" {
			d.ProductCount = int64(len(st.products))
		}
		for k, l := range st.levels {
			if !in(k.WarehouseID) {
				continue
			}
			d.TotalStock += l.Quantity
			if warehouseID != "" && l.Quantity > 0 {
				d.ProductCount++
			}
		}

		exportIDs := make(map[string]struct{})
		for _, e := range st.exports {
			if in(e.WarehouseID) {
				exportIDs[e.ID] = struct{}{}
				latest(e.OccurredAt)
			}
		}
		d.ExportCount = int64(len(exportIDs))
		for _, i := range st.imports {
			if in(i.WarehouseID) {
				latest(i.OccurredAt)
			}
		}
		for _, t := range st.transfers {
			if in(t.SourceWarehouseID) || in(t.DestinationWarehouseID) {
				latest(t.OccurredAt)
			}
		}
		return nil
	})
	return d, err
}

func scopedExports(st *state, q reports.Query) []movements.Export {
	var out []movements.Export
	for _, e := range st.exports {
		if q.WarehouseID != "" && e.WarehouseID != q.WarehouseID {
			continue
		}
		if e.OccurredAt.Before(q.From) || e.OccurredAt.After(q.To) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// latestCosts picks, per (warehouse, product), the newest import; equal times go to the greatest id.
func latestCosts(imports []movements.Import) map[stock.Key]movements.Import {
	out := make(map[stock.Key]movements.Import)
	for _, i := range imports {
		k := stock.Key{WarehouseID: i.WarehouseID, ProductID: i.ProductID}
		cur, ok := out[k]
		if !ok || newer(i.OccurredAt, i.ID, cur.OccurredAt, cur.ID) {
			out[k] = i
		}
	}
	return out
}

func dailySum(rows []movements.Export, loc *time.Location, amount func(movements.Export) types.Money) []reports.DailyAmount {
	if loc == nil {
		loc = time.UTC
	}
	sums := make(map[string]types.Money)
	for _, e := range rows {
		day := e.OccurredAt.In(loc).Format(time.DateOnly)
		sums[day] = sums[day].Add(amount(e))
	}

	out := make([]reports.DailyAmount, 0, len(sums))
	for day, amt := range sums {
		out = append(out, reports.DailyAmount{Day: day, Amount: amt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}
