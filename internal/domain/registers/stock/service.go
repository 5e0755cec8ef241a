package stock

import (
	"context"
	"fmt"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/security"
	"stockledger/internal/core/tx"
	"stockledger/internal/domain/audit"
	"stockledger/pkg/logger"
)

// Service provides business operations for the stock ledger.
type Service struct {
	repo      Repository
	txManager tx.Manager
	journal   audit.Journal
	threshold int64
}

// NewService creates a new stock ledger service.
// threshold <= 0 uses DefaultThreshold for lazily created levels.
func NewService(repo Repository, txManager tx.Manager, threshold int64) *Service {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Service{
		repo:      repo,
		txManager: txManager,
		journal:   audit.Nop{},
		threshold: threshold,
	}
}

// WithJournal sets the journal that records repairs.
func (s *Service) WithJournal(j audit.Journal) *Service {
	s.journal = j
	return s
}

// ApplyDelta adds delta to the (warehouse, product) level, creating it at 0 first.
// With enforceNonNegative a negative result fails with OutOfStock and nothing is written.
// Joins the unit of work in ctx when there is one.
func (s *Service) ApplyDelta(ctx context.Context, key Key, delta int64, enforceNonNegative bool) (Level, error) {
	var level Level
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if enforceNonNegative && delta < 0 {
			current, _, err := s.repo.GetBalanceForUpdate(ctx, key)
			if err != nil {
				return fmt.Errorf("get balance for %s/%s: %w", key.WarehouseID, key.ProductID, err)
			}
			if current.Quantity+delta < 0 {
				return apperror.NewOutOfStock(key.WarehouseID, key.ProductID, current.Quantity+delta)
			}
		}

		var err error
		level, err = s.repo.ApplyDelta(ctx, key, delta, s.threshold)
		if err != nil {
			return err
		}
		if level.Quantity < 0 {
			return apperror.NewOutOfStock(key.WarehouseID, key.ProductID, level.Quantity)
		}
		return nil
	})
	return level, err
}

// CheckAndReserveStock locks every key in sorted order, then verifies each requirement
// in the order given. The first shortfall fails with InsufficientStock.
// Must run inside the unit of work that will apply the decrements.
func (s *Service) CheckAndReserveStock(ctx context.Context, items []Reservation) error {
	keys := make([]Key, 0, len(items))
	for _, item := range items {
		keys = append(keys, item.Key)
	}

	available := make(map[Key]int64, len(keys))
	for _, key := range SortKeys(keys) {
		level, _, err := s.repo.GetBalanceForUpdate(ctx, key)
		if err != nil {
			return fmt.Errorf("get balance for %s/%s: %w", key.WarehouseID, key.ProductID, err)
		}
		available[key] = level.Quantity
	}

	for _, item := range items {
		if item.RequiredQty <= 0 {
			continue
		}
		if have := available[item.Key]; item.RequiredQty > have {
			return apperror.NewInsufficientStock(item.WarehouseID, item.ProductID, item.RequiredQty, have)
		}
	}
	return nil
}

// GetBalances returns product -> quantity for the caller's view of warehouseID.
// AllWarehouses sums across warehouses. When the materialized store has nothing
// for the view, balances are recomputed from history.
func (s *Service) GetBalances(ctx context.Context, caller security.CallerContext, warehouseID, productID string) (map[string]int64, error) {
	view, err := caller.ResolveView(warehouseID)
	if err != nil {
		return nil, err
	}
	filter := Filter{WarehouseID: warehouseFilter(view), ProductID: productID}

	levels, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list levels: %w", err)
	}

	out := make(map[string]int64, len(levels))
	if len(levels) > 0 {
		for _, l := range levels {
			out[l.ProductID] += l.Quantity
		}
		return out, nil
	}

	balances, err := s.repo.Recompute(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("recompute balances: %w", err)
	}
	if len(balances) > 0 {
		logger.Debug(ctx, "balances served from history", "warehouse_id", view, "pairs", len(balances))
	}
	for _, b := range balances {
		out[b.ProductID] += b.Quantity
	}
	return out, nil
}

// LowStock lists levels at or below their threshold, ordered by warehouse, product.
func (s *Service) LowStock(ctx context.Context, caller security.CallerContext, warehouseID string) ([]Level, error) {
	view, err := caller.ResolveView(warehouseID)
	if err != nil {
		return nil, err
	}
	levels, err := s.repo.List(ctx, Filter{WarehouseID: warehouseFilter(view), LowOnly: true})
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	return levels, nil
}

// RecomputeBalance derives the (warehouse, product) balance from movement history:
// imports - exports + transfers in - transfers out.
func (s *Service) RecomputeBalance(ctx context.Context, key Key) (int64, error) {
	balances, err := s.repo.Recompute(ctx, Filter{WarehouseID: key.WarehouseID, ProductID: key.ProductID})
	if err != nil {
		return 0, fmt.Errorf("recompute balance: %w", err)
	}
	var total int64
	for _, b := range balances {
		total += b.Quantity
	}
	return total, nil
}

// Reconcile compares materialized levels with history for the view and returns every drift.
func (s *Service) Reconcile(ctx context.Context, caller security.CallerContext, warehouseID string) ([]Drift, error) {
	if err := caller.RequireAdmin("reconcile"); err != nil {
		return nil, err
	}
	view, err := caller.ResolveView(warehouseID)
	if err != nil {
		return nil, err
	}

	var drifts []Drift
	err = tx.ReadOnly(ctx, s.txManager, func(ctx context.Context) error {
		var err error
		drifts, err = s.drifts(ctx, Filter{WarehouseID: warehouseFilter(view)})
		return err
	})
	return drifts, err
}

// Repair applies the correcting delta to every drifted level in one unit of work.
func (s *Service) Repair(ctx context.Context, caller security.CallerContext, warehouseID string) ([]Drift, error) {
	if err := caller.RequireAdmin("repair"); err != nil {
		return nil, err
	}
	view, err := caller.ResolveView(warehouseID)
	if err != nil {
		return nil, err
	}

	var repaired []Drift
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		drifts, err := s.drifts(ctx, Filter{WarehouseID: warehouseFilter(view)})
		if err != nil {
			return err
		}
		for _, d := range drifts {
			key := Key{WarehouseID: d.WarehouseID, ProductID: d.ProductID}
			if _, err := s.ApplyDelta(ctx, key, d.Delta(), false); err != nil {
				return fmt.Errorf("repair %s/%s: %w", d.WarehouseID, d.ProductID, err)
			}
			err := s.journal.Record(ctx, audit.Entry{
				EntityType: "stock_level",
				EntityID:   d.WarehouseID + "/" + d.ProductID,
				Action:     audit.ActionRepair,
				UserID:     caller.UserID,
				Changes:    map[string]any{"materialized": d.Materialized, "recomputed": d.Recomputed},
			})
			if err != nil {
				return err
			}
		}
		repaired = drifts
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(repaired) > 0 {
		logger.Warn(ctx, "repaired stock drift", "count", len(repaired), "warehouse_id", view)
	}
	return repaired, nil
}

func (s *Service) drifts(ctx context.Context, filter Filter) ([]Drift, error) {
	levels, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list levels: %w", err)
	}
	balances, err := s.repo.Recompute(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("recompute balances: %w", err)
	}

	materialized := make(map[Key]int64, len(levels))
	for _, l := range levels {
		materialized[l.Key()] = l.Quantity
	}
	recomputed := make(map[Key]int64, len(balances))
	for _, b := range balances {
		recomputed[Key{WarehouseID: b.WarehouseID, ProductID: b.ProductID}] += b.Quantity
	}

	keys := make([]Key, 0, len(materialized)+len(recomputed))
	for k := range materialized {
		keys = append(keys, k)
	}
	for k := range recomputed {
		keys = append(keys, k)
	}

	var out []Drift
	for _, k := range SortKeys(keys) {
		m, r := materialized[k], recomputed[k]
		if m != r {
			out = append(out, Drift{WarehouseID: k.WarehouseID, ProductID: k.ProductID, Materialized: m, Recomputed: r})
		}
	}
	return out, nil
}

func warehouseFilter(view string) string {
	if view == security.AllWarehouses {
		return ""
	}
	return view
}
