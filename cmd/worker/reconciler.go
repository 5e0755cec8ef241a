package main

import (
	"context"
	"time"

	"stockledger/internal/core/security"
	"stockledger/internal/domain/registers/stock"
	"stockledger/pkg/logger"
)

// LedgerChecker is the part of the stock service the worker drives.
type LedgerChecker interface {
	Reconcile(ctx context.Context, caller security.CallerContext, warehouseID string) ([]stock.Drift, error)
	Repair(ctx context.Context, caller security.CallerContext, warehouseID string) ([]stock.Drift, error)
}

// Reconciler checks every warehouse for drift on a fixed interval.
type Reconciler struct {
	ledger LedgerChecker
	repair bool
	caller security.CallerContext
	log    *logger.Logger
}

// NewReconciler creates a reconciler. With repair set, drift is corrected instead of only reported.
func NewReconciler(ledger LedgerChecker, repair bool, log *logger.Logger) *Reconciler {
	return &Reconciler{
		ledger: ledger,
		repair: repair,
		caller: security.CallerContext{Username: "worker", Role: security.RoleAdmin},
		log:    log.WithComponent("reconciler"),
	}
}

// Run executes a pass immediately and then every interval until ctx is done.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single pass and returns the drift it found.
func (r *Reconciler) RunOnce(ctx context.Context) []stock.Drift {
	check := r.ledger.Reconcile
	if r.repair {
		check = r.ledger.Repair
	}

	drifts, err := check(ctx, r.caller, "")
	if err != nil {
		r.log.Errorw("reconcile pass failed", "error", err)
		return nil
	}
	if len(drifts) == 0 {
		r.log.Debug("stock levels match history")
		return nil
	}

	for _, d := range drifts {
		r.log.Warnw("stock level drift",
			"warehouse_id", d.WarehouseID,
			"product_id", d.ProductID,
			"materialized", d.Materialized,
			"recomputed", d.Recomputed,
			"repaired", r.repair,
		)
	}
	return drifts
}
