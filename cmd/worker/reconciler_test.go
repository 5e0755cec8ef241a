package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/domain/registers/stock"
	"stockledger/internal/infrastructure/storage/memory"
	"stockledger/pkg/logger"
)

func driftedLedger(t *testing.T) *stock.Service {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.SeedReference(ctx))

	svc := stock.NewService(store.Stock(), store, 0)
	_, err := svc.ApplyDelta(ctx, stock.Key{WarehouseID: "K2", ProductID: "SP004"}, 7, false)
	require.NoError(t, err)
	return svc
}

func TestReconciler_ReportOnly(t *testing.T) {
	ledger := driftedLedger(t)
	r := NewReconciler(ledger, false, logger.Nop())

	drifts := r.RunOnce(context.Background())
	require.Len(t, drifts, 1)
	assert.Equal(t, "K2", drifts[0].WarehouseID)

	// Nothing was corrected.
	assert.Len(t, r.RunOnce(context.Background()), 1)
}

func TestReconciler_Repair(t *testing.T) {
	ledger := driftedLedger(t)
	r := NewReconciler(ledger, true, logger.Nop())

	assert.Len(t, r.RunOnce(context.Background()), 1)
	assert.Empty(t, r.RunOnce(context.Background()))
}
