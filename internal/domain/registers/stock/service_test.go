package stock_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/security"
	"stockledger/internal/domain/audit"
	"stockledger/internal/domain/registers/stock"
	"stockledger/internal/infrastructure/storage/memory"
)

var (
	admin = security.CallerContext{UserID: "u-admin", Username: "admin", Role: security.RoleAdmin}
	staff = security.CallerContext{UserID: "u-nv1", Username: "nv1", Role: security.RoleStaff, AssignedWarehouse: "K1", EmployeeID: "NV001"}
)

func newService(t *testing.T) (*stock.Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	require.NoError(t, store.SeedReference(context.Background()))
	return stock.NewService(store.Stock(), store, 0), store
}

func TestApplyDelta_CreatesLevelLazily(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	key := stock.Key{WarehouseID: "K1", ProductID: "SP001"}

	level, err := svc.ApplyDelta(ctx, key, 0, true)
	require.NoError(t, err)
	assert.Equal(t, int64(0), level.Quantity)
	assert.Equal(t, stock.DefaultThreshold, level.Threshold)

	level, err = svc.ApplyDelta(ctx, key, 12, false)
	require.NoError(t, err)
	assert.Equal(t, int64(12), level.Quantity)
}

func TestApplyDelta_EnforcedNegativeIsOutOfStock(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	key := stock.Key{WarehouseID: "K1", ProductID: "SP001"}

	_, err := svc.ApplyDelta(ctx, key, 5, false)
	require.NoError(t, err)

	_, err = svc.ApplyDelta(ctx, key, -6, true)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeOutOfStock))

	// The store refuses a negative balance even without enforcement.
	_, err = svc.ApplyDelta(ctx, key, -6, false)
	assert.True(t, apperror.Is(err, apperror.CodeOutOfStock))

	level, err := svc.ApplyDelta(ctx, key, -5, true)
	require.NoError(t, err)
	assert.Equal(t, int64(0), level.Quantity)
}

func TestCheckAndReserveStock(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	_, err := svc.ApplyDelta(ctx, stock.Key{WarehouseID: "K1", ProductID: "SP001"}, 8, false)
	require.NoError(t, err)

	err = store.RunInTransaction(ctx, func(ctx context.Context) error {
		return svc.CheckAndReserveStock(ctx, []stock.Reservation{
			{Key: stock.Key{WarehouseID: "K2", ProductID: "SP001"}},
			{Key: stock.Key{WarehouseID: "K1", ProductID: "SP001"}, RequiredQty: 8},
		})
	})
	assert.NoError(t, err)

	err = store.RunInTransaction(ctx, func(ctx context.Context) error {
		return svc.CheckAndReserveStock(ctx, []stock.Reservation{
			{Key: stock.Key{WarehouseID: "K1", ProductID: "SP001"}, RequiredQty: 11},
		})
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
	assert.Equal(t, int64(8), appErr.Details["available"])
	assert.Equal(t, int64(3), appErr.Details["shortfall"])
}

func TestGetBalances_Scoping(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	for _, d := range []struct {
		wh, p string
		q     int64
	}{
		{"K1", "SP001", 10}, {"K2", "SP001", 5}, {"K1", "SP002", 3},
	} {
		_, err := svc.ApplyDelta(ctx, stock.Key{WarehouseID: d.wh, ProductID: d.p}, d.q, false)
		require.NoError(t, err)
	}

	all, err := svc.GetBalances(ctx, admin, security.AllWarehouses, "")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"SP001": 15, "SP002": 3}, all)

	k2, err := svc.GetBalances(ctx, admin, "K2", "")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"SP001": 5}, k2)

	own, err := svc.GetBalances(ctx, staff, "", "")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"SP001": 10, "SP002": 3}, own)

	_, err = svc.GetBalances(ctx, staff, "K2", "")
	assert.True(t, apperror.Is(err, apperror.CodeForbidden))
}

func TestLowStock(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	for _, d := range []struct {
		wh, p string
		q     int64
	}{
		{"K2", "SP001", 10}, {"K1", "SP002", 11}, {"K1", "SP003", 2},
	} {
		_, err := svc.ApplyDelta(ctx, stock.Key{WarehouseID: d.wh, ProductID: d.p}, d.q, false)
		require.NoError(t, err)
	}

	low, err := svc.LowStock(ctx, admin, security.AllWarehouses)
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, stock.Key{WarehouseID: "K1", ProductID: "SP003"}, low[0].Key())
	assert.Equal(t, stock.Key{WarehouseID: "K2", ProductID: "SP001"}, low[1].Key())

	low, err = svc.LowStock(ctx, staff, "")
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "SP003", low[0].ProductID)
}

func TestReconcileAndRepair(t *testing.T) {
	svc, store := newService(t)
	svc.WithJournal(store.Journal())
	ctx := context.Background()

	// A level moved outside the ledger drifts from its (empty) history.
	_, err := svc.ApplyDelta(ctx, stock.Key{WarehouseID: "K1", ProductID: "SP001"}, 4, false)
	require.NoError(t, err)

	_, err = svc.Reconcile(ctx, staff, "K1")
	assert.True(t, apperror.Is(err, apperror.CodeForbidden))

	drifts, err := svc.Reconcile(ctx, admin, "")
	require.NoError(t, err)
	require.Len(t, drifts, 1)
	assert.Equal(t, int64(4), drifts[0].Materialized)
	assert.Equal(t, int64(0), drifts[0].Recomputed)
	assert.Equal(t, int64(-4), drifts[0].Delta())

	repaired, err := svc.Repair(ctx, admin, "")
	require.NoError(t, err)
	assert.Len(t, repaired, 1)

	entries := store.Journal().Entries(ctx)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionRepair, entries[0].Action)
	assert.Equal(t, "K1/SP001", entries[0].EntityID)

	drifts, err = svc.Reconcile(ctx, admin, "")
	require.NoError(t, err)
	assert.Empty(t, drifts)
}

func TestConcurrentDecrementsNeverGoNegative(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	key := stock.Key{WarehouseID: "K1", ProductID: "SP001"}

	_, err := svc.ApplyDelta(ctx, key, 10, false)
	require.NoError(t, err)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.RunInTransaction(ctx, func(ctx context.Context) error {
				if err := svc.CheckAndReserveStock(ctx, []stock.Reservation{{Key: key, RequiredQty: 1}}); err != nil {
					return err
				}
				_, err := svc.ApplyDelta(ctx, key, -1, true)
				return err
			})
			if err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, failed)
	level, _, err := store.Stock().GetBalanceForUpdate(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(0), level.Quantity)
}
