//go:build integration

package app_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"stockledger/internal/app"
	"stockledger/internal/core/apperror"
	"stockledger/internal/core/security"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/auth"
	"stockledger/internal/domain/movements"
	"stockledger/internal/domain/registers/stock"
	"stockledger/internal/domain/reports"
	"stockledger/internal/infrastructure/storage/postgres"
	"stockledger/internal/seed"
	"stockledger/pkg/logger"
)

var (
	admin = security.CallerContext{Username: "admin", Role: security.RoleAdmin}
	nv1   = security.CallerContext{Username: "nv1", Role: security.RoleStaff, AssignedWarehouse: "K1", EmployeeID: "NV001"}
)

// newPostgresServices starts a PostgreSQL container, applies the migrations and the seed,
// and wires the services over it.
func newPostgresServices(t *testing.T) *app.Services {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("stockledger_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "failed to start PostgreSQL container")
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	m, err := postgres.NewMigrator(dsn, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	require.NoError(t, m.Close())

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dsn))
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	queries, err := seed.BatchQueries()
	require.NoError(t, err)
	txm := postgres.NewTxManager(pool, 5*time.Second)
	require.NoError(t, txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return postgres.NewBatchExecutor(txm).ExecuteBatch(ctx, queries)
	}))

	backend, err := app.PostgresBackend(pool, 5*time.Second)
	require.NoError(t, err)
	return app.NewServices(backend, app.Options{JWTSecret: "integration-secret", Location: time.UTC})
}

func TestPostgres_MovementLifecycle(t *testing.T) {
	svc := newPostgresServices(t)
	ctx := context.Background()
	day := time.Date(2024, 4, 10, 9, 0, 0, 0, time.UTC)

	codes, err := svc.Recorder.NextCodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, "N001", codes.Import)

	imp, err := svc.Recorder.RecordImport(ctx, nv1, movements.ImportCommand{
		WarehouseID: "K1", ProductID: "SP001", Quantity: 50,
		UnitCost: types.MustMoney("8"), Timestamp: day,
	})
	require.NoError(t, err)
	assert.Equal(t, "N001", imp.DocID)
	assert.Equal(t, int64(50), imp.Quantity)

	_, err = svc.Recorder.RecordExport(ctx, nv1, movements.ExportCommand{
		WarehouseID: "K1", ProductID: "SP001", Quantity: 60,
		UnitPrice: types.MustMoney("25"), Timestamp: day,
	})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeInsufficientStock))

	exp, err := svc.Recorder.RecordExport(ctx, nv1, movements.ExportCommand{
		WarehouseID: "K1", ProductID: "SP001", Quantity: 20,
		UnitPrice: types.MustMoney("25"), Timestamp: day,
	})
	require.NoError(t, err)
	assert.Equal(t, "X001", exp.DocID)
	assert.Equal(t, int64(30), exp.Quantity)

	tr, err := svc.Recorder.RecordTransfer(ctx, admin, movements.TransferCommand{
		SourceWarehouseID:      "K1",
		DestinationWarehouseID: "K2",
		Timestamp:              day,
		Lines:                  []movements.LineCommand{{ProductID: "SP001", Quantity: 10}},
	})
	require.NoError(t, err)
	assert.Equal(t, "DC001", tr.ID)

	balances, err := svc.Stock.GetBalances(ctx, admin, "K2", "")
	require.NoError(t, err)
	assert.Equal(t, int64(10), balances["SP001"])

	drifts, err := svc.Stock.Reconcile(ctx, admin, "")
	require.NoError(t, err)
	assert.Empty(t, drifts)

	report, err := svc.Reports.SalesReport(ctx, admin, reports.SalesRequest{From: "2024-04-01", To: "2024-04-30"})
	require.NoError(t, err)
	assert.Equal(t, "500.00", report.Totals.Revenue.StringFixed(2))
	assert.Equal(t, "160.00", report.Totals.COGS.StringFixed(2))
	assert.Equal(t, "340.00", report.Totals.Profit.StringFixed(2))

	exports, err := svc.Recorder.ListExports(ctx, nv1, movements.ExportFilter{})
	require.NoError(t, err)
	require.Len(t, exports, 1)
	require.NotNil(t, exports[0].EmployeeID)
	assert.Equal(t, "NV001", *exports[0].EmployeeID)
}

func TestPostgres_ConcurrentExportsNeverOversell(t *testing.T) {
	svc := newPostgresServices(t)
	ctx := context.Background()

	_, err := svc.Recorder.RecordImport(ctx, admin, movements.ImportCommand{
		WarehouseID: "K3", ProductID: "SP002", Quantity: 5, UnitCost: types.MustMoney("1"),
	})
	require.NoError(t, err)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 10; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Recorder.RecordExport(ctx, admin, movements.ExportCommand{
				DocID:       "XC" + string(rune('A'+i)),
				WarehouseID: "K3", ProductID: "SP002", Quantity: 1, UnitPrice: types.MustMoney("2"),
			})
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, ok)
	balances, err := svc.Stock.GetBalances(ctx, admin, "K3", "SP002")
	require.NoError(t, err)
	assert.Equal(t, int64(0), balances["SP002"])
}

func TestPostgres_DecrementWithinBalance(t *testing.T) {
	svc := newPostgresServices(t)
	ctx := context.Background()
	key := stock.Key{WarehouseID: "K1", ProductID: "SP003"}

	_, err := svc.Recorder.RecordImport(ctx, admin, movements.ImportCommand{
		WarehouseID: "K1", ProductID: "SP003", Quantity: 5, UnitCost: types.MustMoney("4"),
	})
	require.NoError(t, err)

	level, err := svc.Stock.ApplyDelta(ctx, key, -3, false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), level.Quantity)

	level, err = svc.Stock.ApplyDelta(ctx, key, -2, true)
	require.NoError(t, err)
	assert.Equal(t, int64(0), level.Quantity)
}

func TestPostgres_CheckConstraintRejectsNegativeLevel(t *testing.T) {
	svc := newPostgresServices(t)
	ctx := context.Background()
	key := stock.Key{WarehouseID: "K1", ProductID: "SP003"}

	_, err := svc.Stock.ApplyDelta(ctx, key, -1, false)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeOutOfStock), "got %v", err)

	_, err = svc.Stock.ApplyDelta(ctx, key, 2, false)
	require.NoError(t, err)

	_, err = svc.Stock.ApplyDelta(ctx, key, -3, false)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeOutOfStock), "got %v", err)

	balances, err := svc.Stock.GetBalances(ctx, admin, "K1", "SP003")
	require.NoError(t, err)
	assert.Equal(t, int64(2), balances["SP003"])
}

func TestPostgres_Login(t *testing.T) {
	svc := newPostgresServices(t)

	token, user, err := svc.Auth.Login(context.Background(), auth.Credentials{Username: "nv2", Password: "123456"})
	require.NoError(t, err)
	assert.NotEmpty(t, token.AccessToken)
	require.NotNil(t, user.AssignedWarehouseID)
	assert.Equal(t, "K2", *user.AssignedWarehouseID)
}
