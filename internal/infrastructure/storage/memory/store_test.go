package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/apperror"
	corenumerator "stockledger/internal/core/numerator"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/movements"
	"stockledger/internal/domain/registers/stock"
	"stockledger/internal/domain/reports"
)

func seeded(t *testing.T) *Store {
	t.Helper()
	s := New()
	require.NoError(t, s.SeedReference(context.Background()))
	return s
}

func TestRunInTransaction_RollsBackOnError(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()
	key := stock.Key{WarehouseID: "K1", ProductID: "SP001"}

	boom := errors.New("boom")
	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		_, err := s.Stock().ApplyDelta(ctx, key, 5, stock.DefaultThreshold)
		require.NoError(t, err)
		require.NoError(t, s.Movements().InsertImport(ctx, &movements.Import{
			ID: "N001", ProductID: "SP001", WarehouseID: "K1", Quantity: 5, OccurredAt: time.Now(),
		}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, found, err := s.Stock().GetBalanceForUpdate(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)

	rows, err := s.Movements().ListImports(ctx, movements.ImportFilter{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRunInTransaction_Nested(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.RunInTransaction(ctx, func(ctx context.Context) error {
			_, err := s.Stock().ApplyDelta(ctx, stock.Key{WarehouseID: "K1", ProductID: "SP001"}, 3, 10)
			return err
		})
	})
	require.NoError(t, err)

	levels, err := s.Stock().List(ctx, stock.Filter{})
	require.NoError(t, err)
	require.Len(t, levels, 1)
	assert.Equal(t, int64(3), levels[0].Quantity)
	assert.Equal(t, int64(10), levels[0].Threshold)
}

func TestApplyDelta_RefusesNegative(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()
	key := stock.Key{WarehouseID: "K2", ProductID: "SP002"}

	_, err := s.Stock().ApplyDelta(ctx, key, 4, 10)
	require.NoError(t, err)

	_, err = s.Stock().ApplyDelta(ctx, key, -5, 10)
	assert.True(t, apperror.Is(err, apperror.CodeOutOfStock), "got %v", err)

	level, _, err := s.Stock().GetBalanceForUpdate(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(4), level.Quantity)
}

func TestApplyDelta_UnknownWarehouse(t *testing.T) {
	s := seeded(t)

	_, err := s.Stock().ApplyDelta(context.Background(), stock.Key{WarehouseID: "K9", ProductID: "SP001"}, 1, 10)
	assert.True(t, apperror.Is(err, apperror.CodeIntegrityViolation))
}

func TestInsertImport_DuplicateKey(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()
	row := &movements.Import{ID: "N001", ProductID: "SP001", WarehouseID: "K1", Quantity: 1, OccurredAt: time.Now()}

	require.NoError(t, s.Movements().InsertImport(ctx, row))
	err := s.Movements().InsertImport(ctx, row)
	assert.True(t, apperror.Is(err, apperror.CodeDuplicate))

	other := *row
	other.ProductID = "SP002"
	assert.NoError(t, s.Movements().InsertImport(ctx, &other), "same id on another product is a separate line")
}

func TestInsertExport_UnknownVehicle(t *testing.T) {
	s := seeded(t)
	vehicle := "XE99"

	err := s.Movements().InsertExport(context.Background(), &movements.Export{
		ID: "X001", ProductID: "SP001", WarehouseID: "K1", Quantity: 1, VehicleID: &vehicle,
	})
	assert.True(t, apperror.Is(err, apperror.CodeIntegrityViolation))
}

func TestProductDelete_Referenced(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	_, err := s.Stock().ApplyDelta(ctx, stock.Key{WarehouseID: "K1", ProductID: "SP001"}, 1, 10)
	require.NoError(t, err)

	err = s.Products().Delete(ctx, "SP001")
	assert.True(t, apperror.Is(err, apperror.CodeIntegrityViolation))

	require.NoError(t, s.Products().Delete(ctx, "SP005"))
	_, err = s.Products().GetByID(ctx, "SP005")
	assert.True(t, apperror.IsNotFound(err))
}

func TestCodeFinder(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	code, err := s.Codes().LastCode(ctx, corenumerator.SeriesImport)
	require.NoError(t, err)
	assert.Equal(t, "", code)

	for _, id := range []string{"N999", "N1000", "N998"} {
		require.NoError(t, s.Movements().InsertImport(ctx, &movements.Import{
			ID: id, ProductID: "SP001", WarehouseID: "K1", Quantity: 1, OccurredAt: time.Now(),
		}))
	}
	code, err = s.Codes().LastCode(ctx, corenumerator.SeriesImport)
	require.NoError(t, err)
	assert.Equal(t, "N1000", code)

	code, err = s.Codes().LastCode(ctx, corenumerator.SeriesProduct)
	require.NoError(t, err)
	assert.Equal(t, "SP005", code)
}

func TestDailyCOGS_LatestImportTieGoesToGreatestID(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	for _, row := range []movements.Import{
		{ID: "N001", ProductID: "SP001", WarehouseID: "K1", Quantity: 10, UnitCost: types.MustMoney("5"), OccurredAt: at},
		{ID: "N003", ProductID: "SP001", WarehouseID: "K1", Quantity: 10, UnitCost: types.MustMoney("7"), OccurredAt: at},
		{ID: "N002", ProductID: "SP001", WarehouseID: "K1", Quantity: 10, UnitCost: types.MustMoney("6"), OccurredAt: at},
	} {
		require.NoError(t, s.Movements().InsertImport(ctx, &row))
	}
	require.NoError(t, s.Movements().InsertExport(ctx, &movements.Export{
		ID: "X001", ProductID: "SP001", WarehouseID: "K1", Quantity: 2,
		UnitPrice: types.MustMoney("20"), OccurredAt: at.Add(time.Hour),
	}))

	q := reports.Query{From: at.Add(-time.Hour), To: at.Add(24 * time.Hour), Location: time.UTC}
	cogs, err := s.Reports().DailyCOGS(ctx, q)
	require.NoError(t, err)
	require.Len(t, cogs, 1)
	assert.Equal(t, "2024-03-01", cogs[0].Day)
	assert.Equal(t, "14.00", cogs[0].Amount.StringFixed(2))
}

func TestDashboard(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	_, err := s.Stock().ApplyDelta(ctx, stock.Key{WarehouseID: "K1", ProductID: "SP001"}, 7, 10)
	require.NoError(t, err)
	_, err = s.Stock().ApplyDelta(ctx, stock.Key{WarehouseID: "K1", ProductID: "SP002"}, 0, 10)
	require.NoError(t, err)
	_, err = s.Stock().ApplyDelta(ctx, stock.Key{WarehouseID: "K2", ProductID: "SP001"}, 3, 10)
	require.NoError(t, err)

	all, err := s.Reports().Dashboard(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(5), all.ProductCount)
	assert.Equal(t, int64(10), all.TotalStock)
	assert.Nil(t, all.LastMovementAt)

	k1, err := s.Reports().Dashboard(ctx, "K1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), k1.ProductCount)
	assert.Equal(t, int64(7), k1.TotalStock)
}
