// Package register_repo provides the PostgreSQL stock ledger store.
package register_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockledger/internal/core/apperror"
	"stockledger/internal/domain/registers/stock"
	"stockledger/internal/infrastructure/storage/postgres"
)

const stockLevelsTable = "stock_levels"

var levelColumns = postgres.ExtractDBColumns[stock.Level]()

// historyUnion yields one signed quantity per ledger row and transfer side.
const historyUnion = `(
	SELECT warehouse_id, product_id, quantity AS qty FROM import_transactions
	UNION ALL
	SELECT warehouse_id, product_id, -quantity FROM export_transactions
	UNION ALL
	SELECT t.destination_warehouse_id, l.product_id, l.quantity
	FROM transfer_lines l JOIN transfers t ON t.id = l.transfer_id
	UNION ALL
	SELECT t.source_warehouse_id, l.product_id, -l.quantity
	FROM transfer_lines l JOIN transfers t ON t.id = l.transfer_id
) h`

// StockRepo implements stock.Repository.
type StockRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ stock.Repository = (*StockRepo)(nil)

// NewStockRepo creates a new stock ledger repository.
func NewStockRepo(txManager *postgres.TxManager) *StockRepo {
	return &StockRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetBalanceForUpdate locks the level row until the unit of work ends.
func (r *StockRepo) GetBalanceForUpdate(ctx context.Context, key stock.Key) (stock.Level, bool, error) {
	sql, args, err := r.forUpdateQuery(key).ToSql()
	if err != nil {
		return stock.Level{}, false, fmt.Errorf("build query: %w", err)
	}

	var level stock.Level
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &level, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return stock.Level{WarehouseID: key.WarehouseID, ProductID: key.ProductID}, false, nil
		}
		return stock.Level{}, false, fmt.Errorf("get balance for update: %w", err)
	}
	return level, true, nil
}

// ApplyDelta creates the level at 0 when missing, then adds delta to it.
// The CHECK constraint sees only the resulting quantity and rejects a negative one.
func (r *StockRepo) ApplyDelta(ctx context.Context, key stock.Key, delta, threshold int64) (stock.Level, error) {
	q := r.txManager.GetQuerier(ctx)

	sql, args, err := r.ensureLevelQuery(key, threshold).ToSql()
	if err != nil {
		return stock.Level{}, fmt.Errorf("build query: %w", err)
	}
	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return stock.Level{}, r.mapDeltaError(err, key, delta)
	}

	sql, args, err = r.applyDeltaQuery(key, delta).ToSql()
	if err != nil {
		return stock.Level{}, fmt.Errorf("build query: %w", err)
	}
	var level stock.Level
	if err := pgxscan.Get(ctx, q, &level, sql, args...); err != nil {
		return stock.Level{}, r.mapDeltaError(err, key, delta)
	}
	return level, nil
}

func (r *StockRepo) mapDeltaError(err error, key stock.Key, delta int64) error {
	mapped := postgres.MapError(err, "stock_level", key.WarehouseID+"/"+key.ProductID)
	if apperror.Is(mapped, apperror.CodeOutOfStock) {
		return apperror.NewOutOfStock(key.WarehouseID, key.ProductID, delta).
			WithDetail("delta", delta).WithCause(err)
	}
	if apperror.IsAppError(mapped) {
		return mapped
	}
	return fmt.Errorf("apply delta: %w", err)
}

// List returns levels ordered by warehouse, product.
func (r *StockRepo) List(ctx context.Context, filter stock.Filter) ([]stock.Level, error) {
	sql, args, err := r.listQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var levels []stock.Level
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &levels, sql, args...); err != nil {
		return nil, fmt.Errorf("list levels: %w", err)
	}
	return levels, nil
}

// Recompute sums signed history per (warehouse, product).
func (r *StockRepo) Recompute(ctx context.Context, filter stock.Filter) ([]stock.Balance, error) {
	sql, args, err := r.recomputeQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var balances []stock.Balance
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &balances, sql, args...); err != nil {
		return nil, fmt.Errorf("recompute balances: %w", err)
	}
	return balances, nil
}

func (r *StockRepo) forUpdateQuery(key stock.Key) squirrel.SelectBuilder {
	return r.builder.Select(levelColumns...).
		From(stockLevelsTable).
		Where(squirrel.Eq{"warehouse_id": key.WarehouseID, "product_id": key.ProductID}).
		Suffix("FOR UPDATE")
}

func (r *StockRepo) ensureLevelQuery(key stock.Key, threshold int64) squirrel.InsertBuilder {
	return r.builder.Insert(stockLevelsTable).
		Columns("warehouse_id", "product_id", "quantity", "threshold", "updated_at").
		Values(key.WarehouseID, key.ProductID, 0, threshold, squirrel.Expr("now()")).
		Suffix("ON CONFLICT (warehouse_id, product_id) DO NOTHING")
}

func (r *StockRepo) applyDeltaQuery(key stock.Key, delta int64) squirrel.UpdateBuilder {
	return r.builder.Update(stockLevelsTable).
		Set("quantity", squirrel.Expr("quantity + ?", delta)).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"warehouse_id": key.WarehouseID, "product_id": key.ProductID}).
		Suffix("RETURNING " + strings.Join(levelColumns, ", "))
}

func (r *StockRepo) listQuery(filter stock.Filter) squirrel.SelectBuilder {
	q := r.builder.Select(levelColumns...).From(stockLevelsTable)
	if filter.WarehouseID != "" {
		q = q.Where(squirrel.Eq{"warehouse_id": filter.WarehouseID})
	}
	if filter.ProductID != "" {
		q = q.Where(squirrel.Eq{"product_id": filter.ProductID})
	}
	if filter.LowOnly {
		q = q.Where("quantity <= threshold")
	}
	return q.OrderBy("warehouse_id", "product_id")
}

func (r *StockRepo) recomputeQuery(filter stock.Filter) squirrel.SelectBuilder {
	q := r.builder.Select("warehouse_id", "product_id", "SUM(qty)::bigint AS quantity").From(historyUnion)
	if filter.WarehouseID != "" {
		q = q.Where(squirrel.Eq{"warehouse_id": filter.WarehouseID})
	}
	if filter.ProductID != "" {
		q = q.Where(squirrel.Eq{"product_id": filter.ProductID})
	}
	return q.GroupBy("warehouse_id", "product_id").OrderBy("warehouse_id", "product_id")
}
