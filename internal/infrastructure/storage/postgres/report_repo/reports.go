// Package report_repo provides PostgreSQL aggregates over the movement ledger.
package report_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockledger/internal/domain/reports"
	"stockledger/internal/infrastructure/storage/postgres"
)

// latestCostCTE keeps one import per (warehouse, product): the newest, ties to the greatest id.
const latestCostCTE = `WITH latest_cost AS (
	SELECT DISTINCT ON (warehouse_id, product_id) warehouse_id, product_id, unit_cost
	FROM import_transactions
	ORDER BY warehouse_id, product_id, occurred_at DESC, id DESC
)`

const dashboardAllSQL = `
	SELECT
		(SELECT COUNT(*) FROM products) AS product_count,
		(SELECT COALESCE(SUM(quantity), 0)::bigint FROM stock_levels) AS total_stock,
		(SELECT COUNT(DISTINCT id) FROM export_transactions) AS export_count,
		(SELECT MAX(t) FROM (
			SELECT MAX(occurred_at) AS t FROM import_transactions
			UNION ALL SELECT MAX(occurred_at) FROM export_transactions
			UNION ALL SELECT MAX(occurred_at) FROM transfers
		) m) AS last_movement_at`

const dashboardWarehouseSQL = `
	SELECT
		(SELECT COUNT(*) FROM stock_levels WHERE warehouse_id = $1 AND quantity > 0) AS product_count,
		(SELECT COALESCE(SUM(quantity), 0)::bigint FROM stock_levels WHERE warehouse_id = $1) AS total_stock,
		(SELECT COUNT(DISTINCT id) FROM export_transactions WHERE warehouse_id = $1) AS export_count,
		(SELECT MAX(t) FROM (
			SELECT MAX(occurred_at) AS t FROM import_transactions WHERE warehouse_id = $1
			UNION ALL SELECT MAX(occurred_at) FROM export_transactions WHERE warehouse_id = $1
			UNION ALL SELECT MAX(occurred_at) FROM transfers
				WHERE source_warehouse_id = $1 OR destination_warehouse_id = $1
		) m) AS last_movement_at`

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ reports.Repository = (*ReportRepo)(nil)

// NewReportRepo creates a new report repository.
func NewReportRepo(txManager *postgres.TxManager) *ReportRepo {
	return &ReportRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// DailyRevenue sums quantity * unit price per export day.
func (r *ReportRepo) DailyRevenue(ctx context.Context, q reports.Query) ([]reports.DailyAmount, error) {
	return r.daily(ctx, r.revenueQuery(q), "daily revenue")
}

// DailyCOGS sums quantity * latest import cost per export day.
func (r *ReportRepo) DailyCOGS(ctx context.Context, q reports.Query) ([]reports.DailyAmount, error) {
	return r.daily(ctx, r.cogsQuery(q), "daily cogs")
}

// TopByQuantity ranks products by shipped quantity.
func (r *ReportRepo) TopByQuantity(ctx context.Context, q reports.Query, limit int) ([]reports.TopProduct, error) {
	return r.top(ctx, r.topQuery(q, "quantity DESC", limit))
}

// TopByRevenue ranks products by revenue.
func (r *ReportRepo) TopByRevenue(ctx context.Context, q reports.Query, limit int) ([]reports.TopProduct, error) {
	return r.top(ctx, r.topQuery(q, "revenue DESC", limit))
}

// Dashboard reads the landing-page counters. Empty warehouseID covers every warehouse.
func (r *ReportRepo) Dashboard(ctx context.Context, warehouseID string) (reports.Dashboard, error) {
	sql, args := dashboardAllSQL, []any(nil)
	if warehouseID != "" {
		sql, args = dashboardWarehouseSQL, []any{warehouseID}
	}

	var d reports.Dashboard
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &d, sql, args...); err != nil {
		return reports.Dashboard{}, fmt.Errorf("dashboard: %w", err)
	}
	return d, nil
}

func (r *ReportRepo) daily(ctx context.Context, q squirrel.SelectBuilder, what string) ([]reports.DailyAmount, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []reports.DailyAmount
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	return rows, nil
}

func (r *ReportRepo) top(ctx context.Context, q squirrel.SelectBuilder) ([]reports.TopProduct, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []reports.TopProduct
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	return rows, nil
}

func (r *ReportRepo) revenueQuery(q reports.Query) squirrel.SelectBuilder {
	return r.exportScope(q,
		r.builder.Select().
			Column(dayColumn(), timezone(q)).
			Column("SUM(e.quantity * e.unit_price) AS amount").
			From("export_transactions e")).
		GroupBy("day").
		OrderBy("day")
}

func (r *ReportRepo) cogsQuery(q reports.Query) squirrel.SelectBuilder {
	return r.exportScope(q,
		r.builder.Select().
			Prefix(latestCostCTE).
			Column(dayColumn(), timezone(q)).
			Column("SUM(e.quantity * COALESCE(c.unit_cost, 0)) AS amount").
			From("export_transactions e").
			LeftJoin("latest_cost c ON c.warehouse_id = e.warehouse_id AND c.product_id = e.product_id")).
		GroupBy("day").
		OrderBy("day")
}

func (r *ReportRepo) topQuery(q reports.Query, order string, limit int) squirrel.SelectBuilder {
	return r.exportScope(q,
		r.builder.Select(
			"e.product_id",
			"COALESCE(p.name, e.product_id) AS product_name",
			"SUM(e.quantity)::bigint AS quantity",
			"SUM(e.quantity * e.unit_price) AS revenue",
		).
			From("export_transactions e").
			LeftJoin("products p ON p.id = e.product_id")).
		GroupBy("e.product_id", "p.name").
		OrderBy(order, "e.product_id").
		Limit(uint64(limit))
}

func (r *ReportRepo) exportScope(q reports.Query, b squirrel.SelectBuilder) squirrel.SelectBuilder {
	b = b.Where(squirrel.GtOrEq{"e.occurred_at": q.From}).
		Where(squirrel.LtOrEq{"e.occurred_at": q.To})
	if q.WarehouseID != "" {
		b = b.Where(squirrel.Eq{"e.warehouse_id": q.WarehouseID})
	}
	return b
}

func dayColumn() string {
	return "to_char((e.occurred_at AT TIME ZONE ?)::date, 'YYYY-MM-DD') AS day"
}

func timezone(q reports.Query) string {
	if q.Location == nil {
		return "UTC"
	}
	return q.Location.String()
}
