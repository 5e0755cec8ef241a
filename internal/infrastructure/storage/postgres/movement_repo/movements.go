// Package movement_repo provides the PostgreSQL ledger of imports, exports and transfers.
package movement_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockledger/internal/domain/movements"
	"stockledger/internal/infrastructure/storage/postgres"
)

const (
	importsTable       = "import_transactions"
	exportsTable       = "export_transactions"
	transfersTable     = "transfers"
	transferLinesTable = "transfer_lines"
)

var (
	importColumns       = postgres.ExtractDBColumns[movements.Import]()
	exportColumns       = postgres.ExtractDBColumns[movements.Export]()
	transferColumns     = postgres.ExtractDBColumns[movements.TransferHeader]()
	transferLineColumns = postgres.ExtractDBColumns[movements.TransferLine]()
)

// MovementRepo implements movements.Repository.
type MovementRepo struct {
	txManager *postgres.TxManager
	batch     *postgres.BatchInserter
	builder   squirrel.StatementBuilderType
}

var _ movements.Repository = (*MovementRepo)(nil)

// NewMovementRepo creates a new movement repository.
func NewMovementRepo(txManager *postgres.TxManager) *MovementRepo {
	return &MovementRepo{
		txManager: txManager,
		batch:     postgres.NewBatchInserter(txManager),
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// InsertImport appends an import row.
func (r *MovementRepo) InsertImport(ctx context.Context, row *movements.Import) error {
	return r.insert(ctx, importsTable, "import", row.ID, postgres.StructToMap(row))
}

// InsertExport appends an export row.
func (r *MovementRepo) InsertExport(ctx context.Context, row *movements.Export) error {
	return r.insert(ctx, exportsTable, "export", row.ID, postgres.StructToMap(row))
}

// InsertTransfer writes the header, then copies its lines. Requires a unit of work.
func (r *MovementRepo) InsertTransfer(ctx context.Context, header *movements.TransferHeader) error {
	if err := r.insert(ctx, transfersTable, "transfer", header.ID, postgres.StructToMap(header)); err != nil {
		return err
	}

	rows := make([][]any, 0, len(header.Lines))
	for _, l := range header.Lines {
		rows = append(rows, []any{header.ID, l.ProductID, l.Quantity})
	}
	if _, err := r.batch.CopyFromSlice(ctx, transferLinesTable, transferLineColumns, rows); err != nil {
		return postgres.MapError(fmt.Errorf("copy transfer lines: %w", err), "transfer", header.ID)
	}
	return nil
}

// ListImports returns import rows newest first.
func (r *MovementRepo) ListImports(ctx context.Context, filter movements.ImportFilter) ([]movements.Import, error) {
	sql, args, err := r.importsQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []movements.Import
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}
	return rows, nil
}

// ListExports returns export rows newest first.
func (r *MovementRepo) ListExports(ctx context.Context, filter movements.ExportFilter) ([]movements.Export, error) {
	sql, args, err := r.exportsQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []movements.Export
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	return rows, nil
}

// RecentTransfers loads the newest headers, then their lines in one query.
func (r *MovementRepo) RecentTransfers(ctx context.Context, limit int) ([]movements.TransferHeader, error) {
	q := r.builder.Select(transferColumns...).
		From(transfersTable).
		OrderBy("occurred_at DESC", "id DESC").
		Limit(uint64(limit))

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	var headers []movements.TransferHeader
	if err := pgxscan.Select(ctx, querier, &headers, sql, args...); err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	if len(headers) == 0 {
		return headers, nil
	}

	ids := make([]string, len(headers))
	for i, h := range headers {
		ids[i] = h.ID
	}
	sql, args, err = r.builder.Select(transferLineColumns...).
		From(transferLinesTable).
		Where(squirrel.Eq{"transfer_id": ids}).
		OrderBy("transfer_id", "product_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lines query: %w", err)
	}

	var lines []movements.TransferLine
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("list transfer lines: %w", err)
	}

	byTransfer := make(map[string][]movements.TransferLine, len(headers))
	for _, l := range lines {
		byTransfer[l.TransferID] = append(byTransfer[l.TransferID], l)
	}
	for i := range headers {
		headers[i].Lines = byTransfer[headers[i].ID]
		if headers[i].Lines == nil {
			headers[i].Lines = []movements.TransferLine{}
		}
	}
	return headers, nil
}

func (r *MovementRepo) insert(ctx context.Context, table, entity, id string, data map[string]any) error {
	sql, args, err := r.builder.Insert(table).SetMap(data).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(fmt.Errorf("insert %s: %w", table, err), entity, id)
	}
	return nil
}

func (r *MovementRepo) importsQuery(filter movements.ImportFilter) squirrel.SelectBuilder {
	q := r.builder.Select(importColumns...).From(importsTable)
	if filter.WarehouseID != "" {
		q = q.Where(squirrel.Eq{"warehouse_id": filter.WarehouseID})
	}
	if filter.SupplierID != "" {
		q = q.Where(squirrel.Eq{"supplier_id": filter.SupplierID})
	}
	if filter.EmployeeID != "" {
		q = q.Where(squirrel.Eq{"employee_id": filter.EmployeeID})
	}
	return q.OrderBy("occurred_at DESC", "id DESC").Limit(uint64(filter.Limit))
}

func (r *MovementRepo) exportsQuery(filter movements.ExportFilter) squirrel.SelectBuilder {
	q := r.builder.Select(exportColumns...).From(exportsTable)
	if filter.WarehouseID != "" {
		q = q.Where(squirrel.Eq{"warehouse_id": filter.WarehouseID})
	}
	if filter.VehicleID != "" {
		q = q.Where(squirrel.Eq{"vehicle_id": filter.VehicleID})
	}
	if filter.CustomerID != "" {
		q = q.Where(squirrel.Eq{"customer_id": filter.CustomerID})
	}
	if filter.EmployeeID != "" {
		q = q.Where(squirrel.Eq{"employee_id": filter.EmployeeID})
	}
	if filter.OwnOrUnstamped != "" {
		q = q.Where(squirrel.Or{
			squirrel.Eq{"employee_id": filter.OwnOrUnstamped},
			squirrel.Eq{"employee_id": nil},
		})
	}
	return q.OrderBy("occurred_at DESC", "id DESC").Limit(uint64(filter.Limit))
}
