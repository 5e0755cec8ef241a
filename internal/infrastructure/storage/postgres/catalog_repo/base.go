// Package catalog_repo provides PostgreSQL storage for the reference catalogs.
package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockledger/internal/core/apperror"
	"stockledger/internal/infrastructure/storage/postgres"
)

// BaseCatalogRepo provides CRUD over a catalog table keyed by a string code.
type BaseCatalogRepo[T any] struct {
	txManager  *postgres.TxManager
	tableName  string
	entityName string
	selectCols []string
}

// NewBaseCatalogRepo creates a new base catalog repository.
func NewBaseCatalogRepo[T any](txManager *postgres.TxManager, tableName, entityName string) *BaseCatalogRepo[T] {
	return &BaseCatalogRepo[T]{
		txManager:  txManager,
		tableName:  tableName,
		entityName: entityName,
		selectCols: postgres.ExtractDBColumns[T](),
	}
}

// Builder returns a new squirrel builder.
func (r *BaseCatalogRepo[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *BaseCatalogRepo[T]) baseSelect() squirrel.SelectBuilder {
	return r.Builder().Select(r.selectCols...).From(r.tableName)
}

// Create inserts a new row.
func (r *BaseCatalogRepo[T]) Create(ctx context.Context, entity *T) error {
	data := postgres.StructToMap(entity)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}

	sql, args, err := r.Builder().Insert(r.tableName).SetMap(data).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		id, _ := data["id"].(string)
		return postgres.MapError(fmt.Errorf("insert %s: %w", r.tableName, err), r.entityName, id)
	}
	return nil
}

// Update rewrites every column except id.
func (r *BaseCatalogRepo[T]) Update(ctx context.Context, entity *T) error {
	data := postgres.StructToMap(entity)
	entityID, ok := data["id"].(string)
	if !ok {
		return fmt.Errorf("entity has no 'id' field")
	}
	delete(data, "id")

	sql, args, err := r.Builder().Update(r.tableName).
		SetMap(data).
		Where(squirrel.Eq{"id": entityID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(fmt.Errorf("update %s: %w", r.tableName, err), r.entityName, entityID)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entityName, entityID)
	}
	return nil
}

// GetByID retrieves a row by id.
func (r *BaseCatalogRepo[T]) GetByID(ctx context.Context, entityID string) (*T, error) {
	sql, args, err := r.baseSelect().Where(squirrel.Eq{"id": entityID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	entity := new(T)
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), entity, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(r.entityName, entityID)
		}
		return nil, fmt.Errorf("get by id: %w", err)
	}
	return entity, nil
}

// Select runs q and scans every row.
func (r *BaseCatalogRepo[T]) Select(ctx context.Context, q squirrel.SelectBuilder) ([]T, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out []T
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.tableName, err)
	}
	return out, nil
}

// Delete physically removes a row. Rows still referenced fail with IntegrityViolation.
func (r *BaseCatalogRepo[T]) Delete(ctx context.Context, entityID string) error {
	sql, args, err := r.deleteQuery(entityID).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(fmt.Errorf("delete %s: %w", r.tableName, err), r.entityName, entityID)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entityName, entityID)
	}
	return nil
}

func (r *BaseCatalogRepo[T]) deleteQuery(entityID string) squirrel.DeleteBuilder {
	return r.Builder().Delete(r.tableName).Where(squirrel.Eq{"id": entityID})
}
