package catalog_repo

import (
	"context"

	"stockledger/internal/domain/catalogs/warehouse"
	"stockledger/internal/infrastructure/storage/postgres"
)

const warehouseTable = "warehouses"

// WarehouseRepo implements warehouse.Repository.
type WarehouseRepo struct {
	*BaseCatalogRepo[warehouse.Warehouse]
}

var _ warehouse.Repository = (*WarehouseRepo)(nil)

// NewWarehouseRepo creates a new warehouse repository.
func NewWarehouseRepo(txManager *postgres.TxManager) *WarehouseRepo {
	return &WarehouseRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[warehouse.Warehouse](txManager, warehouseTable, "warehouse"),
	}
}

// List returns every warehouse ordered by id.
func (r *WarehouseRepo) List(ctx context.Context) ([]warehouse.Warehouse, error) {
	return r.Select(ctx, r.baseSelect().OrderBy("id"))
}
