package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"stockledger/internal/domain/catalogs/product"
	"stockledger/internal/infrastructure/storage/postgres"
)

const productTable = "products"

// ProductRepo implements product.Repository.
type ProductRepo struct {
	*BaseCatalogRepo[product.Product]
}

var _ product.Repository = (*ProductRepo)(nil)

// NewProductRepo creates a new product repository.
func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[product.Product](txManager, productTable, "product"),
	}
}

// List returns products ordered by id.
func (r *ProductRepo) List(ctx context.Context, filter product.ListFilter) ([]product.Product, error) {
	return r.Select(ctx, r.listQuery(filter))
}

func (r *ProductRepo) listQuery(filter product.ListFilter) squirrel.SelectBuilder {
	q := r.baseSelect()
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"id": pattern},
			squirrel.ILike{"name": pattern},
		})
	}
	return q.OrderBy("id").Limit(uint64(filter.Limit))
}
