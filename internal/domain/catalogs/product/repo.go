package product

import (
	"context"
)

// Repository defines the interface for Product persistence.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)

	// Create fails with DuplicateEntry when the id is taken.
	Create(ctx context.Context, p *Product) error

	// Update changes descriptive fields only.
	Update(ctx context.Context, p *Product) error

	// Delete fails with IntegrityViolation while ledger rows reference the product.
	Delete(ctx context.Context, id string) error
}
