// Package warehouse provides the warehouse catalog.
package warehouse

import (
	"context"
)

// Warehouse is a storage location that holds stock levels.
type Warehouse struct {
	ID         string  `db:"id" json:"id"`
	Name       string  `db:"name" json:"name"`
	LocationID *string `db:"location_id" json:"locationId,omitempty"`
}

// Repository defines the interface for Warehouse persistence.
type Repository interface {
	List(ctx context.Context) ([]Warehouse, error)
	GetByID(ctx context.Context, id string) (*Warehouse, error)
}
