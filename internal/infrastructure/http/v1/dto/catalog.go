package dto

import (
	"stockledger/internal/domain/catalogs/product"
)

// ProductListRequest holds product list query parameters.
type ProductListRequest struct {
	Search string `form:"search"`
	Limit  int    `form:"limit" binding:"omitempty,min=1"`
}

// ProductRequest creates or updates a product. ID is ignored on update.
type ProductRequest struct {
	ID       string  `json:"id,omitempty"`
	Name     string  `json:"name" binding:"required"`
	Material *string `json:"material,omitempty"`
	Color    *string `json:"color,omitempty"`
}

// ToEntity converts request to the catalog entity.
func (r *ProductRequest) ToEntity() *product.Product {
	return &product.Product{ID: r.ID, Name: r.Name, Material: r.Material, Color: r.Color}
}

// ProductCodeResponse is the suggested code of a new product.
type ProductCodeResponse struct {
	Code string `json:"code"`
}
