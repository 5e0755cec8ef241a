package handlers

import (
	"github.com/gin-gonic/gin"

	"stockledger/internal/domain/catalogs/product"
	"stockledger/internal/infrastructure/http/v1/dto"
)

// ProductHandler handles the product catalog.
type ProductHandler struct {
	*BaseHandler
	service *product.Service
}

// NewProductHandler creates a new product handler.
func NewProductHandler(base *BaseHandler, service *product.Service) *ProductHandler {
	return &ProductHandler{BaseHandler: base, service: service}
}

// List handles GET /catalog/products
func (h *ProductHandler) List(c *gin.Context) {
	var req dto.ProductListRequest
	if !h.BindQuery(c, &req) {
		return
	}
	items, err := h.service.List(c.Request.Context(), product.ListFilter{Search: req.Search, Limit: req.Limit})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewList(items))
}

// NextCode handles GET /catalog/products/next-code
func (h *ProductHandler) NextCode(c *gin.Context) {
	code, err := h.service.SuggestID(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ProductCodeResponse{Code: code})
}

// Get handles GET /catalog/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	p, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// Create handles POST /catalog/products
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.ProductRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p := req.ToEntity()
	if err := h.service.Create(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, p)
}

// Update handles PUT /catalog/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	var req dto.ProductRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p := req.ToEntity()
	p.ID = c.Param("id")
	if err := h.service.Update(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// Delete handles DELETE /catalog/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	caller, ok := h.Caller(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), caller, c.Param("id")); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// RegisterRoutes registers product routes.
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/next-code", h.NextCode)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}
