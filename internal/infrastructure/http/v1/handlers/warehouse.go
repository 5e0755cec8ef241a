package handlers

import (
	"github.com/gin-gonic/gin"

	"stockledger/internal/domain/catalogs/warehouse"
	"stockledger/internal/infrastructure/http/v1/dto"
)

// WarehouseHandler lists warehouses.
type WarehouseHandler struct {
	*BaseHandler
	service *warehouse.Service
}

// NewWarehouseHandler creates a new warehouse handler.
func NewWarehouseHandler(base *BaseHandler, service *warehouse.Service) *WarehouseHandler {
	return &WarehouseHandler{BaseHandler: base, service: service}
}

// List handles GET /catalog/warehouses
func (h *WarehouseHandler) List(c *gin.Context) {
	caller, ok := h.Caller(c)
	if !ok {
		return
	}
	items, err := h.service.List(c.Request.Context(), caller)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewList(items))
}
