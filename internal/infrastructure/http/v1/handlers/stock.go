package handlers

import (
	"github.com/gin-gonic/gin"

	"stockledger/internal/domain/registers/stock"
	"stockledger/internal/infrastructure/http/v1/dto"
)

// StockHandler handles the stock ledger endpoints.
type StockHandler struct {
	*BaseHandler
	service *stock.Service
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, service *stock.Service) *StockHandler {
	return &StockHandler{BaseHandler: base, service: service}
}

// GetBalances handles GET /stock/balances
func (h *StockHandler) GetBalances(c *gin.Context) {
	caller, ok := h.Caller(c)
	if !ok {
		return
	}
	var req dto.BalancesRequest
	if !h.BindQuery(c, &req) {
		return
	}
	view, err := caller.ResolveView(req.WarehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	balances, err := h.service.GetBalances(c.Request.Context(), caller, view, req.ProductID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromBalances(view, balances))
}

// LowStock handles GET /stock/low
func (h *StockHandler) LowStock(c *gin.Context) {
	caller, ok := h.Caller(c)
	if !ok {
		return
	}
	var req dto.WarehouseRequest
	if !h.BindQuery(c, &req) {
		return
	}

	levels, err := h.service.LowStock(c.Request.Context(), caller, req.WarehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewList(levels))
}

// Reconcile handles GET /stock/reconcile
func (h *StockHandler) Reconcile(c *gin.Context) {
	caller, ok := h.Caller(c)
	if !ok {
		return
	}
	var req dto.WarehouseRequest
	if !h.BindQuery(c, &req) {
		return
	}

	drifts, err := h.service.Reconcile(c.Request.Context(), caller, req.WarehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewReconcileResponse(drifts, false))
}

// Repair handles POST /stock/reconcile/repair
func (h *StockHandler) Repair(c *gin.Context) {
	caller, ok := h.Caller(c)
	if !ok {
		return
	}
	var req dto.WarehouseRequest
	if !h.BindQuery(c, &req) {
		return
	}

	drifts, err := h.service.Repair(c.Request.Context(), caller, req.WarehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewReconcileResponse(drifts, true))
}

// RegisterRoutes registers stock routes.
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/balances", h.GetBalances)
	rg.GET("/low", h.LowStock)
	rg.GET("/reconcile", h.Reconcile)
	rg.POST("/reconcile/repair", h.Repair)
}
