package handlers

import (
	"github.com/gin-gonic/gin"

	"stockledger/internal/domain/reports"
	"stockledger/internal/infrastructure/http/v1/dto"
)

// ReportsHandler handles HTTP requests for reports.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Sales handles GET /reports/sales
func (h *ReportsHandler) Sales(c *gin.Context) {
	caller, ok := h.Caller(c)
	if !ok {
		return
	}
	var req dto.SalesReportRequest
	if !h.BindQuery(c, &req) {
		return
	}

	report, err := h.service.SalesReport(c.Request.Context(), caller, req.ToRequest())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}

// Dashboard handles GET /reports/dashboard
func (h *ReportsHandler) Dashboard(c *gin.Context) {
	caller, ok := h.Caller(c)
	if !ok {
		return
	}
	var req dto.WarehouseRequest
	if !h.BindQuery(c, &req) {
		return
	}

	d, err := h.service.Dashboard(c.Request.Context(), caller, req.WarehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, d)
}

// RegisterRoutes registers report routes.
func (h *ReportsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/sales", h.Sales)
	rg.GET("/dashboard", h.Dashboard)
}
