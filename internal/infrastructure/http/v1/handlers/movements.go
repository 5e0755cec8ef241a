package handlers

import (
	"github.com/gin-gonic/gin"

	"stockledger/internal/domain/movements"
	"stockledger/internal/infrastructure/http/v1/dto"
)

// MovementsHandler handles imports, exports and transfers.
type MovementsHandler struct {
	*BaseHandler
	recorder *movements.Recorder
}

// NewMovementsHandler creates a new movements handler.
func NewMovementsHandler(base *BaseHandler, recorder *movements.Recorder) *MovementsHandler {
	return &MovementsHandler{BaseHandler: base, recorder: recorder}
}

// NextCodes handles GET /movements/next-codes
func (h *MovementsHandler) NextCodes(c *gin.Context) {
	codes, err := h.recorder.NextCodes(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, codes)
}

// CreateImport handles POST /movements/imports
func (h *MovementsHandler) CreateImport(c *gin.Context) {
	caller, ok := h.Caller(c)
	if !ok {
		return
	}
	var req dto.CreateImportRequest
	if !h.BindJSON(c, &req) {
		return
	}

	res, err := h.recorder.RecordImport(c.Request.Context(), caller, req.ToCommand())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromRecorded(res))
}

// ListImports handles GET /movements/imports
func (h *MovementsHandler) ListImports(c *gin.Context) {
	caller, ok := h.Caller(c)
	if !ok {
		return
	}
	var req dto.ImportHistoryRequest
	if !h.BindQuery(c, &req) {
		return
	}

	rows, err := h.recorder.ListImports(c.Request.Context(), caller, req.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewList(rows))
}

// CreateExport handles POST /movements/exports
func (h *MovementsHandler) CreateExport(c *gin.Context) {
	caller, ok := h.Caller(c)
	if !ok {
		return
	}
	var req dto.CreateExportRequest
	if !h.BindJSON(c, &req) {
		return
	}

	res, err := h.recorder.RecordExport(c.Request.Context(), caller, req.ToCommand())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromRecorded(res))
}

// ListExports handles GET /movements/exports
func (h *MovementsHandler) ListExports(c *gin.Context) {
	caller, ok := h.Caller(c)
	if !ok {
		return
	}
	var req dto.ExportHistoryRequest
	if !h.BindQuery(c, &req) {
		return
	}

	rows, err := h.recorder.ListExports(c.Request.Context(), caller, req.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewList(rows))
}

// CreateTransfer handles POST /movements/transfers
func (h *MovementsHandler) CreateTransfer(c *gin.Context) {
	caller, ok := h.Caller(c)
	if !ok {
		return
	}
	var req dto.CreateTransferRequest
	if !h.BindJSON(c, &req) {
		return
	}

	header, err := h.recorder.RecordTransfer(c.Request.Context(), caller, req.ToCommand())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, header)
}

// RecentTransfers handles GET /movements/transfers
func (h *MovementsHandler) RecentTransfers(c *gin.Context) {
	caller, ok := h.Caller(c)
	if !ok {
		return
	}

	rows, err := h.recorder.RecentTransfers(c.Request.Context(), caller, h.ParseIntQuery(c, "limit", movements.DefaultRecentTransfers))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewList(rows))
}

// RegisterRoutes registers movement routes.
func (h *MovementsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/next-codes", h.NextCodes)
	rg.POST("/imports", h.CreateImport)
	rg.GET("/imports", h.ListImports)
	rg.POST("/exports", h.CreateExport)
	rg.GET("/exports", h.ListExports)
	rg.POST("/transfers", h.CreateTransfer)
	rg.GET("/transfers", h.RecentTransfers)
}
