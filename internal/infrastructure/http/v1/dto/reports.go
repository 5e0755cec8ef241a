package dto

import (
	"stockledger/internal/domain/reports"
)

// SalesReportRequest holds sales report query parameters.
// Bounds are YYYY-MM-DD or RFC 3339; empty bounds take the last 30 days.
type SalesReportRequest struct {
	WarehouseID string `form:"warehouseId"`
	From        string `form:"from"`
	To          string `form:"to"`
}

// ToRequest converts query parameters to the domain request.
func (r *SalesReportRequest) ToRequest() reports.SalesRequest {
	return reports.SalesRequest{WarehouseID: r.WarehouseID, From: r.From, To: r.To}
}
