package dto

import (
	"time"

	"stockledger/internal/core/types"
	"stockledger/internal/domain/movements"
)

// --- Request DTOs ---

// CreateImportRequest records received goods.
type CreateImportRequest struct {
	ID          string      `json:"id,omitempty"`
	WarehouseID string      `json:"warehouseId" binding:"required"`
	ProductID   string      `json:"productId" binding:"required"`
	Quantity    int64       `json:"quantity" binding:"required,gt=0"`
	UnitCost    types.Money `json:"unitCost"`
	Timestamp   *time.Time  `json:"timestamp,omitempty"`
	EmployeeID  string      `json:"employeeId,omitempty"`
	SupplierID  string      `json:"supplierId,omitempty"`
}

// ToCommand converts request to the recorder command.
func (r *CreateImportRequest) ToCommand() movements.ImportCommand {
	return movements.ImportCommand{
		DocID:       r.ID,
		WarehouseID: r.WarehouseID,
		ProductID:   r.ProductID,
		Quantity:    r.Quantity,
		UnitCost:    r.UnitCost,
		Timestamp:   deref(r.Timestamp),
		EmployeeID:  r.EmployeeID,
		SupplierID:  r.SupplierID,
	}
}

// CreateExportRequest records shipped goods.
type CreateExportRequest struct {
	ID          string      `json:"id,omitempty"`
	WarehouseID string      `json:"warehouseId" binding:"required"`
	ProductID   string      `json:"productId" binding:"required"`
	Quantity    int64       `json:"quantity" binding:"required,gt=0"`
	UnitPrice   types.Money `json:"unitPrice"`
	Timestamp   *time.Time  `json:"timestamp,omitempty"`
	EmployeeID  string      `json:"employeeId,omitempty"`
	VehicleID   string      `json:"vehicleId,omitempty"`
	CustomerID  string      `json:"customerId,omitempty"`
}

// ToCommand converts request to the recorder command.
func (r *CreateExportRequest) ToCommand() movements.ExportCommand {
	return movements.ExportCommand{
		DocID:       r.ID,
		WarehouseID: r.WarehouseID,
		ProductID:   r.ProductID,
		Quantity:    r.Quantity,
		UnitPrice:   r.UnitPrice,
		Timestamp:   deref(r.Timestamp),
		EmployeeID:  r.EmployeeID,
		VehicleID:   r.VehicleID,
		CustomerID:  r.CustomerID,
	}
}

// TransferLineRequest is one line of a transfer.
type TransferLineRequest struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

// CreateTransferRequest moves goods between warehouses.
// Line rules are checked by the recorder so every violation reports INVALID_TRANSFER.
type CreateTransferRequest struct {
	ID                     string                `json:"id,omitempty"`
	SourceWarehouseID      string                `json:"sourceWarehouseId"`
	DestinationWarehouseID string                `json:"destinationWarehouseId"`
	Timestamp              *time.Time            `json:"timestamp,omitempty"`
	Note                   string                `json:"note,omitempty"`
	Lines                  []TransferLineRequest `json:"lines"`
}

// ToCommand converts request to the recorder command.
func (r *CreateTransferRequest) ToCommand() movements.TransferCommand {
	cmd := movements.TransferCommand{
		DocID:                  r.ID,
		SourceWarehouseID:      r.SourceWarehouseID,
		DestinationWarehouseID: r.DestinationWarehouseID,
		Timestamp:              deref(r.Timestamp),
		Note:                   r.Note,
		Lines:                  make([]movements.LineCommand, 0, len(r.Lines)),
	}
	for _, l := range r.Lines {
		cmd.Lines = append(cmd.Lines, movements.LineCommand{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return cmd
}

// ImportHistoryRequest holds import history query parameters.
type ImportHistoryRequest struct {
	WarehouseID string `form:"warehouseId"`
	SupplierID  string `form:"supplierId"`
	EmployeeID  string `form:"employeeId"`
	Limit       int    `form:"limit" binding:"omitempty,min=1"`
}

// ToFilter converts query parameters to the domain filter.
func (r *ImportHistoryRequest) ToFilter() movements.ImportFilter {
	return movements.ImportFilter{
		WarehouseID: r.WarehouseID,
		SupplierID:  r.SupplierID,
		EmployeeID:  r.EmployeeID,
		Limit:       r.Limit,
	}
}

// ExportHistoryRequest holds export history query parameters.
type ExportHistoryRequest struct {
	WarehouseID string `form:"warehouseId"`
	VehicleID   string `form:"vehicleId"`
	CustomerID  string `form:"customerId"`
	EmployeeID  string `form:"employeeId"`
	Limit       int    `form:"limit" binding:"omitempty,min=1"`
}

// ToFilter converts query parameters to the domain filter.
func (r *ExportHistoryRequest) ToFilter() movements.ExportFilter {
	return movements.ExportFilter{
		WarehouseID: r.WarehouseID,
		VehicleID:   r.VehicleID,
		CustomerID:  r.CustomerID,
		EmployeeID:  r.EmployeeID,
		Limit:       r.Limit,
	}
}

// --- Response DTOs ---

// MovementResponse is returned after an import or export: the document id and the new balance.
type MovementResponse struct {
	ID          string `json:"id"`
	WarehouseID string `json:"warehouseId"`
	ProductID   string `json:"productId"`
	Balance     int64  `json:"balance"`
}

// FromRecorded converts the recorder outcome.
func FromRecorded(r movements.Recorded) MovementResponse {
	return MovementResponse{ID: r.DocID, WarehouseID: r.WarehouseID, ProductID: r.ProductID, Balance: r.Quantity}
}

func deref(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
