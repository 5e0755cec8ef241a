// Package movements records imports, exports and transfers: the append-only stock ledger.
package movements

import (
	"fmt"
	"strings"
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/types"
)

// Import is one received line. Natural key (ID, ProductID, WarehouseID).
type Import struct {
	ID          string      `db:"id" json:"id"`
	ProductID   string      `db:"product_id" json:"productId"`
	WarehouseID string      `db:"warehouse_id" json:"warehouseId"`
	Quantity    int64       `db:"quantity" json:"quantity"`
	UnitCost    types.Money `db:"unit_cost" json:"unitCost"`
	OccurredAt  time.Time   `db:"occurred_at" json:"occurredAt"`
	EmployeeID  *string     `db:"employee_id" json:"employeeId,omitempty"`
	SupplierID  *string     `db:"supplier_id" json:"supplierId,omitempty"`
}

// Export is one shipped line. Natural key (ID, ProductID, WarehouseID).
type Export struct {
	ID          string      `db:"id" json:"id"`
	ProductID   string      `db:"product_id" json:"productId"`
	WarehouseID string      `db:"warehouse_id" json:"warehouseId"`
	Quantity    int64       `db:"quantity" json:"quantity"`
	UnitPrice   types.Money `db:"unit_price" json:"unitPrice"`
	OccurredAt  time.Time   `db:"occurred_at" json:"occurredAt"`
	EmployeeID  *string     `db:"employee_id" json:"employeeId,omitempty"`
	VehicleID   *string     `db:"vehicle_id" json:"vehicleId,omitempty"`
	CustomerID  *string     `db:"customer_id" json:"customerId,omitempty"`
}

// TransferHeader is a transfer document. It is always persisted together with its lines.
type TransferHeader struct {
	ID                     string         `db:"id" json:"id"`
	SourceWarehouseID      string         `db:"source_warehouse_id" json:"sourceWarehouseId"`
	DestinationWarehouseID string         `db:"destination_warehouse_id" json:"destinationWarehouseId"`
	OccurredAt             time.Time      `db:"occurred_at" json:"occurredAt"`
	Note                   *string        `db:"note" json:"note,omitempty"`
	Lines                  []TransferLine `db:"-" json:"lines"`
}

// TransferLine is keyed by (TransferID, ProductID).
type TransferLine struct {
	TransferID string `db:"transfer_id" json:"-"`
	ProductID  string `db:"product_id" json:"productId"`
	Quantity   int64  `db:"quantity" json:"quantity"`
}

// ImportCommand is the input of RecordImport.
// Empty DocID takes the suggested code; zero Timestamp means now.
type ImportCommand struct {
	DocID       string
	WarehouseID string
	ProductID   string
	Quantity    int64
	UnitCost    types.Money
	Timestamp   time.Time
	EmployeeID  string
	SupplierID  string
}

// Validate checks the command shape.
func (c ImportCommand) Validate() error {
	return validateLine(c.WarehouseID, c.ProductID, c.Quantity, "unit_cost", c.UnitCost)
}

// ExportCommand is the input of RecordExport.
type ExportCommand struct {
	DocID       string
	WarehouseID string
	ProductID   string
	Quantity    int64
	UnitPrice   types.Money
	Timestamp   time.Time
	EmployeeID  string
	VehicleID   string
	CustomerID  string
}

// Validate checks the command shape.
func (c ExportCommand) Validate() error {
	return validateLine(c.WarehouseID, c.ProductID, c.Quantity, "unit_price", c.UnitPrice)
}

// LineCommand is one requested transfer line.
type LineCommand struct {
	ProductID string
	Quantity  int64
}

// TransferCommand is the input of RecordTransfer.
type TransferCommand struct {
	DocID                  string
	SourceWarehouseID      string
	DestinationWarehouseID string
	Timestamp              time.Time
	Lines                  []LineCommand
	Note                   string
}

// Validate checks warehouses and lines. Every failure is InvalidTransfer.
func (c TransferCommand) Validate() error {
	src, dst := strings.TrimSpace(c.SourceWarehouseID), strings.TrimSpace(c.DestinationWarehouseID)
	if src == "" || dst == "" {
		return apperror.NewInvalidTransfer("source and destination warehouses are required")
	}
	if src == dst {
		return apperror.NewInvalidTransfer("source and destination warehouses must differ").
			WithDetail("warehouse_id", src)
	}
	if len(c.Lines) == 0 {
		return apperror.NewInvalidTransfer("transfer has no lines")
	}

	seen := make(map[string]struct{}, len(c.Lines))
	for i, l := range c.Lines {
		productID := strings.TrimSpace(l.ProductID)
		if productID == "" {
			return apperror.NewInvalidTransfer(fmt.Sprintf("line %d: product is required", i+1))
		}
		if l.Quantity <= 0 {
			return apperror.NewInvalidTransfer(fmt.Sprintf("line %d: quantity must be positive", i+1)).
				WithDetail("product_id", productID)
		}
		if _, dup := seen[productID]; dup {
			return apperror.NewInvalidTransfer(fmt.Sprintf("line %d: product listed twice", i+1)).
				WithDetail("product_id", productID)
		}
		seen[productID] = struct{}{}
	}
	return nil
}

// NextCodes are the suggested document codes of the three movement series.
type NextCodes struct {
	Import   string `json:"import"`
	Export   string `json:"export"`
	Transfer string `json:"transfer"`
}

func validateLine(warehouseID, productID string, quantity int64, priceField string, price types.Money) error {
	if strings.TrimSpace(warehouseID) == "" {
		return apperror.NewValidation("warehouse is required")
	}
	if strings.TrimSpace(productID) == "" {
		return apperror.NewValidation("product is required")
	}
	if quantity <= 0 {
		return apperror.NewValidation("quantity must be positive").WithDetail("quantity", quantity)
	}
	if err := types.ValidateUnitAmount(priceField, price); err != nil {
		return apperror.NewValidation(err.Error()).WithDetail("field", priceField)
	}
	return nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
