// Package reports derives revenue, cost of goods sold and profit from the movement ledger.
package reports

import (
	"time"

	"stockledger/internal/core/types"
)

// TopLimit is the size of each top-seller ranking.
const TopLimit = 10

// SalesRequest is the raw input of SalesReport. Empty bounds take the default range.
type SalesRequest struct {
	WarehouseID string
	From        string
	To          string
}

// Query is a resolved report query. Empty WarehouseID means every warehouse.
type Query struct {
	WarehouseID string
	From        time.Time
	To          time.Time
	Location    *time.Location
}

// DailyAmount is one per-day aggregate as read from storage. Day is YYYY-MM-DD.
type DailyAmount struct {
	Day    string      `db:"day"`
	Amount types.Money `db:"amount"`
}

// DailyRow is one day of the sales report.
type DailyRow struct {
	Date    string      `json:"date"`
	Revenue types.Money `json:"revenue"`
	COGS    types.Money `json:"cogs"`
	Profit  types.Money `json:"profit"`
}

// Totals are sums of the daily series.
type Totals struct {
	Revenue types.Money `json:"revenue"`
	COGS    types.Money `json:"cogs"`
	Profit  types.Money `json:"profit"`
}

// TopProduct is one entry of a top-seller ranking.
type TopProduct struct {
	ProductID   string      `db:"product_id" json:"productId"`
	ProductName string      `db:"product_name" json:"productName"`
	Quantity    int64       `db:"quantity" json:"quantity"`
	Revenue     types.Money `db:"revenue" json:"revenue"`
}

// SalesReport is the output of SalesReport.
type SalesReport struct {
	WarehouseID   string       `json:"warehouseId"`
	From          time.Time    `json:"from"`
	To            time.Time    `json:"to"`
	Daily         []DailyRow   `json:"daily"`
	Totals        Totals       `json:"totals"`
	TopByQuantity []TopProduct `json:"topByQuantity"`
	TopByRevenue  []TopProduct `json:"topByRevenue"`
}

// Dashboard is the summary shown on the landing page.
type Dashboard struct {
	WarehouseID    string     `db:"-" json:"warehouseId"`
	ProductCount   int64      `db:"product_count" json:"productCount"`
	TotalStock     int64      `db:"total_stock" json:"totalStock"`
	ExportCount    int64      `db:"export_count" json:"exportCount"`
	LastMovementAt *time.Time `db:"last_movement_at" json:"lastMovementAt,omitempty"`
}
