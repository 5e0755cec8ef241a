package dto

import (
	"sort"

	"stockledger/internal/domain/registers/stock"
)

// BalancesRequest holds balance query parameters. Empty warehouse means the caller's default view.
type BalancesRequest struct {
	WarehouseID string `form:"warehouseId"`
	ProductID   string `form:"productId"`
}

// WarehouseRequest selects a warehouse or ALL.
type WarehouseRequest struct {
	WarehouseID string `form:"warehouseId"`
}

// BalanceResponse is one product balance.
type BalanceResponse struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

// BalancesResponse lists balances ordered by product.
type BalancesResponse struct {
	WarehouseID string            `json:"warehouseId"`
	Items       []BalanceResponse `json:"items"`
}

// FromBalances converts a product -> quantity map.
func FromBalances(view string, balances map[string]int64) BalancesResponse {
	items := make([]BalanceResponse, 0, len(balances))
	for p, q := range balances {
		items = append(items, BalanceResponse{ProductID: p, Quantity: q})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })
	return BalancesResponse{WarehouseID: view, Items: items}
}

// ReconcileResponse lists the drifted pairs found or repaired.
type ReconcileResponse struct {
	Repaired bool          `json:"repaired"`
	Drifts   []stock.Drift `json:"drifts"`
}

// NewReconcileResponse wraps drifts, never rendering null.
func NewReconcileResponse(drifts []stock.Drift, repaired bool) ReconcileResponse {
	if drifts == nil {
		drifts = []stock.Drift{}
	}
	return ReconcileResponse{Repaired: repaired, Drifts: drifts}
}
