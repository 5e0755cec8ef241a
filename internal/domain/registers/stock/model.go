// Package stock provides the stock ledger store: the materialized per-(warehouse, product) balance.
package stock

import (
	"sort"
	"time"
)

// DefaultThreshold is the low-stock threshold given to lazily created levels.
const DefaultThreshold int64 = 10

// Key identifies a stock level.
type Key struct {
	WarehouseID string
	ProductID   string
}

// Less orders keys by warehouse then product. Locks are always taken in this order.
func (k Key) Less(o Key) bool {
	if k.WarehouseID != o.WarehouseID {
		return k.WarehouseID < o.WarehouseID
	}
	return k.ProductID < o.ProductID
}

// SortKeys sorts keys in lock order and removes duplicates.
func SortKeys(keys []Key) []Key {
	out := make([]Key, len(keys))
	copy(out, keys)
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })

	uniq := out[:0]
	for i, k := range out {
		if i > 0 && k == out[i-1] {
			continue
		}
		uniq = append(uniq, k)
	}
	return uniq
}

// Level is the materialized balance of one (warehouse, product) pair.
// Quantity is never negative after a committed unit of work.
type Level struct {
	WarehouseID string    `db:"warehouse_id" json:"warehouseId"`
	ProductID   string    `db:"product_id" json:"productId"`
	Quantity    int64     `db:"quantity" json:"quantity"`
	Threshold   int64     `db:"threshold" json:"threshold"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// Key returns the level key.
func (l Level) Key() Key {
	return Key{WarehouseID: l.WarehouseID, ProductID: l.ProductID}
}

// IsLow reports whether the level is at or below its threshold.
func (l Level) IsLow() bool {
	return l.Quantity <= l.Threshold
}

// Balance is a quantity recomputed from movement history.
type Balance struct {
	WarehouseID string `db:"warehouse_id" json:"warehouseId"`
	ProductID   string `db:"product_id" json:"productId"`
	Quantity    int64  `db:"quantity" json:"quantity"`
}

// Drift is a pair whose materialized quantity disagrees with its history.
type Drift struct {
	WarehouseID  string `json:"warehouseId"`
	ProductID    string `json:"productId"`
	Materialized int64  `json:"materialized"`
	Recomputed   int64  `json:"recomputed"`
}

// Delta is the correction that brings the materialized quantity back to history.
func (d Drift) Delta() int64 {
	return d.Recomputed - d.Materialized
}

// Reservation is a requirement checked under lock before a decrement.
// RequiredQty 0 only takes the lock.
type Reservation struct {
	Key
	RequiredQty int64
}
