// Package memory is the in-process store used for the demo mode and for tests.
// It enforces the same keys, references and non-negative balances as the PostgreSQL schema.
package memory

import (
	"context"
	"sync"

	"stockledger/internal/core/id"
	"stockledger/internal/core/tx"
	"stockledger/internal/domain/audit"
	"stockledger/internal/domain/auth"
	"stockledger/internal/domain/catalogs/product"
	"stockledger/internal/domain/catalogs/warehouse"
	"stockledger/internal/domain/movements"
	"stockledger/internal/domain/registers/stock"
)

// Store holds every table of the ledger.
// A unit of work holds the writer lock until it ends and is rolled back from a snapshot.
type Store struct {
	mu sync.RWMutex
	st *state
}

var _ tx.ReadOnlyManager = (*Store)(nil)

type state struct {
	warehouses map[string]warehouse.Warehouse
	products   map[string]product.Product
	employees  map[string]string
	suppliers  map[string]string
	customers  map[string]string
	vehicles   map[string]string
	users      map[id.ID]auth.User

	levels    map[stock.Key]stock.Level
	imports   []movements.Import
	exports   []movements.Export
	transfers []movements.TransferHeader
	journal   []audit.Entry
}

// New creates an empty store.
func New() *Store {
	return &Store{st: &state{
		warehouses: make(map[string]warehouse.Warehouse),
		products:   make(map[string]product.Product),
		employees:  make(map[string]string),
		suppliers:  make(map[string]string),
		customers:  make(map[string]string),
		vehicles:   make(map[string]string),
		users:      make(map[id.ID]auth.User),
		levels:     make(map[stock.Key]stock.Level),
	}}
}

func (s *state) clone() *state {
	return &state{
		warehouses: cloneMap(s.warehouses),
		products:   cloneMap(s.products),
		employees:  cloneMap(s.employees),
		suppliers:  cloneMap(s.suppliers),
		customers:  cloneMap(s.customers),
		vehicles:   cloneMap(s.vehicles),
		users:      cloneMap(s.users),
		levels:     cloneMap(s.levels),
		imports:    append([]movements.Import(nil), s.imports...),
		exports:    append([]movements.Export(nil), s.exports...),
		transfers:  append([]movements.TransferHeader(nil), s.transfers...),
		journal:    append([]audit.Entry(nil), s.journal...),
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type txKey struct{}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// RunInTransaction implements tx.Manager. Nested calls join the outer unit of work.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

// ReadOnly implements tx.ReadOnlyManager.
func (s *Store) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.RunInTransaction(ctx, fn)
}

// view runs fn under the reader lock, or directly inside a unit of work.
func (s *Store) view(ctx context.Context, fn func(st *state) error) error {
	if s.inTx(ctx) {
		return fn(s.st)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.st)
}

// update runs fn under the writer lock, or directly inside a unit of work.
// fn must validate before it mutates.
func (s *Store) update(ctx context.Context, fn func(st *state) error) error {
	if s.inTx(ctx) {
		return fn(s.st)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

// Stock returns the stock ledger repository.
func (s *Store) Stock() *StockRepo { return &StockRepo{s: s} }

// Movements returns the movement repository.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{s: s} }

// Reports returns the report repository.
func (s *Store) Reports() *ReportRepo { return &ReportRepo{s: s} }

// Products returns the product repository.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// Warehouses returns the warehouse repository.
func (s *Store) Warehouses() *WarehouseRepo { return &WarehouseRepo{s: s} }

// Users returns the user repository.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Journal returns the movement journal.
func (s *Store) Journal() *Journal { return &Journal{s: s} }

// Codes returns the last-code finder of the numerator.
func (s *Store) Codes() *CodeFinder { return &CodeFinder{s: s} }
