// Package app wires repositories and services for the server, the worker and the API tests.
package app

import (
	"fmt"
	"time"

	"stockledger/internal/core/numerator"
	"stockledger/internal/core/tx"
	"stockledger/internal/domain/audit"
	"stockledger/internal/domain/auth"
	"stockledger/internal/domain/catalogs/product"
	"stockledger/internal/domain/catalogs/warehouse"
	"stockledger/internal/domain/movements"
	"stockledger/internal/domain/registers/stock"
	"stockledger/internal/domain/reports"
	"stockledger/internal/infrastructure/cache"
	infranumerator "stockledger/internal/infrastructure/numerator"
	"stockledger/internal/infrastructure/storage/memory"
	"stockledger/internal/infrastructure/storage/postgres"
	"stockledger/internal/infrastructure/storage/postgres/auth_repo"
	"stockledger/internal/infrastructure/storage/postgres/catalog_repo"
	"stockledger/internal/infrastructure/storage/postgres/movement_repo"
	"stockledger/internal/infrastructure/storage/postgres/register_repo"
	"stockledger/internal/infrastructure/storage/postgres/report_repo"
)

// Backend is one storage implementation of every repository.
type Backend struct {
	Mode       string
	TxManager  tx.Manager
	Stock      stock.Repository
	Movements  movements.Repository
	Reports    reports.Repository
	Products   product.Repository
	Warehouses warehouse.Repository
	Users      auth.UserRepository
	Journal    audit.Journal
	Codes      numerator.LastCodeFinder
}

// MemoryBackend serves every repository from store.
func MemoryBackend(store *memory.Store) Backend {
	return Backend{
		Mode:       "memory",
		TxManager:  store,
		Stock:      store.Stock(),
		Movements:  store.Movements(),
		Reports:    store.Reports(),
		Products:   store.Products(),
		Warehouses: store.Warehouses(),
		Users:      store.Users(),
		Journal:    store.Journal(),
		Codes:      store.Codes(),
	}
}

// PostgresBackend serves every repository from pool. Code lookups run outside
// the unit of work on the pool itself.
func PostgresBackend(pool *postgres.Pool, statementTimeout time.Duration) (Backend, error) {
	txm := postgres.NewTxManager(pool, statementTimeout)
	journal, err := postgres.NewAuditService(txm)
	if err != nil {
		return Backend{}, fmt.Errorf("create audit journal: %w", err)
	}
	return Backend{
		Mode:       "postgres",
		TxManager:  txm,
		Stock:      register_repo.NewStockRepo(txm),
		Movements:  movement_repo.NewMovementRepo(txm),
		Reports:    report_repo.NewReportRepo(txm),
		Products:   catalog_repo.NewProductRepo(txm),
		Warehouses: catalog_repo.NewWarehouseRepo(txm),
		Users:      auth_repo.NewUserRepo(txm),
		Journal:    journal,
		Codes:      infranumerator.New(pool),
	}, nil
}

// Options are the tunables of the services.
type Options struct {
	JWTSecret         string
	JWTAccessTTL      time.Duration
	LowStockThreshold int64
	Location          *time.Location

	// Cache may be nil.
	Cache *cache.ReportCache
}

// Services are the domain services behind the API and the worker.
type Services struct {
	JWT        *auth.JWTService
	Auth       *auth.Service
	Stock      *stock.Service
	Recorder   *movements.Recorder
	Reports    *reports.Service
	Products   *product.Service
	Warehouses *warehouse.Service
}

// NewServices builds the services over b.
func NewServices(b Backend, opts Options) *Services {
	jwtCfg := auth.DefaultJWTConfig(opts.JWTSecret)
	if opts.JWTAccessTTL > 0 {
		jwtCfg.AccessTokenTTL = opts.JWTAccessTTL
	}
	jwtSvc := auth.NewJWTService(jwtCfg)

	codes := numerator.NewSuggester(b.Codes)
	ledger := stock.NewService(b.Stock, b.TxManager, opts.LowStockThreshold).WithJournal(b.Journal)

	recorder := movements.NewRecorder(b.Movements, ledger, codes, b.TxManager).WithJournal(b.Journal)
	reportSvc := reports.NewService(b.Reports, opts.Location)
	if opts.Cache != nil {
		recorder.WithInvalidator(opts.Cache)
		reportSvc.WithCache(opts.Cache)
	}

	return &Services{
		JWT:        jwtSvc,
		Auth:       auth.NewService(b.Users, b.TxManager, jwtSvc, auth.DefaultServiceConfig()),
		Stock:      ledger,
		Recorder:   recorder,
		Reports:    reportSvc,
		Products:   product.NewService(b.Products, codes, b.TxManager).WithJournal(b.Journal),
		Warehouses: warehouse.NewService(b.Warehouses),
	}
}
