// Package main is the entry point for the stock ledger API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"stockledger/internal/app"
	"stockledger/internal/config"
	"stockledger/internal/infrastructure/cache"
	v1 "stockledger/internal/infrastructure/http/v1"
	"stockledger/internal/infrastructure/http/v1/handlers"
	"stockledger/internal/infrastructure/storage/memory"
	"stockledger/internal/infrastructure/storage/postgres"
	"stockledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: !cfg.IsProduction(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)
	log.Infow("starting stockledger server", "env", cfg.AppEnv, "in_memory", cfg.InMemory())

	checks := map[string]handlers.Pinger{}

	// --- Storage ---
	var backend app.Backend
	if cfg.InMemory() {
		store := memory.New()
		if err := store.SeedDemo(ctx); err != nil {
			log.Fatalw("failed to seed demo store", "error", err)
		}
		backend = app.MemoryBackend(store)
		log.Warn("DATABASE_URL is not set, serving the in-memory demo store")
	} else {
		if cfg.MigrateOnStart {
			if err := migrateUp(cfg.DatabaseURL, log); err != nil {
				log.Fatalw("failed to apply migrations", "error", err)
			}
		}

		poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
		poolCfg.MaxConns = cfg.DBMaxConns
		poolCfg.MinConns = cfg.DBMinConns
		pool, err := postgres.NewPool(ctx, poolCfg)
		if err != nil {
			log.Fatalw("failed to connect to database", "error", err)
		}
		defer pool.Close()
		log.Info("database connection established")

		backend, err = app.PostgresBackend(pool, cfg.DBStatementTimeout)
		if err != nil {
			log.Fatalw("failed to create storage", "error", err)
		}
		checks["database"] = pool
	}

	// --- Report cache ---
	var reportCache *cache.ReportCache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		reportCache = cache.NewReportCache(client, cfg.ReportCacheTTL)
		if err := reportCache.Ping(ctx); err != nil {
			log.Warnw("redis is unreachable, reports are computed until it recovers", "error", err)
		}
		checks["redis"] = reportCache
	}

	services := app.NewServices(backend, app.Options{
		JWTSecret:         cfg.JWTSecret,
		JWTAccessTTL:      cfg.JWTAccessTTL,
		LowStockThreshold: cfg.LowStockThreshold,
		Location:          cfg.Location(),
		Cache:             reportCache,
	})

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:           log,
		JWTValidator:     services.JWT,
		AuthService:      services.Auth,
		Recorder:         services.Recorder,
		StockService:     services.Stock,
		ReportService:    services.Reports,
		ProductService:   services.Products,
		WarehouseService: services.Warehouses,
		Mode:             backend.Mode,
		HealthChecks:     checks,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.AppPort, "mode", backend.Mode)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func migrateUp(databaseURL string, log *logger.Logger) error {
	m, err := postgres.NewMigrator(databaseURL, log)
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Up()
}
