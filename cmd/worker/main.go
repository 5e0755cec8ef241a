// Package main is the entry point for the stock ledger background worker.
// It periodically compares materialized stock levels with movement history.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"stockledger/internal/app"
	"stockledger/internal/config"
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
	if cfg.InMemory() {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	ctx, cancel := context.WithCancel(logger.WithLogger(context.Background(), log))
	defer cancel()

	log.Infow("starting stockledger worker", "interval", cfg.ReconcileInterval, "repair", cfg.ReconcileRepair)

	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = 4
	poolCfg.MinConns = 1
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	backend, err := app.PostgresBackend(pool, cfg.DBStatementTimeout)
	if err != nil {
		log.Fatalw("failed to create storage", "error", err)
	}
	services := app.NewServices(backend, app.Options{
		JWTSecret:         cfg.JWTSecret,
		LowStockThreshold: cfg.LowStockThreshold,
		Location:          cfg.Location(),
	})

	worker := NewReconciler(services.Stock, cfg.ReconcileRepair, log)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx, cfg.ReconcileInterval)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}
