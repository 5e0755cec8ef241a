// Package main provides a CLI tool for seeding the database with reference data and default accounts.
package main

import (
	"context"
	"fmt"
	"os"

	"stockledger/internal/config"
	"stockledger/internal/infrastructure/storage/postgres"
	"stockledger/internal/seed"
	"stockledger/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("failed to load configuration", "error", err)
	}
	if cfg.InMemory() {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	ctx := logger.WithLogger(context.Background(), log)

	m, err := postgres.NewMigrator(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatalw("failed to create migrator", "error", err)
	}
	if err := m.Up(); err != nil {
		log.Fatalw("failed to apply migrations", "error", err)
	}
	_ = m.Close()

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	queries, err := seed.BatchQueries()
	if err != nil {
		log.Fatalw("failed to prepare seed data", "error", err)
	}

	txm := postgres.NewTxManager(pool, cfg.DBStatementTimeout)
	batch := postgres.NewBatchExecutor(txm)
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return batch.ExecuteBatch(ctx, queries)
	})
	if err != nil {
		log.Fatalw("failed to seed database", "error", err)
	}

	log.Infow("seeding completed successfully",
		"warehouses", len(seed.Warehouses),
		"products", len(seed.Products),
		"accounts", len(seed.Accounts),
	)
}
