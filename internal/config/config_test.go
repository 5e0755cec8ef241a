package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, int64(10), cfg.LowStockThreshold)
	assert.Equal(t, 30*time.Second, cfg.DBStatementTimeout)
	assert.True(t, cfg.InMemory())
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/ledger")
	t.Setenv("LOW_STOCK_THRESHOLD", "3")
	t.Setenv("RECONCILE_REPAIR", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.AppPort)
	assert.False(t, cfg.InMemory())
	assert.Equal(t, int64(3), cfg.LowStockThreshold)
	assert.True(t, cfg.ReconcileRepair)
}

func TestValidate(t *testing.T) {
	base := Config{AppEnv: "development", JWTSecret: devJWTSecret, ReportTimezone: "UTC", DBMaxConns: 4, DBMinConns: 1}
	require.NoError(t, base.Validate())

	prod := base
	prod.AppEnv = "production"
	assert.Error(t, prod.Validate())

	prod.JWTSecret = "s3cret"
	assert.NoError(t, prod.Validate())

	badTZ := base
	badTZ.ReportTimezone = "Mars/Olympus"
	assert.Error(t, badTZ.Validate())

	localTZ := base
	localTZ.ReportTimezone = "Local"
	assert.Error(t, localTZ.Validate())

	badPool := base
	badPool.DBMinConns = 10
	assert.Error(t, badPool.Validate())
}
