// Package config loads runtime configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const devJWTSecret = "dev-secret-change-me"

// Config holds runtime configuration for the ledger service and its tools.
type Config struct {
	AppEnv  string `envconfig:"APP_ENV" default:"development"`
	AppPort string `envconfig:"APP_PORT" default:"8080"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// DatabaseURL empty runs the service on the in-memory demo store.
	DatabaseURL        string        `envconfig:"DATABASE_URL"`
	DBMaxConns         int32         `envconfig:"DB_MAX_CONNS" default:"20"`
	DBMinConns         int32         `envconfig:"DB_MIN_CONNS" default:"2"`
	DBStatementTimeout time.Duration `envconfig:"DB_STATEMENT_TIMEOUT" default:"30s"`
	MigrateOnStart     bool          `envconfig:"MIGRATE_ON_START" default:"true"`

	JWTSecret    string        `envconfig:"JWT_SECRET" default:"dev-secret-change-me"`
	JWTAccessTTL time.Duration `envconfig:"JWT_ACCESS_TTL" default:"12h"`

	// RedisAddr empty disables the report cache.
	RedisAddr      string        `envconfig:"REDIS_ADDR"`
	ReportCacheTTL time.Duration `envconfig:"REPORT_CACHE_TTL" default:"5m"`
	ReportTimezone string        `envconfig:"REPORT_TIMEZONE" default:"UTC"`

	LowStockThreshold int64 `envconfig:"LOW_STOCK_THRESHOLD" default:"10"`

	ReconcileInterval time.Duration `envconfig:"RECONCILE_INTERVAL" default:"15m"`
	ReconcileRepair   bool          `envconfig:"RECONCILE_REPAIR" default:"false"`
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	if c.IsProduction() && (c.JWTSecret == "" || c.JWTSecret == devJWTSecret) {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.ReportTimezone == "Local" {
		return errors.New("REPORT_TIMEZONE must name an IANA zone, not Local")
	}
	if _, err := time.LoadLocation(c.ReportTimezone); err != nil {
		return fmt.Errorf("REPORT_TIMEZONE: %w", err)
	}
	if c.LowStockThreshold < 0 {
		return errors.New("LOW_STOCK_THRESHOLD must not be negative")
	}
	if c.DBMinConns > c.DBMaxConns {
		return errors.New("DB_MIN_CONNS must not exceed DB_MAX_CONNS")
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// Location returns the report timezone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ReportTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// InMemory reports whether the service runs without a database.
func (c *Config) InMemory() bool {
	return c.DatabaseURL == ""
}
