// Package cache keeps computed reports in Redis under a version that every committed movement bumps.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"stockledger/internal/domain/movements"
	"stockledger/internal/domain/reports"
	"stockledger/pkg/logger"
)

const (
	versionKey  = "stockledger:reports:version"
	bumpChannel = "stockledger.ledger.bump"
)

// ReportCache implements reports.Cache and movements.Invalidator.
// A nil cache or a nil client computes every report directly.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

var (
	_ reports.Cache         = (*ReportCache)(nil)
	_ movements.Invalidator = (*ReportCache)(nil)
)

// NewReportCache creates the cache helper.
func NewReportCache(client *redis.Client, ttl time.Duration) *ReportCache {
	return &ReportCache{client: client, ttl: ttl}
}

// Version returns the current cache version, initialising when missing.
func (c *ReportCache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, versionKey, 1, 0).Err(); err != nil {
			return 0, fmt.Errorf("init cache version: %w", err)
		}
		return c.client.Get(ctx, versionKey).Int64()
	}
	if err != nil {
		return 0, fmt.Errorf("read cache version: %w", err)
	}
	return ver, nil
}

// BuildKey joins parts and appends the current version.
func (c *ReportCache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := strings.Join(parts, ":")
	if c == nil || c.client == nil {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", joined, ver), nil
}

// FetchJSON decodes the cached value at key into dest, or calls loader and stores its result.
func (c *ReportCache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}
	if c != nil && c.client != nil {
		payload, err := c.client.Get(ctx, key).Bytes()
		if err == nil {
			return json.Unmarshal(payload, dest)
		}
		if !errors.Is(err, redis.Nil) {
			logger.Warn(ctx, "report cache read failed", "key", key, "error", err)
		}
	}

	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if c != nil && c.client != nil {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			logger.Warn(ctx, "report cache write failed", "key", key, "error", err)
		}
	}
	return json.Unmarshal(raw, dest)
}

// Bump invalidates every cached report and announces the new version.
func (c *ReportCache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	ver, err := c.client.Incr(ctx, versionKey).Result()
	if err != nil {
		return fmt.Errorf("bump cache version: %w", err)
	}
	return c.client.Publish(ctx, bumpChannel, strconv.FormatInt(ver, 10)).Err()
}

// Ping checks the Redis connection.
func (c *ReportCache) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}
