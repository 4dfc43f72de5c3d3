// Package cache provides a best-effort Redis cache for aggregated raw
// listings, keyed by the raw query text. Cache failures are logged and
// swallowed so the caller can always fall back to live scraping.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/UzMarketAI/scout-mvp/engine/domain"
)

const keyPrefix = "scout:listings:"

// Cache wraps a Redis client with listing-specific get/put operations.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// New connects to Redis at addr and verifies the connection.
func New(ctx context.Context, addr string, ttl time.Duration, logger *slog.Logger) (*Cache, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connect %s: %w", addr, err)
	}
	return &Cache{client: client, ttl: ttl, logger: logger}, nil
}

// Get returns cached listings for the raw query, or (nil, false) on miss
// or any Redis/deserialization error.
func (c *Cache) Get(ctx context.Context, rawQuery string) ([]domain.Listing, bool) {
	data, err := c.client.Get(ctx, key(rawQuery)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("cache get failed", "err", err)
		return nil, false
	}

	var listings []domain.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		c.logger.Warn("cache entry malformed, ignoring", "err", err)
		return nil, false
	}
	return listings, true
}

// Put stores listings under the raw query with the configured TTL.
// Best-effort: errors are logged, never returned.
func (c *Cache) Put(ctx context.Context, rawQuery string, listings []domain.Listing) {
	data, err := json.Marshal(listings)
	if err != nil {
		c.logger.Warn("cache serialize failed", "err", err)
		return
	}
	if err := c.client.Set(ctx, key(rawQuery), data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", "err", err)
	}
}

// Close releases the Redis connection pool.
func (c *Cache) Close() error { return c.client.Close() }

// key hashes the raw query so arbitrary user input never leaks into the
// Redis keyspace.
func key(rawQuery string) string {
	sum := sha256.Sum256([]byte(rawQuery))
	return keyPrefix + hex.EncodeToString(sum[:])
}
