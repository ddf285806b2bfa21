// internal/adapters/redis_adapter/cache.go
package redis_a

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ammerola/pharmacy-be/internal/core/ports"
	"github.com/ammerola/pharmacy-be/internal/pkg/config"
)

// ErrCacheMiss is returned when a key is not found in cache
var ErrCacheMiss = errors.New("cache miss")

// InventoryLevelPattern matches every cached inventory level
const InventoryLevelPattern = "inv:level:*"

// ClientConfig holds the connection settings for NewClient
type ClientConfig struct {
	Addr            string
	Password        string
	DB              int
	MaxRetries      int
	MinRetryBackoff time.Duration
	MaxRetryBackoff time.Duration
	PoolSize        int
	MinIdleConns    int
	PoolTimeout     time.Duration
	DialTimeout     time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
}

// ClientConfigFrom maps the application's Redis settings
func ClientConfigFrom(cfg *config.Config) ClientConfig {
	r := cfg.Redis
	return ClientConfig{
		Addr:            cfg.GetRedisAddress(),
		Password:        r.Password,
		DB:              r.DB,
		MaxRetries:      r.MaxRetries,
		MinRetryBackoff: r.MinRetryBackoff,
		MaxRetryBackoff: r.MaxRetryBackoff,
		PoolSize:        r.PoolSize,
		MinIdleConns:    r.MinIdleConns,
		PoolTimeout:     r.PoolTimeout,
		DialTimeout:     r.DialTimeout,
		ReadTimeout:     r.ReadTimeout,
		WriteTimeout:    r.WriteTimeout,
	}
}

// NewClient opens a Redis client and checks it answers
func NewClient(ctx context.Context, cfg ClientConfig, logger *slog.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:            cfg.Addr,
		Password:        cfg.Password,
		DB:              cfg.DB,
		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: cfg.MinRetryBackoff,
		MaxRetryBackoff: cfg.MaxRetryBackoff,
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdleConns,
		PoolTimeout:     cfg.PoolTimeout,
		DialTimeout:     cfg.DialTimeout,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	logger.InfoContext(ctx, "redis connection established", slog.String("addr", cfg.Addr))
	return client, nil
}

// Stats counts cache lookups since the process started
type Stats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Errors  int64   `json:"errors"`
	HitRate float64 `json:"hit_rate"`
}

// Cache stores JSON values in Redis. Values are advisory copies of ledger
// state; callers never rely on them for stock decisions.
type Cache struct {
	client     *redis.Client
	defaultTTL time.Duration
	logger     *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
	errs   atomic.Int64
}

var _ ports.CacheRepository = (*Cache)(nil)

// scanBatch is both the SCAN count hint and the UNLINK batch size
const scanBatch = 100

// NewCache wraps client. defaultTTL applies whenever a caller passes ttl <= 0.
func NewCache(client *redis.Client, defaultTTL time.Duration, logger *slog.Logger) *Cache {
	return &Cache{
		client:     client,
		defaultTTL: defaultTTL,
		logger:     logger.With(slog.String("component", "cache")),
	}
}

// SetWithTTL stores value as JSON under key
func (c *Cache) SetWithTTL(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.put(ctx, key, data, ttl)
}

func (c *Cache) put(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return c.failed(ctx, "set", key, err)
	}
	c.logger.DebugContext(ctx, "cache set", slog.String("key", key), slog.Duration("ttl", ttl))
	return nil
}

// Get decodes key into dest. Absent and undecodable values are both
// ErrCacheMiss; an undecodable value is evicted.
func (c *Cache) Get(ctx context.Context, key string, dest any) error {
	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		c.misses.Add(1)
		return ErrCacheMiss
	case err != nil:
		return c.failed(ctx, "get", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.misses.Add(1)
		c.logger.WarnContext(ctx, "evicting undecodable cache value",
			slog.String("key", key),
			slog.String("error", err.Error()))
		_ = c.client.Unlink(ctx, key).Err()
		return ErrCacheMiss
	}

	c.hits.Add(1)
	return nil
}

// Delete drops keys. Deleting nothing is a no-op.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Unlink(ctx, keys...).Err(); err != nil {
		return c.failed(ctx, "unlink", keys[0], err)
	}
	c.logger.DebugContext(ctx, "cache keys dropped", slog.Int("keys", len(keys)))
	return nil
}

// DeletePattern walks the keyspace with SCAN and drops matches in batches,
// never blocking Redis the way KEYS would. Deleting while the cursor is still
// moving can make SCAN skip keys, so every match is collected first.
func (c *Cache) DeletePattern(ctx context.Context, pattern string) error {
	var keys []string
	iter := c.client.Scan(ctx, 0, pattern, scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return c.failed(ctx, "scan", pattern, err)
	}

	for start := 0; start < len(keys); start += scanBatch {
		if err := c.Delete(ctx, keys[start:min(start+scanBatch, len(keys))]...); err != nil {
			return err
		}
	}

	c.logger.DebugContext(ctx, "cache pattern dropped",
		slog.String("pattern", pattern),
		slog.Int("keys", len(keys)))
	return nil
}

// GetOrSet serves key from the cache, or calls fetch on a miss and caches
// what it returns. Read failures are returned so the caller can go to the
// source itself; a failed write after fetch is only logged.
func (c *Cache) GetOrSet(ctx context.Context, key string, dest any,
	fetch func() (any, error), ttl time.Duration) error {

	if err := c.Get(ctx, key, dest); !errors.Is(err, ErrCacheMiss) {
		return err
	}

	value, err := fetch()
	if err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.put(ctx, key, data, ttl); err != nil {
		c.logger.WarnContext(ctx, "serving uncached value", slog.String("key", key))
	}
	return json.Unmarshal(data, dest)
}

// Ping checks Redis answers
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// failed counts and logs a Redis error
func (c *Cache) failed(ctx context.Context, op, key string, err error) error {
	c.errs.Add(1)
	c.logger.WarnContext(ctx, "redis "+op+" failed",
		slog.String("key", key),
		slog.String("error", err.Error()))
	return fmt.Errorf("redis %s %s: %w", op, key, err)
}

// PoolStats exposes the connection pool of the underlying client
func (c *Cache) PoolStats() *redis.PoolStats {
	return c.client.PoolStats()
}

// Stats returns lookup counters
func (c *Cache) Stats() Stats {
	s := Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Errors: c.errs.Load(),
	}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
	return s
}
