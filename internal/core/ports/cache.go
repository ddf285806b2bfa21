// internal/core/ports/cache.go
package ports

import (
	"context"
	"time"
)

// CacheRepository holds short-lived copies of inventory levels.
// The ledger in Postgres stays authoritative: services invalidate keys
// after commit and treat any cache error as a miss.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest any) error
	SetWithTTL(ctx context.Context, key string, value any, ttl time.Duration) error

	// Delete drops keys; DeletePattern drops every key matching a glob
	Delete(ctx context.Context, keys ...string) error
	DeletePattern(ctx context.Context, pattern string) error

	// GetOrSet decodes key into dest. On a miss it stores and decodes
	// the result of fetch instead.
	GetOrSet(ctx context.Context, key string, dest any,
		fetch func() (any, error), ttl time.Duration) error

	Ping(ctx context.Context) error
}
