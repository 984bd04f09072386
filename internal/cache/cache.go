// Package cache stores JSON-encoded values with a TTL, in process or in
// Redis.
package cache

import (
	"context"
	"time"
)

// Cache is implemented by Memory and Redis.
type Cache interface {
	// Get decodes the value stored under key into dst. It reports false
	// when the key is missing or expired.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	// SetNX claims key for ttl. It reports false when the key is already
	// held.
	SetNX(ctx context.Context, key string, ttl time.Duration) (bool, error)
}
