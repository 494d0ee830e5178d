package cache

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"
)

var (
	// ErrNotFound is returned when a key is absent or expired.
	ErrNotFound = errors.New("cache: entry not found")

	// ErrClosed is returned when operating on a closed cache.
	ErrClosed = errors.New("cache: closed")
)

// Cache is a key-value cache with per-entry TTL.
//
// Set TTL semantics: positive expires after the duration, zero uses the
// backend's configured default, negative never expires.
type Cache[V any] interface {
	Get(ctx context.Context, key string) (V, error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

var group singleflight.Group

// GetOrSet returns the cached value for key, or runs load once to compute
// and cache it with the given TTL (zero uses the backend default).
// Concurrent misses for the same key share a single load call. Load errors
// are returned without caching, so negative results are never stored.
func GetOrSet[V any](ctx context.Context, c Cache[V], key string, ttl time.Duration, load func(ctx context.Context) (V, error)) (V, error) {
	if v, err := c.Get(ctx, key); err == nil {
		return v, nil
	}

	v, err, _ := group.Do(key, func() (any, error) {
		return load(ctx)
	})
	if err != nil {
		var zero V
		return zero, err
	}

	val := v.(V)
	_ = c.Set(ctx, key, val, ttl) // best effort
	return val, nil
}
