package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Redis-backed cache. Values are JSON-encoded; all service
// instances sharing the client see the same entries and invalidations.
type Redis[V any] struct {
	client     redis.UniversalClient
	prefix     string
	defaultTTL time.Duration
}

// RedisOption configures a Redis cache.
type RedisOption func(*redisOptions)

type redisOptions struct {
	prefix     string
	defaultTTL time.Duration
}

// WithKeyPrefix namespaces all keys under the given prefix. A trailing
// colon is appended when missing, so "tenantgate" and "tenantgate:"
// produce the same keys.
func WithKeyPrefix(prefix string) RedisOption {
	return func(o *redisOptions) {
		if prefix != "" && !strings.HasSuffix(prefix, ":") {
			prefix += ":"
		}
		o.prefix = prefix
	}
}

// WithRedisDefaultTTL sets the TTL applied when Set receives a zero
// duration. Default: 1 minute.
func WithRedisDefaultTTL(d time.Duration) RedisOption {
	return func(o *redisOptions) {
		if d != 0 {
			o.defaultTTL = d
		}
	}
}

// NewRedis creates a Redis-backed cache on an existing client.
// The client's lifecycle belongs to the caller; Close here is a no-op.
func NewRedis[V any](client redis.UniversalClient, opts ...RedisOption) *Redis[V] {
	o := redisOptions{defaultTTL: time.Minute}
	for _, opt := range opts {
		opt(&o)
	}
	return &Redis[V]{client: client, prefix: o.prefix, defaultTTL: o.defaultTTL}
}

func (r *Redis[V]) Get(ctx context.Context, key string) (V, error) {
	var zero V

	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return zero, ErrNotFound
		}
		return zero, err
	}

	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return zero, err
	}
	return v, nil
}

func (r *Redis[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	if ttl == 0 {
		ttl = r.defaultTTL
	}
	if ttl < 0 {
		ttl = 0 // redis: zero expiration means no expiry
	}
	return r.client.Set(ctx, r.prefix+key, data, ttl).Err()
}

func (r *Redis[V]) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}

// Close is a no-op; the underlying client is owned by the caller.
func (r *Redis[V]) Close() error {
	return nil
}
