// Package cache provides preview result caching implementations.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"linkdeck/internal/domain/entity"
)

const keyPrefix = "preview:"

// RedisCache implements preview.ResultCache backed by Redis.
// Resolved previews are stored as JSON under the normalized URL with a TTL,
// so repeated resolutions of a popular link skip the origin fetch entirely.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a Redis-backed preview cache from a Redis URL.
// URL format: redis://[:password@]host:port/db
func NewRedisCache(redisURL string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	opts.PoolSize = 10
	opts.MinIdleConns = 2
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

// Get returns the cached preview for a normalized URL, if present.
func (c *RedisCache) Get(ctx context.Context, url string) (*entity.Preview, bool, error) {
	data, err := c.client.Get(ctx, keyPrefix+url).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var p entity.Preview
	if err := json.Unmarshal(data, &p); err != nil {
		// A corrupt entry is treated as a miss; the next Set overwrites it.
		return nil, false, nil
	}
	return &p, true, nil
}

// Set stores a resolved preview under its normalized URL with the cache TTL.
func (c *RedisCache) Set(ctx context.Context, url string, p *entity.Preview) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal preview: %w", err)
	}
	return c.client.Set(ctx, keyPrefix+url, data, c.ttl).Err()
}

// Ping reports whether the Redis backend is reachable. Used by the
// health endpoint.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying Redis connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Noop is a preview.ResultCache that caches nothing. It is used when no
// Redis URL is configured so the resolution path stays unconditional.
type Noop struct{}

// Get always reports a miss.
func (Noop) Get(_ context.Context, _ string) (*entity.Preview, bool, error) {
	return nil, false, nil
}

// Set discards the preview.
func (Noop) Set(_ context.Context, _ string, _ *entity.Preview) error {
	return nil
}
