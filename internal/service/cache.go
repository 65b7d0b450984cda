package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache memoizes expensive aggregate queries. Implementations must be safe
// to call when the backend is down: a failed Get is a miss and a failed Set
// is a no-op, never an error the caller sees.
type Cache interface {
	// Get unmarshals the cached value for key into dest and reports whether
	// a value was found.
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

// RedisCache is the production Cache backed by a redis client with a JSON
// codec.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[Cache] get %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		log.Printf("[Cache] decode %s: %v", key, err)
		return false
	}
	return true
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("[Cache] encode %s: %v", key, err)
		return
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		log.Printf("[Cache] set %s: %v", key, err)
	}
}

func (c *RedisCache) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		log.Printf("[Cache] del %s: %v", key, err)
	}
}

// NoopCache always misses. It stands in for redis when the backend is
// unreachable and doubles as the test default.
type NoopCache struct{}

func NewNoopCache() NoopCache { return NoopCache{} }

func (NoopCache) Get(ctx context.Context, key string, dest interface{}) bool { return false }

func (NoopCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {}

func (NoopCache) Delete(ctx context.Context, key string) {}
