package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/adocavo/adocavo-api/internal/storage"
)

// RedisCounterCache backs the fast path with Redis.
type RedisCounterCache struct {
	redis *storage.RedisClient
}

func NewRedisCounterCache(redis *storage.RedisClient) *RedisCounterCache {
	return &RedisCounterCache{redis: redis}
}

func (c *RedisCounterCache) GetCount(ctx context.Context, key string) (int, error) {
	val, err := c.redis.Get(ctx, key)
	if storage.IsNil(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	count, err := strconv.Atoi(val)
	if err != nil {
		// A corrupt entry behaves like a fresh bucket; overwritten on the
		// next SetCount.
		return 0, nil
	}
	return count, nil
}

func (c *RedisCounterCache) SetCount(ctx context.Context, key string, count int, ttl time.Duration) error {
	return c.redis.Set(ctx, key, strconv.Itoa(count), ttl)
}
