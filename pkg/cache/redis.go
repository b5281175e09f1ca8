package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores entries in Redis, letting Redis handle expiry.
type RedisCache struct {
	client  *redis.Client
	backoff Backoff
}

// NewRedisCache connects to the Redis server at url
// (redis://[user:pass@]host:port/db) and checks it with a PING.
func NewRedisCache(ctx context.Context, url string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	c := NewRedisCacheFromClient(redis.NewClient(opts))
	if err := c.client.Ping(ctx).Err(); err != nil {
		c.client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return c, nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client, backoff: DefaultBackoff}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := RetryWithBackoff(ctx, c.backoff, func() error {
		var err error
		data, err = c.client.Get(ctx, key).Bytes()
		return retryable(err)
	})
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores data. A non-positive ttl keeps the entry until deleted.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return RetryWithBackoff(ctx, c.backoff, func() error {
		return retryable(c.client.Set(ctx, key, data, ttl).Err())
	})
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return RetryWithBackoff(ctx, c.backoff, func() error {
		return retryable(c.client.Del(ctx, key).Err())
	})
}

func (c *RedisCache) Close() error { return c.client.Close() }

var _ Cache = (*RedisCache)(nil)
