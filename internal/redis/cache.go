package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"journey-chat/internal/metrics"

	goredis "github.com/redis/go-redis/v9"
	gobreaker "github.com/sony/gobreaker/v2"
)

const scanBatch = 100

// CacheStore is a byte-oriented cache in Redis. Every call goes through a
// circuit breaker so an unreachable Redis fails fast.
type CacheStore struct {
	client  *goredis.Client
	breaker *gobreaker.CircuitBreaker[any]
	name    string
}

func NewCacheStore(client *goredis.Client, breaker *gobreaker.CircuitBreaker[any]) *CacheStore {
	return &CacheStore{client: client, breaker: breaker, name: breaker.Name()}
}

// Get returns the cached value and whether it was present.
func (c *CacheStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	res, err := c.breaker.Execute(func() (any, error) {
		return c.client.Get(ctx, key).Bytes()
	})
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			metrics.RecordCacheMiss(c.name)
			return nil, false, nil
		}
		metrics.RecordCacheError(c.name)
		return nil, false, fmt.Errorf("cache get error: %w", err)
	}
	metrics.RecordCacheHit(c.name)
	return res.([]byte), true, nil
}

func (c *CacheStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.client.Set(ctx, key, value, ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("cache set error: %w", err)
	}
	return nil
}

func (c *CacheStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.client.Del(ctx, keys...).Err()
	})
	if err != nil {
		return fmt.Errorf("cache delete error: %w", err)
	}
	return nil
}

// DeletePattern removes all keys matching a glob pattern using SCAN.
func (c *CacheStore) DeletePattern(ctx context.Context, pattern string) error {
	_, err := c.breaker.Execute(func() (any, error) {
		var cursor uint64
		for {
			keys, next, err := c.client.Scan(ctx, cursor, pattern, scanBatch).Result()
			if err != nil {
				return nil, err
			}
			if len(keys) > 0 {
				if err := c.client.Del(ctx, keys...).Err(); err != nil {
					return nil, err
				}
			}
			cursor = next
			if cursor == 0 {
				return nil, nil
			}
		}
	})
	if err != nil {
		return fmt.Errorf("cache delete pattern error: %w", err)
	}
	return nil
}
