package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/assetledger/internal/infrastructure/metrics"
)

// ErrCacheMiss is returned by Cache.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// Cache implements usecase.Cache. Keys live under
// "assetledger:cache:<namespace>:" so unrelated caches never collide and a
// namespace can be flushed on its own.
type Cache struct {
	client  redis.UniversalClient
	metrics *metrics.Metrics
	prefix  string
}

// NewCache creates a Cache for namespace. m may be nil.
func NewCache(client redis.UniversalClient, namespace string, m *metrics.Metrics) *Cache {
	return &Cache{
		client:  client,
		metrics: m,
		prefix:  "assetledger:cache:" + namespace + ":",
	}
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	observe(c.metrics, "cache_get", err)
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return val, err
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := c.client.Set(ctx, c.prefix+key, value, ttl).Err()
	observe(c.metrics, "cache_set", err)
	return err
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	err := c.client.Del(ctx, c.prefix+key).Err()
	observe(c.metrics, "cache_delete", err)
	return err
}

// Flush removes every key of the namespace.
func (c *Cache) Flush(ctx context.Context) (int, error) {
	var keys []string
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		observe(c.metrics, "cache_flush", err)
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}

	n, err := c.client.Del(ctx, keys...).Result()
	observe(c.metrics, "cache_flush", err)
	return int(n), err
}
