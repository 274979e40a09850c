package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iho/assetledger/internal/infrastructure/metrics"
)

func TestCacheSetAndGet(t *testing.T) {
	client, _ := newTestRedisClient(t)
	m := metrics.NewWithRegisterer(prometheus.NewRegistry())
	cache := NewCache(client, "mapping", m)
	ctx := context.Background()

	if err := cache.Set(ctx, "machinery", []byte("bar"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	val, err := cache.Get(ctx, "machinery")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(val) != "bar" {
		t.Fatalf("expected bar, got %s", val)
	}

	if _, err := cache.Get(ctx, "vehicles"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
	if got := testutil.ToFloat64(m.RedisOperations.WithLabelValues("cache_get")); got != 2 {
		t.Fatalf("expected 2 gets, got %v", got)
	}
	if got := testutil.ToFloat64(m.RedisErrors.WithLabelValues("cache_get")); got != 0 {
		t.Fatalf("expected a miss not to count as an error, got %v", got)
	}
}

func TestCacheKeysAreNamespaced(t *testing.T) {
	client, mr := newTestRedisClient(t)
	ctx := context.Background()

	if err := NewCache(client, "mapping", nil).Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if !mr.Exists("assetledger:cache:mapping:k") {
		t.Fatalf("expected namespaced key, have %v", mr.Keys())
	}
	if _, err := NewCache(client, "other", nil).Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected other namespace to miss, got %v", err)
	}
}

func TestCacheExpires(t *testing.T) {
	client, mr := newTestRedisClient(t)
	cache := NewCache(client, "mapping", nil)
	ctx := context.Background()

	if err := cache.Set(ctx, "foo", []byte("bar"), time.Second); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	mr.FastForward(2 * time.Second)

	if _, err := cache.Get(ctx, "foo"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss after expiry, got %v", err)
	}
}

func TestCacheDeleteAndFlush(t *testing.T) {
	client, mr := newTestRedisClient(t)
	cache := NewCache(client, "mapping", nil)
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		if err := cache.Set(ctx, k, []byte(k), time.Minute); err != nil {
			t.Fatalf("set failed: %v", err)
		}
	}
	if err := NewCache(client, "other", nil).Set(ctx, "a", []byte("keep"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if err := cache.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := cache.Get(ctx, "a"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss for deleted key, got %v", err)
	}

	n, err := cache.Flush(ctx)
	if err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 flushed keys, got %d", n)
	}
	if !mr.Exists("assetledger:cache:other:a") {
		t.Fatalf("flush removed a key from another namespace")
	}
}
