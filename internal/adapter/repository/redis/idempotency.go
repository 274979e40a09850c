package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/assetledger/internal/infrastructure/metrics"
)

// PendingMarker is stored under a key while its first request is in flight.
const PendingMarker = "processing"

// claimScript returns the stored value, or stores ARGV[1] and returns nil.
var claimScript = redis.NewScript(`
local existing = redis.call("GET", KEYS[1])
if existing then
	return existing
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
return false
`)

// releasePendingScript deletes a key only while it still holds the pending marker.
var releasePendingScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// IdempotencyStore implements usecase.IdempotencyStore. Claims are atomic:
// of two concurrent requests with the same key exactly one proceeds.
type IdempotencyStore struct {
	client  redis.UniversalClient
	metrics *metrics.Metrics
	prefix  string
}

// NewIdempotencyStore creates a new IdempotencyStore. m may be nil.
func NewIdempotencyStore(client redis.UniversalClient, m *metrics.Metrics) *IdempotencyStore {
	return &IdempotencyStore{
		client:  client,
		metrics: m,
		prefix:  "assetledger:idempotency:",
	}
}

// CheckAndSet claims key. When the key is already claimed it returns the
// stored value, which is PendingMarker until the first request finishes.
func (s *IdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	value := response
	if value == nil {
		value = []byte(PendingMarker)
	}

	existing, err := claimScript.Run(ctx, s.client, []string{s.prefix + key}, value, ttl.Milliseconds()).Text()
	observe(s.metrics, "idempotency_claim", err)
	if errors.Is(err, redis.Nil) {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, err
	}

	return true, []byte(existing), nil
}

// Update stores the final response of a claimed key.
func (s *IdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	err := s.client.Set(ctx, s.prefix+key, response, ttl).Err()
	observe(s.metrics, "idempotency_update", err)
	return err
}

// Release drops a pending claim so a failed request can be retried. A key
// that already holds a final response is left alone.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	err := releasePendingScript.Run(ctx, s.client, []string{s.prefix + key}, PendingMarker).Err()
	observe(s.metrics, "idempotency_release", err)
	return err
}
