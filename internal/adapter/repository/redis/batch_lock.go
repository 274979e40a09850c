package redis

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/infrastructure/metrics"
)

// ErrLockNotHeld is returned by a release func when the lock expired or
// was taken over before release.
var ErrLockNotHeld = errors.New("batch lock no longer held")

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// BatchLocker implements usecase.BatchLocker with SET NX PX and a
// compare-and-delete release.
type BatchLocker struct {
	client  redis.UniversalClient
	metrics *metrics.Metrics
	prefix  string
}

// NewBatchLocker creates a new BatchLocker. m may be nil.
func NewBatchLocker(client redis.UniversalClient, m *metrics.Metrics) *BatchLocker {
	return &BatchLocker{
		client:  client,
		metrics: m,
		prefix:  "assetledger:lock:",
	}
}

// Acquire takes the lock for key or fails with domain.ErrBatchInProgress.
func (l *BatchLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	fullKey := l.prefix + key
	token := ulid.Make().String()

	ok, err := l.client.SetNX(ctx, fullKey, token, ttl).Result()
	l.observe("lock_acquire", err)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrBatchInProgress
	}

	release := func(ctx context.Context) error {
		n, err := releaseScript.Run(ctx, l.client, []string{fullKey}, token).Int()
		l.observe("lock_release", err)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrLockNotHeld
		}
		return nil
	}

	return release, nil
}

func (l *BatchLocker) observe(op string, err error) {
	observe(l.metrics, op, err)
}
