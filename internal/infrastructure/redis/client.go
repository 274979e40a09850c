// Package redis connects to the Redis server backing batch locks, the
// mapping cache, idempotency keys and the event stream.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Options tunes the connection beyond what the URL carries. Zero values keep
// the URL's settings.
type Options struct {
	URL      string
	PoolSize int
	Timeout  time.Duration
}

// NewClient connects to Redis and checks that the server answers.
func NewClient(ctx context.Context, o Options, logger zerolog.Logger) (redis.UniversalClient, error) {
	opts, err := redis.ParseURL(o.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	if o.PoolSize > 0 {
		opts.PoolSize = o.PoolSize
	}
	if o.Timeout > 0 {
		opts.DialTimeout = o.Timeout
		opts.ReadTimeout = o.Timeout
		opts.WriteTimeout = o.Timeout
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Info().
		Str("addr", opts.Addr).
		Int("db", opts.DB).
		Int("pool_size", opts.PoolSize).
		Msg("connected to redis")

	return client, nil
}
