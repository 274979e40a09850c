package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/iho/assetledger/internal/infrastructure/metrics"
)

// SQLSTATEs worth retrying: the transaction lost a race, not an argument.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
	pgErrLockNotAvailable     = "55P03"
)

// RetryConfig bounds the Retrier's exponential backoff.
type RetryConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryConfig keeps a retried asset well inside the default per-asset
// posting deadline.
var DefaultRetryConfig = RetryConfig{
	MaxRetries:      3,
	InitialInterval: 50 * time.Millisecond,
	MaxInterval:     time.Second,
}

// Retrier implements usecase.Retrier. Only transient lock and serialisation
// failures are retried; the operation must open its own transaction.
type Retrier struct {
	cfg     RetryConfig
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewRetrier creates a Retrier with DefaultRetryConfig.
func NewRetrier(logger zerolog.Logger) *Retrier {
	return NewRetrierWithConfig(DefaultRetryConfig, nil, logger)
}

// NewRetrierWithConfig creates a Retrier. m may be nil.
func NewRetrierWithConfig(cfg RetryConfig, m *metrics.Metrics, logger zerolog.Logger) *Retrier {
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = DefaultRetryConfig.InitialInterval
	}
	if cfg.MaxInterval < cfg.InitialInterval {
		cfg.MaxInterval = cfg.InitialInterval
	}

	return &Retrier{
		cfg:     cfg,
		metrics: m,
		logger:  logger.With().Str("component", "retrier").Logger(),
	}
}

// Retry runs operation until it succeeds, fails permanently, exhausts
// MaxRetries or ctx ends. The last operation error is returned.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.cfg.InitialInterval
	b.MaxInterval = r.cfg.MaxInterval
	b.MaxElapsedTime = 0 // the context deadline bounds elapsed time

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(max(r.cfg.MaxRetries, 0))), ctx)

	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		err := operation()
		if err == nil {
			return nil
		}

		code, ok := retryableCode(err)
		if !ok {
			return backoff.Permanent(err)
		}

		if r.metrics != nil {
			r.metrics.TransactionRetries.WithLabelValues(code).Inc()
		}
		return err
	}, policy, func(err error, wait time.Duration) {
		r.logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("wait", wait).
			Msg("transient database error, retrying transaction")
	})
}

// retryableCode returns the SQLSTATE of err when it is a transient failure.
func retryableCode(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}

	switch pgErr.Code {
	case pgErrDeadlock, pgErrSerializationFailure, pgErrLockNotAvailable:
		return pgErr.Code, true
	}
	return "", false
}
