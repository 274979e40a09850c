package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Posting outcomes used as the "outcome" label.
const (
	OutcomePosted  = "posted"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Depreciation metrics
	DepreciationPostings *prometheus.CounterVec
	DepreciationAmount   prometheus.Counter
	BatchDuration        prometheus.Histogram
	BatchesRejected      prometheus.Counter

	// Asset metrics
	AssetsCapitalized   prometheus.Counter
	AssetsDisposed      *prometheus.CounterVec
	AssetStatusChanges  *prometheus.CounterVec
	AssetsRecalculated  prometheus.Counter
	RecalculateDuration prometheus.Histogram

	// Ledger metrics
	JournalEntries      *prometheus.CounterVec
	ConsistencyFailures prometheus.Counter
	TransactionRetries  *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisErrors     *prometheus.CounterVec

	// Authentication metrics
	AuthFailures *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	// Outbox metrics
	EventsPublished *prometheus.CounterVec
	EventsFailed    *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics on the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates the metrics on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Depreciation metrics
		DepreciationPostings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetledger_depreciation_postings_total",
				Help: "Depreciation posting outcomes per asset",
			},
			[]string{"outcome", "reason"},
		),
		DepreciationAmount: factory.NewCounter(prometheus.CounterOpts{
			Name: "assetledger_depreciation_posted_cents_total",
			Help: "Total depreciation posted in minor units",
		}),
		BatchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "assetledger_depreciation_batch_duration_seconds",
			Help:    "Duration of depreciation posting batches",
			Buckets: []float64{.05, .1, .5, 1, 5, 10, 30, 60, 300},
		}),
		BatchesRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "assetledger_depreciation_batches_rejected_total",
			Help: "Batches refused because the same scope and period was already running",
		}),

		// Asset metrics
		AssetsCapitalized: factory.NewCounter(prometheus.CounterOpts{
			Name: "assetledger_assets_capitalized_total",
			Help: "Total number of purchase entries recorded",
		}),
		AssetsDisposed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetledger_assets_disposed_total",
				Help: "Total number of disposals by method",
			},
			[]string{"method"},
		),
		AssetStatusChanges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetledger_asset_status_changes_total",
				Help: "Total lifecycle transitions by target status",
			},
			[]string{"status"},
		),
		AssetsRecalculated: factory.NewCounter(prometheus.CounterOpts{
			Name: "assetledger_assets_recalculated_total",
			Help: "Total number of assets whose value was recalculated",
		}),
		RecalculateDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "assetledger_recalculate_duration_seconds",
			Help:    "Duration of value recalculation runs",
			Buckets: prometheus.DefBuckets,
		}),

		// Ledger metrics
		JournalEntries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetledger_journal_entries_total",
				Help: "Total journal entries stored by source",
			},
			[]string{"source"},
		),
		ConsistencyFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "assetledger_ledger_consistency_failures_total",
			Help: "Consistency checks that found debits not equal to credits",
		}),

		TransactionRetries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetledger_transaction_retries_total",
				Help: "Transactions retried after a transient database error, by SQLSTATE",
			},
			[]string{"code"},
		),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "assetledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Redis metrics
		RedisOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetledger_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetledger_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		// Authentication metrics
		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetledger_auth_failures_total",
				Help: "Total authentication failures",
			},
			[]string{"reason"},
		),

		// Rate limiting metrics
		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetledger_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),

		// Outbox metrics
		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetledger_events_published_total",
				Help: "Outbox events published by type",
			},
			[]string{"event_type"},
		),
		EventsFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetledger_events_failed_total",
				Help: "Outbox events that failed to publish or be marked, by type and stage",
			},
			[]string{"event_type", "stage"},
		),
	}
}
