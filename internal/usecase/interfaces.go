package usecase

import (
	"context"
	"time"

	"github.com/iho/assetledger/internal/domain"
)

// AssetFilter narrows an asset listing. Empty AssetIDs means every asset in scope.
type AssetFilter struct {
	AssetIDs []string
	Limit    int
	Offset   int
}

// AssetRepository defines data access for assets.
type AssetRepository interface {
	Create(ctx context.Context, tx Transaction, asset *domain.Asset) error
	GetByID(ctx context.Context, id string) (*domain.Asset, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Asset, error)
	// ListActive returns ACTIVE assets in scope ordered by ID.
	ListActive(ctx context.Context, scope domain.Scope, filter AssetFilter) ([]*domain.Asset, error)
	UpdateValue(ctx context.Context, tx Transaction, id string, value domain.Money, updatedAt time.Time) error
	// UpdateStatus moves the asset from status `from` to `to`. It fails with
	// domain.ErrInvalidTransition when the stored status is no longer `from`.
	UpdateStatus(ctx context.Context, tx Transaction, id string, from, to domain.AssetStatus, value domain.Money, updatedAt time.Time) error
}

// AccountMappingRepository defines data access for chart-of-accounts mappings.
type AccountMappingRepository interface {
	// GetMapping returns nil, nil when the asset type has no mapping.
	GetMapping(ctx context.Context, assetTypeID string) (*domain.AccountMapping, error)
	SetMapping(ctx context.Context, mapping *domain.AccountMapping) error
}

// JournalRepository defines data access for journal entries.
type JournalRepository interface {
	// Create persists a balanced entry and its lines. Unbalanced entries are
	// rejected with domain.ErrUnbalancedEntry.
	Create(ctx context.Context, tx Transaction, entry *domain.JournalEntry) error
	GetByID(ctx context.Context, id string) (*domain.JournalEntry, error)
	ListBySource(ctx context.Context, source domain.JournalSource, sourceID string) ([]*domain.JournalEntry, error)
}

// PostingRepository defines data access for depreciation posting guards.
type PostingRepository interface {
	Exists(ctx context.Context, tx Transaction, assetID string, period domain.Period) (bool, error)
	// Create fails with domain.ErrAlreadyPosted when the (asset, period) pair exists.
	Create(ctx context.Context, tx Transaction, posting *domain.DepreciationPosting) error
	ListByPeriod(ctx context.Context, scope domain.Scope, period domain.Period) ([]*domain.DepreciationPosting, error)
}

// DisposalRepository defines data access for disposals.
type DisposalRepository interface {
	// Create fails with domain.ErrAlreadyDisposed when the asset has a disposal.
	Create(ctx context.Context, tx Transaction, disposal *domain.Disposal) error
	GetByAssetID(ctx context.Context, assetID string) (*domain.Disposal, error)
}

// LedgerRepository defines data access for ledger-wide operations.
type LedgerRepository interface {
	CheckConsistency(ctx context.Context, organisationID string) (totalDebit, totalCredit domain.Money, err error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error)
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier re-runs an operation on transient store failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// BatchLocker serialises depreciation batches for the same scope and period.
type BatchLocker interface {
	// Acquire returns a release func, or domain.ErrBatchInProgress when held elsewhere.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release forgets a key whose request did not succeed. Completed responses are kept.
	Release(ctx context.Context, key string) error
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

type noRetry struct{}

func (noRetry) Retry(_ context.Context, operation func() error) error { return operation() }
