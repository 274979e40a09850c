package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultPostingConcurrency bounds how many assets a batch posts at once.
	DefaultPostingConcurrency = 8

	// DefaultAssetTimeout is the persistence deadline for a single asset posting.
	DefaultAssetTimeout = 5 * time.Second

	// DefaultBatchLockTTL is how long a batch lock survives a crashed holder.
	DefaultBatchLockTTL = 15 * time.Minute

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// recalculatePageSize is the page size used when walking assets for recalculation.
	recalculatePageSize = 500
)

// Reasons an asset is skipped by a depreciation batch.
const (
	SkipReasonNonDepreciable   = "non-depreciable"
	SkipReasonUnmappedAccounts = "unmapped accounts"
	SkipReasonNotInService     = "not in service"
	SkipReasonFullyDepreciated = "fully depreciated"
	SkipReasonZeroAmount       = "zero amount"
	SkipReasonAlreadyPosted    = "already posted"
)
