package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/infrastructure/metrics"
	"github.com/iho/assetledger/internal/ledger"
)

// DepreciationConfig tunes batch posting.
type DepreciationConfig struct {
	Concurrency  int
	AssetTimeout time.Duration
	LockTTL      time.Duration
}

func (c DepreciationConfig) withDefaults() DepreciationConfig {
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultPostingConcurrency
	}
	if c.AssetTimeout <= 0 {
		c.AssetTimeout = DefaultAssetTimeout
	}
	if c.LockTTL <= 0 {
		c.LockTTL = DefaultBatchLockTTL
	}
	return c
}

// PostDepreciationInput selects the assets and period of a batch.
type PostDepreciationInput struct {
	OrganisationID string
	BranchID       string
	AssetIDs       []string
	Period         domain.Period
}

// PostedAsset is an asset whose depreciation was committed.
type PostedAsset struct {
	AssetID        string
	JournalEntryID string
	Amount         domain.Money
	CurrentValue   domain.Money
}

// SkippedAsset is an asset deliberately left alone.
type SkippedAsset struct {
	AssetID string
	Reason  string
	Detail  string
}

// FailedAsset is an asset whose posting was attempted and rolled back.
type FailedAsset struct {
	AssetID string
	Err     error
}

// BatchResult partitions every asset in scope into exactly one outcome.
// Unprocessed holds assets never attempted because the batch was cancelled.
type BatchResult struct {
	Period      domain.Period
	Posted      []PostedAsset
	Skipped     []SkippedAsset
	Failed      []FailedAsset
	Unprocessed []string
}

// Total is the number of assets accounted for by the result.
func (r *BatchResult) Total() int {
	return len(r.Posted) + len(r.Skipped) + len(r.Failed) + len(r.Unprocessed)
}

// DepreciationUseCase posts periodic depreciation for a scope of assets.
type DepreciationUseCase struct {
	txManager   TransactionManager
	assetRepo   AssetRepository
	mappingRepo AccountMappingRepository
	journalRepo JournalRepository
	postingRepo PostingRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	retrier     Retrier
	clock       Clock
	locker      BatchLocker
	metrics     *metrics.Metrics
	logger      zerolog.Logger
	cfg         DepreciationConfig
}

// NewDepreciationUseCase creates a new DepreciationUseCase. A nil retrier runs
// each posting once; a nil locker disables batch locking.
func NewDepreciationUseCase(
	txManager TransactionManager,
	assetRepo AssetRepository,
	mappingRepo AccountMappingRepository,
	journalRepo JournalRepository,
	postingRepo PostingRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	retrier Retrier,
	clock Clock,
	locker BatchLocker,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
	cfg DepreciationConfig,
) *DepreciationUseCase {
	if retrier == nil {
		retrier = noRetry{}
	}
	if clock == nil {
		clock = SystemClock{}
	}

	return &DepreciationUseCase{
		txManager:   txManager,
		assetRepo:   assetRepo,
		mappingRepo: mappingRepo,
		journalRepo: journalRepo,
		postingRepo: postingRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		retrier:     retrier,
		clock:       clock,
		locker:      locker,
		metrics:     metrics,
		logger:      logger.With().Str("component", "depreciation").Logger(),
		cfg:         cfg.withDefaults(),
	}
}

// PostDepreciation posts one period of depreciation for every ACTIVE asset in
// scope. The batch is not atomic: each asset commits on its own, and a failure
// on one asset never aborts the rest. Re-running the same period is safe.
//
// If ctx is cancelled no further assets are started; the partial result is
// returned together with the context error.
func (uc *DepreciationUseCase) PostDepreciation(ctx context.Context, input PostDepreciationInput) (*BatchResult, error) {
	if input.OrganisationID == "" {
		return nil, domain.ErrMissingOrganisation
	}
	if input.Period.IsZero() {
		return nil, domain.ErrInvalidPeriod
	}

	start := time.Now()
	scope := domain.Scope{OrganisationID: input.OrganisationID, BranchID: input.BranchID}
	log := uc.logger.With().
		Str("organisation_id", scope.OrganisationID).
		Str("branch_id", scope.BranchID).
		Stringer("period", input.Period).
		Logger()

	if uc.locker != nil {
		release, err := uc.locker.Acquire(ctx, BatchLockKey(scope, input.Period), uc.cfg.LockTTL)
		if err != nil {
			if errors.Is(err, domain.ErrBatchInProgress) && uc.metrics != nil {
				uc.metrics.BatchesRejected.Inc()
			}
			return nil, err
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				log.Warn().Err(err).Msg("failed to release batch lock")
			}
		}()
	}

	assets, err := uc.listActive(ctx, scope, input.AssetIDs)
	if err != nil {
		return nil, fmt.Errorf("list active assets: %w", err)
	}

	col := &batchCollector{result: &BatchResult{Period: input.Period}}
	mappings := newMappingMemo(uc.mappingRepo)

	var g errgroup.Group
	g.SetLimit(uc.cfg.Concurrency)

	for i, asset := range assets {
		if ctx.Err() != nil {
			for _, rest := range assets[i:] {
				col.unprocessed(rest.ID)
			}
			break
		}

		g.Go(func() error {
			uc.postAsset(ctx, asset, input.Period, mappings, col)
			return nil
		})
	}

	_ = g.Wait()

	result := col.finish()
	uc.record(result, time.Since(start))

	log.Info().
		Int("posted", len(result.Posted)).
		Int("skipped", len(result.Skipped)).
		Int("failed", len(result.Failed)).
		Int("unprocessed", len(result.Unprocessed)).
		Dur("duration", time.Since(start)).
		Msg("depreciation batch finished")

	if err := ctx.Err(); err != nil {
		return result, err
	}

	return result, nil
}

// ListPostings returns the posting guards recorded for a period.
func (uc *DepreciationUseCase) ListPostings(ctx context.Context, scope domain.Scope, period domain.Period) ([]*domain.DepreciationPosting, error) {
	if scope.OrganisationID == "" {
		return nil, domain.ErrMissingOrganisation
	}
	return uc.postingRepo.ListByPeriod(ctx, scope, period)
}

// BatchLockKey names the lock guarding a batch for scope and period.
func BatchLockKey(scope domain.Scope, period domain.Period) string {
	branch := scope.BranchID
	if branch == "" {
		branch = "*"
	}
	return fmt.Sprintf("depreciation:%s:%s:%s", scope.OrganisationID, branch, period)
}

func (uc *DepreciationUseCase) listActive(ctx context.Context, scope domain.Scope, ids []string) ([]*domain.Asset, error) {
	var assets []*domain.Asset

	for offset := 0; ; offset += recalculatePageSize {
		page, err := uc.assetRepo.ListActive(ctx, scope, AssetFilter{AssetIDs: ids, Limit: recalculatePageSize, Offset: offset})
		if err != nil {
			return nil, err
		}

		assets = append(assets, page...)
		if len(page) < recalculatePageSize {
			return assets, nil
		}
	}
}

func (uc *DepreciationUseCase) postAsset(ctx context.Context, asset *domain.Asset, period domain.Period, mappings *mappingMemo, col *batchCollector) {
	if ctx.Err() != nil {
		col.unprocessed(asset.ID)
		return
	}

	if !asset.IsDepreciable() {
		col.skip(asset.ID, SkipReasonNonDepreciable, "")
		return
	}

	if period.Before(domain.PeriodOf(asset.PurchaseDate)) {
		col.skip(asset.ID, SkipReasonNotInService, "purchased "+domain.DateOnly(asset.PurchaseDate).Format(time.DateOnly))
		return
	}

	mapping, err := mappings.get(ctx, asset.AssetTypeID)
	if err != nil {
		uc.fail(col, asset.ID, period, domain.NewPersistenceError("load account mapping", err))
		return
	}

	if mapping == nil || len(mapping.MissingForDepreciation()) > 0 {
		unmapped := &domain.UnmappedAccountsError{AssetTypeID: asset.AssetTypeID}
		if mapping != nil {
			unmapped.Missing = mapping.MissingForDepreciation()
		}
		col.skip(asset.ID, SkipReasonUnmappedAccounts, unmapped.Error())
		return
	}

	actx, cancel := context.WithTimeout(ctx, uc.cfg.AssetTimeout)
	defer cancel()

	var (
		posted *PostedAsset
		reason string
	)

	err = uc.retrier.Retry(actx, func() error {
		var err error
		posted, reason, err = uc.postInTx(actx, asset.ID, period, mapping)
		return err
	})

	switch {
	case err == nil && reason != "":
		col.skip(asset.ID, reason, "")
	case err == nil:
		col.post(*posted)
		uc.logger.Debug().
			Str("asset_id", asset.ID).
			Stringer("period", period).
			Stringer("amount", posted.Amount).
			Msg("depreciation posted")
	case errors.Is(err, domain.ErrAlreadyPosted):
		col.skip(asset.ID, SkipReasonAlreadyPosted, "")
	case errors.Is(err, domain.ErrInvalidEntry):
		uc.fail(col, asset.ID, period, err)
	case ctx.Err() != nil:
		col.unprocessed(asset.ID)
	default:
		uc.fail(col, asset.ID, period, domain.NewPersistenceError("post depreciation", err))
	}
}

// postInTx commits the journal entry, posting guard, value decrement and
// outbox event for one asset. A non-empty reason means the asset was skipped.
func (uc *DepreciationUseCase) postInTx(ctx context.Context, assetID string, period domain.Period, mapping *domain.AccountMapping) (*PostedAsset, string, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	exists, err := uc.postingRepo.Exists(ctx, tx, assetID, period)
	if err != nil {
		return nil, "", err
	}
	if exists {
		return nil, SkipReasonAlreadyPosted, nil
	}

	asset, err := uc.assetRepo.GetByIDForUpdate(ctx, tx, assetID)
	if err != nil {
		return nil, "", err
	}

	if !asset.IsDepreciable() {
		return nil, SkipReasonNonDepreciable, nil
	}

	amount := ledger.PostingAmount(asset, period)
	if amount.IsZero() {
		if asset.CurrentValue.IsZero() {
			return nil, SkipReasonFullyDepreciated, nil
		}
		return nil, SkipReasonZeroAmount, nil
	}

	entry := ledger.BuildDepreciationEntry(asset, amount, mapping.DepreciationExpenseAccountID, mapping.AccumulatedDepreciationAccountID, period)
	if err := ledger.Validate(entry).Err(); err != nil {
		return nil, "", err
	}

	now := uc.clock.Now()
	entry.ID = uc.idGen.Generate()
	entry.CreatedAt = now

	if err := uc.journalRepo.Create(ctx, tx, entry); err != nil {
		return nil, "", err
	}

	posting := &domain.DepreciationPosting{
		AssetID:        asset.ID,
		Period:         period.String(),
		JournalEntryID: entry.ID,
		Amount:         amount,
		PostedAt:       now,
	}
	if err := uc.postingRepo.Create(ctx, tx, posting); err != nil {
		return nil, "", err
	}

	newValue := asset.CurrentValue - amount
	if err := uc.assetRepo.UpdateValue(ctx, tx, asset.ID, newValue, now); err != nil {
		return nil, "", err
	}

	event := domain.NewOutboxEvent(uc.idGen.Generate(), domain.AggregateTypeAsset, asset.ID, domain.EventTypeDepreciationPosted, map[string]any{
		"asset_id":            asset.ID,
		"period":              period.String(),
		"journal_entry_id":    entry.ID,
		"amount_cents":        int64(amount),
		"current_value_cents": int64(newValue),
	}, now)
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, "", err
	}

	return &PostedAsset{
		AssetID:        asset.ID,
		JournalEntryID: entry.ID,
		Amount:         amount,
		CurrentValue:   newValue,
	}, "", nil
}

func (uc *DepreciationUseCase) fail(col *batchCollector, assetID string, period domain.Period, err error) {
	col.fail(assetID, err)
	uc.logger.Warn().
		Err(err).
		Str("asset_id", assetID).
		Stringer("period", period).
		Msg("depreciation posting failed")
}

func (uc *DepreciationUseCase) record(result *BatchResult, elapsed time.Duration) {
	if uc.metrics == nil {
		return
	}

	uc.metrics.BatchDuration.Observe(elapsed.Seconds())
	for _, p := range result.Posted {
		uc.metrics.DepreciationPostings.WithLabelValues(metrics.OutcomePosted, "").Inc()
		uc.metrics.DepreciationAmount.Add(float64(p.Amount))
	}
	for _, s := range result.Skipped {
		uc.metrics.DepreciationPostings.WithLabelValues(metrics.OutcomeSkipped, s.Reason).Inc()
	}
	for _, f := range result.Failed {
		reason := "validation"
		var pe *domain.PersistenceError
		if errors.As(f.Err, &pe) {
			reason = "persistence"
			if pe.Timeout() {
				reason = "timeout"
			}
		}
		uc.metrics.DepreciationPostings.WithLabelValues(metrics.OutcomeFailed, reason).Inc()
	}
}

type batchCollector struct {
	mu     sync.Mutex
	result *BatchResult
}

func (c *batchCollector) post(p PostedAsset) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.result.Posted = append(c.result.Posted, p)
}

func (c *batchCollector) skip(assetID, reason, detail string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.result.Skipped = append(c.result.Skipped, SkippedAsset{AssetID: assetID, Reason: reason, Detail: detail})
}

func (c *batchCollector) fail(assetID string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.result.Failed = append(c.result.Failed, FailedAsset{AssetID: assetID, Err: err})
}

func (c *batchCollector) unprocessed(assetID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.result.Unprocessed = append(c.result.Unprocessed, assetID)
}

// finish orders every list by asset ID so results do not depend on scheduling.
func (c *batchCollector) finish() *BatchResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	r := c.result
	sort.Slice(r.Posted, func(i, j int) bool { return r.Posted[i].AssetID < r.Posted[j].AssetID })
	sort.Slice(r.Skipped, func(i, j int) bool { return r.Skipped[i].AssetID < r.Skipped[j].AssetID })
	sort.Slice(r.Failed, func(i, j int) bool { return r.Failed[i].AssetID < r.Failed[j].AssetID })
	sort.Strings(r.Unprocessed)

	return r
}

// mappingMemo loads each asset type's mapping at most once per batch.
type mappingMemo struct {
	repo  AccountMappingRepository
	group singleflight.Group
	mu    sync.Mutex
	cache map[string]*domain.AccountMapping
}

func newMappingMemo(repo AccountMappingRepository) *mappingMemo {
	return &mappingMemo{repo: repo, cache: make(map[string]*domain.AccountMapping)}
}

func (m *mappingMemo) get(ctx context.Context, assetTypeID string) (*domain.AccountMapping, error) {
	m.mu.Lock()
	mapping, ok := m.cache[assetTypeID]
	m.mu.Unlock()
	if ok {
		return mapping, nil
	}

	v, err, _ := m.group.Do(assetTypeID, func() (any, error) {
		mapping, err := m.repo.GetMapping(ctx, assetTypeID)
		if err != nil {
			return nil, err
		}

		m.mu.Lock()
		m.cache[assetTypeID] = mapping
		m.mu.Unlock()

		return mapping, nil
	})
	if err != nil {
		return nil, err
	}

	mapping, _ = v.(*domain.AccountMapping)
	return mapping, nil
}
