package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/infrastructure/metrics"
	"github.com/iho/assetledger/internal/ledger"
)

// RecalculationUseCase re-derives asset values from purchase data.
type RecalculationUseCase struct {
	txManager  TransactionManager
	assetRepo  AssetRepository
	outboxRepo OutboxRepository
	idGen      IDGenerator
	clock      Clock
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewRecalculationUseCase creates a new RecalculationUseCase.
func NewRecalculationUseCase(
	txManager TransactionManager,
	assetRepo AssetRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	clock Clock,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *RecalculationUseCase {
	if clock == nil {
		clock = SystemClock{}
	}

	return &RecalculationUseCase{
		txManager:  txManager,
		assetRepo:  assetRepo,
		outboxRepo: outboxRepo,
		idGen:      idGen,
		clock:      clock,
		metrics:    metrics,
		logger:     logger.With().Str("component", "recalculation").Logger(),
	}
}

// RecalculateAll overwrites CurrentValue with the book value as of now for
// every ACTIVE asset of the organisation and returns how many were examined.
// It never posts journal entries and never changes status. Assets already at
// their book value are not rewritten.
func (uc *RecalculationUseCase) RecalculateAll(ctx context.Context, organisationID string) (int, error) {
	if organisationID == "" {
		return 0, domain.ErrMissingOrganisation
	}

	start := time.Now()
	asOf := uc.clock.Now()
	scope := domain.Scope{OrganisationID: organisationID}

	processed, changed := 0, 0

	for offset := 0; ; offset += recalculatePageSize {
		limit, off, _ := domain.ValidatePagination(recalculatePageSize, offset)

		assets, err := uc.assetRepo.ListActive(ctx, scope, AssetFilter{Limit: limit, Offset: off})
		if err != nil {
			return processed, err
		}

		for _, asset := range assets {
			updated, err := uc.recalculate(ctx, asset, asOf)
			if err != nil {
				return processed, err
			}

			processed++
			if updated {
				changed++
			}
		}

		if len(assets) < limit {
			break
		}
	}

	if changed > 0 {
		if err := uc.emitSummary(ctx, organisationID, processed, changed, asOf); err != nil {
			return processed, err
		}
	}

	if uc.metrics != nil {
		uc.metrics.AssetsRecalculated.Add(float64(processed))
		uc.metrics.RecalculateDuration.Observe(time.Since(start).Seconds())
	}

	uc.logger.Info().
		Str("organisation_id", organisationID).
		Int("processed", processed).
		Int("changed", changed).
		Msg("asset values recalculated")

	return processed, nil
}

func (uc *RecalculationUseCase) recalculate(ctx context.Context, asset *domain.Asset, asOf time.Time) (bool, error) {
	value := ledger.BookValue(asset, asOf)
	if value == asset.CurrentValue {
		return false, nil
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	locked, err := uc.assetRepo.GetByIDForUpdate(txCtx, tx, asset.ID)
	if err != nil {
		return false, err
	}

	// The asset may have been disposed since it was listed.
	value = ledger.BookValue(locked, asOf)
	if locked.Status != domain.AssetStatusActive || value == locked.CurrentValue {
		return false, nil
	}

	if err := uc.assetRepo.UpdateValue(txCtx, tx, locked.ID, value, asOf); err != nil {
		return false, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return false, err
	}

	uc.logger.Debug().
		Str("asset_id", locked.ID).
		Stringer("from", locked.CurrentValue).
		Stringer("to", value).
		Msg("asset value recalculated")

	return true, nil
}

func (uc *RecalculationUseCase) emitSummary(ctx context.Context, organisationID string, processed, changed int, at time.Time) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	event := domain.NewOutboxEvent(uc.idGen.Generate(), domain.AggregateTypeOrganisation, organisationID, domain.EventTypeAssetsRecalculated, map[string]any{
		"organisation_id": organisationID,
		"processed":       processed,
		"changed":         changed,
		"as_of":           at.Format(time.RFC3339),
	}, at)
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
