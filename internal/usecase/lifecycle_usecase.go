package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/infrastructure/metrics"
)

// ChangeStatusInput requests a lifecycle transition.
type ChangeStatusInput struct {
	AssetID string
	Status  domain.AssetStatus
}

// LifecycleUseCase moves assets between non-disposal statuses.
type LifecycleUseCase struct {
	txManager  TransactionManager
	assetRepo  AssetRepository
	outboxRepo OutboxRepository
	idGen      IDGenerator
	clock      Clock
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewLifecycleUseCase creates a new LifecycleUseCase.
func NewLifecycleUseCase(
	txManager TransactionManager,
	assetRepo AssetRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	clock Clock,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *LifecycleUseCase {
	if clock == nil {
		clock = SystemClock{}
	}

	return &LifecycleUseCase{
		txManager:  txManager,
		assetRepo:  assetRepo,
		outboxRepo: outboxRepo,
		idGen:      idGen,
		clock:      clock,
		metrics:    metrics,
		logger:     logger.With().Str("component", "lifecycle").Logger(),
	}
}

// ChangeStatus applies a transition allowed by Asset.CanTransitionTo. The
// disposal statuses are reachable only through DisposalUseCase.
func (uc *LifecycleUseCase) ChangeStatus(ctx context.Context, input ChangeStatusInput) (*domain.Asset, error) {
	if !input.Status.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, input.Status)
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	asset, err := uc.assetRepo.GetByIDForUpdate(txCtx, tx, input.AssetID)
	if err != nil {
		return nil, err
	}

	if err := asset.CanTransitionTo(input.Status); err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	from := asset.Status

	if err := uc.assetRepo.UpdateStatus(txCtx, tx, asset.ID, from, input.Status, asset.CurrentValue, now); err != nil {
		return nil, err
	}

	event := domain.NewOutboxEvent(uc.idGen.Generate(), domain.AggregateTypeAsset, asset.ID, domain.EventTypeAssetStatusChanged, map[string]any{
		"asset_id": asset.ID,
		"from":     string(from),
		"to":       string(input.Status),
	}, now)
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AssetStatusChanges.WithLabelValues(string(input.Status)).Inc()
	}

	uc.logger.Info().
		Str("asset_id", asset.ID).
		Str("from", string(from)).
		Str("to", string(input.Status)).
		Msg("asset status changed")

	asset.Status = input.Status
	asset.UpdatedAt = now

	return asset, nil
}
