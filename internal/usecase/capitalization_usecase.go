package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/infrastructure/metrics"
	"github.com/iho/assetledger/internal/ledger"
)

// RecordPurchaseInput names the asset and the account that paid for it.
type RecordPurchaseInput struct {
	AssetID       string
	CashAccountID string
}

// CapitalizationUseCase records asset purchases in the journal.
type CapitalizationUseCase struct {
	txManager   TransactionManager
	assetRepo   AssetRepository
	mappingRepo AccountMappingRepository
	journalRepo JournalRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	clock       Clock
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewCapitalizationUseCase creates a new CapitalizationUseCase.
func NewCapitalizationUseCase(
	txManager TransactionManager,
	assetRepo AssetRepository,
	mappingRepo AccountMappingRepository,
	journalRepo JournalRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	clock Clock,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *CapitalizationUseCase {
	if clock == nil {
		clock = SystemClock{}
	}

	return &CapitalizationUseCase{
		txManager:   txManager,
		assetRepo:   assetRepo,
		mappingRepo: mappingRepo,
		journalRepo: journalRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		clock:       clock,
		metrics:     metrics,
		logger:      logger.With().Str("component", "capitalization").Logger(),
	}
}

// RecordPurchase posts the purchase entry for an asset. Each asset is
// capitalised at most once; a repeat returns domain.ErrAlreadyCapitalized.
func (uc *CapitalizationUseCase) RecordPurchase(ctx context.Context, input RecordPurchaseInput) (*domain.JournalEntry, error) {
	if err := domain.ValidateAccountID(input.CashAccountID); err != nil {
		return nil, err
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

	existing, err := uc.journalRepo.ListBySource(txCtx, domain.JournalSourcePurchase, asset.ID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, domain.ErrAlreadyCapitalized
	}

	mapping, err := uc.mappingRepo.GetMapping(txCtx, asset.AssetTypeID)
	if err != nil {
		return nil, err
	}
	if mapping == nil || mapping.AssetAccountID == "" {
		return nil, &domain.UnmappedAccountsError{AssetTypeID: asset.AssetTypeID, Missing: []string{"asset_account_id"}}
	}

	entry := ledger.BuildPurchaseEntry(asset, input.CashAccountID, mapping.AssetAccountID)
	if err := ledger.Validate(entry).Err(); err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	entry.ID = uc.idGen.Generate()
	entry.CreatedAt = now

	if err := uc.journalRepo.Create(txCtx, tx, entry); err != nil {
		return nil, err
	}

	event := domain.NewOutboxEvent(uc.idGen.Generate(), domain.AggregateTypeAsset, asset.ID, domain.EventTypeAssetCapitalized, map[string]any{
		"asset_id":         asset.ID,
		"journal_entry_id": entry.ID,
		"amount_cents":     int64(asset.PurchasePrice),
	}, now)
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AssetsCapitalized.Inc()
		uc.metrics.JournalEntries.WithLabelValues(string(domain.JournalSourcePurchase)).Inc()
	}

	uc.logger.Info().Str("asset_id", asset.ID).Str("journal_entry_id", entry.ID).Msg("purchase recorded")

	return entry, nil
}
