package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/infrastructure/metrics"
	"github.com/iho/assetledger/internal/ledger"
)

// DisposeInput describes how and when an asset left the books.
type DisposeInput struct {
	DisposalDate time.Time
	SalePrice    *domain.Money
	AssetID      string
	Notes        string
	Method       domain.DisposalMethod
}

// DisposalResult is everything a disposal changed.
type DisposalResult struct {
	Disposal     *domain.Disposal
	Asset        *domain.Asset
	JournalEntry *domain.JournalEntry
}

// DisposalUseCase takes assets off the books.
type DisposalUseCase struct {
	txManager    TransactionManager
	assetRepo    AssetRepository
	mappingRepo  AccountMappingRepository
	journalRepo  JournalRepository
	disposalRepo DisposalRepository
	outboxRepo   OutboxRepository
	idGen        IDGenerator
	clock        Clock
	metrics      *metrics.Metrics
	logger       zerolog.Logger
}

// NewDisposalUseCase creates a new DisposalUseCase.
func NewDisposalUseCase(
	txManager TransactionManager,
	assetRepo AssetRepository,
	mappingRepo AccountMappingRepository,
	journalRepo JournalRepository,
	disposalRepo DisposalRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	clock Clock,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *DisposalUseCase {
	if clock == nil {
		clock = SystemClock{}
	}

	return &DisposalUseCase{
		txManager:    txManager,
		assetRepo:    assetRepo,
		mappingRepo:  mappingRepo,
		journalRepo:  journalRepo,
		disposalRepo: disposalRepo,
		outboxRepo:   outboxRepo,
		idGen:        idGen,
		clock:        clock,
		metrics:      metrics,
		logger:       logger.With().Str("component", "disposal").Logger(),
	}
}

// Dispose records the disposal, its balancing journal entry, the asset's
// terminal status and zero value, and an outbox event in one transaction.
// The book value is the asset's current value at the time of disposal.
func (uc *DisposalUseCase) Dispose(ctx context.Context, input DisposeInput) (*DisposalResult, error) {
	if !input.Method.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidDisposal, input.Method)
	}

	salePrice, err := resolveSalePrice(input)
	if err != nil {
		return nil, err
	}

	if len(input.Notes) > domain.MaxNotesLength {
		return nil, fmt.Errorf("%w: notes exceed %d characters", domain.ErrInvalidDisposal, domain.MaxNotesLength)
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

	if asset.Status.IsTerminal() {
		return nil, domain.ErrAlreadyDisposed
	}

	now := uc.clock.Now()
	disposalDate := input.DisposalDate
	if disposalDate.IsZero() {
		disposalDate = now
	}
	if domain.DateOnly(disposalDate).Before(domain.DateOnly(asset.PurchaseDate)) {
		return nil, domain.ErrDisposalBeforeBuying
	}

	mapping, err := uc.mappingRepo.GetMapping(txCtx, asset.AssetTypeID)
	if err != nil {
		return nil, err
	}
	if mapping == nil {
		return nil, &domain.UnmappedAccountsError{AssetTypeID: asset.AssetTypeID}
	}
	if missing := mapping.MissingForDisposal(); len(missing) > 0 {
		return nil, &domain.UnmappedAccountsError{AssetTypeID: asset.AssetTypeID, Missing: missing}
	}

	bookValue := asset.CurrentValue
	disposal := &domain.Disposal{
		ID:                  uc.idGen.Generate(),
		AssetID:             asset.ID,
		OrganisationID:      asset.OrganisationID,
		BranchID:            asset.BranchID,
		DisposalDate:        domain.DateOnly(disposalDate),
		Method:              input.Method,
		SalePrice:           salePrice,
		BookValueAtDisposal: bookValue,
		GainLoss:            salePrice - bookValue,
		Notes:               strings.TrimSpace(input.Notes),
		CreatedAt:           now,
	}

	entry := ledger.BuildDisposalEntry(asset, disposal, mapping)
	if err := ledger.Validate(entry).Err(); err != nil {
		return nil, err
	}
	entry.ID = uc.idGen.Generate()
	entry.CreatedAt = now
	disposal.JournalEntryID = entry.ID

	if err := uc.journalRepo.Create(txCtx, tx, entry); err != nil {
		return nil, err
	}

	if err := uc.disposalRepo.Create(txCtx, tx, disposal); err != nil {
		return nil, err
	}

	status := input.Method.TerminalStatus()
	if err := uc.assetRepo.UpdateStatus(txCtx, tx, asset.ID, asset.Status, status, domain.ZeroMoney, now); err != nil {
		return nil, err
	}

	event := domain.NewOutboxEvent(uc.idGen.Generate(), domain.AggregateTypeAsset, asset.ID, domain.EventTypeAssetDisposed, map[string]any{
		"asset_id":         asset.ID,
		"disposal_id":      disposal.ID,
		"journal_entry_id": entry.ID,
		"method":           string(disposal.Method),
		"status":           string(status),
		"gain_loss_cents":  int64(disposal.GainLoss),
	}, now)
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AssetsDisposed.WithLabelValues(string(disposal.Method)).Inc()
		uc.metrics.JournalEntries.WithLabelValues(string(domain.JournalSourceDisposal)).Inc()
	}

	uc.logger.Info().
		Str("asset_id", asset.ID).
		Str("method", string(disposal.Method)).
		Stringer("gain_loss", disposal.GainLoss).
		Msg("asset disposed")

	asset.Status = status
	asset.CurrentValue = domain.ZeroMoney
	asset.UpdatedAt = now

	return &DisposalResult{Disposal: disposal, Asset: asset, JournalEntry: entry}, nil
}

// GetDisposal returns the disposal recorded for an asset.
func (uc *DisposalUseCase) GetDisposal(ctx context.Context, assetID string) (*domain.Disposal, error) {
	return uc.disposalRepo.GetByAssetID(ctx, assetID)
}

// resolveSalePrice applies the method's proceeds rule. Only SOLD requires a
// price; methods without proceeds always dispose for nothing.
func resolveSalePrice(input DisposeInput) (domain.Money, error) {
	if input.Method.RequiresSalePrice() && input.SalePrice == nil {
		return domain.ZeroMoney, domain.ErrMissingSalePrice
	}

	if input.SalePrice == nil || !input.Method.ReceivesProceeds() {
		return domain.ZeroMoney, nil
	}

	if input.SalePrice.IsNegative() {
		return domain.ZeroMoney, domain.ErrInvalidAmount
	}

	return *input.SalePrice, nil
}
