package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/assetledger/internal/domain"
)

// AssetUseCase registers assets and maintains their account mappings.
type AssetUseCase struct {
	txManager   TransactionManager
	assetRepo   AssetRepository
	mappingRepo AccountMappingRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	clock       Clock
	logger      zerolog.Logger
}

// NewAssetUseCase creates a new AssetUseCase.
func NewAssetUseCase(
	txManager TransactionManager,
	assetRepo AssetRepository,
	mappingRepo AccountMappingRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	clock Clock,
	logger zerolog.Logger,
) *AssetUseCase {
	if clock == nil {
		clock = SystemClock{}
	}

	return &AssetUseCase{
		txManager:   txManager,
		assetRepo:   assetRepo,
		mappingRepo: mappingRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		clock:       clock,
		logger:      logger.With().Str("component", "assets").Logger(),
	}
}

// RegisterAssetInput represents input for registering an asset.
type RegisterAssetInput struct {
	PurchaseDate     time.Time
	DepreciationRate decimal.Decimal
	OrganisationID   string
	BranchID         string
	AssetTypeID      string
	Name             string
	PurchasePrice    domain.Money
	// CurrentValue defaults to PurchasePrice when nil.
	CurrentValue *domain.Money
}

// RegisterAsset stores a new ACTIVE asset.
func (uc *AssetUseCase) RegisterAsset(ctx context.Context, input RegisterAssetInput) (*domain.Asset, error) {
	if input.OrganisationID == "" {
		return nil, domain.ErrMissingOrganisation
	}
	if strings.TrimSpace(input.AssetTypeID) == "" {
		return nil, domain.ErrMissingAssetType
	}
	if input.PurchaseDate.IsZero() {
		input.PurchaseDate = uc.clock.Now()
	}

	now := uc.clock.Now()
	asset := &domain.Asset{
		ID:               uc.idGen.Generate(),
		Name:             strings.TrimSpace(input.Name),
		AssetTypeID:      input.AssetTypeID,
		OrganisationID:   input.OrganisationID,
		BranchID:         input.BranchID,
		Status:           domain.AssetStatusActive,
		DepreciationRate: input.DepreciationRate,
		PurchasePrice:    input.PurchasePrice,
		CurrentValue:     input.PurchasePrice,
		PurchaseDate:     domain.DateOnly(input.PurchaseDate),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if input.CurrentValue != nil {
		asset.CurrentValue = *input.CurrentValue
	}

	if err := asset.Validate(); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.assetRepo.Create(txCtx, tx, asset); err != nil {
		return nil, err
	}

	event := domain.NewOutboxEvent(uc.idGen.Generate(), domain.AggregateTypeAsset, asset.ID, domain.EventTypeAssetRegistered, map[string]any{
		"asset_id":             asset.ID,
		"organisation_id":      asset.OrganisationID,
		"asset_type_id":        asset.AssetTypeID,
		"purchase_price_cents": int64(asset.PurchasePrice),
	}, now)
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	uc.logger.Info().Str("asset_id", asset.ID).Str("asset_type_id", asset.AssetTypeID).Msg("asset registered")

	return asset, nil
}

// GetAsset retrieves an asset by ID.
func (uc *AssetUseCase) GetAsset(ctx context.Context, id string) (*domain.Asset, error) {
	return uc.assetRepo.GetByID(ctx, id)
}

// ListAssetsInput represents input for listing active assets.
type ListAssetsInput struct {
	Scope  domain.Scope
	Limit  int
	Offset int
}

// ListAssets lists ACTIVE assets in scope with pagination.
func (uc *AssetUseCase) ListAssets(ctx context.Context, input ListAssetsInput) ([]*domain.Asset, error) {
	if input.Scope.OrganisationID == "" {
		return nil, domain.ErrMissingOrganisation
	}

	limit, offset, err := domain.ValidatePagination(input.Limit, input.Offset)
	if err != nil {
		return nil, err
	}

	return uc.assetRepo.ListActive(ctx, input.Scope, AssetFilter{Limit: limit, Offset: offset})
}

// ListEvents returns the outbox history of an asset, oldest first. Events
// that were already published and purged are not returned.
func (uc *AssetUseCase) ListEvents(ctx context.Context, assetID string, limit, offset int) ([]*domain.OutboxEvent, error) {
	if _, err := uc.assetRepo.GetByID(ctx, assetID); err != nil {
		return nil, err
	}

	limit, offset, err := domain.ValidatePagination(limit, offset)
	if err != nil {
		return nil, err
	}

	return uc.outboxRepo.GetByAggregate(ctx, domain.AggregateTypeAsset, assetID, limit, offset)
}

// SetMapping stores the chart-of-accounts mapping of an asset type. The
// asset account is always required; the other accounts may be filled later
// as long as no entry has used the mapping.
func (uc *AssetUseCase) SetMapping(ctx context.Context, mapping domain.AccountMapping) (*domain.AccountMapping, error) {
	mapping.AssetTypeID = strings.TrimSpace(mapping.AssetTypeID)
	if mapping.AssetTypeID == "" {
		return nil, domain.ErrMissingAssetType
	}
	if err := domain.ValidateAccountID(mapping.AssetAccountID); err != nil {
		return nil, err
	}

	for _, id := range []string{
		mapping.DepreciationExpenseAccountID,
		mapping.AccumulatedDepreciationAccountID,
		mapping.ProceedsAccountID,
		mapping.GainLossAccountID,
	} {
		if id == "" {
			continue
		}
		if err := domain.ValidateAccountID(id); err != nil {
			return nil, err
		}
	}

	if existing, err := uc.mappingRepo.GetMapping(ctx, mapping.AssetTypeID); err != nil {
		return nil, err
	} else if existing != nil {
		mapping.CreatedAt = existing.CreatedAt
	} else {
		mapping.CreatedAt = uc.clock.Now()
	}

	if err := uc.mappingRepo.SetMapping(ctx, &mapping); err != nil {
		return nil, err
	}

	uc.logger.Info().Str("asset_type_id", mapping.AssetTypeID).Msg("account mapping stored")

	return &mapping, nil
}

// GetMapping returns the mapping of an asset type or an
// *domain.UnmappedAccountsError when there is none.
func (uc *AssetUseCase) GetMapping(ctx context.Context, assetTypeID string) (*domain.AccountMapping, error) {
	mapping, err := uc.mappingRepo.GetMapping(ctx, assetTypeID)
	if err != nil {
		return nil, err
	}
	if mapping == nil {
		return nil, &domain.UnmappedAccountsError{AssetTypeID: assetTypeID}
	}

	return mapping, nil
}
