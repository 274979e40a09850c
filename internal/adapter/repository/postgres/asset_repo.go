package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/infrastructure/postgres/generated"
	"github.com/iho/assetledger/internal/usecase"
)

// AssetRepository implements usecase.AssetRepository.
type AssetRepository struct {
	queries *generated.Queries
}

// NewAssetRepository creates a new AssetRepository.
func NewAssetRepository(db generated.DBTX) *AssetRepository {
	return &AssetRepository{queries: generated.New(db)}
}

// Create inserts a new asset.
func (r *AssetRepository) Create(ctx context.Context, tx usecase.Transaction, asset *domain.Asset) error {
	err := queriesFor(tx).CreateAsset(ctx, generated.CreateAssetParams{
		ID:                 asset.ID,
		OrganisationID:     asset.OrganisationID,
		BranchID:           asset.BranchID,
		AssetTypeID:        asset.AssetTypeID,
		Name:               asset.Name,
		Status:             string(asset.Status),
		PurchaseDate:       timeToPgDate(asset.PurchaseDate),
		DepreciationRate:   asset.DepreciationRate,
		PurchasePriceCents: int64(asset.PurchasePrice),
		CurrentValueCents:  int64(asset.CurrentValue),
		CreatedAt:          timeToPgTimestamptz(asset.CreatedAt),
		UpdatedAt:          timeToPgTimestamptz(asset.UpdatedAt),
	})

	return translateError(err)
}

// GetByID retrieves an asset by ID.
func (r *AssetRepository) GetByID(ctx context.Context, id string) (*domain.Asset, error) {
	row, err := r.queries.GetAssetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAssetNotFound
		}

		return nil, err
	}

	return rowToAsset(row), nil
}

// GetByIDForUpdate retrieves an asset by ID with a FOR UPDATE lock.
func (r *AssetRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Asset, error) {
	row, err := queriesFor(tx).GetAssetByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAssetNotFound
		}

		return nil, err
	}

	return rowToAsset(row), nil
}

// ListActive lists ACTIVE assets in scope ordered by ID.
func (r *AssetRepository) ListActive(ctx context.Context, scope domain.Scope, filter usecase.AssetFilter) ([]*domain.Asset, error) {
	ids := filter.AssetIDs
	if ids == nil {
		ids = []string{}
	}

	rows, err := r.queries.ListActiveAssets(ctx, generated.ListActiveAssetsParams{
		OrganisationID: scope.OrganisationID,
		BranchID:       scope.BranchID,
		AssetIds:       ids,
		Limit:          int32(filter.Limit),
		Offset:         int32(filter.Offset),
	})
	if err != nil {
		return nil, err
	}

	assets := make([]*domain.Asset, 0, len(rows))
	for _, row := range rows {
		assets = append(assets, rowToAsset(row))
	}

	return assets, nil
}

// UpdateValue sets the current value of an asset.
func (r *AssetRepository) UpdateValue(ctx context.Context, tx usecase.Transaction, id string, value domain.Money, updatedAt time.Time) error {
	n, err := queriesFor(tx).UpdateAssetValue(ctx, generated.UpdateAssetValueParams{
		ID:                id,
		CurrentValueCents: int64(value),
		UpdatedAt:         timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return translateError(err)
	}
	if n == 0 {
		return domain.ErrAssetNotFound
	}

	return nil
}

// UpdateStatus moves an asset from one status to another. It fails with
// domain.ErrInvalidTransition when the stored status is no longer from.
func (r *AssetRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, from, to domain.AssetStatus, value domain.Money, updatedAt time.Time) error {
	n, err := queriesFor(tx).UpdateAssetStatus(ctx, generated.UpdateAssetStatusParams{
		ID:                id,
		FromStatus:        string(from),
		ToStatus:          string(to),
		CurrentValueCents: int64(value),
		UpdatedAt:         timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return translateError(err)
	}
	if n == 0 {
		return domain.ErrInvalidTransition
	}

	return nil
}
