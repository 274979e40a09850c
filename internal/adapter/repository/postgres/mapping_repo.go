package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/infrastructure/postgres/generated"
)

// AccountMappingRepository implements usecase.AccountMappingRepository.
type AccountMappingRepository struct {
	queries *generated.Queries
}

// NewAccountMappingRepository creates a new AccountMappingRepository.
func NewAccountMappingRepository(db generated.DBTX) *AccountMappingRepository {
	return &AccountMappingRepository{queries: generated.New(db)}
}

// GetMapping returns the mapping of an asset type, or nil when there is none.
func (r *AccountMappingRepository) GetMapping(ctx context.Context, assetTypeID string) (*domain.AccountMapping, error) {
	row, err := r.queries.GetAccountMapping(ctx, assetTypeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return rowToMapping(row), nil
}

// SetMapping inserts or replaces a mapping. A mapping whose asset type
// already has journal entries cannot be changed.
func (r *AccountMappingRepository) SetMapping(ctx context.Context, mapping *domain.AccountMapping) error {
	n, err := r.queries.UpsertAccountMapping(ctx, generated.UpsertAccountMappingParams{
		AssetTypeID:                      mapping.AssetTypeID,
		AssetAccountID:                   mapping.AssetAccountID,
		DepreciationExpenseAccountID:     mapping.DepreciationExpenseAccountID,
		AccumulatedDepreciationAccountID: mapping.AccumulatedDepreciationAccountID,
		ProceedsAccountID:                mapping.ProceedsAccountID,
		GainLossAccountID:                mapping.GainLossAccountID,
		CreatedAt:                        timeToPgTimestamptz(mapping.CreatedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrMappingInUse
	}

	return nil
}
