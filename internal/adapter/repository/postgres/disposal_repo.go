package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/infrastructure/postgres/generated"
	"github.com/iho/assetledger/internal/usecase"
)

// DisposalRepository implements usecase.DisposalRepository.
type DisposalRepository struct {
	queries *generated.Queries
}

// NewDisposalRepository creates a new DisposalRepository.
func NewDisposalRepository(db generated.DBTX) *DisposalRepository {
	return &DisposalRepository{queries: generated.New(db)}
}

// Create inserts a disposal. A second disposal of the same asset fails with
// domain.ErrAlreadyDisposed.
func (r *DisposalRepository) Create(ctx context.Context, tx usecase.Transaction, disposal *domain.Disposal) error {
	err := queriesFor(tx).CreateDisposal(ctx, generated.CreateDisposalParams{
		ID:             disposal.ID,
		AssetID:        disposal.AssetID,
		OrganisationID: disposal.OrganisationID,
		BranchID:       disposal.BranchID,
		DisposalDate:   timeToPgDate(disposal.DisposalDate),
		Method:         string(disposal.Method),
		SalePriceCents: int64(disposal.SalePrice),
		BookValueCents: int64(disposal.BookValueAtDisposal),
		GainLossCents:  int64(disposal.GainLoss),
		JournalEntryID: disposal.JournalEntryID,
		Notes:          disposal.Notes,
		CreatedAt:      timeToPgTimestamptz(disposal.CreatedAt),
	})

	return translateError(err)
}

// GetByAssetID retrieves the disposal of an asset.
func (r *DisposalRepository) GetByAssetID(ctx context.Context, assetID string) (*domain.Disposal, error) {
	row, err := r.queries.GetDisposalByAssetID(ctx, assetID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDisposalNotFound
		}

		return nil, err
	}

	return rowToDisposal(row), nil
}
