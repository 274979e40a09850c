package postgres

import (
	"context"

	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/infrastructure/postgres/generated"
	"github.com/iho/assetledger/internal/usecase"
)

// PostingRepository implements usecase.PostingRepository.
type PostingRepository struct {
	queries *generated.Queries
}

// NewPostingRepository creates a new PostingRepository.
func NewPostingRepository(db generated.DBTX) *PostingRepository {
	return &PostingRepository{queries: generated.New(db)}
}

// Exists reports whether a posting guard exists. With a nil tx the check
// runs outside any transaction.
func (r *PostingRepository) Exists(ctx context.Context, tx usecase.Transaction, assetID string, period domain.Period) (bool, error) {
	queries := r.queries
	if tx != nil {
		queries = queriesFor(tx)
	}

	return queries.DepreciationPostingExists(ctx, generated.DepreciationPostingExistsParams{
		AssetID: assetID,
		Period:  period.String(),
	})
}

// Create inserts the posting guard. The primary key turns a duplicate into
// domain.ErrAlreadyPosted.
func (r *PostingRepository) Create(ctx context.Context, tx usecase.Transaction, posting *domain.DepreciationPosting) error {
	err := queriesFor(tx).CreateDepreciationPosting(ctx, generated.CreateDepreciationPostingParams{
		AssetID:        posting.AssetID,
		Period:         posting.Period,
		JournalEntryID: posting.JournalEntryID,
		AmountCents:    int64(posting.Amount),
		PostedAt:       timeToPgTimestamptz(posting.PostedAt),
	})

	return translateError(err)
}

// ListByPeriod lists the postings of assets in scope for a period.
func (r *PostingRepository) ListByPeriod(ctx context.Context, scope domain.Scope, period domain.Period) ([]*domain.DepreciationPosting, error) {
	rows, err := r.queries.ListDepreciationPostingsByPeriod(ctx, generated.ListDepreciationPostingsByPeriodParams{
		Period:         period.String(),
		OrganisationID: scope.OrganisationID,
		BranchID:       scope.BranchID,
	})
	if err != nil {
		return nil, err
	}

	postings := make([]*domain.DepreciationPosting, 0, len(rows))
	for _, row := range rows {
		postings = append(postings, rowToPosting(row))
	}

	return postings, nil
}
