package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/infrastructure/postgres/generated"
	"github.com/iho/assetledger/internal/usecase"
)

// JournalRepository implements usecase.JournalRepository.
type JournalRepository struct {
	queries *generated.Queries
}

// NewJournalRepository creates a new JournalRepository.
func NewJournalRepository(db generated.DBTX) *JournalRepository {
	return &JournalRepository{queries: generated.New(db)}
}

// Create stores an entry and its lines. Unbalanced entries are rejected
// before anything is written; the deferred balance trigger checks again at commit.
func (r *JournalRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error {
	if !entry.IsBalanced() {
		return domain.ErrUnbalancedEntry
	}

	queries := queriesFor(tx)

	err := queries.CreateJournalEntry(ctx, generated.CreateJournalEntryParams{
		ID:             entry.ID,
		OrganisationID: entry.OrganisationID,
		BranchID:       entry.BranchID,
		EntryDate:      timeToPgDate(entry.Date),
		Memo:           entry.Memo,
		Source:         string(entry.Source),
		SourceID:       entry.SourceID,
		Period:         entry.Period,
		CreatedAt:      timeToPgTimestamptz(entry.CreatedAt),
	})
	if err != nil {
		return translateError(err)
	}

	for i, line := range entry.Lines {
		err := queries.CreateJournalLine(ctx, generated.CreateJournalLineParams{
			EntryID:     entry.ID,
			LineNo:      int32(i + 1),
			AccountID:   line.AccountID,
			Description: line.Description,
			DebitCents:  int64(line.Debit),
			CreditCents: int64(line.Credit),
		})
		if err != nil {
			return translateError(err)
		}
	}

	return nil
}

// GetByID retrieves an entry with its lines.
func (r *JournalRepository) GetByID(ctx context.Context, id string) (*domain.JournalEntry, error) {
	row, err := r.queries.GetJournalEntryByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrJournalNotFound
		}

		return nil, err
	}

	lines, err := r.queries.ListJournalLinesByEntryIDs(ctx, []string{id})
	if err != nil {
		return nil, err
	}

	return rowToJournalEntry(row, lines), nil
}

// ListBySource lists the entries recorded for an asset event, oldest first.
func (r *JournalRepository) ListBySource(ctx context.Context, source domain.JournalSource, sourceID string) ([]*domain.JournalEntry, error) {
	rows, err := r.queries.ListJournalEntriesBySource(ctx, generated.ListJournalEntriesBySourceParams{
		Source:   string(source),
		SourceID: sourceID,
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	lines, err := r.queries.ListJournalLinesByEntryIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byEntry := make(map[string][]generated.JournalLine, len(rows))
	for _, l := range lines {
		byEntry[l.EntryID] = append(byEntry[l.EntryID], l)
	}

	entries := make([]*domain.JournalEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, rowToJournalEntry(row, byEntry[row.ID]))
	}

	return entries, nil
}
