package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createDisposal = `-- name: CreateDisposal :exec
INSERT INTO disposals (id, asset_id, organisation_id, branch_id, disposal_date, method, sale_price_cents, book_value_cents, gain_loss_cents, journal_entry_id, notes, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`

type CreateDisposalParams struct {
	ID             string             `json:"id"`
	AssetID        string             `json:"asset_id"`
	OrganisationID string             `json:"organisation_id"`
	BranchID       string             `json:"branch_id"`
	DisposalDate   pgtype.Date        `json:"disposal_date"`
	Method         string             `json:"method"`
	SalePriceCents int64              `json:"sale_price_cents"`
	BookValueCents int64              `json:"book_value_cents"`
	GainLossCents  int64              `json:"gain_loss_cents"`
	JournalEntryID string             `json:"journal_entry_id"`
	Notes          string             `json:"notes"`
	CreatedAt      pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateDisposal(ctx context.Context, arg CreateDisposalParams) error {
	_, err := q.db.Exec(ctx, createDisposal,
		arg.ID,
		arg.AssetID,
		arg.OrganisationID,
		arg.BranchID,
		arg.DisposalDate,
		arg.Method,
		arg.SalePriceCents,
		arg.BookValueCents,
		arg.GainLossCents,
		arg.JournalEntryID,
		arg.Notes,
		arg.CreatedAt,
	)
	return err
}

const getDisposalByAssetID = `-- name: GetDisposalByAssetID :one
SELECT id, asset_id, organisation_id, branch_id, disposal_date, method, sale_price_cents, book_value_cents, gain_loss_cents, journal_entry_id, notes, created_at FROM disposals WHERE asset_id = $1
`

func (q *Queries) GetDisposalByAssetID(ctx context.Context, assetID string) (Disposal, error) {
	row := q.db.QueryRow(ctx, getDisposalByAssetID, assetID)
	var i Disposal
	err := row.Scan(
		&i.ID,
		&i.AssetID,
		&i.OrganisationID,
		&i.BranchID,
		&i.DisposalDate,
		&i.Method,
		&i.SalePriceCents,
		&i.BookValueCents,
		&i.GainLossCents,
		&i.JournalEntryID,
		&i.Notes,
		&i.CreatedAt,
	)
	return i, err
}
