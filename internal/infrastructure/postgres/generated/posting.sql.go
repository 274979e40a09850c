package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createDepreciationPosting = `-- name: CreateDepreciationPosting :exec
INSERT INTO depreciation_postings (asset_id, period, journal_entry_id, amount_cents, posted_at)
VALUES ($1, $2, $3, $4, $5)
`

type CreateDepreciationPostingParams struct {
	AssetID        string             `json:"asset_id"`
	Period         string             `json:"period"`
	JournalEntryID string             `json:"journal_entry_id"`
	AmountCents    int64              `json:"amount_cents"`
	PostedAt       pgtype.Timestamptz `json:"posted_at"`
}

func (q *Queries) CreateDepreciationPosting(ctx context.Context, arg CreateDepreciationPostingParams) error {
	_, err := q.db.Exec(ctx, createDepreciationPosting,
		arg.AssetID,
		arg.Period,
		arg.JournalEntryID,
		arg.AmountCents,
		arg.PostedAt,
	)
	return err
}

const depreciationPostingExists = `-- name: DepreciationPostingExists :one
SELECT EXISTS (SELECT 1 FROM depreciation_postings WHERE asset_id = $1 AND period = $2)
`

type DepreciationPostingExistsParams struct {
	AssetID string `json:"asset_id"`
	Period  string `json:"period"`
}

func (q *Queries) DepreciationPostingExists(ctx context.Context, arg DepreciationPostingExistsParams) (bool, error) {
	row := q.db.QueryRow(ctx, depreciationPostingExists, arg.AssetID, arg.Period)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const listDepreciationPostingsByPeriod = `-- name: ListDepreciationPostingsByPeriod :many
SELECT p.asset_id, p.period, p.journal_entry_id, p.amount_cents, p.posted_at FROM depreciation_postings p
JOIN assets a ON a.id = p.asset_id
WHERE p.period = $1
  AND a.organisation_id = $2
  AND ($3::text = '' OR a.branch_id = $3::text)
ORDER BY p.asset_id
`

type ListDepreciationPostingsByPeriodParams struct {
	Period         string `json:"period"`
	OrganisationID string `json:"organisation_id"`
	BranchID       string `json:"branch_id"`
}

func (q *Queries) ListDepreciationPostingsByPeriod(ctx context.Context, arg ListDepreciationPostingsByPeriodParams) ([]DepreciationPosting, error) {
	rows, err := q.db.Query(ctx, listDepreciationPostingsByPeriod, arg.Period, arg.OrganisationID, arg.BranchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []DepreciationPosting{}
	for rows.Next() {
		var i DepreciationPosting
		if err := rows.Scan(
			&i.AssetID,
			&i.Period,
			&i.JournalEntryID,
			&i.AmountCents,
			&i.PostedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
