package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createJournalEntry = `-- name: CreateJournalEntry :exec
INSERT INTO journal_entries (id, organisation_id, branch_id, entry_date, memo, source, source_id, period, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

type CreateJournalEntryParams struct {
	ID             string             `json:"id"`
	OrganisationID string             `json:"organisation_id"`
	BranchID       string             `json:"branch_id"`
	EntryDate      pgtype.Date        `json:"entry_date"`
	Memo           string             `json:"memo"`
	Source         string             `json:"source"`
	SourceID       string             `json:"source_id"`
	Period         string             `json:"period"`
	CreatedAt      pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateJournalEntry(ctx context.Context, arg CreateJournalEntryParams) error {
	_, err := q.db.Exec(ctx, createJournalEntry,
		arg.ID,
		arg.OrganisationID,
		arg.BranchID,
		arg.EntryDate,
		arg.Memo,
		arg.Source,
		arg.SourceID,
		arg.Period,
		arg.CreatedAt,
	)
	return err
}

const createJournalLine = `-- name: CreateJournalLine :exec
INSERT INTO journal_lines (entry_id, line_no, account_id, description, debit_cents, credit_cents)
VALUES ($1, $2, $3, $4, $5, $6)
`

type CreateJournalLineParams struct {
	EntryID     string `json:"entry_id"`
	LineNo      int32  `json:"line_no"`
	AccountID   string `json:"account_id"`
	Description string `json:"description"`
	DebitCents  int64  `json:"debit_cents"`
	CreditCents int64  `json:"credit_cents"`
}

func (q *Queries) CreateJournalLine(ctx context.Context, arg CreateJournalLineParams) error {
	_, err := q.db.Exec(ctx, createJournalLine,
		arg.EntryID,
		arg.LineNo,
		arg.AccountID,
		arg.Description,
		arg.DebitCents,
		arg.CreditCents,
	)
	return err
}

const getJournalEntryByID = `-- name: GetJournalEntryByID :one
SELECT id, organisation_id, branch_id, entry_date, memo, source, source_id, period, created_at FROM journal_entries WHERE id = $1
`

func (q *Queries) GetJournalEntryByID(ctx context.Context, id string) (JournalEntry, error) {
	row := q.db.QueryRow(ctx, getJournalEntryByID, id)
	var i JournalEntry
	err := row.Scan(
		&i.ID,
		&i.OrganisationID,
		&i.BranchID,
		&i.EntryDate,
		&i.Memo,
		&i.Source,
		&i.SourceID,
		&i.Period,
		&i.CreatedAt,
	)
	return i, err
}

const listJournalEntriesBySource = `-- name: ListJournalEntriesBySource :many
SELECT id, organisation_id, branch_id, entry_date, memo, source, source_id, period, created_at FROM journal_entries
WHERE source = $1 AND source_id = $2
ORDER BY created_at, id
`

type ListJournalEntriesBySourceParams struct {
	Source   string `json:"source"`
	SourceID string `json:"source_id"`
}

func (q *Queries) ListJournalEntriesBySource(ctx context.Context, arg ListJournalEntriesBySourceParams) ([]JournalEntry, error) {
	rows, err := q.db.Query(ctx, listJournalEntriesBySource, arg.Source, arg.SourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []JournalEntry{}
	for rows.Next() {
		var i JournalEntry
		if err := rows.Scan(
			&i.ID,
			&i.OrganisationID,
			&i.BranchID,
			&i.EntryDate,
			&i.Memo,
			&i.Source,
			&i.SourceID,
			&i.Period,
			&i.CreatedAt,
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

const listJournalLinesByEntryIDs = `-- name: ListJournalLinesByEntryIDs :many
SELECT entry_id, line_no, account_id, description, debit_cents, credit_cents FROM journal_lines
WHERE entry_id = ANY($1::text[])
ORDER BY entry_id, line_no
`

func (q *Queries) ListJournalLinesByEntryIDs(ctx context.Context, dollar_1 []string) ([]JournalLine, error) {
	rows, err := q.db.Query(ctx, listJournalLinesByEntryIDs, dollar_1)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []JournalLine{}
	for rows.Next() {
		var i JournalLine
		if err := rows.Scan(
			&i.EntryID,
			&i.LineNo,
			&i.AccountID,
			&i.Description,
			&i.DebitCents,
			&i.CreditCents,
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
