package generated

import (
	"context"
)

const checkLedgerConsistency = `-- name: CheckLedgerConsistency :one
SELECT
    COALESCE(SUM(l.debit_cents), 0)::bigint AS total_debit_cents,
    COALESCE(SUM(l.credit_cents), 0)::bigint AS total_credit_cents
FROM journal_lines l
JOIN journal_entries e ON e.id = l.entry_id
WHERE $1::text = '' OR e.organisation_id = $1::text
`

type CheckLedgerConsistencyRow struct {
	TotalDebitCents  int64 `json:"total_debit_cents"`
	TotalCreditCents int64 `json:"total_credit_cents"`
}

func (q *Queries) CheckLedgerConsistency(ctx context.Context, organisationID string) (CheckLedgerConsistencyRow, error) {
	row := q.db.QueryRow(ctx, checkLedgerConsistency, organisationID)
	var i CheckLedgerConsistencyRow
	err := row.Scan(&i.TotalDebitCents, &i.TotalCreditCents)
	return i, err
}
