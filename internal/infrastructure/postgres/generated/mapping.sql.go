package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getAccountMapping = `-- name: GetAccountMapping :one
SELECT asset_type_id, asset_account_id, depreciation_expense_account_id, accumulated_depreciation_account_id, proceeds_account_id, gain_loss_account_id, created_at FROM account_mappings WHERE asset_type_id = $1
`

func (q *Queries) GetAccountMapping(ctx context.Context, assetTypeID string) (AccountMapping, error) {
	row := q.db.QueryRow(ctx, getAccountMapping, assetTypeID)
	var i AccountMapping
	err := row.Scan(
		&i.AssetTypeID,
		&i.AssetAccountID,
		&i.DepreciationExpenseAccountID,
		&i.AccumulatedDepreciationAccountID,
		&i.ProceedsAccountID,
		&i.GainLossAccountID,
		&i.CreatedAt,
	)
	return i, err
}

const upsertAccountMapping = `-- name: UpsertAccountMapping :execrows
INSERT INTO account_mappings (asset_type_id, asset_account_id, depreciation_expense_account_id, accumulated_depreciation_account_id, proceeds_account_id, gain_loss_account_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (asset_type_id) DO UPDATE SET
    asset_account_id = EXCLUDED.asset_account_id,
    depreciation_expense_account_id = EXCLUDED.depreciation_expense_account_id,
    accumulated_depreciation_account_id = EXCLUDED.accumulated_depreciation_account_id,
    proceeds_account_id = EXCLUDED.proceeds_account_id,
    gain_loss_account_id = EXCLUDED.gain_loss_account_id
WHERE (account_mappings.asset_account_id, account_mappings.depreciation_expense_account_id, account_mappings.accumulated_depreciation_account_id, account_mappings.proceeds_account_id, account_mappings.gain_loss_account_id)
        IS NOT DISTINCT FROM (EXCLUDED.asset_account_id, EXCLUDED.depreciation_expense_account_id, EXCLUDED.accumulated_depreciation_account_id, EXCLUDED.proceeds_account_id, EXCLUDED.gain_loss_account_id)
   OR NOT EXISTS (
        SELECT 1 FROM journal_entries je
        JOIN assets a ON a.id = je.source_id
        WHERE a.asset_type_id = account_mappings.asset_type_id
   )
`

type UpsertAccountMappingParams struct {
	AssetTypeID                      string             `json:"asset_type_id"`
	AssetAccountID                   string             `json:"asset_account_id"`
	DepreciationExpenseAccountID     string             `json:"depreciation_expense_account_id"`
	AccumulatedDepreciationAccountID string             `json:"accumulated_depreciation_account_id"`
	ProceedsAccountID                string             `json:"proceeds_account_id"`
	GainLossAccountID                string             `json:"gain_loss_account_id"`
	CreatedAt                        pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) UpsertAccountMapping(ctx context.Context, arg UpsertAccountMappingParams) (int64, error) {
	result, err := q.db.Exec(ctx, upsertAccountMapping,
		arg.AssetTypeID,
		arg.AssetAccountID,
		arg.DepreciationExpenseAccountID,
		arg.AccumulatedDepreciationAccountID,
		arg.ProceedsAccountID,
		arg.GainLossAccountID,
		arg.CreatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
