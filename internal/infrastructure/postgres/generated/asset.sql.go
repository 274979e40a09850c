package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const createAsset = `-- name: CreateAsset :exec
INSERT INTO assets (id, organisation_id, branch_id, asset_type_id, name, status, purchase_date, depreciation_rate, purchase_price_cents, current_value_cents, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`

type CreateAssetParams struct {
	ID                 string             `json:"id"`
	OrganisationID     string             `json:"organisation_id"`
	BranchID           string             `json:"branch_id"`
	AssetTypeID        string             `json:"asset_type_id"`
	Name               string             `json:"name"`
	Status             string             `json:"status"`
	PurchaseDate       pgtype.Date        `json:"purchase_date"`
	DepreciationRate   decimal.Decimal    `json:"depreciation_rate"`
	PurchasePriceCents int64              `json:"purchase_price_cents"`
	CurrentValueCents  int64              `json:"current_value_cents"`
	CreatedAt          pgtype.Timestamptz `json:"created_at"`
	UpdatedAt          pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) CreateAsset(ctx context.Context, arg CreateAssetParams) error {
	_, err := q.db.Exec(ctx, createAsset,
		arg.ID,
		arg.OrganisationID,
		arg.BranchID,
		arg.AssetTypeID,
		arg.Name,
		arg.Status,
		arg.PurchaseDate,
		arg.DepreciationRate,
		arg.PurchasePriceCents,
		arg.CurrentValueCents,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const getAssetByID = `-- name: GetAssetByID :one
SELECT id, organisation_id, branch_id, asset_type_id, name, status, purchase_date, depreciation_rate, purchase_price_cents, current_value_cents, created_at, updated_at FROM assets WHERE id = $1
`

func (q *Queries) GetAssetByID(ctx context.Context, id string) (Asset, error) {
	row := q.db.QueryRow(ctx, getAssetByID, id)
	var i Asset
	err := row.Scan(
		&i.ID,
		&i.OrganisationID,
		&i.BranchID,
		&i.AssetTypeID,
		&i.Name,
		&i.Status,
		&i.PurchaseDate,
		&i.DepreciationRate,
		&i.PurchasePriceCents,
		&i.CurrentValueCents,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getAssetByIDForUpdate = `-- name: GetAssetByIDForUpdate :one
SELECT id, organisation_id, branch_id, asset_type_id, name, status, purchase_date, depreciation_rate, purchase_price_cents, current_value_cents, created_at, updated_at FROM assets WHERE id = $1 FOR UPDATE
`

func (q *Queries) GetAssetByIDForUpdate(ctx context.Context, id string) (Asset, error) {
	row := q.db.QueryRow(ctx, getAssetByIDForUpdate, id)
	var i Asset
	err := row.Scan(
		&i.ID,
		&i.OrganisationID,
		&i.BranchID,
		&i.AssetTypeID,
		&i.Name,
		&i.Status,
		&i.PurchaseDate,
		&i.DepreciationRate,
		&i.PurchasePriceCents,
		&i.CurrentValueCents,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listActiveAssets = `-- name: ListActiveAssets :many
SELECT id, organisation_id, branch_id, asset_type_id, name, status, purchase_date, depreciation_rate, purchase_price_cents, current_value_cents, created_at, updated_at FROM assets
WHERE status = 'ACTIVE'
  AND organisation_id = $1
  AND ($2::text = '' OR branch_id = $2::text)
  AND (cardinality($3::text[]) = 0 OR id = ANY($3::text[]))
ORDER BY id
LIMIT $4 OFFSET $5
`

type ListActiveAssetsParams struct {
	OrganisationID string   `json:"organisation_id"`
	BranchID       string   `json:"branch_id"`
	AssetIds       []string `json:"asset_ids"`
	Limit          int32    `json:"limit"`
	Offset         int32    `json:"offset"`
}

func (q *Queries) ListActiveAssets(ctx context.Context, arg ListActiveAssetsParams) ([]Asset, error) {
	rows, err := q.db.Query(ctx, listActiveAssets,
		arg.OrganisationID,
		arg.BranchID,
		arg.AssetIds,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Asset{}
	for rows.Next() {
		var i Asset
		if err := rows.Scan(
			&i.ID,
			&i.OrganisationID,
			&i.BranchID,
			&i.AssetTypeID,
			&i.Name,
			&i.Status,
			&i.PurchaseDate,
			&i.DepreciationRate,
			&i.PurchasePriceCents,
			&i.CurrentValueCents,
			&i.CreatedAt,
			&i.UpdatedAt,
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

const updateAssetValue = `-- name: UpdateAssetValue :execrows
UPDATE assets SET current_value_cents = $2, updated_at = $3 WHERE id = $1
`

type UpdateAssetValueParams struct {
	ID                string             `json:"id"`
	CurrentValueCents int64              `json:"current_value_cents"`
	UpdatedAt         pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdateAssetValue(ctx context.Context, arg UpdateAssetValueParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateAssetValue, arg.ID, arg.CurrentValueCents, arg.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const updateAssetStatus = `-- name: UpdateAssetStatus :execrows
UPDATE assets SET status = $3, current_value_cents = $4, updated_at = $5 WHERE id = $1 AND status = $2
`

type UpdateAssetStatusParams struct {
	ID                string             `json:"id"`
	FromStatus        string             `json:"from_status"`
	ToStatus          string             `json:"to_status"`
	CurrentValueCents int64              `json:"current_value_cents"`
	UpdatedAt         pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdateAssetStatus(ctx context.Context, arg UpdateAssetStatusParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateAssetStatus,
		arg.ID,
		arg.FromStatus,
		arg.ToStatus,
		arg.CurrentValueCents,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
