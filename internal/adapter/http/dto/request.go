package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/usecase"
)

const dateLayout = "2006-01-02"

// RegisterAssetRequest represents a request to register an asset.
type RegisterAssetRequest struct {
	OrganisationID     string          `json:"organisation_id"      validate:"max=64"`
	BranchID           string          `json:"branch_id"            validate:"max=64"`
	AssetTypeID        string          `json:"asset_type_id"        validate:"required,max=64"`
	Name               string          `json:"name"                 validate:"required,max=255"`
	PurchaseDate       string          `json:"purchase_date"        validate:"required,datetime=2006-01-02"`
	DepreciationRate   decimal.Decimal `json:"depreciation_rate"`
	PurchasePriceCents int64           `json:"purchase_price_cents" validate:"gt=0"`
	CurrentValueCents  *int64          `json:"current_value_cents"  validate:"omitempty,gte=0"`
}

// ToUseCaseInput converts to use case input for the resolved organisation.
func (r *RegisterAssetRequest) ToUseCaseInput(organisationID string) (usecase.RegisterAssetInput, error) {
	purchased, err := time.Parse(dateLayout, r.PurchaseDate)
	if err != nil {
		return usecase.RegisterAssetInput{}, &RequestError{Fields: []string{"purchase_date: datetime=" + dateLayout}}
	}

	input := usecase.RegisterAssetInput{
		OrganisationID:   organisationID,
		BranchID:         r.BranchID,
		AssetTypeID:      r.AssetTypeID,
		Name:             r.Name,
		PurchaseDate:     purchased,
		DepreciationRate: r.DepreciationRate,
		PurchasePrice:    domain.Money(r.PurchasePriceCents),
	}
	if r.CurrentValueCents != nil {
		value := domain.Money(*r.CurrentValueCents)
		input.CurrentValue = &value
	}

	return input, nil
}

// SetMappingRequest represents the chart-of-accounts mapping of an asset type.
type SetMappingRequest struct {
	AssetAccountID                   string `json:"asset_account_id"                    validate:"required,max=64"`
	DepreciationExpenseAccountID     string `json:"depreciation_expense_account_id"     validate:"omitempty,max=64"`
	AccumulatedDepreciationAccountID string `json:"accumulated_depreciation_account_id" validate:"omitempty,max=64"`
	ProceedsAccountID                string `json:"proceeds_account_id"                 validate:"omitempty,max=64"`
	GainLossAccountID                string `json:"gain_loss_account_id"                validate:"omitempty,max=64"`
}

// ToDomain converts to a mapping for assetTypeID.
func (r *SetMappingRequest) ToDomain(assetTypeID string) domain.AccountMapping {
	return domain.AccountMapping{
		AssetTypeID:                      assetTypeID,
		AssetAccountID:                   r.AssetAccountID,
		DepreciationExpenseAccountID:     r.DepreciationExpenseAccountID,
		AccumulatedDepreciationAccountID: r.AccumulatedDepreciationAccountID,
		ProceedsAccountID:                r.ProceedsAccountID,
		GainLossAccountID:                r.GainLossAccountID,
	}
}

// PostDepreciationRequest represents a request to post a depreciation batch.
type PostDepreciationRequest struct {
	OrganisationID string   `json:"organisation_id" validate:"max=64"`
	BranchID       string   `json:"branch_id"       validate:"max=64"`
	Period         string   `json:"period"          validate:"required,datetime=2006-01"`
	AssetIDs       []string `json:"asset_ids"       validate:"omitempty,dive,required,max=64"`
}

// ToUseCaseInput converts to use case input for the resolved organisation.
func (r *PostDepreciationRequest) ToUseCaseInput(organisationID string) (usecase.PostDepreciationInput, error) {
	period, err := domain.ParsePeriod(r.Period)
	if err != nil {
		return usecase.PostDepreciationInput{}, err
	}

	return usecase.PostDepreciationInput{
		OrganisationID: organisationID,
		BranchID:       r.BranchID,
		AssetIDs:       r.AssetIDs,
		Period:         period,
	}, nil
}

// DisposeRequest represents a request to dispose of an asset.
type DisposeRequest struct {
	Method         string `json:"method"           validate:"required,oneof=SOLD DONATED SCRAPPED LOST STOLEN DAMAGED TRADED"`
	SalePriceCents *int64 `json:"sale_price_cents" validate:"omitempty,gte=0"`
	DisposalDate   string `json:"disposal_date"    validate:"omitempty,datetime=2006-01-02"`
	Notes          string `json:"notes"            validate:"max=2000"`
}

// ToUseCaseInput converts to use case input.
func (r *DisposeRequest) ToUseCaseInput(assetID string) (usecase.DisposeInput, error) {
	input := usecase.DisposeInput{
		AssetID: assetID,
		Method:  domain.DisposalMethod(r.Method),
		Notes:   r.Notes,
	}

	if r.SalePriceCents != nil {
		price := domain.Money(*r.SalePriceCents)
		input.SalePrice = &price
	}

	if r.DisposalDate != "" {
		date, err := time.Parse(dateLayout, r.DisposalDate)
		if err != nil {
			return usecase.DisposeInput{}, &RequestError{Fields: []string{"disposal_date: datetime=" + dateLayout}}
		}
		input.DisposalDate = date
	}

	return input, nil
}

// CapitalizeRequest names the account that paid for an asset.
type CapitalizeRequest struct {
	CashAccountID string `json:"cash_account_id" validate:"required,max=64"`
}

// ChangeStatusRequest requests a lifecycle transition.
type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required"`
}
