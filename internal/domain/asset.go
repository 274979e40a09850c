package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssetStatus is the lifecycle state of an asset.
type AssetStatus string

const (
	AssetStatusActive        AssetStatus = "ACTIVE"
	AssetStatusInMaintenance AssetStatus = "IN_MAINTENANCE"
	AssetStatusDisposed      AssetStatus = "DISPOSED"
	AssetStatusLost          AssetStatus = "LOST"
	AssetStatusDamaged       AssetStatus = "DAMAGED"
	AssetStatusRetired       AssetStatus = "RETIRED"
)

var terminalStatuses = map[AssetStatus]bool{
	AssetStatusDisposed: true,
	AssetStatusLost:     true,
	AssetStatusDamaged:  true,
	AssetStatusRetired:  true,
}

// IsValid reports whether s is a known status.
func (s AssetStatus) IsValid() bool {
	return s == AssetStatusActive || s == AssetStatusInMaintenance || terminalStatuses[s]
}

// IsTerminal reports whether no further transition is allowed from s.
func (s AssetStatus) IsTerminal() bool {
	return terminalStatuses[s]
}

// TerminalStatuses returns the terminal set in a stable order.
func TerminalStatuses() []AssetStatus {
	return []AssetStatus{AssetStatusDisposed, AssetStatusLost, AssetStatusDamaged, AssetStatusRetired}
}

// Scope identifies the organisation and, optionally, the branch that own assets.
type Scope struct {
	OrganisationID string
	BranchID       string
}

// Asset is a capitalised fixed asset.
type Asset struct {
	PurchaseDate     time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	ID               string
	Name             string
	AssetTypeID      string
	OrganisationID   string
	BranchID         string
	Status           AssetStatus
	DepreciationRate decimal.Decimal // annual percent, 0..100
	PurchasePrice    Money
	CurrentValue     Money
}

// Scope returns the ownership scope of the asset.
func (a *Asset) Scope() Scope {
	return Scope{OrganisationID: a.OrganisationID, BranchID: a.BranchID}
}

// IsDepreciable reports whether the asset accrues depreciation.
func (a *Asset) IsDepreciable() bool {
	return a.Status == AssetStatusActive && a.DepreciationRate.IsPositive() && a.PurchasePrice.IsPositive()
}

// AccumulatedDepreciation is the portion of cost already written off.
func (a *Asset) AccumulatedDepreciation() Money {
	return a.PurchasePrice - a.CurrentValue
}

// CanTransitionTo checks a lifecycle transition requested outside of disposal.
// Terminal states reached through disposal are handled by the disposal flow.
func (a *Asset) CanTransitionTo(target AssetStatus) error {
	if a.Status.IsTerminal() {
		return ErrAlreadyDisposed
	}

	switch target {
	case AssetStatusActive, AssetStatusInMaintenance:
		if target == a.Status {
			return ErrInvalidTransition
		}
		return nil
	case AssetStatusRetired:
		if !a.CurrentValue.IsZero() {
			return ErrNotFullyDepreciated
		}
		return nil
	default:
		return ErrInvalidTransition
	}
}

// Validate checks the value invariants of the asset.
func (a *Asset) Validate() error {
	if err := ValidateAssetName(a.Name); err != nil {
		return err
	}

	if err := ValidateDepreciationRate(a.DepreciationRate); err != nil {
		return err
	}

	if a.PurchasePrice.IsNegative() {
		return ErrInvalidAmount
	}
	if a.PurchasePrice.IsZero() {
		return ErrZeroPurchasePrice
	}

	if a.CurrentValue.IsNegative() || a.CurrentValue > a.PurchasePrice {
		return ErrValueOutOfRange
	}

	if !a.Status.IsValid() {
		return ErrInvalidStatus
	}

	return nil
}

// AccountMapping links an asset type to chart-of-accounts identifiers.
type AccountMapping struct {
	CreatedAt                        time.Time
	AssetTypeID                      string
	AssetAccountID                   string
	DepreciationExpenseAccountID     string
	AccumulatedDepreciationAccountID string
	ProceedsAccountID                string
	GainLossAccountID                string
}

// MissingForDepreciation lists the accounts required for depreciation that are unset.
func (m *AccountMapping) MissingForDepreciation() []string {
	var missing []string
	if m.AssetAccountID == "" {
		missing = append(missing, "asset_account_id")
	}
	if m.DepreciationExpenseAccountID == "" {
		missing = append(missing, "depreciation_expense_account_id")
	}
	if m.AccumulatedDepreciationAccountID == "" {
		missing = append(missing, "accumulated_depreciation_account_id")
	}
	return missing
}

// MissingForDisposal lists the accounts required for disposal that are unset.
func (m *AccountMapping) MissingForDisposal() []string {
	missing := m.MissingForDepreciation()
	if m.ProceedsAccountID == "" {
		missing = append(missing, "proceeds_account_id")
	}
	if m.GainLossAccountID == "" {
		missing = append(missing, "gain_loss_account_id")
	}
	return missing
}
