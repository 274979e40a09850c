package ledger

import (
	"fmt"

	"github.com/iho/assetledger/internal/domain"
)

// BuildPurchaseEntry records the acquisition of an asset: the asset account
// is debited and the paying cash account credited for the purchase price.
func BuildPurchaseEntry(a *domain.Asset, cashAccountID, assetAccountID string) *domain.JournalEntry {
	return &domain.JournalEntry{
		OrganisationID: a.OrganisationID,
		BranchID:       a.BranchID,
		Date:           domain.DateOnly(a.PurchaseDate),
		Memo:           fmt.Sprintf("Purchase of %s (%s)", a.Name, a.ID),
		Source:         domain.JournalSourcePurchase,
		SourceID:       a.ID,
		Lines: []domain.JournalLine{
			{AccountID: assetAccountID, Debit: a.PurchasePrice, Description: "Asset at cost"},
			{AccountID: cashAccountID, Credit: a.PurchasePrice, Description: "Payment for asset"},
		},
	}
}

// BuildDepreciationEntry records one period of depreciation. The memo
// carries the period so the entry can be traced back to its posting.
func BuildDepreciationEntry(a *domain.Asset, amount domain.Money, expenseAccountID, accumDepAccountID string, period domain.Period) *domain.JournalEntry {
	return &domain.JournalEntry{
		OrganisationID: a.OrganisationID,
		BranchID:       a.BranchID,
		Date:           period.End(),
		Memo:           DepreciationMemo(period, a),
		Source:         domain.JournalSourceDepreciation,
		SourceID:       a.ID,
		Period:         period.String(),
		Lines: []domain.JournalLine{
			{AccountID: expenseAccountID, Debit: amount, Description: "Depreciation expense " + period.String()},
			{AccountID: accumDepAccountID, Credit: amount, Description: "Accumulated depreciation " + period.String()},
		},
	}
}

// DepreciationMemo is the memo used for depreciation entries.
func DepreciationMemo(period domain.Period, a *domain.Asset) string {
	return fmt.Sprintf("Depreciation %s: %s (%s)", period, a.Name, a.ID)
}

// BuildDisposalEntry removes the asset from the books. Gross cost leaves the
// asset account, accumulated depreciation is reversed, proceeds are received
// and the difference lands on the gain/loss account. Every line is emitted
// even when its amount is zero so account activity stays reconcilable.
func BuildDisposalEntry(a *domain.Asset, d *domain.Disposal, m *domain.AccountMapping) *domain.JournalEntry {
	accumulated := a.PurchasePrice - d.BookValueAtDisposal

	return &domain.JournalEntry{
		OrganisationID: a.OrganisationID,
		BranchID:       a.BranchID,
		Date:           domain.DateOnly(d.DisposalDate),
		Memo:           fmt.Sprintf("Disposal of %s (%s): %s", a.Name, a.ID, d.Method),
		Source:         domain.JournalSourceDisposal,
		SourceID:       a.ID,
		Lines: []domain.JournalLine{
			{AccountID: m.AccumulatedDepreciationAccountID, Debit: accumulated, Description: "Reverse accumulated depreciation"},
			{AccountID: m.ProceedsAccountID, Debit: d.SalePrice, Description: "Disposal proceeds"},
			{AccountID: m.AssetAccountID, Credit: a.PurchasePrice, Description: "Remove asset at cost"},
			gainLossLine(m.GainLossAccountID, d.GainLoss),
		},
	}
}

func gainLossLine(accountID string, gainLoss domain.Money) domain.JournalLine {
	switch {
	case gainLoss.IsNegative():
		return domain.JournalLine{AccountID: accountID, Debit: gainLoss.Abs(), Description: "Loss on disposal"}
	case gainLoss.IsPositive():
		return domain.JournalLine{AccountID: accountID, Credit: gainLoss, Description: "Gain on disposal"}
	default:
		return domain.JournalLine{AccountID: accountID, Description: "No gain or loss on disposal"}
	}
}
