package postgres

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/infrastructure/postgres/generated"
	"github.com/iho/assetledger/internal/usecase"
)

// queriesFor returns the queries bound to the pgx transaction behind tx.
// Transactions from another TransactionManager are a programming error.
func queriesFor(tx usecase.Transaction) *generated.Queries {
	return tx.(*Tx).Queries()
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func timeToPgDate(t time.Time) pgtype.Date {
	return pgtype.Date{Time: domain.DateOnly(t), Valid: true}
}

func pgDateToTime(d pgtype.Date) time.Time {
	if !d.Valid {
		return time.Time{}
	}
	return domain.DateOnly(d.Time)
}

func rowToAsset(row generated.Asset) *domain.Asset {
	return &domain.Asset{
		ID:               row.ID,
		OrganisationID:   row.OrganisationID,
		BranchID:         row.BranchID,
		AssetTypeID:      row.AssetTypeID,
		Name:             row.Name,
		Status:           domain.AssetStatus(row.Status),
		PurchaseDate:     pgDateToTime(row.PurchaseDate),
		DepreciationRate: row.DepreciationRate,
		PurchasePrice:    domain.Money(row.PurchasePriceCents),
		CurrentValue:     domain.Money(row.CurrentValueCents),
		CreatedAt:        row.CreatedAt.Time,
		UpdatedAt:        row.UpdatedAt.Time,
	}
}

func rowToMapping(row generated.AccountMapping) *domain.AccountMapping {
	return &domain.AccountMapping{
		AssetTypeID:                      row.AssetTypeID,
		AssetAccountID:                   row.AssetAccountID,
		DepreciationExpenseAccountID:     row.DepreciationExpenseAccountID,
		AccumulatedDepreciationAccountID: row.AccumulatedDepreciationAccountID,
		ProceedsAccountID:                row.ProceedsAccountID,
		GainLossAccountID:                row.GainLossAccountID,
		CreatedAt:                        row.CreatedAt.Time,
	}
}

func rowToJournalEntry(row generated.JournalEntry, lines []generated.JournalLine) *domain.JournalEntry {
	entry := &domain.JournalEntry{
		ID:             row.ID,
		OrganisationID: row.OrganisationID,
		BranchID:       row.BranchID,
		Date:           pgDateToTime(row.EntryDate),
		Memo:           row.Memo,
		Source:         domain.JournalSource(row.Source),
		SourceID:       row.SourceID,
		Period:         row.Period,
		CreatedAt:      row.CreatedAt.Time,
		Lines:          make([]domain.JournalLine, 0, len(lines)),
	}

	for _, l := range lines {
		entry.Lines = append(entry.Lines, domain.JournalLine{
			AccountID:   l.AccountID,
			Description: l.Description,
			Debit:       domain.Money(l.DebitCents),
			Credit:      domain.Money(l.CreditCents),
		})
	}

	return entry
}

func rowToPosting(row generated.DepreciationPosting) *domain.DepreciationPosting {
	return &domain.DepreciationPosting{
		AssetID:        row.AssetID,
		Period:         row.Period,
		JournalEntryID: row.JournalEntryID,
		Amount:         domain.Money(row.AmountCents),
		PostedAt:       row.PostedAt.Time,
	}
}

func rowToDisposal(row generated.Disposal) *domain.Disposal {
	return &domain.Disposal{
		ID:                  row.ID,
		AssetID:             row.AssetID,
		OrganisationID:      row.OrganisationID,
		BranchID:            row.BranchID,
		DisposalDate:        pgDateToTime(row.DisposalDate),
		Method:              domain.DisposalMethod(row.Method),
		SalePrice:           domain.Money(row.SalePriceCents),
		BookValueAtDisposal: domain.Money(row.BookValueCents),
		GainLoss:            domain.Money(row.GainLossCents),
		JournalEntryID:      row.JournalEntryID,
		Notes:               row.Notes,
		CreatedAt:           row.CreatedAt.Time,
	}
}
