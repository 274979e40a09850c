package generated

import (
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

type AccountMapping struct {
	AssetTypeID                      string             `json:"asset_type_id"`
	AssetAccountID                   string             `json:"asset_account_id"`
	DepreciationExpenseAccountID     string             `json:"depreciation_expense_account_id"`
	AccumulatedDepreciationAccountID string             `json:"accumulated_depreciation_account_id"`
	ProceedsAccountID                string             `json:"proceeds_account_id"`
	GainLossAccountID                string             `json:"gain_loss_account_id"`
	CreatedAt                        pgtype.Timestamptz `json:"created_at"`
}

type Asset struct {
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

type DepreciationPosting struct {
	AssetID        string             `json:"asset_id"`
	Period         string             `json:"period"`
	JournalEntryID string             `json:"journal_entry_id"`
	AmountCents    int64              `json:"amount_cents"`
	PostedAt       pgtype.Timestamptz `json:"posted_at"`
}

type Disposal struct {
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

type JournalEntry struct {
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

type JournalLine struct {
	EntryID     string `json:"entry_id"`
	LineNo      int32  `json:"line_no"`
	AccountID   string `json:"account_id"`
	Description string `json:"description"`
	DebitCents  int64  `json:"debit_cents"`
	CreditCents int64  `json:"credit_cents"`
}

type OutboxEvent struct {
	ID            string             `json:"id"`
	AggregateID   string             `json:"aggregate_id"`
	AggregateType string             `json:"aggregate_type"`
	EventType     string             `json:"event_type"`
	Payload       []byte             `json:"payload"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
	PublishedAt   pgtype.Timestamptz `json:"published_at"`
	Published     bool               `json:"published"`
}
