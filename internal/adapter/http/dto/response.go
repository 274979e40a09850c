package dto

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/usecase"
)

// AssetResponse represents an asset in API responses.
type AssetResponse struct {
	ID                 string          `json:"id"`
	OrganisationID     string          `json:"organisation_id"`
	BranchID           string          `json:"branch_id,omitempty"`
	AssetTypeID        string          `json:"asset_type_id"`
	Name               string          `json:"name"`
	Status             string          `json:"status"`
	PurchaseDate       string          `json:"purchase_date"`
	DepreciationRate   decimal.Decimal `json:"depreciation_rate"`
	PurchasePriceCents int64           `json:"purchase_price_cents"`
	PurchasePrice      string          `json:"purchase_price"`
	CurrentValueCents  int64           `json:"current_value_cents"`
	CurrentValue       string          `json:"current_value"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// AssetFromDomain converts domain asset to response.
func AssetFromDomain(a *domain.Asset) *AssetResponse {
	return &AssetResponse{
		ID:                 a.ID,
		OrganisationID:     a.OrganisationID,
		BranchID:           a.BranchID,
		AssetTypeID:        a.AssetTypeID,
		Name:               a.Name,
		Status:             string(a.Status),
		PurchaseDate:       a.PurchaseDate.Format(dateLayout),
		DepreciationRate:   a.DepreciationRate,
		PurchasePriceCents: int64(a.PurchasePrice),
		PurchasePrice:      a.PurchasePrice.String(),
		CurrentValueCents:  int64(a.CurrentValue),
		CurrentValue:       a.CurrentValue.String(),
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

// AssetsFromDomain converts domain assets to responses.
func AssetsFromDomain(assets []*domain.Asset) []*AssetResponse {
	result := make([]*AssetResponse, len(assets))
	for i, a := range assets {
		result[i] = AssetFromDomain(a)
	}
	return result
}

// MappingResponse represents an account mapping in API responses.
type MappingResponse struct {
	AssetTypeID                      string    `json:"asset_type_id"`
	AssetAccountID                   string    `json:"asset_account_id"`
	DepreciationExpenseAccountID     string    `json:"depreciation_expense_account_id,omitempty"`
	AccumulatedDepreciationAccountID string    `json:"accumulated_depreciation_account_id,omitempty"`
	ProceedsAccountID                string    `json:"proceeds_account_id,omitempty"`
	GainLossAccountID                string    `json:"gain_loss_account_id,omitempty"`
	CreatedAt                        time.Time `json:"created_at"`
}

// MappingFromDomain converts a domain mapping to response.
func MappingFromDomain(m *domain.AccountMapping) *MappingResponse {
	return &MappingResponse{
		AssetTypeID:                      m.AssetTypeID,
		AssetAccountID:                   m.AssetAccountID,
		DepreciationExpenseAccountID:     m.DepreciationExpenseAccountID,
		AccumulatedDepreciationAccountID: m.AccumulatedDepreciationAccountID,
		ProceedsAccountID:                m.ProceedsAccountID,
		GainLossAccountID:                m.GainLossAccountID,
		CreatedAt:                        m.CreatedAt,
	}
}

// JournalLineResponse represents one journal line.
type JournalLineResponse struct {
	AccountID   string `json:"account_id"`
	Description string `json:"description,omitempty"`
	DebitCents  int64  `json:"debit_cents"`
	Debit       string `json:"debit"`
	CreditCents int64  `json:"credit_cents"`
	Credit      string `json:"credit"`
}

// JournalEntryResponse represents a journal entry in API responses.
type JournalEntryResponse struct {
	ID             string                `json:"id"`
	OrganisationID string                `json:"organisation_id"`
	BranchID       string                `json:"branch_id,omitempty"`
	EntryDate      string                `json:"entry_date"`
	Memo           string                `json:"memo"`
	Source         string                `json:"source"`
	SourceID       string                `json:"source_id"`
	Period         string                `json:"period,omitempty"`
	Lines          []JournalLineResponse `json:"lines"`
	CreatedAt      time.Time             `json:"created_at"`
}

// JournalEntryFromDomain converts a domain entry to response.
func JournalEntryFromDomain(e *domain.JournalEntry) *JournalEntryResponse {
	lines := make([]JournalLineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = JournalLineResponse{
			AccountID:   l.AccountID,
			Description: l.Description,
			DebitCents:  int64(l.Debit),
			Debit:       l.Debit.String(),
			CreditCents: int64(l.Credit),
			Credit:      l.Credit.String(),
		}
	}

	return &JournalEntryResponse{
		ID:             e.ID,
		OrganisationID: e.OrganisationID,
		BranchID:       e.BranchID,
		EntryDate:      e.Date.Format(dateLayout),
		Memo:           e.Memo,
		Source:         string(e.Source),
		SourceID:       e.SourceID,
		Period:         e.Period,
		Lines:          lines,
		CreatedAt:      e.CreatedAt,
	}
}

// PostedAssetResponse is a committed posting in a batch result.
type PostedAssetResponse struct {
	AssetID           string `json:"asset_id"`
	JournalEntryID    string `json:"journal_entry_id"`
	AmountCents       int64  `json:"amount_cents"`
	Amount            string `json:"amount"`
	CurrentValueCents int64  `json:"current_value_cents"`
}

// SkippedAssetResponse is a skipped asset in a batch result.
type SkippedAssetResponse struct {
	AssetID string `json:"asset_id"`
	Reason  string `json:"reason"`
	Detail  string `json:"detail,omitempty"`
}

// FailedAssetResponse is a failed asset in a batch result.
// Codes lists the violated journal rules when the entry failed validation.
type FailedAssetResponse struct {
	AssetID string   `json:"asset_id"`
	Error   string   `json:"error"`
	Codes   []string `json:"codes,omitempty"`
	Timeout bool     `json:"timeout"`
}

// BatchResultResponse represents a depreciation batch outcome.
type BatchResultResponse struct {
	Period      string                 `json:"period"`
	Posted      []PostedAssetResponse  `json:"posted"`
	Skipped     []SkippedAssetResponse `json:"skipped"`
	Failed      []FailedAssetResponse  `json:"failed"`
	Unprocessed []string               `json:"unprocessed"`
	Total       int                    `json:"total"`
	Error       string                 `json:"error,omitempty"`
}

// BatchResultFromUseCase converts a batch result to response.
func BatchResultFromUseCase(r *usecase.BatchResult) *BatchResultResponse {
	resp := &BatchResultResponse{
		Period:      r.Period.String(),
		Posted:      make([]PostedAssetResponse, len(r.Posted)),
		Skipped:     make([]SkippedAssetResponse, len(r.Skipped)),
		Failed:      make([]FailedAssetResponse, len(r.Failed)),
		Unprocessed: append([]string{}, r.Unprocessed...),
		Total:       r.Total(),
	}

	for i, p := range r.Posted {
		resp.Posted[i] = PostedAssetResponse{
			AssetID:           p.AssetID,
			JournalEntryID:    p.JournalEntryID,
			AmountCents:       int64(p.Amount),
			Amount:            p.Amount.String(),
			CurrentValueCents: int64(p.CurrentValue),
		}
	}
	for i, s := range r.Skipped {
		resp.Skipped[i] = SkippedAssetResponse{AssetID: s.AssetID, Reason: s.Reason, Detail: s.Detail}
	}
	for i, f := range r.Failed {
		var pe *domain.PersistenceError
		resp.Failed[i] = FailedAssetResponse{
			AssetID: f.AssetID,
			Error:   f.Err.Error(),
			Timeout: errors.As(f.Err, &pe) && pe.Timeout(),
		}
		var ve *domain.ValidationError
		if errors.As(f.Err, &ve) {
			resp.Failed[i].Codes = ve.Codes()
		}
	}

	return resp
}

// PostingResponse represents a depreciation posting guard.
type PostingResponse struct {
	AssetID        string    `json:"asset_id"`
	Period         string    `json:"period"`
	JournalEntryID string    `json:"journal_entry_id"`
	AmountCents    int64     `json:"amount_cents"`
	Amount         string    `json:"amount"`
	PostedAt       time.Time `json:"posted_at"`
}

// PostingsFromDomain converts domain postings to responses.
func PostingsFromDomain(postings []*domain.DepreciationPosting) []*PostingResponse {
	result := make([]*PostingResponse, len(postings))
	for i, p := range postings {
		result[i] = &PostingResponse{
			AssetID:        p.AssetID,
			Period:         p.Period,
			JournalEntryID: p.JournalEntryID,
			AmountCents:    int64(p.Amount),
			Amount:         p.Amount.String(),
			PostedAt:       p.PostedAt,
		}
	}
	return result
}

// EventResponse represents one entry of an asset's history.
type EventResponse struct {
	ID          string         `json:"id"`
	EventType   string         `json:"event_type"`
	Payload     map[string]any `json:"payload"`
	CreatedAt   time.Time      `json:"created_at"`
	PublishedAt *time.Time     `json:"published_at,omitempty"`
}

// EventsFromDomain converts outbox events to responses.
func EventsFromDomain(events []*domain.OutboxEvent) []*EventResponse {
	result := make([]*EventResponse, len(events))
	for i, e := range events {
		result[i] = &EventResponse{
			ID:          e.ID,
			EventType:   e.EventType,
			Payload:     e.Payload,
			CreatedAt:   e.CreatedAt,
			PublishedAt: e.PublishedAt,
		}
	}
	return result
}

// DisposalResponse represents a disposal in API responses.
type DisposalResponse struct {
	ID             string    `json:"id"`
	AssetID        string    `json:"asset_id"`
	Method         string    `json:"method"`
	DisposalDate   string    `json:"disposal_date"`
	SalePriceCents int64     `json:"sale_price_cents"`
	SalePrice      string    `json:"sale_price"`
	BookValueCents int64     `json:"book_value_cents"`
	BookValue      string    `json:"book_value"`
	GainLossCents  int64     `json:"gain_loss_cents"`
	GainLoss       string    `json:"gain_loss"`
	JournalEntryID string    `json:"journal_entry_id"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// DisposalFromDomain converts a domain disposal to response.
func DisposalFromDomain(d *domain.Disposal) *DisposalResponse {
	return &DisposalResponse{
		ID:             d.ID,
		AssetID:        d.AssetID,
		Method:         string(d.Method),
		DisposalDate:   d.DisposalDate.Format(dateLayout),
		SalePriceCents: int64(d.SalePrice),
		SalePrice:      d.SalePrice.String(),
		BookValueCents: int64(d.BookValueAtDisposal),
		BookValue:      d.BookValueAtDisposal.String(),
		GainLossCents:  int64(d.GainLoss),
		GainLoss:       d.GainLoss.String(),
		JournalEntryID: d.JournalEntryID,
		Notes:          d.Notes,
		CreatedAt:      d.CreatedAt,
	}
}

// DisposalResultResponse is everything a disposal changed.
type DisposalResultResponse struct {
	Disposal     *DisposalResponse     `json:"disposal"`
	Asset        *AssetResponse        `json:"asset"`
	JournalEntry *JournalEntryResponse `json:"journal_entry"`
}

// DisposalResultFromUseCase converts a disposal result to response.
func DisposalResultFromUseCase(r *usecase.DisposalResult) *DisposalResultResponse {
	return &DisposalResultResponse{
		Disposal:     DisposalFromDomain(r.Disposal),
		Asset:        AssetFromDomain(r.Asset),
		JournalEntry: JournalEntryFromDomain(r.JournalEntry),
	}
}

// RecalculateResponse reports a value recalculation run.
type RecalculateResponse struct {
	OrganisationID string `json:"organisation_id"`
	Count          int    `json:"count"`
}

// ConsistencyResponse reports a ledger consistency check.
type ConsistencyResponse struct {
	OrganisationID   string `json:"organisation_id,omitempty"`
	Status           string `json:"status"`
	Consistent       bool   `json:"consistent"`
	TotalDebitCents  int64  `json:"total_debit_cents"`
	TotalCreditCents int64  `json:"total_credit_cents"`
	DifferenceCents  int64  `json:"difference_cents"`
	Message          string `json:"message,omitempty"`
}

// ConsistencyFromUseCase converts a consistency report to response.
func ConsistencyFromUseCase(r *usecase.ConsistencyReport) *ConsistencyResponse {
	status := "consistent"
	if !r.Consistent {
		status = "inconsistent"
	}

	return &ConsistencyResponse{
		OrganisationID:   r.OrganisationID,
		Status:           status,
		Consistent:       r.Consistent,
		TotalDebitCents:  int64(r.TotalDebit),
		TotalCreditCents: int64(r.TotalCredit),
		DifferenceCents:  int64(r.TotalDebit - r.TotalCredit),
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message,omitempty"`
	Fields  []string `json:"fields,omitempty"`
}
