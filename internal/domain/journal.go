package domain

import "time"

// JournalSource identifies the asset event a journal entry records.
type JournalSource string

const (
	JournalSourcePurchase     JournalSource = "purchase"
	JournalSourceDepreciation JournalSource = "depreciation"
	JournalSourceDisposal     JournalSource = "disposal"
)

// JournalEntry is a double-entry record. Stored entries are immutable;
// corrections are new offsetting entries.
type JournalEntry struct {
	Date           time.Time
	CreatedAt      time.Time
	ID             string
	OrganisationID string
	BranchID       string
	Memo           string
	Source         JournalSource
	SourceID       string
	Period         string
	Lines          []JournalLine
}

// JournalLine is one side of a journal entry against a single account.
type JournalLine struct {
	AccountID   string
	Description string
	Debit       Money
	Credit      Money
}

// Totals returns the sum of debits and the sum of credits.
func (e *JournalEntry) Totals() (debit, credit Money) {
	for _, l := range e.Lines {
		debit += l.Debit
		credit += l.Credit
	}
	return debit, credit
}

// IsBalanced reports whether debits equal credits exactly.
func (e *JournalEntry) IsBalanced() bool {
	debit, credit := e.Totals()
	return debit == credit
}
