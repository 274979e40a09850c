package domain

import "time"

// DisposalMethod describes how an asset left the books.
type DisposalMethod string

const (
	DisposalMethodSold     DisposalMethod = "SOLD"
	DisposalMethodDonated  DisposalMethod = "DONATED"
	DisposalMethodScrapped DisposalMethod = "SCRAPPED"
	DisposalMethodLost     DisposalMethod = "LOST"
	DisposalMethodStolen   DisposalMethod = "STOLEN"
	DisposalMethodDamaged  DisposalMethod = "DAMAGED"
	DisposalMethodTraded   DisposalMethod = "TRADED"
)

var disposalTerminalStatus = map[DisposalMethod]AssetStatus{
	DisposalMethodSold:     AssetStatusDisposed,
	DisposalMethodDonated:  AssetStatusDisposed,
	DisposalMethodTraded:   AssetStatusDisposed,
	DisposalMethodScrapped: AssetStatusDisposed,
	DisposalMethodLost:     AssetStatusLost,
	DisposalMethodStolen:   AssetStatusLost,
	DisposalMethodDamaged:  AssetStatusDamaged,
}

// IsValid reports whether m is a known method.
func (m DisposalMethod) IsValid() bool {
	_, ok := disposalTerminalStatus[m]
	return ok
}

// TerminalStatus returns the status an asset takes after disposal by m.
func (m DisposalMethod) TerminalStatus() AssetStatus {
	return disposalTerminalStatus[m]
}

// RequiresSalePrice reports whether a sale price must be supplied.
func (m DisposalMethod) RequiresSalePrice() bool {
	return m == DisposalMethodSold
}

// ReceivesProceeds reports whether the method can bring in consideration.
// Every other method recognises the full book value as a loss.
func (m DisposalMethod) ReceivesProceeds() bool {
	return m == DisposalMethodSold || m == DisposalMethodTraded
}

// Disposal records an asset leaving the books. Created exactly once per asset.
type Disposal struct {
	DisposalDate        time.Time
	CreatedAt           time.Time
	ID                  string
	AssetID             string
	OrganisationID      string
	BranchID            string
	JournalEntryID      string
	Notes               string
	Method              DisposalMethod
	SalePrice           Money
	BookValueAtDisposal Money
	GainLoss            Money // negative is a loss
}

// DepreciationPosting guards against posting depreciation twice for an asset and period.
type DepreciationPosting struct {
	PostedAt       time.Time
	AssetID        string
	Period         string
	JournalEntryID string
	Amount         Money
}
