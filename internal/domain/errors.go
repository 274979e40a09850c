package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// Asset errors
	ErrAssetNotFound       = errors.New("asset not found")
	ErrInvalidStatus       = errors.New("invalid asset status")
	ErrInvalidTransition   = errors.New("invalid asset status transition")
	ErrNotFullyDepreciated = errors.New("asset must be fully depreciated before retirement")
	ErrValueOutOfRange     = errors.New("current value must be between zero and purchase price")
	ErrAlreadyCapitalized  = errors.New("asset purchase already recorded")
	ErrZeroPurchasePrice   = errors.New("purchase price must be greater than zero")
	ErrMissingOrganisation = errors.New("organisation ID is required")
	ErrMissingAssetType    = errors.New("asset type ID is required")

	// Posting errors
	ErrAlreadyPosted    = errors.New("depreciation already posted for period")
	ErrUnmappedAccounts = errors.New("asset type has no chart-of-accounts mapping")
	ErrInvalidPeriod    = errors.New("invalid period, expected YYYY-MM")
	ErrMappingInUse     = errors.New("account mapping is referenced by posted entries")
	ErrBatchInProgress  = errors.New("depreciation batch already running for scope and period")

	// Disposal errors
	ErrAlreadyDisposed      = errors.New("asset is already disposed")
	ErrMissingSalePrice     = errors.New("sale price is required for sold assets")
	ErrInvalidDisposal      = errors.New("invalid disposal method")
	ErrDisposalNotFound     = errors.New("disposal not found")
	ErrDisposalBeforeBuying = errors.New("disposal date precedes purchase date")

	// Journal errors
	ErrInvalidEntry       = errors.New("journal entry failed validation")
	ErrUnbalancedEntry    = errors.New("journal entry does not balance")
	ErrJournalNotFound    = errors.New("journal entry not found")
	ErrInvalidAmount      = errors.New("amount must not be negative")
	ErrInconsistentLedger = errors.New("ledger is inconsistent: debits do not equal credits")
)

// Validation issue codes, one per journal rule.
const (
	CodeTooFewLines      = "too_few_lines"
	CodeInvalidLineSides = "invalid_line_sides"
	CodeUnbalanced       = "unbalanced"
	CodeMissingAccount   = "missing_account"
	CodeZeroTotal        = "zero_total"
)

// ValidationIssue is a single violated journal rule.
type ValidationIssue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (i ValidationIssue) String() string {
	return i.Code + ": " + i.Message
}

// ValidationError reports every rule a journal entry violated.
type ValidationError struct {
	Issues []ValidationIssue
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	return fmt.Sprintf("%s: %s", ErrInvalidEntry, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidEntry
}

// Codes returns the issue codes in order.
func (e *ValidationError) Codes() []string {
	codes := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		codes[i] = issue.Code
	}
	return codes
}

// UnmappedAccountsError names the asset type and the accounts it lacks.
type UnmappedAccountsError struct {
	AssetTypeID string
	Missing     []string
}

func (e *UnmappedAccountsError) Error() string {
	if len(e.Missing) == 0 {
		return fmt.Sprintf("%s: asset type %s", ErrUnmappedAccounts, e.AssetTypeID)
	}
	return fmt.Sprintf("%s: asset type %s is missing %s", ErrUnmappedAccounts, e.AssetTypeID, strings.Join(e.Missing, ", "))
}

func (e *UnmappedAccountsError) Unwrap() error {
	return ErrUnmappedAccounts
}

// PersistenceError wraps a ledger store failure. Retrying the operation is
// safe because postings are guarded by their idempotency record.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the store failed by exceeding its deadline.
func (e *PersistenceError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// NewPersistenceError wraps err unless it already carries a domain meaning.
func NewPersistenceError(op string, err error) error {
	if err == nil {
		return nil
	}

	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}

	for _, known := range []error{ErrAlreadyPosted, ErrAlreadyDisposed, ErrAlreadyCapitalized, ErrAssetNotFound, ErrInvalidEntry, ErrUnbalancedEntry} {
		if errors.Is(err, known) {
			return err
		}
	}

	return &PersistenceError{Op: op, Err: err}
}
