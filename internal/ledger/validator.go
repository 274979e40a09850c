package ledger

import (
	"fmt"
	"strings"

	"github.com/iho/assetledger/internal/domain"
)

// ValidationResult is the verdict on a journal entry.
type ValidationResult struct {
	Errors []domain.ValidationIssue
	Valid  bool
}

// Err returns a *domain.ValidationError for an invalid result, nil otherwise.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return &domain.ValidationError{Issues: r.Errors}
}

// Validate checks a journal entry against the double-entry rules. Sums are
// compared exactly in minor units. Zero-value lines are accepted; an entry
// whose lines are all zero is not.
func Validate(e *domain.JournalEntry) ValidationResult {
	var issues []domain.ValidationIssue

	if e == nil {
		issues = append(issues, domain.ValidationIssue{Code: domain.CodeTooFewLines, Message: "entry is empty"})
		return ValidationResult{Errors: issues}
	}

	if len(e.Lines) < 2 {
		issues = append(issues, domain.ValidationIssue{
			Code:    domain.CodeTooFewLines,
			Message: fmt.Sprintf("entry has %d lines, at least 2 required", len(e.Lines)),
		})
	}

	for i, l := range e.Lines {
		if l.Debit.IsNegative() || l.Credit.IsNegative() || (!l.Debit.IsZero() && !l.Credit.IsZero()) {
			issues = append(issues, domain.ValidationIssue{
				Code:    domain.CodeInvalidLineSides,
				Message: fmt.Sprintf("line %d has debit %s and credit %s", i, l.Debit, l.Credit),
			})
		}

		if strings.TrimSpace(l.AccountID) == "" {
			issues = append(issues, domain.ValidationIssue{
				Code:    domain.CodeMissingAccount,
				Message: fmt.Sprintf("line %d has no account", i),
			})
		}
	}

	debit, credit := e.Totals()
	if debit != credit {
		issues = append(issues, domain.ValidationIssue{
			Code:    domain.CodeUnbalanced,
			Message: fmt.Sprintf("debits %s do not equal credits %s", debit, credit),
		})
	}

	if debit.IsZero() {
		issues = append(issues, domain.ValidationIssue{
			Code:    domain.CodeZeroTotal,
			Message: "entry total is zero",
		})
	}

	return ValidationResult{Errors: issues, Valid: len(issues) == 0}
}
