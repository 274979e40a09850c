package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestDisposalMethodTerminalStatus(t *testing.T) {
	t.Parallel()

	tests := map[DisposalMethod]AssetStatus{
		DisposalMethodSold:     AssetStatusDisposed,
		DisposalMethodDonated:  AssetStatusDisposed,
		DisposalMethodScrapped: AssetStatusDisposed,
		DisposalMethodTraded:   AssetStatusDisposed,
		DisposalMethodLost:     AssetStatusLost,
		DisposalMethodStolen:   AssetStatusLost,
		DisposalMethodDamaged:  AssetStatusDamaged,
	}

	for method, want := range tests {
		if !method.IsValid() {
			t.Fatalf("expected %s to be valid", method)
		}
		if got := method.TerminalStatus(); got != want || !got.IsTerminal() {
			t.Fatalf("%s: expected terminal %s, got %s", method, want, got)
		}
	}

	if DisposalMethod("BURNED").IsValid() {
		t.Fatal("unknown method must be invalid")
	}
}

func TestDisposalMethodProceeds(t *testing.T) {
	t.Parallel()

	if !DisposalMethodSold.RequiresSalePrice() || DisposalMethodTraded.RequiresSalePrice() {
		t.Fatal("only SOLD requires a sale price")
	}
	if !DisposalMethodTraded.ReceivesProceeds() || DisposalMethodScrapped.ReceivesProceeds() {
		t.Fatal("unexpected proceeds rule")
	}
}

func TestNewPersistenceError(t *testing.T) {
	t.Parallel()

	if NewPersistenceError("op", nil) != nil {
		t.Fatal("nil error must stay nil")
	}

	if err := NewPersistenceError("insert posting", fmt.Errorf("wrap: %w", ErrAlreadyPosted)); !errors.Is(err, ErrAlreadyPosted) {
		t.Fatalf("domain errors must pass through, got %v", err)
	}

	err := NewPersistenceError("insert posting", context.DeadlineExceeded)
	var pe *PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *PersistenceError, got %T", err)
	}
	if !pe.Timeout() || pe.Op != "insert posting" {
		t.Fatalf("unexpected persistence error %+v", pe)
	}
}

func TestUnmappedAccountsError(t *testing.T) {
	t.Parallel()

	err := error(&UnmappedAccountsError{AssetTypeID: "vehicles", Missing: []string{"asset_account_id"}})
	if !errors.Is(err, ErrUnmappedAccounts) {
		t.Fatal("expected to unwrap to ErrUnmappedAccounts")
	}
	if err.Error() == "" {
		t.Fatal("expected message")
	}
}
