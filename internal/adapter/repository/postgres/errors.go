package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iho/assetledger/internal/domain"
)

// PostgreSQL error codes mapped onto domain errors.
const (
	pgErrUniqueViolation = "23505"
	pgErrCheckViolation  = "23514"
)

// Constraint names from the migrations.
const (
	constraintPostingOnce       = "depreciation_postings_pkey"
	constraintDisposalOnce      = "disposals_asset_once"
	constraintPurchaseOnce      = "journal_entries_purchase_once"
	constraintEntryBalanced     = "journal_entries_balanced"
	constraintCurrentValueRange = "assets_current_value_range"
)

var constraintErrors = map[string]error{
	constraintPostingOnce:       domain.ErrAlreadyPosted,
	constraintDisposalOnce:      domain.ErrAlreadyDisposed,
	constraintPurchaseOnce:      domain.ErrAlreadyCapitalized,
	constraintEntryBalanced:     domain.ErrUnbalancedEntry,
	constraintCurrentValueRange: domain.ErrValueOutOfRange,
}

// translateError replaces constraint violations the domain knows about with
// the matching sentinel. Everything else is returned unchanged.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgErrUniqueViolation, pgErrCheckViolation:
		if mapped, ok := constraintErrors[pgErr.ConstraintName]; ok {
			return mapped
		}
	}

	return err
}
