package postgres

import (
	"context"

	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/infrastructure/postgres/generated"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db)}
}

// CheckConsistency sums every journal line of an organisation, or of all
// organisations when organisationID is empty.
func (r *LedgerRepository) CheckConsistency(ctx context.Context, organisationID string) (totalDebit, totalCredit domain.Money, err error) {
	result, err := r.queries.CheckLedgerConsistency(ctx, organisationID)
	if err != nil {
		return domain.ZeroMoney, domain.ZeroMoney, domain.NewPersistenceError("ledger.consistency", err)
	}

	return domain.Money(result.TotalDebitCents), domain.Money(result.TotalCreditCents), nil
}
