package usecase

import (
	"context"
	"fmt"

	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/infrastructure/metrics"
)

// ConsistencyReport holds the journal totals behind a consistency verdict.
type ConsistencyReport struct {
	OrganisationID string
	TotalDebit     domain.Money
	TotalCredit    domain.Money
	Consistent     bool
}

// LedgerUseCase handles ledger-wide operations.
type LedgerUseCase struct {
	ledgerRepo LedgerRepository
	metrics    *metrics.Metrics
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(ledgerRepo LedgerRepository, metrics *metrics.Metrics) *LedgerUseCase {
	return &LedgerUseCase{
		ledgerRepo: ledgerRepo,
		metrics:    metrics,
	}
}

// CheckConsistency verifies that total debits equal total credits across the
// journal lines of an organisation, or of every organisation when empty.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context, organisationID string) (*ConsistencyReport, error) {
	debit, credit, err := uc.ledgerRepo.CheckConsistency(ctx, organisationID)
	if err != nil {
		return nil, err
	}

	report := &ConsistencyReport{
		OrganisationID: organisationID,
		TotalDebit:     debit,
		TotalCredit:    credit,
		Consistent:     debit == credit,
	}

	if !report.Consistent {
		if uc.metrics != nil {
			uc.metrics.ConsistencyFailures.Inc()
		}
		return report, fmt.Errorf("%w: debits=%s credits=%s difference=%s",
			domain.ErrInconsistentLedger, debit, credit, debit-credit)
	}

	return report, nil
}
