package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/iho/assetledger/internal/adapter/http/dto"
	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/usecase"
)

// LedgerService checks journal consistency.
type LedgerService interface {
	CheckConsistency(ctx context.Context, organisationID string) (*usecase.ConsistencyReport, error)
}

// LedgerHandler handles ledger-wide operations.
type LedgerHandler struct {
	ledgerUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// CheckConsistency checks that debits equal credits across the journal.
func (h *LedgerHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	orgID, err := resolveOrganisation(r, r.URL.Query().Get("organisation_id"))
	if err != nil {
		writeDomainError(w, "invalid organisation", err)
		return
	}

	report, err := h.ledgerUC.CheckConsistency(r.Context(), orgID)
	if err != nil {
		if errors.Is(err, domain.ErrInconsistentLedger) && report != nil {
			resp := dto.ConsistencyFromUseCase(report)
			resp.Message = err.Error()
			writeJSON(w, http.StatusConflict, resp)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to check consistency", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ConsistencyFromUseCase(report))
}
