package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/assetledger/internal/adapter/http/dto"
)

// RecalculationService recomputes asset values.
type RecalculationService interface {
	RecalculateAll(ctx context.Context, organisationID string) (int, error)
}

// OrganisationHandler handles organisation-wide operations.
type OrganisationHandler struct {
	recalcUC RecalculationService
}

// NewOrganisationHandler creates a new OrganisationHandler.
func NewOrganisationHandler(recalcUC RecalculationService) *OrganisationHandler {
	return &OrganisationHandler{recalcUC: recalcUC}
}

// Recalculate recomputes the current value of every active asset.
func (h *OrganisationHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	orgID, err := resolveOrganisation(r, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "invalid organisation", err)
		return
	}

	count, err := h.recalcUC.RecalculateAll(r.Context(), orgID)
	if err != nil {
		writeDomainError(w, "failed to recalculate", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RecalculateResponse{OrganisationID: orgID, Count: count})
}
