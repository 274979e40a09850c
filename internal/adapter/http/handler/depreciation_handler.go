package handler

import (
	"context"
	"net/http"

	"github.com/iho/assetledger/internal/adapter/http/dto"
	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/usecase"
)

// DepreciationService defines the behavior needed by DepreciationHandler.
type DepreciationService interface {
	PostDepreciation(ctx context.Context, input usecase.PostDepreciationInput) (*usecase.BatchResult, error)
	ListPostings(ctx context.Context, scope domain.Scope, period domain.Period) ([]*domain.DepreciationPosting, error)
}

// DepreciationHandler handles depreciation batch requests.
type DepreciationHandler struct {
	depreciationUC DepreciationService
}

// NewDepreciationHandler creates a new DepreciationHandler.
func NewDepreciationHandler(depreciationUC DepreciationService) *DepreciationHandler {
	return &DepreciationHandler{depreciationUC: depreciationUC}
}

// Post runs a depreciation batch. Per-asset failures are part of a 200
// response; a cancelled batch returns its partial result with 503.
func (h *DepreciationHandler) Post(w http.ResponseWriter, r *http.Request) {
	var req dto.PostDepreciationRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeDomainError(w, "invalid request", err)
		return
	}

	orgID, err := resolveOrganisation(r, req.OrganisationID)
	if err != nil {
		writeDomainError(w, "invalid organisation", err)
		return
	}

	input, err := req.ToUseCaseInput(orgID)
	if err != nil {
		writeDomainError(w, "invalid period", err)
		return
	}

	result, err := h.depreciationUC.PostDepreciation(r.Context(), input)
	if err != nil {
		if result == nil {
			writeDomainError(w, "failed to post depreciation", err)
			return
		}

		resp := dto.BatchResultFromUseCase(result)
		resp.Error = err.Error()
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	writeJSON(w, http.StatusOK, dto.BatchResultFromUseCase(result))
}

// ListPostings lists the postings recorded for a period.
func (h *DepreciationHandler) ListPostings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	orgID, err := resolveOrganisation(r, q.Get("organisation_id"))
	if err != nil {
		writeDomainError(w, "invalid organisation", err)
		return
	}

	period, err := domain.ParsePeriod(q.Get("period"))
	if err != nil {
		writeDomainError(w, "invalid period", err)
		return
	}

	scope := domain.Scope{OrganisationID: orgID, BranchID: q.Get("branch_id")}
	postings, err := h.depreciationUC.ListPostings(r.Context(), scope, period)
	if err != nil {
		writeDomainError(w, "failed to list postings", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PostingsFromDomain(postings))
}
