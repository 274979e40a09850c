package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/assetledger/internal/adapter/http/dto"
	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/usecase"
)

// DisposalService defines the behavior needed by DisposalHandler.
type DisposalService interface {
	Dispose(ctx context.Context, input usecase.DisposeInput) (*usecase.DisposalResult, error)
	GetDisposal(ctx context.Context, assetID string) (*domain.Disposal, error)
}

// DisposalHandler handles disposal requests.
type DisposalHandler struct {
	disposalUC DisposalService
	assets     AssetReader
}

// NewDisposalHandler creates a new DisposalHandler.
func NewDisposalHandler(disposalUC DisposalService, assets AssetReader) *DisposalHandler {
	return &DisposalHandler{disposalUC: disposalUC, assets: assets}
}

// Dispose takes an asset off the books.
func (h *DisposalHandler) Dispose(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.DisposeRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeDomainError(w, "invalid request", err)
		return
	}

	input, err := req.ToUseCaseInput(id)
	if err != nil {
		writeDomainError(w, "invalid request", err)
		return
	}

	if err := authorizeAsset(r, h.assets, id); err != nil {
		writeDomainError(w, "failed to dispose asset", err)
		return
	}

	result, err := h.disposalUC.Dispose(r.Context(), input)
	if err != nil {
		writeDomainError(w, "failed to dispose asset", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.DisposalResultFromUseCase(result))
}

// Get returns the disposal of an asset.
func (h *DisposalHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := authorizeAsset(r, h.assets, id); err != nil {
		writeDomainError(w, "failed to get disposal", err)
		return
	}

	disposal, err := h.disposalUC.GetDisposal(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to get disposal", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DisposalFromDomain(disposal))
}
