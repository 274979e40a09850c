package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/assetledger/internal/adapter/http/dto"
	"github.com/iho/assetledger/internal/adapter/http/middleware"
	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/usecase"
)

// AssetService defines the behavior needed by AssetHandler.
type AssetService interface {
	RegisterAsset(ctx context.Context, input usecase.RegisterAssetInput) (*domain.Asset, error)
	GetAsset(ctx context.Context, id string) (*domain.Asset, error)
	ListAssets(ctx context.Context, input usecase.ListAssetsInput) ([]*domain.Asset, error)
	SetMapping(ctx context.Context, mapping domain.AccountMapping) (*domain.AccountMapping, error)
	GetMapping(ctx context.Context, assetTypeID string) (*domain.AccountMapping, error)
	ListEvents(ctx context.Context, assetID string, limit, offset int) ([]*domain.OutboxEvent, error)
}

// CapitalizationService records asset purchases.
type CapitalizationService interface {
	RecordPurchase(ctx context.Context, input usecase.RecordPurchaseInput) (*domain.JournalEntry, error)
}

// LifecycleService changes asset status.
type LifecycleService interface {
	ChangeStatus(ctx context.Context, input usecase.ChangeStatusInput) (*domain.Asset, error)
}

// AssetHandler handles asset and mapping requests.
type AssetHandler struct {
	assetUC      AssetService
	capitalizeUC CapitalizationService
	lifecycleUC  LifecycleService
}

// NewAssetHandler creates a new AssetHandler.
func NewAssetHandler(assetUC AssetService, capitalizeUC CapitalizationService, lifecycleUC LifecycleService) *AssetHandler {
	return &AssetHandler{
		assetUC:      assetUC,
		capitalizeUC: capitalizeUC,
		lifecycleUC:  lifecycleUC,
	}
}

// Register registers a new asset.
func (h *AssetHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterAssetRequest
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
		writeDomainError(w, "invalid request", err)
		return
	}

	asset, err := h.assetUC.RegisterAsset(r.Context(), input)
	if err != nil {
		writeDomainError(w, "failed to register asset", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.AssetFromDomain(asset))
}

// Get retrieves an asset by ID.
func (h *AssetHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing asset ID", "")
		return
	}

	asset, err := h.assetUC.GetAsset(r.Context(), id)
	if p := middleware.PrincipalFromContext(r.Context()); err == nil && p != nil && !p.CanAccess(asset.OrganisationID) {
		err = domain.ErrAssetNotFound
	}
	if err != nil {
		writeDomainError(w, "failed to get asset", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AssetFromDomain(asset))
}

// List lists active assets of an organisation.
func (h *AssetHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	orgID, err := resolveOrganisation(r, q.Get("organisation_id"))
	if err != nil {
		writeDomainError(w, "invalid organisation", err)
		return
	}

	assets, err := h.assetUC.ListAssets(r.Context(), usecase.ListAssetsInput{
		Scope:  domain.Scope{OrganisationID: orgID, BranchID: q.Get("branch_id")},
		Limit:  parseIntQuery(r, "limit", 50),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, "failed to list assets", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AssetsFromDomain(assets))
}

// Events returns the recorded history of an asset.
func (h *AssetHandler) Events(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := authorizeAsset(r, h.assetUC, id); err != nil {
		writeDomainError(w, "failed to list events", err)
		return
	}

	events, err := h.assetUC.ListEvents(r.Context(), id, parseIntQuery(r, "limit", 50), parseIntQuery(r, "offset", 0))
	if err != nil {
		writeDomainError(w, "failed to list events", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EventsFromDomain(events))
}

// Capitalize records the purchase entry of an asset.
func (h *AssetHandler) Capitalize(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.CapitalizeRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeDomainError(w, "invalid request", err)
		return
	}

	if err := authorizeAsset(r, h.assetUC, id); err != nil {
		writeDomainError(w, "failed to capitalize asset", err)
		return
	}

	entry, err := h.capitalizeUC.RecordPurchase(r.Context(), usecase.RecordPurchaseInput{
		AssetID:       id,
		CashAccountID: req.CashAccountID,
	})
	if err != nil {
		writeDomainError(w, "failed to capitalize asset", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.JournalEntryFromDomain(entry))
}

// ChangeStatus moves an asset between non-disposal statuses.
func (h *AssetHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.ChangeStatusRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeDomainError(w, "invalid request", err)
		return
	}

	if err := authorizeAsset(r, h.assetUC, id); err != nil {
		writeDomainError(w, "failed to change status", err)
		return
	}

	asset, err := h.lifecycleUC.ChangeStatus(r.Context(), usecase.ChangeStatusInput{
		AssetID: id,
		Status:  domain.AssetStatus(req.Status),
	})
	if err != nil {
		writeDomainError(w, "failed to change status", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AssetFromDomain(asset))
}

// SetMapping stores the chart-of-accounts mapping of an asset type.
func (h *AssetHandler) SetMapping(w http.ResponseWriter, r *http.Request) {
	var req dto.SetMappingRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeDomainError(w, "invalid request", err)
		return
	}

	mapping, err := h.assetUC.SetMapping(r.Context(), req.ToDomain(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, "failed to set mapping", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MappingFromDomain(mapping))
}

// GetMapping returns the mapping of an asset type.
func (h *AssetHandler) GetMapping(w http.ResponseWriter, r *http.Request) {
	mapping, err := h.assetUC.GetMapping(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get mapping", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MappingFromDomain(mapping))
}
