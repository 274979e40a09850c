package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/iho/assetledger/internal/adapter/http/dto"
	"github.com/iho/assetledger/internal/adapter/http/middleware"
	"github.com/iho/assetledger/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError writes err with the status mapDomainError picks for it.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	resp := dto.ErrorResponse{Error: message, Message: err.Error()}

	var reqErr *dto.RequestError
	if errors.As(err, &reqErr) {
		resp.Fields = reqErr.Fields
	}

	writeJSON(w, mapDomainError(err), resp)
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrAssetNotFound),
		errors.Is(err, domain.ErrDisposalNotFound),
		errors.Is(err, domain.ErrJournalNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrAlreadyPosted),
		errors.Is(err, domain.ErrAlreadyDisposed),
		errors.Is(err, domain.ErrAlreadyCapitalized),
		errors.Is(err, domain.ErrMappingInUse),
		errors.Is(err, domain.ErrBatchInProgress),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrNotFullyDepreciated),
		errors.Is(err, domain.ErrInconsistentLedger):
		return http.StatusConflict

	case errors.Is(err, domain.ErrUnmappedAccounts):
		return http.StatusUnprocessableEntity

	case errors.Is(err, dto.ErrInvalidRequest),
		errors.Is(err, domain.ErrInvalidPeriod),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrZeroPurchasePrice),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrValueOutOfRange),
		errors.Is(err, domain.ErrMissingOrganisation),
		errors.Is(err, domain.ErrMissingAssetType),
		errors.Is(err, domain.ErrMissingSalePrice),
		errors.Is(err, domain.ErrInvalidDisposal),
		errors.Is(err, domain.ErrDisposalBeforeBuying),
		errors.Is(err, domain.ErrInvalidEntry),
		errors.Is(err, domain.ErrUnbalancedEntry),
		errors.Is(err, domain.ErrInvalidAssetName),
		errors.Is(err, domain.ErrInvalidRate),
		errors.Is(err, domain.ErrInvalidAccountID):
		return http.StatusBadRequest

	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrExpiredToken):
		return http.StatusUnauthorized

	case errors.Is(err, domain.ErrInsufficientRole),
		errors.Is(err, domain.ErrForeignScope):
		return http.StatusForbidden

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout

	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// decodeAndValidate decodes a JSON body into req and runs its validate tags.
func decodeAndValidate(r *http.Request, req any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(req); err != nil {
		return &dto.RequestError{Fields: []string{"body: " + err.Error()}}
	}

	return dto.Validate(req)
}

// resolveOrganisation picks the organisation a request acts on. Authenticated
// callers default to their own organisation and may not name another one.
func resolveOrganisation(r *http.Request, requested string) (string, error) {
	p := middleware.PrincipalFromContext(r.Context())
	if p == nil {
		if requested == "" {
			return "", domain.ErrMissingOrganisation
		}
		return requested, nil
	}

	if requested == "" {
		return p.OrganisationID, nil
	}
	if !p.CanAccess(requested) {
		return "", domain.ErrForeignScope
	}
	return requested, nil
}

// AssetReader loads assets for ownership checks.
type AssetReader interface {
	GetAsset(ctx context.Context, id string) (*domain.Asset, error)
}

// authorizeAsset checks that the caller may act on the asset. Other
// organisations' assets are reported as missing.
func authorizeAsset(r *http.Request, assets AssetReader, assetID string) error {
	p := middleware.PrincipalFromContext(r.Context())
	if p == nil {
		return nil
	}

	asset, err := assets.GetAsset(r.Context(), assetID)
	if err != nil {
		return err
	}
	if !p.CanAccess(asset.OrganisationID) {
		return domain.ErrAssetNotFound
	}
	return nil
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
