package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/usecase"
)

type assetServiceStub struct {
	registerFn   func(ctx context.Context, input usecase.RegisterAssetInput) (*domain.Asset, error)
	getFn        func(ctx context.Context, id string) (*domain.Asset, error)
	listFn       func(ctx context.Context, input usecase.ListAssetsInput) ([]*domain.Asset, error)
	setMappingFn func(ctx context.Context, mapping domain.AccountMapping) (*domain.AccountMapping, error)
	getMappingFn func(ctx context.Context, assetTypeID string) (*domain.AccountMapping, error)
	eventsFn     func(ctx context.Context, assetID string, limit, offset int) ([]*domain.OutboxEvent, error)
}

func (s *assetServiceStub) RegisterAsset(ctx context.Context, input usecase.RegisterAssetInput) (*domain.Asset, error) {
	return s.registerFn(ctx, input)
}

func (s *assetServiceStub) GetAsset(ctx context.Context, id string) (*domain.Asset, error) {
	return s.getFn(ctx, id)
}

func (s *assetServiceStub) ListAssets(ctx context.Context, input usecase.ListAssetsInput) ([]*domain.Asset, error) {
	return s.listFn(ctx, input)
}

func (s *assetServiceStub) SetMapping(ctx context.Context, mapping domain.AccountMapping) (*domain.AccountMapping, error) {
	return s.setMappingFn(ctx, mapping)
}

func (s *assetServiceStub) GetMapping(ctx context.Context, assetTypeID string) (*domain.AccountMapping, error) {
	return s.getMappingFn(ctx, assetTypeID)
}

func (s *assetServiceStub) ListEvents(ctx context.Context, assetID string, limit, offset int) ([]*domain.OutboxEvent, error) {
	return s.eventsFn(ctx, assetID, limit, offset)
}

type capitalizationStub func(ctx context.Context, input usecase.RecordPurchaseInput) (*domain.JournalEntry, error)

func (f capitalizationStub) RecordPurchase(ctx context.Context, input usecase.RecordPurchaseInput) (*domain.JournalEntry, error) {
	return f(ctx, input)
}

type lifecycleStub func(ctx context.Context, input usecase.ChangeStatusInput) (*domain.Asset, error)

func (f lifecycleStub) ChangeStatus(ctx context.Context, input usecase.ChangeStatusInput) (*domain.Asset, error) {
	return f(ctx, input)
}

// ownedAssets answers GetAsset with an asset belonging to orgID.
func ownedAssets(orgID string) *assetServiceStub {
	return &assetServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Asset, error) {
			return &domain.Asset{ID: id, OrganisationID: orgID, Status: domain.AssetStatusActive}, nil
		},
	}
}

// withURLParam attaches a chi route parameter to the request.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
