package dto

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/assetledger/internal/domain"
)

func int64Ptr(v int64) *int64 { return &v }

func TestRegisterAssetRequest_ToUseCaseInput(t *testing.T) {
	req := &RegisterAssetRequest{
		BranchID:           "branch-1",
		AssetTypeID:        "vehicles",
		Name:               "Van",
		PurchaseDate:       "2024-01-15",
		DepreciationRate:   decimal.RequireFromString("20"),
		PurchasePriceCents: 1200000,
	}

	got, err := req.ToUseCaseInput("org-1")
	if err != nil {
		t.Fatalf("ToUseCaseInput() error = %v", err)
	}

	if got.OrganisationID != "org-1" || got.BranchID != "branch-1" || got.AssetTypeID != "vehicles" {
		t.Fatalf("unexpected scope: %+v", got)
	}
	if !got.PurchaseDate.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("purchase date = %v", got.PurchaseDate)
	}
	if got.PurchasePrice != domain.Money(1200000) {
		t.Fatalf("purchase price = %v", got.PurchasePrice)
	}
	if got.CurrentValue != nil {
		t.Fatalf("expected nil current value, got %v", *got.CurrentValue)
	}

	req.CurrentValueCents = int64Ptr(900000)
	got, err = req.ToUseCaseInput("org-1")
	if err != nil {
		t.Fatalf("ToUseCaseInput() error = %v", err)
	}
	if got.CurrentValue == nil || *got.CurrentValue != domain.Money(900000) {
		t.Fatalf("current value = %v", got.CurrentValue)
	}
}

func TestDisposeRequest_ToUseCaseInput(t *testing.T) {
	tests := []struct {
		name      string
		request   *DisposeRequest
		wantPrice *domain.Money
		wantDate  time.Time
		wantErr   bool
	}{
		{
			name:    "sold with price and date",
			request: &DisposeRequest{Method: "SOLD", SalePriceCents: int64Ptr(5000), DisposalDate: "2024-06-30"},
			wantPrice: func() *domain.Money {
				m := domain.Money(5000)
				return &m
			}(),
			wantDate: time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "scrapped without date",
			request: &DisposeRequest{Method: "SCRAPPED"},
		},
		{
			name:    "bad date",
			request: &DisposeRequest{Method: "LOST", DisposalDate: "30/06/2024"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.request.ToUseCaseInput("asset-1")
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRequest) {
					t.Fatalf("expected ErrInvalidRequest, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got.AssetID != "asset-1" || string(got.Method) != tt.request.Method {
				t.Fatalf("unexpected input: %+v", got)
			}
			if (got.SalePrice == nil) != (tt.wantPrice == nil) {
				t.Fatalf("sale price = %v, want %v", got.SalePrice, tt.wantPrice)
			}
			if tt.wantPrice != nil && *got.SalePrice != *tt.wantPrice {
				t.Fatalf("sale price = %v, want %v", *got.SalePrice, *tt.wantPrice)
			}
			if !got.DisposalDate.Equal(tt.wantDate) {
				t.Fatalf("disposal date = %v, want %v", got.DisposalDate, tt.wantDate)
			}
		})
	}
}

func TestPostDepreciationRequest_ToUseCaseInput(t *testing.T) {
	req := &PostDepreciationRequest{Period: "2024-03", AssetIDs: []string{"a1", "a2"}}

	got, err := req.ToUseCaseInput("org-1")
	if err != nil {
		t.Fatalf("ToUseCaseInput() error = %v", err)
	}
	if got.Period.String() != "2024-03" || got.OrganisationID != "org-1" || len(got.AssetIDs) != 2 {
		t.Fatalf("unexpected input: %+v", got)
	}

	req.Period = "2024-13"
	if _, err := req.ToUseCaseInput("org-1"); !errors.Is(err, domain.ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestSetMappingRequest_ToDomain(t *testing.T) {
	req := &SetMappingRequest{
		AssetAccountID:                   "1500",
		DepreciationExpenseAccountID:     "6100",
		AccumulatedDepreciationAccountID: "1590",
	}

	m := req.ToDomain("vehicles")
	if m.AssetTypeID != "vehicles" || m.AssetAccountID != "1500" || m.GainLossAccountID != "" {
		t.Fatalf("unexpected mapping: %+v", m)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		request   any
		wantField string
	}{
		{
			name:    "valid register",
			request: &RegisterAssetRequest{AssetTypeID: "t", Name: "Desk", PurchaseDate: "2024-01-01", PurchasePriceCents: 45000},
		},
		{
			name:      "missing name",
			request:   &RegisterAssetRequest{AssetTypeID: "t", PurchaseDate: "2024-01-01", PurchasePriceCents: 45000},
			wantField: "name",
		},
		{
			name:      "bad purchase date",
			request:   &RegisterAssetRequest{AssetTypeID: "t", Name: "Desk", PurchaseDate: "2024-1-1", PurchasePriceCents: 45000},
			wantField: "purchase_date",
		},
		{
			name:      "zero price",
			request:   &RegisterAssetRequest{AssetTypeID: "t", Name: "Desk", PurchaseDate: "2024-01-01"},
			wantField: "purchase_price_cents",
		},
		{
			name:      "negative price",
			request:   &RegisterAssetRequest{AssetTypeID: "t", Name: "Desk", PurchaseDate: "2024-01-01", PurchasePriceCents: -1},
			wantField: "purchase_price_cents",
		},
		{
			name:      "unknown method",
			request:   &DisposeRequest{Method: "BURNED"},
			wantField: "method",
		},
		{
			name:      "negative sale price",
			request:   &DisposeRequest{Method: "SOLD", SalePriceCents: int64Ptr(-5)},
			wantField: "sale_price_cents",
		},
		{
			name:      "bad period",
			request:   &PostDepreciationRequest{Period: "March"},
			wantField: "period",
		},
		{
			name:      "empty asset id",
			request:   &PostDepreciationRequest{Period: "2024-03", AssetIDs: []string{"a1", ""}},
			wantField: "asset_ids[1]",
		},
		{
			name:      "missing cash account",
			request:   &CapitalizeRequest{},
			wantField: "cash_account_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.request)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var reqErr *RequestError
			if !errors.As(err, &reqErr) {
				t.Fatalf("expected *RequestError, got %v", err)
			}
			if !errors.Is(err, ErrInvalidRequest) {
				t.Fatalf("expected ErrInvalidRequest in chain")
			}
			if len(reqErr.Fields) != 1 || !strings.HasPrefix(reqErr.Fields[0], tt.wantField+":") {
				t.Fatalf("fields = %v, want %s", reqErr.Fields, tt.wantField)
			}
		})
	}
}
