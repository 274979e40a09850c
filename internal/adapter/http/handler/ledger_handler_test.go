package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iho/assetledger/internal/adapter/http/dto"
	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/usecase"
)

type ledgerServiceStub func(ctx context.Context, organisationID string) (*usecase.ConsistencyReport, error)

func (f ledgerServiceStub) CheckConsistency(ctx context.Context, organisationID string) (*usecase.ConsistencyReport, error) {
	return f(ctx, organisationID)
}

type recalculationStub func(ctx context.Context, organisationID string) (int, error)

func (f recalculationStub) RecalculateAll(ctx context.Context, organisationID string) (int, error) {
	return f(ctx, organisationID)
}

func TestLedgerHandler_CheckConsistency(t *testing.T) {
	tests := []struct {
		name       string
		report     *usecase.ConsistencyReport
		err        error
		want       int
		wantStatus string
	}{
		{
			name:       "consistent",
			report:     &usecase.ConsistencyReport{OrganisationID: "org-1", TotalDebit: 100, TotalCredit: 100, Consistent: true},
			want:       http.StatusOK,
			wantStatus: "consistent",
		},
		{
			name:       "inconsistent",
			report:     &usecase.ConsistencyReport{OrganisationID: "org-1", TotalDebit: 100, TotalCredit: 90},
			err:        fmt.Errorf("%w: off by 0.10", domain.ErrInconsistentLedger),
			want:       http.StatusConflict,
			wantStatus: "inconsistent",
		},
		{
			name: "store failure",
			err:  errors.New("connection refused"),
			want: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewLedgerHandler(ledgerServiceStub(func(ctx context.Context, organisationID string) (*usecase.ConsistencyReport, error) {
				return tt.report, tt.err
			}))

			rec := httptest.NewRecorder()
			h.CheckConsistency(rec, httptest.NewRequest(http.MethodGet, "/ledger/consistency?organisation_id=org-1", nil))

			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
			if tt.wantStatus == "" {
				return
			}

			var resp dto.ConsistencyResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Status != tt.wantStatus {
				t.Fatalf("expected status %s, got %s", tt.wantStatus, resp.Status)
			}
		})
	}
}

func TestOrganisationHandler_Recalculate(t *testing.T) {
	var gotOrg string
	h := NewOrganisationHandler(recalculationStub(func(ctx context.Context, organisationID string) (int, error) {
		gotOrg = organisationID
		return 7, nil
	}))

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/organisations/org-1/recalculate", nil), "id", "org-1")
	rec := httptest.NewRecorder()
	h.Recalculate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.RecalculateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if gotOrg != "org-1" || resp.Count != 7 {
		t.Fatalf("unexpected response %+v", resp)
	}

	req = withURLParam(httptest.NewRequest(http.MethodPost, "/organisations/org-2/recalculate", nil), "id", "org-2")
	rec = httptest.NewRecorder()
	h.Recalculate(rec, withPrincipal(req, "org-1", domain.RoleOperator))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	h := NewHealthHandler(
		Dependency{Name: "postgres", Ping: func(ctx context.Context) error { return nil }},
		Dependency{Name: "redis", Ping: func(ctx context.Context) error { return errors.New("down") }},
	)

	rec := httptest.NewRecorder()
	h.Liveness(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	NewHealthHandler().Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with no dependencies, got %d", rec.Code)
	}
}
