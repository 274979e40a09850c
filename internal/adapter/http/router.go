package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/assetledger/internal/adapter/http/handler"
	"github.com/iho/assetledger/internal/adapter/http/middleware"
	"github.com/iho/assetledger/internal/infrastructure/auth"
	"github.com/iho/assetledger/internal/infrastructure/metrics"
	"github.com/iho/assetledger/internal/usecase"
)

// RouterConfig holds dependencies for the router. Optional collaborators
// (idempotency, rate limiting, auth, metrics) are skipped when nil.
type RouterConfig struct {
	AssetHandler        *handler.AssetHandler
	DepreciationHandler *handler.DepreciationHandler
	DisposalHandler     *handler.DisposalHandler
	OrganisationHandler *handler.OrganisationHandler
	LedgerHandler       *handler.LedgerHandler
	HealthHandler       *handler.HealthHandler

	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	JWTManager       *auth.JWTManager
	Metrics          *metrics.Metrics
	MetricsHandler   http.Handler
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// writes is applied to every mutating route
	writes := []func(http.Handler) http.Handler{middleware.RequireWrite()}
	if cfg.RateLimiter != nil {
		writes = append(writes, cfg.RateLimiter.Limit)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.JWTManager != nil {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager, cfg.Metrics))
		}
		// after auth so keys are scoped to the caller's organisation
		if cfg.IdempotencyStore != nil {
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger).Wrap)
		}

		// Assets
		r.Route("/assets", func(r chi.Router) {
			r.Get("/", cfg.AssetHandler.List)
			r.With(writes...).Post("/", cfg.AssetHandler.Register)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", cfg.AssetHandler.Get)
				r.Get("/disposal", cfg.DisposalHandler.Get)
				r.Get("/events", cfg.AssetHandler.Events)

				r.Group(func(r chi.Router) {
					r.Use(writes...)
					r.Post("/capitalize", cfg.AssetHandler.Capitalize)
					r.Post("/status", cfg.AssetHandler.ChangeStatus)
					r.Post("/disposals", cfg.DisposalHandler.Dispose)
				})
			})
		})

		// Chart-of-accounts mappings
		r.Route("/asset-types/{id}/mapping", func(r chi.Router) {
			r.Get("/", cfg.AssetHandler.GetMapping)
			r.With(writes...).With(middleware.RequireMappingAdmin()).Put("/", cfg.AssetHandler.SetMapping)
		})

		// Depreciation
		r.Route("/depreciation", func(r chi.Router) {
			r.With(writes...).Post("/batches", cfg.DepreciationHandler.Post)
			r.Get("/postings", cfg.DepreciationHandler.ListPostings)
		})

		r.With(writes...).Post("/organisations/{id}/recalculate", cfg.OrganisationHandler.Recalculate)

		r.Get("/ledger/consistency", cfg.LedgerHandler.CheckConsistency)
	})

	return r
}
