package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/infrastructure/auth"
	"github.com/iho/assetledger/internal/infrastructure/logger"
	"github.com/iho/assetledger/internal/infrastructure/metrics"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// PrincipalContextKey is the context key for the authenticated caller
	PrincipalContextKey ContextKey = "principal"
)

// WithPrincipal returns ctx carrying p.
func WithPrincipal(ctx context.Context, p *domain.Principal) context.Context {
	return context.WithValue(ctx, PrincipalContextKey, p)
}

// PrincipalFromContext returns the authenticated caller, or nil when the
// request was not authenticated.
func PrincipalFromContext(ctx context.Context) *domain.Principal {
	p, _ := ctx.Value(PrincipalContextKey).(*domain.Principal)
	return p
}

// AuthMiddleware creates an authentication middleware
func AuthMiddleware(jwtManager *auth.JWTManager, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				authFailure(m, "missing_header")
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				authFailure(m, "bad_header")
				http.Error(w, "invalid authorization header format", http.StatusUnauthorized)
				return
			}

			claims, err := jwtManager.Verify(parts[1])
			if err != nil {
				if errors.Is(err, domain.ErrExpiredToken) {
					authFailure(m, "expired")
				} else {
					authFailure(m, "invalid")
				}
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			principal := claims.Principal()
			ctx := WithPrincipal(r.Context(), principal)
			ctx = logger.WithOrganisationID(ctx, principal.OrganisationID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects callers whose role does not satisfy allowed.
// Requests without a principal pass through; authentication is optional.
func RequireRole(allowed func(domain.Role) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p := PrincipalFromContext(r.Context()); p != nil && !allowed(p.Role) {
				http.Error(w, "insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireWrite allows admins and operators.
func RequireWrite() func(http.Handler) http.Handler {
	return RequireRole(domain.Role.CanWrite)
}

// RequireMappingAdmin allows admins only.
func RequireMappingAdmin() func(http.Handler) http.Handler {
	return RequireRole(domain.Role.CanManageMappings)
}

func authFailure(m *metrics.Metrics, reason string) {
	if m != nil {
		m.AuthFailures.WithLabelValues(reason).Inc()
	}
}
