package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iho/assetledger/internal/domain"
)

// Issuer is stamped on every token and required on verification.
const Issuer = "assetledger"

const clockSkew = 30 * time.Second

// Claims carry the caller's organisation scope and role.
type Claims struct {
	OrganisationID string      `json:"org"`
	Role           domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Principal converts the claims into the caller identity.
func (c *Claims) Principal() *domain.Principal {
	return &domain.Principal{
		Subject:        c.Subject,
		OrganisationID: c.OrganisationID,
		Role:           c.Role,
	}
}

// JWTManager issues and verifies HS256 bearer tokens.
type JWTManager struct {
	secretKey     []byte
	tokenDuration time.Duration
	parser        *jwt.Parser
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secretKey string, tokenDuration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(Issuer),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(clockSkew),
		),
	}
}

// Generate issues a token for p.
func (m *JWTManager) Generate(p *domain.Principal) (string, error) {
	if !p.Role.IsValid() {
		return "", fmt.Errorf("%w: unknown role %q", domain.ErrInvalidToken, p.Role)
	}
	if p.OrganisationID == "" {
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidToken, domain.ErrMissingOrganisation)
	}

	now := time.Now()
	claims := Claims{
		OrganisationID: p.OrganisationID,
		Role:           p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   p.Subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secretKey)
}

// Verify checks signature, issuer and lifetime, then requires the
// organisation scope and a known role.
func (m *JWTManager) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := m.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return m.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrExpiredToken
		}
		return nil, domain.ErrInvalidToken
	}

	if claims.OrganisationID == "" || !claims.Role.IsValid() {
		return nil, domain.ErrInvalidToken
	}

	return claims, nil
}
