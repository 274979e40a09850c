package domain

import "errors"

// Principal is the authenticated caller of the API.
type Principal struct {
	Subject        string
	OrganisationID string
	Role           Role
}

// Role represents a caller's access level
type Role string

const (
	// RoleAdmin may also maintain account mappings
	RoleAdmin Role = "admin"

	// RoleOperator can post depreciation, dispose and change asset status
	RoleOperator Role = "operator"

	// RoleViewer can only read
	RoleViewer Role = "viewer"
)

var validRoles = map[Role]bool{
	RoleAdmin:    true,
	RoleOperator: true,
	RoleViewer:   true,
}

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// CanWrite reports whether the role may change the books.
func (r Role) CanWrite() bool {
	return r == RoleAdmin || r == RoleOperator
}

// CanManageMappings reports whether the role may change account mappings.
func (r Role) CanManageMappings() bool {
	return r == RoleAdmin
}

// CanAccess reports whether p may act on the organisation's data.
func (p *Principal) CanAccess(organisationID string) bool {
	return p.OrganisationID == organisationID
}

// Authentication errors
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInsufficientRole = errors.New("insufficient role for this operation")
	ErrForeignScope     = errors.New("organisation is outside the caller's scope")
)
