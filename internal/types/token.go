package types

import (
	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin is the only role accepted by the admin endpoints.
const RoleAdmin = "admin"

// TokenClaims represents the claims in an admin JWT
type TokenClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// IsAdmin reports whether the claims grant access to the admin endpoints.
func (c *TokenClaims) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}
