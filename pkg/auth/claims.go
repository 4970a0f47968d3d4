package auth

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the JWT claims accepted by the message risk API.
type Claims struct {
	jwt.RegisteredClaims
	TenantID string   `json:"tenant_id"`
	Roles    []string `json:"roles"`
}

// HasRole reports whether the claims include role.
func (c Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

const (
	RoleAdmin     = "admin"
	RoleAnalyst   = "analyst"
	RoleReporter  = "reporter"
	RoleAPIClient = "api_client"
)
