package oidc

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/upb/casting-agency/internal/auth"
)

// Claims is the token payload issued by the identity provider.
// Permissions stays nil when the claim is absent or null.
type Claims struct {
	jwt.RegisteredClaims
	Permissions []string `json:"permissions"`
}

// ClaimSet converts the decoded payload into the gate's ClaimSet.
func (c *Claims) ClaimSet() auth.ClaimSet {
	params := auth.ClaimSetParams{
		Subject:     c.Subject,
		Issuer:      c.Issuer,
		Audience:    []string(c.Audience),
		Permissions: c.Permissions,
	}
	if c.ExpiresAt != nil {
		params.ExpiresAt = c.ExpiresAt.Time
	}
	if c.NotBefore != nil {
		params.NotBefore = c.NotBefore.Time
	}
	if c.IssuedAt != nil {
		params.IssuedAt = c.IssuedAt.Time
	}
	return auth.NewClaimSet(params)
}
