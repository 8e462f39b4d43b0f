// Package oidctest runs an in-process token issuer for tests that exercise
// the bearer token gate end to end.
package oidctest

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/upb/casting-agency/oidc"
)

const (
	DefaultAudience = "casting-agency"
	DefaultKID      = "oidctest-key"
)

// Issuer serves a JWKS document and mints RS256 tokens signed by its key
type Issuer struct {
	URL      string
	Audience string
	KID      string

	key    *rsa.PrivateKey
	server *httptest.Server
}

// NewIssuer starts a JWKS server that is closed when the test ends
func NewIssuer(t testing.TB) *Issuer {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	iss := &Issuer{
		Audience: DefaultAudience,
		KID:      DefaultKID,
		key:      key,
	}

	iss.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(oidc.JWKS{Keys: []oidc.JWK{iss.jwk()}})
	}))
	t.Cleanup(iss.server.Close)

	iss.URL = iss.server.URL + "/"
	return iss
}

// JWKSURL is the address of the key set
func (i *Issuer) JWKSURL() string {
	return i.server.URL + "/.well-known/jwks.json"
}

// Config returns validator settings trusting this issuer
func (i *Issuer) Config() oidc.Config {
	return oidc.Config{
		Issuer:   i.URL,
		Audience: i.Audience,
		JWKSURL:  i.JWKSURL(),
	}
}

// Claims returns a valid claim set for subject holding permissions.
// A nil permissions slice omits the claim.
func (i *Issuer) Claims(subject string, permissions []string) *oidc.Claims {
	now := time.Now()
	return &oidc.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.URL,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{i.Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Permissions: permissions,
	}
}

// Sign signs claims with the issuer key
func (i *Issuer) Sign(t testing.TB, claims *oidc.Claims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = i.KID

	signed, err := token.SignedString(i.key)
	require.NoError(t, err)
	return signed
}

// Token mints a valid token for a test subject holding permissions
func (i *Issuer) Token(t testing.TB, permissions ...string) string {
	t.Helper()
	if permissions == nil {
		permissions = []string{}
	}
	return i.Sign(t, i.Claims("auth0|oidctest", permissions))
}

func (i *Issuer) jwk() oidc.JWK {
	return oidc.JWK{
		Kid: i.KID,
		Kty: "RSA",
		Alg: "RS256",
		Use: "sig",
		N:   base64.RawURLEncoding.EncodeToString(i.key.N.Bytes()),
		E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(i.key.E)).Bytes()),
	}
}
