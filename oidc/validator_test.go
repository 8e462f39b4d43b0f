package oidc

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upb/casting-agency/internal/auth"
)

const (
	testIssuer   = "https://casting.example.auth0.com/"
	testAudience = "casting-agency"
	testKID      = "test-kid-123"
)

// Test helper to generate RSA key pair
func generateTestKeyPair(t *testing.T) (*rsa.PrivateKey, *rsa.PublicKey) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return privateKey, &privateKey.PublicKey
}

func toJWK(publicKey *rsa.PublicKey, kid string) JWK {
	return JWK{
		Kid: kid,
		Kty: "RSA",
		Alg: "RS256",
		Use: "sig",
		N:   base64.RawURLEncoding.EncodeToString(publicKey.N.Bytes()),
		E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(publicKey.E)).Bytes()),
	}
}

// Test helper to create a mock JWKS server; hits counts JWKS requests
func createMockJWKSServer(t *testing.T, publicKey *rsa.PublicKey, kid string, hits *int32) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(JWKS{Keys: []JWK{toJWK(publicKey, kid)}})
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestValidator(jwksURL string) *Validator {
	return NewValidator(Config{
		Issuer:   testIssuer,
		Audience: testAudience,
		JWKSURL:  jwksURL,
	})
}

func validClaims() *Claims {
	now := time.Now()
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testIssuer,
			Subject:   "auth0|casting-director",
			Audience:  jwt.ClaimStrings{testAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Permissions: []string{"read:actors", "create:actors"},
	}
}

// Test helper to create a signed test token
func createTestToken(t *testing.T, privateKey *rsa.PrivateKey, kid string, claims *Claims) string {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if kid != "" {
		token.Header["kid"] = kid
	}

	tokenString, err := token.SignedString(privateKey)
	require.NoError(t, err)
	return tokenString
}

func TestNewValidator(t *testing.T) {
	validator := NewValidator(Config{Issuer: testIssuer, Audience: testAudience})

	assert.Equal(t, "https://casting.example.auth0.com/.well-known/jwks.json", validator.jwksURL)
	assert.Equal(t, []string{"RS256"}, validator.algorithms)
	assert.Equal(t, 10*time.Second, validator.httpClient.Timeout)
	assert.Zero(t, validator.jwksCacheTTL)
	assert.NotNil(t, validator.keyCache)
}

func TestFetchJWKS_CachedForProcessWhenTTLZero(t *testing.T) {
	_, publicKey := generateTestKeyPair(t)
	var hits int32
	server := createMockJWKSServer(t, publicKey, testKID, &hits)
	validator := newTestValidator(server.URL)

	ctx := context.Background()
	jwks, err := validator.FetchJWKS(ctx)
	require.NoError(t, err)
	assert.Len(t, jwks.Keys, 1)
	assert.Equal(t, testKID, jwks.Keys[0].Kid)

	jwks2, err := validator.FetchJWKS(ctx)
	require.NoError(t, err)
	assert.True(t, jwks == jwks2)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestFetchJWKS_RefetchAfterTTL(t *testing.T) {
	_, publicKey := generateTestKeyPair(t)
	var hits int32
	server := createMockJWKSServer(t, publicKey, testKID, &hits)
	validator := NewValidator(Config{
		Issuer:   testIssuer,
		Audience: testAudience,
		JWKSURL:  server.URL,
		CacheTTL: time.Millisecond,
	})

	_, err := validator.FetchJWKS(context.Background())
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	_, err = validator.FetchJWKS(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestFetchJWKS_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newTestValidator(server.URL).FetchJWKS(context.Background())
	assert.ErrorIs(t, err, ErrJWKSFetchFailed)
}

func TestVerify_Success(t *testing.T) {
	privateKey, publicKey := generateTestKeyPair(t)
	server := createMockJWKSServer(t, publicKey, testKID, nil)
	validator := newTestValidator(server.URL)

	claims := validClaims()
	claimSet, err := validator.Verify(context.Background(), createTestToken(t, privateKey, testKID, claims))
	require.NoError(t, err)

	assert.Equal(t, "auth0|casting-director", claimSet.Subject())
	assert.Equal(t, testIssuer, claimSet.Issuer())
	assert.Equal(t, []string{testAudience}, claimSet.Audience())
	assert.Equal(t, []string{"read:actors", "create:actors"}, claimSet.Permissions())
	assert.True(t, claimSet.HasPermissionsClaim())
	assert.Equal(t, claims.ExpiresAt.Unix(), claimSet.ExpiresAt().Unix())
}

func TestVerify_PermissionsClaimAbsent(t *testing.T) {
	privateKey, publicKey := generateTestKeyPair(t)
	server := createMockJWKSServer(t, publicKey, testKID, nil)

	claims := validClaims()
	claims.Permissions = nil

	claimSet, err := newTestValidator(server.URL).Verify(context.Background(), createTestToken(t, privateKey, testKID, claims))
	require.NoError(t, err)
	assert.False(t, claimSet.HasPermissionsClaim())
}

func TestVerify_Rejections(t *testing.T) {
	privateKey, publicKey := generateTestKeyPair(t)
	otherKey, _ := generateTestKeyPair(t)
	server := createMockJWKSServer(t, publicKey, testKID, nil)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims()).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	hmac := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims())
	hmac.Header["kid"] = testKID
	hmacToken, err := hmac.SignedString([]byte("shared-secret"))
	require.NoError(t, err)

	tests := []struct {
		name     string
		token    func() string
		wantKind auth.ErrorKind
		wantMsg  string
	}{
		{
			name:     "not a jwt",
			token:    func() string { return "definitely-not-a-token" },
			wantKind: auth.KindInvalidHeader,
		},
		{
			name:     "algorithm none",
			token:    func() string { return noneToken },
			wantKind: auth.KindInvalidHeader,
			wantMsg:  "Unsupported signing algorithm.",
		},
		{
			name:     "symmetric algorithm",
			token:    func() string { return hmacToken },
			wantKind: auth.KindInvalidHeader,
			wantMsg:  "Unsupported signing algorithm.",
		},
		{
			name:     "missing kid",
			token:    func() string { return createTestToken(t, privateKey, "", validClaims()) },
			wantKind: auth.KindInvalidHeader,
			wantMsg:  "Authorization malformed.",
		},
		{
			name:     "unknown kid",
			token:    func() string { return createTestToken(t, privateKey, "rotated-kid", validClaims()) },
			wantKind: auth.KindInvalidSignature,
			wantMsg:  "Unable to find the appropriate key.",
		},
		{
			name:     "signed by untrusted key",
			token:    func() string { return createTestToken(t, otherKey, testKID, validClaims()) },
			wantKind: auth.KindInvalidSignature,
		},
		{
			name: "untrusted key with expired claims",
			token: func() string {
				claims := validClaims()
				claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
				return createTestToken(t, otherKey, testKID, claims)
			},
			wantKind: auth.KindInvalidSignature,
		},
		{
			name: "expired",
			token: func() string {
				claims := validClaims()
				claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
				return createTestToken(t, privateKey, testKID, claims)
			},
			wantKind: auth.KindInvalidClaims,
			wantMsg:  "Token expired.",
		},
		{
			name: "missing expiry",
			token: func() string {
				claims := validClaims()
				claims.ExpiresAt = nil
				return createTestToken(t, privateKey, testKID, claims)
			},
			wantKind: auth.KindInvalidClaims,
		},
		{
			name: "wrong issuer",
			token: func() string {
				claims := validClaims()
				claims.Issuer = "https://evil.example/"
				return createTestToken(t, privateKey, testKID, claims)
			},
			wantKind: auth.KindInvalidClaims,
			wantMsg:  "Incorrect claims. Please, check the audience and issuer.",
		},
		{
			name: "wrong audience",
			token: func() string {
				claims := validClaims()
				claims.Audience = jwt.ClaimStrings{"another-api"}
				return createTestToken(t, privateKey, testKID, claims)
			},
			wantKind: auth.KindInvalidClaims,
			wantMsg:  "Incorrect claims. Please, check the audience and issuer.",
		},
		{
			name: "not valid yet",
			token: func() string {
				claims := validClaims()
				claims.NotBefore = jwt.NewNumericDate(time.Now().Add(time.Hour))
				return createTestToken(t, privateKey, testKID, claims)
			},
			wantKind: auth.KindInvalidClaims,
			wantMsg:  "Token is not valid yet.",
		},
	}

	validator := newTestValidator(server.URL)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := validator.Verify(context.Background(), tt.token())

			var authErr *auth.AuthError
			require.True(t, errors.As(err, &authErr), "expected AuthError, got %v", err)
			assert.Equal(t, tt.wantKind, authErr.Kind)
			assert.Equal(t, http.StatusUnauthorized, authErr.Status)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, authErr.Message)
			}
		})
	}
}

func TestVerify_JWKSUnavailable(t *testing.T) {
	privateKey, _ := generateTestKeyPair(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestValidator(server.URL).Verify(context.Background(), createTestToken(t, privateKey, testKID, validClaims()))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrJWKSFetchFailed)

	var authErr *auth.AuthError
	assert.False(t, errors.As(err, &authErr))
}

func TestInvalidateCache(t *testing.T) {
	privateKey, publicKey := generateTestKeyPair(t)
	var hits int32
	server := createMockJWKSServer(t, publicKey, testKID, &hits)
	validator := newTestValidator(server.URL)

	token := createTestToken(t, privateKey, testKID, validClaims())
	_, err := validator.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Len(t, validator.keyCache, 1)

	validator.InvalidateCache()
	assert.Nil(t, validator.jwksCache)
	assert.Empty(t, validator.keyCache)

	_, err = validator.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestJWKToRSAPublicKey(t *testing.T) {
	_, publicKey := generateTestKeyPair(t)
	jwk := toJWK(publicKey, testKID)

	converted, err := jwkToRSAPublicKey(&jwk)
	require.NoError(t, err)
	assert.Zero(t, publicKey.N.Cmp(converted.N))
	assert.Equal(t, publicKey.E, converted.E)

	bad := JWK{Kid: testKID, Kty: "RSA", N: "!!!", E: "AQAB"}
	_, err = jwkToRSAPublicKey(&bad)
	assert.Error(t, err)
}
