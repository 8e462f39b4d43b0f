package oidc

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/upb/casting-agency/internal/auth"
)

var (
	// ErrJWKSFetchFailed is returned when JWKS fetching fails
	ErrJWKSFetchFailed = errors.New("failed to fetch JWKS")

	// ErrKeyNotFound is returned when no JWKS key matches the token kid
	ErrKeyNotFound = errors.New("signing key not found in JWKS")
)

// JWKS represents the JSON Web Key Set
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// JWK represents a JSON Web Key
type JWK struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// Config holds configuration for Validator
type Config struct {
	Issuer     string
	Audience   string
	JWKSURL    string
	Algorithms []string
	// CacheTTL bounds how long a fetched JWKS is trusted. Zero keeps the
	// first successful fetch for the life of the process.
	CacheTTL    time.Duration
	HTTPTimeout time.Duration
}

// Validator verifies RSA-signed bearer tokens against an issuer's JWKS
type Validator struct {
	issuer     string
	audience   string
	jwksURL    string
	algorithms []string
	httpClient *http.Client

	// Cache for JWKS
	jwksCache    *JWKS
	jwksCacheExp time.Time
	jwksCacheTTL time.Duration
	cacheMu      sync.RWMutex

	// Cache for parsed public keys
	keyCache   map[string]*rsa.PublicKey
	keyCacheMu sync.RWMutex
}

// NewValidator creates a new JWKS-backed token validator
func NewValidator(config Config) *Validator {
	if config.HTTPTimeout == 0 {
		config.HTTPTimeout = 10 * time.Second
	}
	if len(config.Algorithms) == 0 {
		config.Algorithms = []string{"RS256"}
	}
	if config.JWKSURL == "" {
		config.JWKSURL = strings.TrimSuffix(config.Issuer, "/") + "/.well-known/jwks.json"
	}

	return &Validator{
		issuer:       config.Issuer,
		audience:     config.Audience,
		jwksURL:      config.JWKSURL,
		algorithms:   config.Algorithms,
		jwksCacheTTL: config.CacheTTL,
		httpClient: &http.Client{
			Timeout: config.HTTPTimeout,
		},
		keyCache: make(map[string]*rsa.PublicKey),
	}
}

// Verify checks the token header, signature and registered claims and
// returns the caller's ClaimSet. Failures are *auth.AuthError except for
// JWKS retrieval problems, which are returned as plain errors.
func (v *Validator) Verify(ctx context.Context, tokenString string) (auth.ClaimSet, error) {
	if err := v.checkHeader(tokenString); err != nil {
		return auth.ClaimSet{}, err
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		kid, _ := token.Header["kid"].(string)
		return v.getPublicKey(ctx, kid)
	},
		jwt.WithValidMethods(v.algorithms),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return auth.ClaimSet{}, classifyError(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return auth.ClaimSet{}, auth.NewAuthError(auth.KindInvalidClaims, "Unable to parse authentication token.", nil)
	}

	return claims.ClaimSet(), nil
}

// checkHeader rejects tokens whose header cannot be trusted before any
// key lookup happens.
func (v *Validator) checkHeader(tokenString string) error {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, &Claims{})
	if err != nil {
		return auth.NewAuthError(auth.KindInvalidHeader, "Unable to parse authentication token.", err)
	}

	alg, _ := token.Header["alg"].(string)
	if strings.EqualFold(alg, "none") || !v.acceptsAlgorithm(alg) {
		return auth.NewAuthError(auth.KindInvalidHeader, "Unsupported signing algorithm.",
			fmt.Errorf("alg %q", alg))
	}

	if kid, _ := token.Header["kid"].(string); kid == "" {
		return auth.NewAuthError(auth.KindInvalidHeader, "Authorization malformed.", errors.New("kid header not found"))
	}

	return nil
}

func (v *Validator) acceptsAlgorithm(alg string) bool {
	for _, a := range v.algorithms {
		if a == alg {
			return true
		}
	}
	return false
}

// classifyError maps jwt parse failures onto gate error kinds
func classifyError(err error) error {
	switch {
	case errors.Is(err, ErrJWKSFetchFailed):
		return err
	case errors.Is(err, ErrKeyNotFound):
		return auth.NewAuthError(auth.KindInvalidSignature, "Unable to find the appropriate key.", err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return auth.NewAuthError(auth.KindInvalidHeader, "Unable to parse authentication token.", err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return auth.NewAuthError(auth.KindInvalidSignature, "Token signature could not be verified.", err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return auth.NewAuthError(auth.KindInvalidClaims, "Token expired.", err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer), errors.Is(err, jwt.ErrTokenInvalidAudience):
		return auth.NewAuthError(auth.KindInvalidClaims, "Incorrect claims. Please, check the audience and issuer.", err)
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return auth.NewAuthError(auth.KindInvalidClaims, "Token is not valid yet.", err)
	default:
		return auth.NewAuthError(auth.KindInvalidClaims, "Unable to parse authentication token.", err)
	}
}

// FetchJWKS fetches the JWKS from the issuer
func (v *Validator) FetchJWKS(ctx context.Context) (*JWKS, error) {
	v.cacheMu.RLock()
	if v.jwksCache != nil && (v.jwksCacheTTL == 0 || time.Now().Before(v.jwksCacheExp)) {
		defer v.cacheMu.RUnlock()
		return v.jwksCache, nil
	}
	v.cacheMu.RUnlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.jwksURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrJWKSFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status code %d", ErrJWKSFetchFailed, resp.StatusCode)
	}

	var jwks JWKS
	if err := json.NewDecoder(resp.Body).Decode(&jwks); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrJWKSFetchFailed, err)
	}

	v.cacheMu.Lock()
	v.jwksCache = &jwks
	v.jwksCacheExp = time.Now().Add(v.jwksCacheTTL)
	v.cacheMu.Unlock()

	return &jwks, nil
}

// getPublicKey retrieves the public key for a given kid
func (v *Validator) getPublicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.keyCacheMu.RLock()
	if key, exists := v.keyCache[kid]; exists {
		v.keyCacheMu.RUnlock()
		return key, nil
	}
	v.keyCacheMu.RUnlock()

	jwks, err := v.FetchJWKS(ctx)
	if err != nil {
		return nil, err
	}

	var jwk *JWK
	for i := range jwks.Keys {
		if jwks.Keys[i].Kid == kid {
			jwk = &jwks.Keys[i]
			break
		}
	}

	if jwk == nil || jwk.Kty != "RSA" {
		return nil, fmt.Errorf("%w: kid %s", ErrKeyNotFound, kid)
	}

	publicKey, err := jwkToRSAPublicKey(jwk)
	if err != nil {
		return nil, fmt.Errorf("%w: kid %s: %v", ErrKeyNotFound, kid, err)
	}

	v.keyCacheMu.Lock()
	v.keyCache[kid] = publicKey
	v.keyCacheMu.Unlock()

	return publicKey, nil
}

// jwkToRSAPublicKey converts a JWK to an RSA public key
func jwkToRSAPublicKey(jwk *JWK) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(jwk.N)
	if err != nil {
		return nil, fmt.Errorf("failed to decode modulus: %w", err)
	}

	eBytes, err := base64.RawURLEncoding.DecodeString(jwk.E)
	if err != nil {
		return nil, fmt.Errorf("failed to decode exponent: %w", err)
	}

	var e int
	for _, b := range eBytes {
		e = e*256 + int(b)
	}
	if e == 0 {
		return nil, errors.New("empty exponent")
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: e,
	}, nil
}

// InvalidateCache drops the cached JWKS and parsed keys
func (v *Validator) InvalidateCache() {
	v.cacheMu.Lock()
	defer v.cacheMu.Unlock()
	v.jwksCache = nil
	v.jwksCacheExp = time.Time{}

	v.keyCacheMu.Lock()
	defer v.keyCacheMu.Unlock()
	v.keyCache = make(map[string]*rsa.PublicKey)
}
