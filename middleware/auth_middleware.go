package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/upb/casting-agency/internal/auth"
	"github.com/upb/casting-agency/utils"
)

// TokenVerifier verifies a bearer token and returns its claims
type TokenVerifier interface {
	// Verify returns an *auth.AuthError for rejected tokens and a plain
	// error when verification could not run at all
	Verify(ctx context.Context, token string) (auth.ClaimSet, error)
}

// ProtectedHandlerFunc is a handler that runs only after the gate admits the request
type ProtectedHandlerFunc func(w http.ResponseWriter, r *http.Request, claims auth.ClaimSet)

// AuthMiddleware guards catalog handlers with bearer token checks
type AuthMiddleware struct {
	verifier TokenVerifier
	logger   *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(verifier TokenVerifier, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		logger:   logger,
	}
}

// RequirePermission wraps next so it only runs for tokens granting permission.
// Rejections are written as {success:false, error, message}.
func (m *AuthMiddleware) RequirePermission(permission auth.Permission, next ProtectedHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := GetRequestIDFromContext(r.Context())

		claims, err := m.Authorize(r, permission)
		if err != nil {
			var authErr *auth.AuthError
			if errors.As(err, &authErr) {
				m.logger.Warn("request rejected",
					zap.String("request_id", requestID),
					zap.String("permission", string(permission)),
					zap.String("kind", string(authErr.Kind)),
					zap.Int("status", authErr.Status),
					zap.Error(err))
				_ = utils.WriteError(w, authErr.Status, authErr.Message)
				return
			}

			m.logger.Error("token verification failed",
				zap.String("request_id", requestID),
				zap.Error(err))
			_ = utils.WriteInternalServerError(w)
			return
		}

		m.logger.Debug("request authorized",
			zap.String("request_id", requestID),
			zap.String("sub", claims.Subject()),
			zap.String("permission", string(permission)))

		next(w, r, claims)
	}
}

// Authorize runs the full gate: header shape, token verification, then
// the permission check.
func (m *AuthMiddleware) Authorize(r *http.Request, permission auth.Permission) (auth.ClaimSet, error) {
	token, err := ExtractBearerToken(r)
	if err != nil {
		return auth.ClaimSet{}, err
	}

	claims, err := m.verifier.Verify(r.Context(), token)
	if err != nil {
		return auth.ClaimSet{}, err
	}

	if err := auth.CheckPermission(claims, permission); err != nil {
		return auth.ClaimSet{}, err
	}
	return claims, nil
}

// ExtractBearerToken returns the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func ExtractBearerToken(r *http.Request) (string, error) {
	values := r.Header.Values("Authorization")
	if len(values) == 0 {
		return "", auth.NewAuthError(auth.KindMissingHeader, "Authorization header is expected.", nil)
	}

	parts := strings.Fields(values[0])
	switch {
	case len(parts) == 0 || !strings.EqualFold(parts[0], "bearer"):
		return "", auth.NewAuthError(auth.KindMalformedHeader, `Authorization header must start with "Bearer".`, nil)
	case len(parts) == 1:
		return "", auth.NewAuthError(auth.KindMalformedHeader, "Token not found.", nil)
	case len(parts) > 2:
		return "", auth.NewAuthError(auth.KindMalformedHeader, "Authorization header must be bearer token.", nil)
	}
	return parts[1], nil
}

type rejectAll struct{}

// RejectAllVerifier refuses every token. It guards the catalog when no
// issuer is configured.
func RejectAllVerifier() TokenVerifier {
	return rejectAll{}
}

func (rejectAll) Verify(context.Context, string) (auth.ClaimSet, error) {
	return auth.ClaimSet{}, auth.NewAuthError(auth.KindInvalidHeader, "Token verification is not configured.", nil)
}
