package auth

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissionFor(t *testing.T) {
	assert.Equal(t, ReadActors, PermissionFor(ActionRead, ResourceActors))
	assert.Equal(t, CreateActors, PermissionFor(ActionCreate, ResourceActors))
	assert.Equal(t, EditMovies, PermissionFor(ActionEdit, ResourceMovies))
	assert.Equal(t, DeleteMovies, PermissionFor(ActionDelete, ResourceMovies))
}

func TestCheckPermission(t *testing.T) {
	tests := []struct {
		name        string
		permissions []string
		required    Permission
		wantKind    ErrorKind
		wantStatus  int
	}{
		{
			name:        "granted",
			permissions: []string{"read:actors", "read:movies"},
			required:    ReadActors,
		},
		{
			name:        "permissions claim absent",
			permissions: nil,
			required:    ReadActors,
			wantKind:    KindInvalidClaims,
			wantStatus:  http.StatusBadRequest,
		},
		{
			name:        "empty permissions list",
			permissions: []string{},
			required:    ReadActors,
			wantKind:    KindUnauthorized,
			wantStatus:  http.StatusForbidden,
		},
		{
			name:        "different permission",
			permissions: []string{"read:movies"},
			required:    ReadActors,
			wantKind:    KindUnauthorized,
			wantStatus:  http.StatusForbidden,
		},
		{
			name:        "no prefix or wildcard matching",
			permissions: []string{"read:*", "read", "read:actors:all"},
			required:    ReadActors,
			wantKind:    KindUnauthorized,
			wantStatus:  http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := NewClaimSet(ClaimSetParams{Subject: "auth0|1", Permissions: tt.permissions})

			err := CheckPermission(claims, tt.required)
			if tt.wantKind == "" {
				assert.NoError(t, err)
				return
			}

			var authErr *AuthError
			require.True(t, errors.As(err, &authErr))
			assert.Equal(t, tt.wantKind, authErr.Kind)
			assert.Equal(t, tt.wantStatus, authErr.Status)
		})
	}
}

func TestClaimSet_Immutable(t *testing.T) {
	perms := []string{"read:actors"}
	aud := []string{"casting"}
	claims := NewClaimSet(ClaimSetParams{
		Subject:     "auth0|1",
		Issuer:      "https://issuer.example/",
		Audience:    aud,
		ExpiresAt:   time.Unix(1700000000, 0),
		Permissions: perms,
	})

	perms[0] = "delete:actors"
	aud[0] = "other"
	got := claims.Permissions()
	got[0] = "edit:actors"

	assert.Equal(t, []string{"read:actors"}, claims.Permissions())
	assert.Equal(t, []string{"casting"}, claims.Audience())
	assert.True(t, claims.Grants(ReadActors))
	assert.False(t, claims.Grants(DeleteActors))
	assert.Equal(t, "auth0|1", claims.Subject())
	assert.Equal(t, "https://issuer.example/", claims.Issuer())
	assert.True(t, claims.HasPermissionsClaim())
}

func TestAuthError_Is(t *testing.T) {
	err := NewAuthError(KindInvalidSignature, "Unable to find the appropriate key.", errors.New("kid k2"))

	assert.True(t, errors.Is(err, ErrInvalidSignature))
	assert.False(t, errors.Is(err, ErrInvalidClaims))
	assert.Equal(t, http.StatusUnauthorized, err.Status)
	assert.Equal(t, "invalid_signature: Unable to find the appropriate key.: kid k2", err.Error())

	overridden := err.WithStatus(http.StatusBadRequest)
	assert.Equal(t, http.StatusBadRequest, overridden.Status)
	assert.Equal(t, http.StatusUnauthorized, err.Status)
}
