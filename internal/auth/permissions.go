package auth

import (
	"fmt"
	"net/http"
)

// Permission is an opaque scope string of the form <action>:<resource>.
type Permission string

// Action is the verb half of a permission.
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// Resource names used in permissions and routes.
const (
	ResourceActors = "actors"
	ResourceMovies = "movies"
)

const (
	ReadActors   Permission = "read:actors"
	CreateActors Permission = "create:actors"
	EditActors   Permission = "edit:actors"
	DeleteActors Permission = "delete:actors"

	ReadMovies   Permission = "read:movies"
	CreateMovies Permission = "create:movies"
	EditMovies   Permission = "edit:movies"
	DeleteMovies Permission = "delete:movies"
)

// PermissionFor builds the permission required for action on resource.
func PermissionFor(action Action, resource string) Permission {
	return Permission(fmt.Sprintf("%s:%s", action, resource))
}

// CheckPermission verifies that claims grant the required permission.
// Membership is an exact string match; there is no hierarchy and no wildcard.
func CheckPermission(claims ClaimSet, required Permission) error {
	if !claims.HasPermissionsClaim() {
		return NewAuthError(KindInvalidClaims, "Permissions not included in JWT.", nil).
			WithStatus(http.StatusBadRequest)
	}
	if !claims.Grants(required) {
		return NewAuthError(KindUnauthorized, "Permission not found.",
			fmt.Errorf("missing %s", required))
	}
	return nil
}
