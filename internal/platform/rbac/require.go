// Package rbac provides the per-route authorization guards. Authentication
// itself happens in the server middleware; these helpers only inspect the
// identity already attached to the context.
package rbac

import (
	"context"
	"errors"

	"nalanda-library-system/backend/internal/server/middleware"
	"nalanda-library-system/backend/internal/user/domain"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("admin access required")
)

// RequireAuthenticated returns the caller's user ID and role, or
// ErrUnauthenticated if the request is anonymous.
func RequireAuthenticated(ctx context.Context) (userID, role string, err error) {
	userID, okUser := middleware.GetUserID(ctx)
	role, okRole := middleware.GetRole(ctx)
	if !okUser || !okRole {
		return "", "", ErrUnauthenticated
	}
	return userID, role, nil
}

// RequireAdmin ensures the caller is authenticated and holds the Admin role.
// There is no role hierarchy: exactly Admin passes.
func RequireAdmin(ctx context.Context) (userID string, err error) {
	userID, role, err := RequireAuthenticated(ctx)
	if err != nil {
		return "", err
	}
	if domain.Role(role) != domain.RoleAdmin {
		return "", ErrForbidden
	}
	return userID, nil
}
