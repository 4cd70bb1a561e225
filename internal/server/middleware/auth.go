package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"nalanda-library-system/backend/internal/security"
	"nalanda-library-system/backend/internal/user/domain"
)

// UserGetter resolves a user by ID when validating a session token.
type UserGetter interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// Authenticate validates the Authorization bearer token and, on success,
// attaches the caller's identity to the request context. It never rejects the
// request: a missing, invalid, or expired token simply leaves the request
// anonymous, and the per-route guards decide what anonymous callers may do.
// Tokens of deactivated users are treated as invalid.
func Authenticate(tokens *security.TokenCodec, users UserGetter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := WithClientIP(c.Request().Context(), c.RealIP())

			if token := bearerToken(c.Request().Header.Get("Authorization")); token != "" {
				if userID, role, err := tokens.Validate(token); err == nil {
					u, err := users.GetByID(ctx, userID)
					if err == nil && u != nil && u.IsActive {
						ctx = WithIdentity(ctx, userID, role)
					}
				}
			}

			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
