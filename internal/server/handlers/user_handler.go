package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"nalanda-library-system/backend/internal/audit"
	"nalanda-library-system/backend/internal/platform/rbac"
	userdomain "nalanda-library-system/backend/internal/user/domain"
)

// UserAdminRepo is the user persistence needed for account administration.
type UserAdminRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	SetActive(ctx context.Context, id string, active bool) error
}

// UserHandler serves admin account management. Accounts are deactivated, never
// deleted; a deactivated user's outstanding tokens stop authenticating
// immediately because the auth middleware accepts only active users.
type UserHandler struct {
	users UserAdminRepo
	audit audit.AuditLogger
}

func NewUserHandler(users UserAdminRepo, auditLogger audit.AuditLogger) *UserHandler {
	return &UserHandler{users: users, audit: auditLogger}
}

func (h *UserHandler) Register(g *echo.Group) {
	g.DELETE("/users/:id", h.deactivate)
	g.POST("/users/:id/activate", h.activate)
}

func (h *UserHandler) deactivate(c echo.Context) error {
	return h.setActive(c, false, "user_deactivate", "user deactivated")
}

func (h *UserHandler) activate(c echo.Context) error {
	return h.setActive(c, true, "user_activate", "user activated")
}

func (h *UserHandler) setActive(c echo.Context, active bool, action, message string) error {
	ctx := c.Request().Context()
	adminID, err := rbac.RequireAdmin(ctx)
	if err != nil {
		return fail(c, err)
	}
	id := c.Param("id")
	u, err := h.users.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	if u == nil {
		return fail(c, notFound("user not found"))
	}
	if err := h.users.SetActive(ctx, id, active); err != nil {
		return fail(c, err)
	}
	if h.audit != nil {
		h.audit.LogEvent(ctx, adminID, action, "user:"+id, "")
	}
	return ok(c, http.StatusOK, message, nil)
}
