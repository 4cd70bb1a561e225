package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	auditrepo "nalanda-library-system/backend/internal/audit/repository"
	"nalanda-library-system/backend/internal/platform/rbac"
)

// AuditHandler exposes the per-user audit trail to admins.
type AuditHandler struct {
	audits auditrepo.Repository
}

func NewAuditHandler(audits auditrepo.Repository) *AuditHandler {
	return &AuditHandler{audits: audits}
}

func (h *AuditHandler) Register(g *echo.Group) {
	g.GET("/users/:id/audit-logs", h.listByUser)
}

func (h *AuditHandler) listByUser(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := rbac.RequireAdmin(ctx); err != nil {
		return fail(c, err)
	}
	limit, offset := pageParams(c)
	logs, err := h.audits.ListByUser(ctx, c.Param("id"), int32(limit), int32(offset))
	if err != nil {
		return fail(c, err)
	}
	views := make([]auditLogView, len(logs))
	for i, l := range logs {
		views[i] = auditLogView{
			ID:        l.ID,
			UserID:    l.UserID,
			Action:    l.Action,
			Resource:  l.Resource,
			IP:        l.IP,
			Metadata:  l.Metadata,
			CreatedAt: l.CreatedAt,
		}
	}
	return ok(c, http.StatusOK, "", views)
}

type auditLogView struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	IP        string    `json:"ip"`
	Metadata  string    `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
