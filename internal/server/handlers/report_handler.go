package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"nalanda-library-system/backend/internal/platform/rbac"
	reportrepo "nalanda-library-system/backend/internal/report/repository"
	reportsvc "nalanda-library-system/backend/internal/report/service"
)

// ReportHandler serves the admin reports.
type ReportHandler struct {
	reports *reportsvc.ReportService
}

func NewReportHandler(reports *reportsvc.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

func (h *ReportHandler) Register(g *echo.Group) {
	g.GET("/reports/most-borrowed", h.mostBorrowed)
	g.GET("/reports/active-members", h.activeMembers)
	g.GET("/reports/availability", h.availability)
	g.GET("/reports/overdue", h.overdue)
}

func (h *ReportHandler) mostBorrowed(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := rbac.RequireAdmin(ctx); err != nil {
		return fail(c, err)
	}
	var dr reportrepo.DateRange
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return fail(c, badRequest("from must be RFC3339"))
		}
		dr.From = t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return fail(c, badRequest("to must be RFC3339"))
		}
		dr.To = t
	}
	limit, _ := pageParams(c)
	stats, err := h.reports.MostBorrowedBooks(ctx, dr, limit)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, "", stats)
}

func (h *ReportHandler) activeMembers(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := rbac.RequireAdmin(ctx); err != nil {
		return fail(c, err)
	}
	limit, _ := pageParams(c)
	members, err := h.reports.MostActiveMembers(ctx, limit)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, "", members)
}

func (h *ReportHandler) availability(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := rbac.RequireAdmin(ctx); err != nil {
		return fail(c, err)
	}
	summary, err := h.reports.AvailabilitySummary(ctx)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, "", summary)
}

type overdueView struct {
	Borrowing     *borrowingView `json:"borrowing"`
	DaysOverdue   int64          `json:"daysOverdue"`
	ProjectedFine int64          `json:"projectedFine"`
}

func (h *ReportHandler) overdue(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := rbac.RequireAdmin(ctx); err != nil {
		return fail(c, err)
	}
	entries, err := h.reports.Overdue(ctx)
	if err != nil {
		return fail(c, err)
	}
	now := time.Now().UTC()
	views := make([]overdueView, len(entries))
	for i, e := range entries {
		views[i] = overdueView{
			Borrowing:     toBorrowingView(e.Borrowing, now),
			DaysOverdue:   e.DaysOverdue,
			ProjectedFine: e.ProjectedFine,
		}
	}
	return ok(c, http.StatusOK, "", views)
}
