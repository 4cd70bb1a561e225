package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"nalanda-library-system/backend/internal/borrowing/domain"
	borrowrepo "nalanda-library-system/backend/internal/borrowing/repository"
	borrowsvc "nalanda-library-system/backend/internal/borrowing/service"
	"nalanda-library-system/backend/internal/platform/rbac"
)

// BorrowingHandler serves borrow, return, the caller's history, and the
// admin listing of all borrowings.
type BorrowingHandler struct {
	service    *borrowsvc.BorrowingService
	borrowings borrowrepo.Repository
}

func NewBorrowingHandler(service *borrowsvc.BorrowingService, borrowings borrowrepo.Repository) *BorrowingHandler {
	return &BorrowingHandler{service: service, borrowings: borrowings}
}

func (h *BorrowingHandler) Register(g *echo.Group) {
	g.POST("/borrowings", h.borrow)
	g.POST("/borrowings/:id/return", h.returnBook)
	g.GET("/borrowings/history", h.history)
	g.GET("/borrowings", h.listAll)
}

type borrowRequest struct {
	BookID string `json:"bookId"`
}

func (h *BorrowingHandler) borrow(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _, err := rbac.RequireAuthenticated(ctx)
	if err != nil {
		return fail(c, err)
	}
	var req borrowRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, badRequest("invalid request body"))
	}
	if req.BookID == "" {
		return fail(c, badRequest("bookId is required"))
	}
	b, err := h.service.Borrow(ctx, userID, req.BookID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusCreated, "book borrowed", toBorrowingView(b, time.Now().UTC()))
}

func (h *BorrowingHandler) returnBook(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _, err := rbac.RequireAuthenticated(ctx)
	if err != nil {
		return fail(c, err)
	}
	b, err := h.service.Return(ctx, c.Param("id"), userID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, "book returned", toBorrowingView(b, time.Now().UTC()))
}

// history lists the caller's own borrowings, newest first.
func (h *BorrowingHandler) history(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _, err := rbac.RequireAuthenticated(ctx)
	if err != nil {
		return fail(c, err)
	}
	return h.list(c, userID)
}

// listAll is the admin view across all users, with an optional userId filter.
func (h *BorrowingHandler) listAll(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := rbac.RequireAdmin(ctx); err != nil {
		return fail(c, err)
	}
	return h.list(c, c.QueryParam("userId"))
}

func (h *BorrowingHandler) list(c echo.Context, userID string) error {
	ctx := c.Request().Context()
	limit, offset := pageParams(c)
	now := time.Now().UTC()

	// "overdue" is a projection of borrowed records past their due date, so
	// it queries stored status "borrowed" with a due-date cutoff. Filtering
	// in the query keeps the pagination total and page contents consistent.
	filter := borrowrepo.ListFilter{
		UserID: userID,
		Status: domain.Status(c.QueryParam("status")),
		Limit:  int32(limit),
		Offset: int32(offset),
	}
	switch filter.Status {
	case "", domain.StatusBorrowed, domain.StatusReturned:
	case domain.StatusOverdue:
		filter.Status = domain.StatusBorrowed
		filter.DueBefore = now
	default:
		return fail(c, badRequest("status must be borrowed, returned or overdue"))
	}

	borrowings, total, err := h.borrowings.List(ctx, filter)
	if err != nil {
		return fail(c, err)
	}

	views := make([]*borrowingView, 0, len(borrowings))
	for _, b := range borrowings {
		views = append(views, toBorrowingView(b, now))
	}
	return ok(c, http.StatusOK, "", map[string]interface{}{
		"borrowings": views,
		"pagination": pagination{Total: total, Limit: limit, Offset: offset},
	})
}
