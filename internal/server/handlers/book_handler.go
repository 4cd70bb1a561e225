package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"nalanda-library-system/backend/internal/audit"
	"nalanda-library-system/backend/internal/book/domain"
	bookrepo "nalanda-library-system/backend/internal/book/repository"
	"nalanda-library-system/backend/internal/platform/rbac"
)

// BookHandler serves the catalog. Reads require authentication; mutations
// require the Admin role.
type BookHandler struct {
	books bookrepo.Repository
	audit audit.AuditLogger
}

func NewBookHandler(books bookrepo.Repository, auditLogger audit.AuditLogger) *BookHandler {
	return &BookHandler{books: books, audit: auditLogger}
}

func (h *BookHandler) Register(g *echo.Group) {
	g.GET("/books", h.list)
	g.GET("/books/:id", h.get)
	g.POST("/books", h.create)
	g.PUT("/books/:id", h.update)
	g.DELETE("/books/:id", h.remove)
}

type bookRequest struct {
	Title           string     `json:"title"`
	Author          string     `json:"author"`
	ISBN            string     `json:"isbn"`
	Genre           string     `json:"genre"`
	Description     string     `json:"description"`
	PublicationDate *time.Time `json:"publicationDate"`
	TotalCopies     int32      `json:"totalCopies"`
}

// bookUpdateRequest uses pointers so absent fields are left untouched. Any
// availableCopies field in the body is simply ignored: the inventory count is
// owned by the borrowing flow.
type bookUpdateRequest struct {
	Title           *string    `json:"title"`
	Author          *string    `json:"author"`
	ISBN            *string    `json:"isbn"`
	Genre           *string    `json:"genre"`
	Description     *string    `json:"description"`
	PublicationDate *time.Time `json:"publicationDate"`
	TotalCopies     *int32     `json:"totalCopies"`
}

func (h *BookHandler) list(c echo.Context) error {
	ctx := c.Request().Context()
	if _, _, err := rbac.RequireAuthenticated(ctx); err != nil {
		return fail(c, err)
	}
	limit, offset := pageParams(c)
	f := bookrepo.ListFilter{
		Genre:  c.QueryParam("genre"),
		Author: c.QueryParam("author"),
		Search: c.QueryParam("search"),
		Limit:  int32(limit),
		Offset: int32(offset),
	}
	books, total, err := h.books.List(ctx, f)
	if err != nil {
		return fail(c, err)
	}
	views := make([]*bookView, len(books))
	for i, b := range books {
		views[i] = toBookView(b)
	}
	return ok(c, http.StatusOK, "", map[string]interface{}{
		"books":      views,
		"pagination": pagination{Total: total, Limit: limit, Offset: offset},
	})
}

func (h *BookHandler) get(c echo.Context) error {
	ctx := c.Request().Context()
	if _, _, err := rbac.RequireAuthenticated(ctx); err != nil {
		return fail(c, err)
	}
	b, err := h.books.GetActiveByID(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	if b == nil {
		return fail(c, notFound("book not found"))
	}
	return ok(c, http.StatusOK, "", toBookView(b))
}

func (h *BookHandler) create(c echo.Context) error {
	ctx := c.Request().Context()
	adminID, err := rbac.RequireAdmin(ctx)
	if err != nil {
		return fail(c, err)
	}
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, badRequest("invalid request body"))
	}
	now := time.Now().UTC()
	b := &domain.Book{
		ID:              uuid.New().String(),
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		Genre:           req.Genre,
		Description:     req.Description,
		PublicationDate: req.PublicationDate,
		TotalCopies:     req.TotalCopies,
		AvailableCopies: req.TotalCopies,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := b.Validate(); err != nil {
		return fail(c, badRequest(err.Error()))
	}
	if err := h.books.Create(ctx, b); err != nil {
		return fail(c, err)
	}
	h.logAudit(c, adminID, "book_create", b.ID)
	return ok(c, http.StatusCreated, "book created", toBookView(b))
}

func (h *BookHandler) update(c echo.Context) error {
	ctx := c.Request().Context()
	adminID, err := rbac.RequireAdmin(ctx)
	if err != nil {
		return fail(c, err)
	}
	var req bookUpdateRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, badRequest("invalid request body"))
	}
	upd := &domain.Update{
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		Genre:           req.Genre,
		Description:     req.Description,
		PublicationDate: req.PublicationDate,
		TotalCopies:     req.TotalCopies,
	}
	if err := upd.Validate(); err != nil {
		return fail(c, badRequest(err.Error()))
	}
	b, err := h.books.Update(ctx, c.Param("id"), upd)
	if err != nil {
		return fail(c, err)
	}
	if b == nil {
		return fail(c, notFound("book not found"))
	}
	h.logAudit(c, adminID, "book_update", b.ID)
	return ok(c, http.StatusOK, "book updated", toBookView(b))
}

func (h *BookHandler) remove(c echo.Context) error {
	ctx := c.Request().Context()
	adminID, err := rbac.RequireAdmin(ctx)
	if err != nil {
		return fail(c, err)
	}
	id := c.Param("id")
	done, err := h.books.Deactivate(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	if !done {
		return fail(c, notFound("book not found"))
	}
	h.logAudit(c, adminID, "book_delete", id)
	return ok(c, http.StatusOK, "book deleted", nil)
}

func (h *BookHandler) logAudit(c echo.Context, userID, action, bookID string) {
	if h.audit != nil {
		h.audit.LogEvent(c.Request().Context(), userID, action, "book:"+bookID, "")
	}
}

// pageParams reads limit/offset query params with sane bounds.
func pageParams(c echo.Context) (limit, offset int) {
	limit = 10
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	if v, err := strconv.Atoi(c.QueryParam("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}
