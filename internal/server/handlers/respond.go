package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	authsvc "nalanda-library-system/backend/internal/auth/service"
	bookrepo "nalanda-library-system/backend/internal/book/repository"
	borrowsvc "nalanda-library-system/backend/internal/borrowing/service"
	"nalanda-library-system/backend/internal/platform/rbac"
	"nalanda-library-system/backend/internal/security"
	userrepo "nalanda-library-system/backend/internal/user/repository"
)

// envelope is the uniform response body: {"success": ..., "message": ..., "data": ...}.
type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func ok(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

// apiError carries an explicit status for errors raised inside handlers.
type apiError struct {
	status  int
	message string
}

func (e *apiError) Error() string { return e.message }

func notFound(msg string) error   { return &apiError{status: http.StatusNotFound, message: msg} }
func badRequest(msg string) error { return &apiError{status: http.StatusBadRequest, message: msg} }

// fail maps a service error to an HTTP status. Unrecognized errors become a
// generic 500 so internals never leak to the client.
func fail(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	message := "internal server error"

	var ae *apiError
	switch {
	case errors.As(err, &ae):
		status = ae.status
		message = ae.message
	case errors.Is(err, rbac.ErrUnauthenticated),
		errors.Is(err, authsvc.ErrInvalidCredentials),
		errors.Is(err, security.ErrInvalidToken):
		status = http.StatusUnauthorized
		message = err.Error()
	case errors.Is(err, rbac.ErrForbidden):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, borrowsvc.ErrBookNotFound),
		errors.Is(err, borrowsvc.ErrBorrowingNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, authsvc.ErrEmailAlreadyRegistered),
		errors.Is(err, authsvc.ErrWeakPassword),
		errors.Is(err, borrowsvc.ErrBookUnavailable),
		errors.Is(err, borrowsvc.ErrAlreadyBorrowed),
		errors.Is(err, bookrepo.ErrDuplicate),
		errors.Is(err, bookrepo.ErrCopiesConflict),
		errors.Is(err, bookrepo.ErrActiveLoans),
		errors.Is(err, userrepo.ErrDuplicate):
		status = http.StatusBadRequest
		message = err.Error()
	default:
		c.Logger().Error(err)
	}
	return c.JSON(status, envelope{Success: false, Message: message})
}
