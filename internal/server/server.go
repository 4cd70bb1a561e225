// Package server assembles the echo HTTP server: middleware, routes, and
// lifecycle.
package server

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"nalanda-library-system/backend/internal/security"
	"nalanda-library-system/backend/internal/server/handlers"
	"nalanda-library-system/backend/internal/server/middleware"
)

// Deps are the wired dependencies the HTTP server exposes.
type Deps struct {
	Tokens     *security.TokenCodec
	Users      middleware.UserGetter
	Auth       *handlers.AuthHandler
	Books      *handlers.BookHandler
	Borrowings *handlers.BorrowingHandler
	Reports    *handlers.ReportHandler
	Audits     *handlers.AuditHandler
	Accounts   *handlers.UserHandler
}

// Server wraps the echo instance.
type Server struct {
	echo *echo.Echo
}

// New builds the server with all routes registered under /api.
func New(deps Deps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.Authenticate(deps.Tokens, deps.Users))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api")
	deps.Auth.Register(api)
	deps.Books.Register(api)
	deps.Borrowings.Register(api)
	deps.Reports.Register(api)
	deps.Audits.Register(api)
	deps.Accounts.Register(api)

	return &Server{echo: e}
}

// Start serves on addr until the listener fails or Shutdown is called.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the routing tree for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}
