package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	authsvc "nalanda-library-system/backend/internal/auth/service"
	"nalanda-library-system/backend/internal/platform/rbac"
	userdomain "nalanda-library-system/backend/internal/user/domain"
)

// UserGetter resolves the authenticated user for the profile endpoint.
type UserGetter interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// AuthHandler serves registration, login, and the current-user profile.
type AuthHandler struct {
	auth  *authsvc.AuthService
	users UserGetter
}

func NewAuthHandler(auth *authsvc.AuthService, users UserGetter) *AuthHandler {
	return &AuthHandler{auth: auth, users: users}
}

func (h *AuthHandler) Register(g *echo.Group) {
	g.POST("/auth/register", h.register)
	g.POST("/auth/login", h.login)
	g.GET("/auth/profile", h.profile)
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *userView `json:"user"`
}

func (h *AuthHandler) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, badRequest("invalid request body"))
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return fail(c, badRequest("name, email and password are required"))
	}
	sess, err := h.auth.Register(c.Request().Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusCreated, "user registered", sessionResponse{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
		User:      toUserView(sess.User),
	})
}

func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, badRequest("invalid request body"))
	}
	sess, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, "login successful", sessionResponse{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
		User:      toUserView(sess.User),
	})
}

func (h *AuthHandler) profile(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _, err := rbac.RequireAuthenticated(ctx)
	if err != nil {
		return fail(c, err)
	}
	u, err := h.users.GetByID(ctx, userID)
	if err != nil {
		return fail(c, err)
	}
	if u == nil {
		return fail(c, notFound("user not found"))
	}
	return ok(c, http.StatusOK, "", toUserView(u))
}
