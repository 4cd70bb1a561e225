package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"nalanda-library-system/backend/internal/security"
	"nalanda-library-system/backend/internal/user/domain"
)

type stubUserGetter struct {
	users map[string]*domain.User
}

func (g *stubUserGetter) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return g.users[id], nil
}

func runAuthenticated(t *testing.T, codec *security.TokenCodec, users UserGetter, authHeader string) (gotUserID, gotRole string, authed bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := Authenticate(codec, users)(func(c echo.Context) error {
		ctx := c.Request().Context()
		gotUserID, _ = GetUserID(ctx)
		gotRole, _ = GetRole(ctx)
		_, authed = GetUserID(ctx)
		return nil
	})
	if err := h(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	return gotUserID, gotRole, authed
}

func TestAuthenticate_ValidToken(t *testing.T) {
	codec := security.NewTestTokenCodec(t, time.Hour)
	token, _, err := codec.Issue("user-1", "Member")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	users := &stubUserGetter{users: map[string]*domain.User{
		"user-1": {ID: "user-1", IsActive: true, Role: domain.RoleMember},
	}}

	userID, role, authed := runAuthenticated(t, codec, users, "Bearer "+token)
	if !authed {
		t.Fatal("request should be authenticated")
	}
	if userID != "user-1" || role != "Member" {
		t.Errorf("identity = (%q, %q), want (user-1, Member)", userID, role)
	}
}

func TestAuthenticate_AnonymousCases(t *testing.T) {
	codec := security.NewTestTokenCodec(t, time.Hour)
	token, _, err := codec.Issue("user-1", "Member")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	otherCodec := security.NewTestTokenCodec(t, time.Hour)
	foreign, _, err := otherCodec.Issue("user-1", "Member")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	active := &stubUserGetter{users: map[string]*domain.User{
		"user-1": {ID: "user-1", IsActive: true, Role: domain.RoleMember},
	}}
	inactive := &stubUserGetter{users: map[string]*domain.User{
		"user-1": {ID: "user-1", IsActive: false, Role: domain.RoleMember},
	}}
	empty := &stubUserGetter{users: map[string]*domain.User{}}

	cases := []struct {
		name   string
		users  UserGetter
		header string
	}{
		{"no header", active, ""},
		{"not bearer", active, "Basic abc"},
		{"garbage token", active, "Bearer not-a-token"},
		{"foreign keys", active, "Bearer " + foreign},
		{"deactivated user", inactive, "Bearer " + token},
		{"deleted user", empty, "Bearer " + token},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, authed := runAuthenticated(t, codec, tc.users, tc.header); authed {
				t.Error("request should be anonymous")
			}
		})
	}
}

func TestAuthenticate_SetsClientIP(t *testing.T) {
	codec := security.NewTestTokenCodec(t, time.Hour)
	users := &stubUserGetter{users: map[string]*domain.User{}}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:4242"
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var ip string
	h := Authenticate(codec, users)(func(c echo.Context) error {
		ip = GetClientIP(c.Request().Context())
		return nil
	})
	if err := h(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if ip != "203.0.113.9" {
		t.Errorf("client IP = %q, want 203.0.113.9", ip)
	}
}
