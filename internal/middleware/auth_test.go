package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"supplies-service/internal/apperr"
	"supplies-service/internal/authz"
	"supplies-service/internal/policy"
	"supplies-service/pkg/jwtutil"
)

func newJWT() *jwtutil.JWTUtil {
	return jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})
}

func run(t *testing.T, mw []echo.MiddlewareFunc, header string) (echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	var h echo.HandlerFunc = func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return c, h(c)
}

func TestJWTAuthMiddleware(t *testing.T) {
	jwt := newJWT()
	token, err := jwt.GenerateToken("u1", "u1@example.com", "teacher")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	c, err := run(t, []echo.MiddlewareFunc{JWTAuthMiddleware(jwt)}, "Bearer "+token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s, ok := SessionFrom(c)
	if !ok || s.UserID != "u1" || s.Role != "teacher" {
		t.Fatalf("unexpected session: %+v", s)
	}

	for _, header := range []string{"", "Token abc", "Bearer not-a-jwt"} {
		_, err := run(t, []echo.MiddlewareFunc{JWTAuthMiddleware(jwt)}, header)
		if apperr.StatusOf(err) != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %v", header, err)
		}
	}
}

func TestRequirePermission(t *testing.T) {
	gates, err := authz.NewEnforcer()
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	p := policy.New(gates)
	jwt := newJWT()

	parent, _ := jwt.GenerateToken("p1", "p@example.com", "parent")
	admin, _ := jwt.GenerateToken("a1", "a@example.com", "admin")

	deleteTag := []echo.MiddlewareFunc{JWTAuthMiddleware(jwt), RequirePermission(p, policy.KindTag, policy.OpDelete)}

	if _, err := run(t, deleteTag, "Bearer "+parent); apperr.StatusOf(err) != http.StatusForbidden {
		t.Fatalf("expected 403 for parent, got %v", err)
	}
	if _, err := run(t, deleteTag, "Bearer "+admin); err != nil {
		t.Fatalf("expected admin to pass, got %v", err)
	}

	anonymous := []echo.MiddlewareFunc{RequirePermission(p, policy.KindCategory, policy.OpCreate)}
	if _, err := run(t, anonymous, ""); apperr.StatusOf(err) != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %v", err)
	}
}
