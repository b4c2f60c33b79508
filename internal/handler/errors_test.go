package handler_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"supplies-service/internal/apperr"
	"supplies-service/internal/handler"
	"supplies-service/pkg/logger"
)

func newErrorServer(production bool) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = handler.ErrorHandler(production)
	e.Use(logger.Middleware())
	e.Use(handler.RecoverMiddleware())
	e.GET("/boom", func(c echo.Context) error {
		panic("nil map write")
	})
	e.GET("/err", func(c echo.Context) error {
		return errors.New("db down")
	})
	e.GET("/missing", func(c echo.Context) error {
		return apperr.NotFound("list not found")
	})
	return e
}

func TestErrorRendering(t *testing.T) {
	tests := []struct {
		name        string
		production  bool
		path        string
		status      int
		message     string
		wantError   bool
		errorSubstr string
	}{
		{"panic in development", false, "/boom", http.StatusInternalServerError, "internal server error", true, "goroutine"},
		{"panic in production", true, "/boom", http.StatusInternalServerError, "internal server error", false, ""},
		{"plain error in development", false, "/err", http.StatusInternalServerError, "internal server error", true, "db down"},
		{"plain error in production", true, "/err", http.StatusInternalServerError, "internal server error", false, ""},
		{"not found in development", false, "/missing", http.StatusNotFound, "list not found", false, ""},
		{"not found in production", true, "/missing", http.StatusNotFound, "list not found", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newErrorServer(tt.production)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode %q: %v", rec.Body.String(), err)
			}
			if body["message"] != tt.message {
				t.Fatalf("message = %q, want %q", body["message"], tt.message)
			}
			detail, ok := body["error"]
			if ok != tt.wantError {
				t.Fatalf("error present = %v, want %v: %s", ok, tt.wantError, rec.Body.String())
			}
			if tt.wantError && !strings.Contains(detail, tt.errorSubstr) {
				t.Fatalf("error = %q, want it to contain %q", detail, tt.errorSubstr)
			}
		})
	}
}
