package httpapi_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"fitroom-server/internal/http/handlers"
	"fitroom-server/internal/http/httpapi"
	"fitroom-server/internal/infra"
	"fitroom-server/internal/session"
	"fitroom-server/internal/storage"
)

func newRouter(t *testing.T, origins []string) http.Handler {
	t.Helper()
	files, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	app := &handlers.App{
		Logger:   zerolog.Nop(),
		Config:   &infra.Config{MaxUploadMB: 16, ChatTimeout: time.Second, TryOnTimeout: time.Second},
		Files:    files,
		Sessions: session.NewMemoryStore(),
		Tokens:   session.NewTokens("test-secret", time.Hour),
	}
	return httpapi.NewRouter(app, zerolog.Nop(), origins)
}

func TestHealthz(t *testing.T) {
	router := newRouter(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("missing request id header")
	}
}

func TestCORSPreflight(t *testing.T) {
	router := newRouter(t, []string{"http://localhost:19006"})
	req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	req.Header.Set("Origin", "http://localhost:19006")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:19006" {
		t.Fatalf("allow origin = %q", got)
	}
}

func TestCORSUnknownOrigin(t *testing.T) {
	router := newRouter(t, []string{"http://localhost:19006"})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("allow origin leaked: %q", got)
	}
}
