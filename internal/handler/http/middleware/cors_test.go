package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func corsTestConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{"http://localhost:3000", "https://app.example.com"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		MaxAge:         86400,
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORS_SameOriginPassesThrough(t *testing.T) {
	h := CORS(corsTestConfig(), nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/preview", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("no CORS headers expected for same-origin request, got %q", got)
	}
}

func TestCORS_AllowedOrigin(t *testing.T) {
	h := CORS(corsTestConfig(), nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/preview", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
	if got := rr.Header().Get("Vary"); got != "Origin" {
		t.Errorf("Vary = %q, want Origin", got)
	}
}

func TestCORS_DisallowedOriginGetsNoHeaders(t *testing.T) {
	h := CORS(corsTestConfig(), nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/preview", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	// Request still reaches the handler; the browser enforces the block.
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no CORS headers for disallowed origin, got %q", got)
	}
}

func TestCORS_Preflight(t *testing.T) {
	h := CORS(corsTestConfig(), nil)(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/profiles/1/links", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "PUT")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, PUT, PATCH, DELETE, OPTIONS" {
		t.Errorf("Access-Control-Allow-Methods = %q", got)
	}
	if got := rr.Header().Get("Access-Control-Max-Age"); got != "86400" {
		t.Errorf("Access-Control-Max-Age = %q", got)
	}
}

func TestLoadCORSConfig(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, https://app.example.com/")

	cfg := LoadCORSConfig()

	if len(cfg.AllowedOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.AllowedOrigins)
	}
	// Trailing slash is stripped so header comparison works.
	if cfg.AllowedOrigins[1] != "https://app.example.com" {
		t.Errorf("origin = %q", cfg.AllowedOrigins[1])
	}
	if !cfg.originAllowed("http://localhost:3000") {
		t.Error("expected localhost origin to be allowed")
	}
	if cfg.originAllowed("http://localhost:4000") {
		t.Error("unexpected origin allowed")
	}
}
