package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"linkdeck/internal/handler/http/requestid"
)

func TestRateLimiter_BurstExhaustion(t *testing.T) {
	// Refill is negligible within the test; only the burst matters.
	rl := NewRateLimiter(0.001, 3)

	handler := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	expected := []int{200, 200, 200, 429, 429}
	for i, want := range expected {
		req := httptest.NewRequest(http.MethodGet, "/preview", nil)
		req.RemoteAddr = "192.168.1.1:12345"

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != want {
			t.Errorf("request %d: got status %d, want %d", i+1, rr.Code, want)
		}
	}
}

func TestRateLimiter_RefillAllowsNewRequests(t *testing.T) {
	// 50 tokens/sec refills one token in 20ms.
	rl := NewRateLimiter(50, 1)

	handler := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/preview", nil)
	req.RemoteAddr = "192.168.1.1:12345"

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("first request: got status %d, want 200", rr.Code)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second immediate request: got status %d, want 429", rr.Code)
	}

	time.Sleep(100 * time.Millisecond)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("after refill: got status %d, want 200", rr.Code)
	}
}

func TestRateLimiter_DifferentIPs(t *testing.T) {
	rl := NewRateLimiter(0.001, 3)

	handler := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// IP1 exhausts its bucket.
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/preview", nil)
		req.RemoteAddr = "192.168.1.1:12345"

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("IP1 request %d: got status %d, want 200", i+1, rr.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/preview", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("IP1 4th request: got status %d, want 429", rr.Code)
	}

	// IP2 has its own bucket.
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/preview", nil)
		req.RemoteAddr = "192.168.1.2:12345"

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("IP2 request %d: got status %d, want 200", i+1, rr.Code)
		}
	}
}

func TestRateLimiter_SetsRetryAfter(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)

	handler := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/preview", nil)
	req.RemoteAddr = "192.168.1.1:12345"

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("got status %d, want 429", rr.Code)
	}
	if got := rr.Header().Get("Retry-After"); got == "" {
		t.Error("expected Retry-After header on 429 response")
	}
}

func TestExtractIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xri        string
		wantIP     string
	}{
		{
			name:       "X-Forwarded-For single IP",
			remoteAddr: "192.168.1.1:12345",
			xff:        "203.0.113.195",
			wantIP:     "203.0.113.195",
		},
		{
			name:       "X-Forwarded-For multiple IPs",
			remoteAddr: "192.168.1.1:12345",
			xff:        "203.0.113.195, 70.41.3.18, 150.172.238.178",
			wantIP:     "203.0.113.195",
		},
		{
			name:       "X-Real-IP",
			remoteAddr: "192.168.1.1:12345",
			xri:        "203.0.113.195",
			wantIP:     "203.0.113.195",
		},
		{
			name:       "RemoteAddr fallback",
			remoteAddr: "192.168.1.1:12345",
			wantIP:     "192.168.1.1",
		},
		{
			name:       "X-Forwarded-For takes precedence over X-Real-IP",
			remoteAddr: "192.168.1.1:12345",
			xff:        "203.0.113.195",
			xri:        "198.51.100.178",
			wantIP:     "203.0.113.195",
		},
		{
			name:       "IPv6",
			remoteAddr: "[2001:db8::1]:12345",
			wantIP:     "2001:db8::1",
		},
		{
			name:       "invalid X-Real-IP is ignored",
			remoteAddr: "192.168.1.1:12345",
			xri:        "invalid-ip",
			wantIP:     "192.168.1.1",
		},
		{
			name:       "RemoteAddr without port",
			remoteAddr: "192.168.1.1",
			wantIP:     "192.168.1.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}

			got := extractIP(req)
			if got != tt.wantIP {
				t.Errorf("extractIP() = %q, want %q", got, tt.wantIP)
			}
		})
	}
}

func TestParseFirstIP(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "203.0.113.195", want: "203.0.113.195"},
		{input: "203.0.113.195, 70.41.3.18", want: "203.0.113.195"},
		{input: "invalid, 70.41.3.18", want: ""},
		{input: "", want: ""},
		{input: "2001:db8::1", want: "2001:db8::1"},
		{input: "2001:db8::1, 2001:db8::2", want: "2001:db8::1"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseFirstIP(tt.input)
			if got != tt.want {
				t.Errorf("parseFirstIP(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLogging_EmitsAccessLine(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":7}`))
	}))

	req := httptest.NewRequest(http.MethodPost, "/profiles/1/links?dry_run=0", nil)
	req = req.WithContext(requestid.WithRequestID(req.Context(), "req-log-test"))
	req.Header.Set("User-Agent", "linkdeck-frontend/2.1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("access line is not JSON: %v", err)
	}
	if entry["msg"] != "request completed" {
		t.Errorf("msg = %v, want %q", entry["msg"], "request completed")
	}
	if entry["request_id"] != "req-log-test" {
		t.Errorf("request_id = %v, want req-log-test", entry["request_id"])
	}
	if entry["status"] != float64(http.StatusCreated) {
		t.Errorf("status = %v, want 201", entry["status"])
	}
	if entry["bytes"] != float64(8) {
		t.Errorf("bytes = %v, want 8", entry["bytes"])
	}
	if entry["path"] != "/profiles/1/links" {
		t.Errorf("path = %v, want /profiles/1/links", entry["path"])
	}
}

func TestRecover_ConvertsPanicTo500(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	for _, panicValue := range []interface{}{"boom", fmt.Errorf("nil repo"), 42} {
		handler := Recover(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic(panicValue)
		}))

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/preview", nil))

		if rr.Code != http.StatusInternalServerError {
			t.Errorf("panic %v: status = %d, want 500", panicValue, rr.Code)
		}
	}
	if !strings.Contains(buf.String(), "panic recovered") {
		t.Error("panic was not logged")
	}
}

func TestRecover_PassesThroughWhenNoPanic(t *testing.T) {
	handler := Recover(slog.Default())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/links/9", nil))

	if rr.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rr.Code)
	}
}

func TestLimitRequestBody(t *testing.T) {
	handler := LimitRequestBody(100)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	small := httptest.NewRequest(http.MethodPost, "/profiles/1/links", strings.NewReader(strings.Repeat("a", 100)))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, small)
	if rr.Code != http.StatusOK {
		t.Errorf("body at the limit: status = %d, want 200", rr.Code)
	}

	big := httptest.NewRequest(http.MethodPost, "/profiles/1/links", strings.NewReader(strings.Repeat("a", 101)))
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, big)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("oversized body: status = %d, want 413", rr.Code)
	}
}
