package requestid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestFromContext(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
		want string
	}{
		{
			name: "ID present",
			ctx:  WithRequestID(context.Background(), "req-abc-123"),
			want: "req-abc-123",
		},
		{
			name: "no ID stored",
			ctx:  context.Background(),
			want: "",
		},
		{
			name: "wrong value type under the key",
			ctx:  context.WithValue(context.Background(), contextKey{}, 42),
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromContext(tt.ctx))
		})
	}
}

func TestMiddleware_ReusesInboundID(t *testing.T) {
	var seen string
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/links", nil)
	req.Header.Set(RequestIDHeader, "proxy-assigned-id")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "proxy-assigned-id", seen)
	assert.Equal(t, "proxy-assigned-id", rec.Header().Get(RequestIDHeader))
}

func TestMiddleware_GeneratesUUIDWhenMissing(t *testing.T) {
	var seen string
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/preview", nil))

	_, err := uuid.Parse(seen)
	assert.NoError(t, err, "generated ID should be a valid UUID")
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
}

func TestMiddleware_RejectsOversizedInboundID(t *testing.T) {
	var seen string
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/links", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", maxInboundIDLength+1))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	_, err := uuid.Parse(seen)
	assert.NoError(t, err, "oversized inbound ID should be replaced with a UUID")
}

func TestMiddleware_UniqueAcrossRequests(t *testing.T) {
	ids := make(map[string]bool)
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids[FromContext(r.Context())] = true
	}))

	for i := 0; i < 10; i++ {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/preview", nil))
	}

	assert.Len(t, ids, 10)
}
