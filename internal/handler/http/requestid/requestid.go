// Package requestid assigns a unique ID to every HTTP request so that a
// slow preview fetch or a failed link mutation can be correlated across
// log lines and the async persistence worker.
package requestid

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// contextKey is unexported so no other package can collide with our key.
type contextKey struct{}

// RequestIDHeader is the header used to propagate IDs. Clients and
// upstream proxies may supply their own; we echo it back so the caller
// can quote the ID when reporting a broken preview.
const RequestIDHeader = "X-Request-ID"

// maxInboundIDLength caps client-supplied IDs so a hostile header cannot
// bloat every log line for the request.
const maxInboundIDLength = 128

// FromContext returns the request ID stored in ctx, or "" when the
// request did not pass through Middleware.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

// WithRequestID returns a copy of ctx carrying the given request ID.
// Background jobs spawned from a request use this to inherit the ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// Middleware ensures every request carries an ID. An inbound
// X-Request-ID is trusted if it is non-empty and reasonably sized;
// otherwise a fresh UUID v4 is generated. The ID is set on the response
// header and injected into the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > maxInboundIDLength {
			id = uuid.New().String()
		}

		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), id)))
	})
}
