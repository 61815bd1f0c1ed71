package http

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"linkdeck/internal/handler/http/respond"
	"linkdeck/internal/handler/http/responsewriter"
	"linkdeck/internal/observability/logging"

	"go.opentelemetry.io/otel/trace"
)

// Logging returns access-log middleware. Each completed request gets
// one line carrying the request ID and, when tracing is active, the
// trace ID, so a slow preview resolution can be chased from the access
// log into its trace.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := responsewriter.Wrap(w)

			next.ServeHTTP(wrapped, r)

			span := trace.SpanFromContext(r.Context())
			logging.WithRequestID(r.Context(), logger).Info("request completed",
				slog.String("trace_id", span.SpanContext().TraceID().String()),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("query", r.URL.RawQuery),
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("user_agent", r.Header.Get("User-Agent")),
				slog.Int("status", wrapped.StatusCode()),
				slog.Int("bytes", wrapped.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// Recover converts handler panics into 500 responses so one broken
// request cannot take the server down. The stack is logged, never sent
// to the client.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}

				respond.SafeError(w, http.StatusInternalServerError, fmt.Errorf("internal error"))

				logging.WithRequestID(r.Context(), logger).Error("panic recovered",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Any("panic", rec),
					slog.String("stack", string(debug.Stack())),
				)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// LimitRequestBody caps request body size. Link payloads are tiny, so
// anything near the cap is noise or abuse.
func LimitRequestBody(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// clientLimiter pairs a token bucket with its last activity time so idle
// entries can be evicted.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
	mu       sync.Mutex
}

// RateLimiter applies per-client-IP rate limiting using token buckets.
// Each IP gets its own bucket refilled at the configured rate; bursts up
// to the bucket size are absorbed without rejection.
type RateLimiter struct {
	clients sync.Map // map[string]*clientLimiter
	rps     rate.Limit
	burst   int

	cleanMu   sync.Mutex
	lastClean time.Time
}

// NewRateLimiter creates a rate limiting middleware allowing rps requests
// per second per IP with the given burst capacity.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		rps:       rate.Limit(rps),
		burst:     burst,
		lastClean: time.Now(),
	}
}

// Limit applies rate limiting to incoming requests based on client IP address.
// Returns 429 Too Many Requests if the rate limit is exceeded.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := extractIP(r)

		rl.periodicCleanup()

		if !rl.allow(ip) {
			w.Header().Set("Retry-After", "1")
			respond.SafeError(w, http.StatusTooManyRequests, fmt.Errorf("rate limit exceeded"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(ip string) bool {
	val, _ := rl.clients.LoadOrStore(ip, &clientLimiter{
		limiter:  rate.NewLimiter(rl.rps, rl.burst),
		lastSeen: time.Now(),
	})
	client := val.(*clientLimiter)

	client.mu.Lock()
	client.lastSeen = time.Now()
	client.mu.Unlock()

	return client.limiter.Allow()
}

// periodicCleanup evicts buckets for IPs that have been idle long enough
// for their bucket to be full again. Runs at most once per cleanup window.
func (rl *RateLimiter) periodicCleanup() {
	rl.cleanMu.Lock()
	defer rl.cleanMu.Unlock()

	if time.Since(rl.lastClean) < 10*time.Minute {
		return
	}
	rl.lastClean = time.Now()

	cutoff := time.Now().Add(-10 * time.Minute)
	rl.clients.Range(func(key, value any) bool {
		client := value.(*clientLimiter)
		client.mu.Lock()
		idle := client.lastSeen.Before(cutoff)
		client.mu.Unlock()
		if idle {
			rl.clients.Delete(key)
		}
		return true
	})
}

// extractIP determines the client IP for rate limiting. Proxy headers
// win over RemoteAddr since the service normally sits behind a reverse
// proxy that rewrites the connection source.
func extractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// First entry in the chain is the original client.
		if ip := parseFirstIP(xff); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if ip := net.ParseIP(strings.TrimSpace(xri)); ip != nil {
			return ip.String()
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// parseFirstIP returns the first valid IP in a comma-separated list, or
// "" when the leading entry is not a parseable address.
func parseFirstIP(list string) string {
	first, _, _ := strings.Cut(list, ",")
	if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
		return ip.String()
	}
	return ""
}
