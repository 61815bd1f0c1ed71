// Package middleware provides HTTP middleware for cross-cutting concerns
// applied outside individual handlers.
package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"linkdeck/pkg/config"
)

// CORSConfig holds the CORS policy applied to cross-origin requests.
type CORSConfig struct {
	// AllowedOrigins is a whitelist of permitted origins, e.g.
	// ["http://localhost:3000", "https://example.com"].
	AllowedOrigins []string

	// AllowedMethods lists the HTTP methods permitted in CORS requests.
	AllowedMethods []string

	// AllowedHeaders lists the request headers permitted in CORS requests.
	AllowedHeaders []string

	// MaxAge is how long browsers may cache preflight results, in seconds.
	MaxAge int
}

// LoadCORSConfig reads the CORS policy from environment variables.
// CORS_ALLOWED_ORIGINS is a comma-separated whitelist; an empty value
// allows no cross-origin callers.
func LoadCORSConfig() CORSConfig {
	cfg := CORSConfig{
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		MaxAge:         config.GetEnvInt("CORS_MAX_AGE", 86400),
	}
	for _, o := range config.GetEnvStringList("CORS_ALLOWED_ORIGINS", nil) {
		cfg.AllowedOrigins = append(cfg.AllowedOrigins, strings.TrimSuffix(o, "/"))
	}
	return cfg
}

func (c CORSConfig) originAllowed(origin string) bool {
	for _, allowed := range c.AllowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// CORS returns middleware that validates the Origin header against the
// configured whitelist and sets CORS headers for allowed origins.
// Same-origin requests (no Origin header) pass through untouched;
// disallowed origins get no CORS headers, so the browser blocks them.
func CORS(cfg CORSConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !cfg.originAllowed(origin) {
				if logger != nil {
					logger.Warn("CORS: origin not allowed",
						slog.String("origin", origin),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method))
				}
				next.ServeHTTP(w, r)
				return
			}

			// Echo back the request origin rather than "*" so responses
			// stay cacheable per origin.
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", strings.Join(cfg.AllowedMethods, ", "))
				w.Header().Set("Access-Control-Allow-Headers", strings.Join(cfg.AllowedHeaders, ", "))
				w.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
