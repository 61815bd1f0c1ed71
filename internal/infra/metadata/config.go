package metadata

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the configuration for metadata fetching operations.
// This configuration controls security, performance, and behavior of the
// link preview feature.
//
// Security settings:
//   - DenyPrivateIPs: Prevents SSRF attacks by blocking private IP addresses
//   - MaxBodySize: Prevents memory exhaustion from oversized responses
//   - MaxRedirects: Prevents infinite redirect loops
//   - Timeout: Prevents resource starvation from slow servers
type Config struct {
	// Timeout is the maximum duration for a single metadata fetch.
	// This prevents resource starvation from slow or unresponsive servers.
	// Default: 15s
	Timeout time.Duration

	// MaxBodySize is the maximum HTTP response body size in bytes.
	// Responses exceeding this limit are rejected to prevent memory exhaustion.
	// This is enforced during response reading, not based on Content-Length header.
	// Default: 5242880 (5MB)
	MaxBodySize int64

	// MaxRedirects is the maximum number of HTTP redirects to follow.
	// This prevents infinite redirect loops and redirect-based attacks.
	// Each redirect target is validated for security (SSRF check).
	// Default: 5
	MaxRedirects int

	// DenyPrivateIPs controls whether to block access to private IP addresses.
	// When true, URLs resolving to private/loopback/link-local IPs are rejected.
	// This prevents Server-Side Request Forgery (SSRF) attacks.
	// Should always be true in production.
	// Default: true
	DenyPrivateIPs bool
}

// DefaultConfig returns the default configuration for metadata fetching.
// These defaults are optimized for:
//   - Security: SSRF prevention enabled, size/redirect limits enforced
//   - Latency: 15s deadline bounds every preview resolution
func DefaultConfig() Config {
	return Config{
		Timeout:        15 * time.Second,
		MaxBodySize:    5 * 1024 * 1024, // 5MB
		MaxRedirects:   5,
		DenyPrivateIPs: true,
	}
}

// Validate checks if the configuration values are valid and safe.
// This prevents misconfigurations that could lead to security issues
// or performance problems.
//
// Validation rules:
//   - Timeout: > 0 (must have timeout)
//   - MaxBodySize: 1KB-100MB (prevent memory issues)
//   - MaxRedirects: 0-10 (reasonable redirect limit)
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}

	minBodySize := int64(1024)              // 1KB
	maxBodySize := int64(100 * 1024 * 1024) // 100MB
	if c.MaxBodySize < minBodySize || c.MaxBodySize > maxBodySize {
		return fmt.Errorf("max body size must be between %d and %d bytes, got %d", minBodySize, maxBodySize, c.MaxBodySize)
	}

	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}

	return nil
}

// LoadConfigFromEnv loads configuration from environment variables.
// If a variable is not set or invalid, the default value is used.
// After loading, the configuration is validated.
//
// Environment variables:
//   - METADATA_FETCH_TIMEOUT: duration string, e.g., "15s" (default: 15s)
//   - METADATA_FETCH_MAX_BODY_SIZE: integer in bytes (default: 5242880)
//   - METADATA_FETCH_MAX_REDIRECTS: integer (default: 5)
//   - METADATA_FETCH_DENY_PRIVATE_IPS: "true" or "false" (default: true)
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if val := os.Getenv("METADATA_FETCH_TIMEOUT"); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			cfg.Timeout = parsed
		} else {
			return cfg, fmt.Errorf("invalid METADATA_FETCH_TIMEOUT: %v (expected format: '15s', '1m')", err)
		}
	}

	if val := os.Getenv("METADATA_FETCH_MAX_BODY_SIZE"); val != "" {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.MaxBodySize = parsed
		} else {
			return cfg, fmt.Errorf("invalid METADATA_FETCH_MAX_BODY_SIZE: %v", err)
		}
	}

	if val := os.Getenv("METADATA_FETCH_MAX_REDIRECTS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			cfg.MaxRedirects = parsed
		} else {
			return cfg, fmt.Errorf("invalid METADATA_FETCH_MAX_REDIRECTS: %v", err)
		}
	}

	if val := os.Getenv("METADATA_FETCH_DENY_PRIVATE_IPS"); val != "" {
		cfg.DenyPrivateIPs = val == "true"
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}
