// Package config provides small helpers for reading typed configuration
// from environment variables. Every helper falls back to the caller's
// default on a missing or malformed value; malformed values are logged
// so a typo in a deployment manifest is visible at startup rather than
// silently ignored.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnvString returns the value of key, or defaultValue when unset or
// empty.
func GetEnvString(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// GetEnvInt returns the value of key parsed as an integer. A value that
// does not parse is logged and replaced with defaultValue.
func GetEnvInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		warnInvalid(key, raw, strconv.Itoa(defaultValue), err)
		return defaultValue
	}
	return v
}

// GetEnvBool returns the value of key parsed with strconv.ParseBool,
// accepting the usual spellings ("1", "t", "true", "0", "false", ...).
func GetEnvBool(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		warnInvalid(key, raw, strconv.FormatBool(defaultValue), err)
		return defaultValue
	}
	return v
}

// GetEnvDuration returns the value of key parsed with
// time.ParseDuration, e.g. "30s" or "1h15m".
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		warnInvalid(key, raw, defaultValue.String(), err)
		return defaultValue
	}
	return v
}

// GetEnvStringList splits the value of key on commas, trimming
// whitespace and dropping empty entries. An unset or empty variable
// yields defaultValue.
func GetEnvStringList(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if out == nil {
		return defaultValue
	}
	return out
}

func warnInvalid(key, raw, fallback string, err error) {
	slog.Warn("invalid value for environment variable, using default",
		slog.String("key", key),
		slog.String("value", raw),
		slog.String("default", fallback),
		slog.String("error", err.Error()))
}
