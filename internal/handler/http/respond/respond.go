// Package respond provides utilities for sending HTTP responses in JSON format.
// It includes error handling with sanitization to prevent leaking sensitive information.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// JSON writes a JSON response with the given status code and data.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// Headers are already sent, so all we can do is log.
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// Error writes a JSON error response with the given status code and error message.
func Error(w http.ResponseWriter, code int, err error) {
	JSON(w, code, map[string]string{"error": err.Error()})
}

// safeMarkers are substrings of error messages that originate from input
// validation and are safe to echo back to the caller verbatim.
var safeMarkers = []string{
	"required",
	"invalid",
	"not found",
	"already exists",
	"must be",
	"cannot be",
	"too long",
	"too short",
	"allowed",
}

// SafeError sanitizes error messages before returning them to users.
// Validation errors pass through as-is; everything else (repository
// failures, fetch failures) becomes a generic "internal server error"
// with the real cause logged under credential masking.
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}

	msg := err.Error()

	isSafe := false
	lowerMsg := strings.ToLower(msg)
	for _, marker := range safeMarkers {
		if strings.Contains(lowerMsg, marker) {
			isSafe = true
			break
		}
	}

	// 5xx is always treated as internal regardless of message shape.
	if code >= 500 {
		isSafe = false
	}

	if isSafe {
		JSON(w, code, map[string]string{"error": msg})
		return
	}

	slog.Default().Error("internal server error",
		slog.String("status", http.StatusText(code)),
		slog.Int("code", code),
		slog.String("error", SanitizeError(err)))
	JSON(w, code, map[string]string{"error": "internal server error"})
}
