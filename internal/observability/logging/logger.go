// Package logging builds the process logger on top of log/slog and
// carries request IDs into log lines so a link create and the preview
// persistence job it spawned share a correlation key.
package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"linkdeck/internal/handler/http/requestid"
)

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
// Output is JSON unless LOG_FORMAT=text, which is easier to read during
// local development. Source locations are attached at warn and above
// levels only.
func NewLogger() *slog.Logger {
	level := parseLevel(os.Getenv("LOG_LEVEL"))
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelWarn,
	}

	var handler slog.Handler
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "text") {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

// parseLevel maps a LOG_LEVEL value to a slog level, defaulting to info
// on anything unrecognized.
func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRequestID returns logger extended with the request ID found in
// ctx, or logger unchanged when ctx carries none.
func WithRequestID(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if reqID := requestid.FromContext(ctx); reqID != "" {
		return logger.With(slog.String("request_id", reqID))
	}
	return logger
}
