package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkdeck/internal/handler/http/requestid"
)

func TestNewLogger_DefaultsToJSONInfo(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "")

	logger := NewLogger()

	assert.True(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestNewLogger_DebugLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")

	logger := NewLogger()

	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.in), "input %q", tt.in)
	}
}

func TestWithRequestID_AddsField(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))
	ctx := requestid.WithRequestID(context.Background(), "req-42")

	WithRequestID(ctx, base).Info("preview persisted")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-42", entry["request_id"])
	assert.Equal(t, "preview persisted", entry["msg"])
}

func TestWithRequestID_NoIDLeavesLoggerUnchanged(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	WithRequestID(context.Background(), base).Info("startup")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	_, present := entry["request_id"]
	assert.False(t, present)
}
