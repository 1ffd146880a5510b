package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestPrettyHandler_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn")

	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestPrettyHandler_RedactsTokens(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "debug")

	log.Info("login", "refresh_token", "r-secret", "password", "hunter2", "user_id", 7)

	out := buf.String()
	assert.NotContains(t, out, "r-secret")
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, redacted)
	assert.Contains(t, out, "=7")
}

func TestPrettyHandler_Groups(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, nil)).With("console", "default").WithGroup("refresh")

	log.Info("done", "outcome", "success")

	out := buf.String()
	assert.Contains(t, out, "console"+reset+"=default")
	assert.Contains(t, out, "refresh.outcome"+reset+"=success")
}
