package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(" warn "))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNew_CloudLoggingKeys(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := New(buf, slog.LevelInfo)

	logger.Warn("request completed", "status", 404)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))

	assert.Equal(t, "WARNING", line["severity"])
	assert.Equal(t, "request completed", line["message"])
	assert.EqualValues(t, 404, line["status"])
	assert.NotContains(t, line, "level")
	assert.NotContains(t, line, "msg")
}

func TestNew_RespectsLevel(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := New(buf, slog.LevelError)

	logger.Info("dropped")
	assert.Empty(t, buf.String())

	logger.Error("kept")
	assert.Contains(t, buf.String(), `"severity":"ERROR"`)
}
