package utils

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	testCases := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			// Act & Assert
			assert.Equal(t, tc.expected, ParseLogLevel(tc.input))
		})
	}
}

func TestNewLogger_JSON(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	logger := NewLogger(&buf, "info", "json")

	// Act
	logger.Debug("hidden")
	logger.Info("Transfer created", "transfer_id", 7)

	// Assert
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "exactly one JSON line is written")
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "Transfer created", entry["msg"])
	assert.Equal(t, float64(7), entry["transfer_id"])
}

func TestNewLogger_TextFallback(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn", "logfmt")

	// Act
	logger.Info("hidden")
	logger.Warn("Low stock", "product_id", 3)

	// Assert
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `msg="Low stock"`)
	assert.Contains(t, out, "product_id=3")
}
