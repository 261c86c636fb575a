package utils

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLogLevel maps a level name to slog.Level, defaulting to info
func ParseLogLevel(logLevel string) slog.Level {
	switch strings.ToLower(logLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds a logger writing to w. Format "json" selects the JSON handler;
// anything else falls back to the text handler.
func NewLogger(w io.Writer, logLevel, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLogLevel(logLevel),
	}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// SetupLogging configures the global slog logger.
// Call it once at startup, before anything logs.
func SetupLogging(logLevel, format string) {
	slog.SetDefault(NewLogger(os.Stdout, logLevel, format))
}
