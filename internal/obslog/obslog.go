// Package obslog builds the *slog.Logger binaries use, following the
// teacher's LOG_FORMAT/LOG_LEVEL convention (text or json, debug through
// error). Library packages under pkg/ never call slog.SetDefault
// themselves; each accepts an optional *slog.Logger parameter and falls
// back to slog.Default() when nil, so a host embedding this engine keeps
// control of its own global logger.
package obslog

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New builds a logger writing to w (os.Stdout in production, io.Discard or
// a buffer in tests) with the given format ("text" or "json", defaulting to
// text) and level ("debug", "info", "warn", "error", defaulting to info).
func New(w io.Writer, format, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// NewDefault is New(os.Stdout, format, level), the shape every cmd/ main
// calls before slog.SetDefault.
func NewDefault(format, level string) *slog.Logger {
	return New(os.Stdout, format, level)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// FromOrDefault returns logger if non-nil, else slog.Default(). Every
// pkg/ entry point that accepts an optional logger calls this once at the
// top of the function.
func FromOrDefault(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}
