package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Component logger names.
const (
	App    = "app"
	Access = "access"
	Audit  = "audit"
	Hunter = "hunter"
	Auth   = "auth"
)

// New returns a structured JSON logger on stdout at the given level.
func New(level string) *slog.Logger {
	return NewWithWriter(os.Stdout, level)
}

// NewWithWriter is New with a custom sink.
func NewWithWriter(w io.Writer, level string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}
	handler := slog.NewJSONHandler(w, opts)
	return slog.New(handler)
}

// Named returns a child logger tagged with a component name.
func Named(l *slog.Logger, name string) *slog.Logger {
	return l.With("logger", name)
}

// ParseLevel maps debug|info|warn|error to a slog level; anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
