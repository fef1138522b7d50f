package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ParseLevel maps a settings log_level to a slog level. Unknown values are info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// OpenLogFile returns a JSON logger appending to ~/.kindling/logs/kindling.log.
// The TUI owns the terminal, so nothing may be written to stderr while it runs.
// The returned func closes the file.
func OpenLogFile(level string) (*slog.Logger, func(), error) {
	if err := EnsureGlobalLogsDir(); err != nil {
		return nil, nil, fmt.Errorf("failed to ensure logs dir: %w", err)
	}
	dir, err := GlobalLogsDir()
	if err != nil {
		return nil, nil, err
	}

	path := filepath.Join(dir, LogFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return NewLogger(f, level, true), func() { f.Close() }, nil
}

// NewLogger builds a slog logger writing to w as JSON or text.
func NewLogger(w io.Writer, level string, json bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
