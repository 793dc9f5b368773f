package config

import (
	"io"
	"log/slog"
	"strings"
)

// LevelFromString resolves a log level name. Unknown names yield info and false.
func LevelFromString(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "dbg":
		return slog.LevelDebug, true
	case "info", "inf":
		return slog.LevelInfo, true
	case "warn", "wrn", "warning":
		return slog.LevelWarn, true
	case "error", "err":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// NewLogger builds a text logger writing to w at the named level.
// slog orders each line as time, level, message, then attributes.
func NewLogger(w io.Writer, level string) *slog.Logger {
	lvl, _ := LevelFromString(level)
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
