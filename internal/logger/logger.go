// Package logger provides structured logging configuration using log/slog.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Config holds logger configuration.
type Config struct {
	Level  slog.Level
	Format string // "text" or "json"
}

// NewLogger creates a configured slog.Logger.
func NewLogger(cfg Config) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.Level <= slog.LevelDebug,
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}

// DefaultConfig returns the default logger configuration.
// AURA_LOG_LEVEL (DEBUG, INFO, WARN, WARNING, ERROR) sets the level, INFO by default.
// AURA_LOG_FORMAT=json switches to the JSON handler.
func DefaultConfig() Config {
	format := "text"
	if strings.EqualFold(os.Getenv("AURA_LOG_FORMAT"), "json") {
		format = "json"
	}
	return Config{
		Level:  ParseLevel(os.Getenv("AURA_LOG_LEVEL"), slog.LevelInfo),
		Format: format,
	}
}

// ParseLevel maps a level name onto a slog.Level, returning fallback for unknown names.
func ParseLevel(name string, fallback slog.Level) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	}
	return fallback
}
