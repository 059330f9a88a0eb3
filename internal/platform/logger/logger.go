package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/SscSPs/spice_ledger/internal/platform/config"
)

// NewLogger builds the process logger from the configured level.
func NewLogger(cfg *config.Config) *slog.Logger {
	logger := newLogger(os.Stdout, cfg.LogLevel)
	logger.Info("logger initialized", "level", ParseLevel(cfg.LogLevel), "production", cfg.IsProduction)
	return logger
}

func newLogger(w io.Writer, level string) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// ParseLevel maps a level name to slog; unknown names fall back to info.
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
