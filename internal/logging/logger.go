package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

const (
	FormatText = "text"
	FormatJSON = "json"
	FormatTint = "tint"
)

// Config controls the process logger.
type Config struct {
	Level   string
	Format  string
	Service string
	Version string
	// Writer defaults to stdout.
	Writer io.Writer
	// Forward, when set, receives a copy of every record (e.g. a FluentHandler).
	Forward slog.Handler
}

// NewLogger returns a structured logger. Every handler it builds redacts sensitive fields.
func NewLogger(cfg Config) *slog.Logger {
	var handler slog.Handler = newConsoleHandler(cfg)
	if cfg.Forward != nil {
		handler = NewFanout(handler, cfg.Forward)
	}
	attrs := WithCommon(nil, cfg.Service, cfg.Version)
	if len(attrs) > 0 {
		handler = handler.WithAttrs(attrs)
	}
	return slog.New(handler)
}

func newConsoleHandler(cfg Config) slog.Handler {
	w := cfg.Writer
	if w == nil {
		w = os.Stdout
	}
	level := ParseLevel(cfg.Level)

	switch strings.ToLower(cfg.Format) {
	case FormatJSON:
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level, ReplaceAttr: ReplaceAttr})
	case FormatTint:
		return tint.NewHandler(w, &tint.Options{
			Level:       level,
			ReplaceAttr: ReplaceAttr,
			TimeFormat:  time.DateTime,
		})
	default:
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level, ReplaceAttr: ReplaceAttr})
	}
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
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
