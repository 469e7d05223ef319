package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/polkiloo/marketclient/internal/config"
)

// New creates a JSON slog.Logger writing to stdout at the configured level.
func New(cfg *config.Config) *slog.Logger {
	return NewWithWriter(os.Stdout, ParseLevel(cfg.LogLevel))
}

// NewWithWriter creates a JSON logger writing to w.
func NewWithWriter(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

// ParseLevel maps a level name to slog.Level; unknown names yield Info.
func ParseLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo
	}
	return level
}
