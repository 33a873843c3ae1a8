// Package logging builds the slog loggers used by the application and its
// commands.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/km-arc/logos/framework/config"
)

// Format is the handler output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Config selects the handler.
type Config struct {
	Level  slog.Level
	Format Format

	// Output defaults to os.Stderr so command output on stdout stays clean.
	Output io.Writer
}

// New creates a logger for cfg.
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: cfg.Level}
	if cfg.Format == FormatJSON {
		return slog.New(slog.NewJSONHandler(out, opts))
	}
	return slog.New(slog.NewTextHandler(out, opts))
}

// FromConfig creates a logger from the LOG_LEVEL and LOG_FORMAT settings.
func FromConfig(cfg config.LogConfig, out io.Writer) *slog.Logger {
	return New(Config{
		Level:  ParseLevel(cfg.Level),
		Format: ParseFormat(cfg.Format),
		Output: out,
	})
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel maps debug, info, warn(ing) and error, in any case, to a level.
// Anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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

// ParseFormat returns FormatJSON for "json" in any case and FormatText
// otherwise.
func ParseFormat(s string) Format {
	if strings.EqualFold(s, string(FormatJSON)) {
		return FormatJSON
	}
	return FormatText
}
