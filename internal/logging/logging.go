// Package logging builds the process logger. Every handler it returns is
// wrapped in a security.RedactingHandler so bot tokens never reach a sink.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"github.com/flemzord/tgbridge/internal/security"
)

// Supported output formats.
const (
	FormatText    = "text"
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Options configures New.
type Options struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string
	// Format is one of FormatText, FormatJSON, FormatConsole. Empty means text.
	Format string
	// NoColor disables ANSI colors in console output.
	NoColor bool
	// Secrets are literal values scrubbed from every record, in addition
	// to security.DefaultPatterns.
	Secrets []string
}

// New returns a logger writing to w.
func New(w io.Writer, opts Options) (*slog.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	var inner slog.Handler
	switch strings.ToLower(opts.Format) {
	case "", FormatText:
		inner = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	case FormatJSON:
		inner = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	case FormatConsole:
		inner = tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			NoColor:    opts.NoColor,
		})
	default:
		return nil, fmt.Errorf("logging: unknown format %q", opts.Format)
	}

	redactor := security.NewRedactor()
	for _, s := range opts.Secrets {
		redactor.AddLiteral(s)
	}
	return slog.New(security.NewRedactingHandler(inner, redactor)), nil
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("logging: %w", err)
	}
	return level, nil
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
