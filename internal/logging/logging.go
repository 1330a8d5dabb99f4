// Package logging builds the charmbracelet loggers used across the engine and
// carries them through context.Context.
package logging

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// New creates a timestamped logger writing to w at level.
func New(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// ParseLevel maps a level name to a log.Level, defaulting to info.
func ParseLevel(s string) log.Level {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// Discard returns a logger that drops everything. Used by tests and as the
// fallback when no logger was configured.
func Discard() *log.Logger {
	return New(io.Discard, log.FatalLevel)
}

// Default returns a stderr logger at the given level name.
func Default(level string) *log.Logger {
	return New(os.Stderr, ParseLevel(level))
}

type ctxKey int

const loggerKey ctxKey = 0

// WithLogger returns a context carrying l.
func WithLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger stored in ctx, or a discarding logger.
func FromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok && l != nil {
		return l
	}
	return Discard()
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return Discard()
	}
	return l
}
