// Package logger wraps zerolog in the teacher's instance-based logger
// shape (internal/logger/logger.go): a small struct carrying configured
// options, built once at startup and threaded through constructors,
// rather than a package-level global.
package logger

import (
	"io"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// Options describes logger configuration supplied at creation time.
type Options struct {
	Level         string
	HumanReadable bool
	Writer        io.Writer
}

// Logger wraps a configured zerolog.Logger.
type Logger struct {
	base zerolog.Logger
}

// New creates a configured Logger from Options, defaulting to info level
// and os.Stderr.
func New(opts Options) (*Logger, error) {
	level, err := parseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}
	if opts.HumanReadable {
		writer = zerolog.ConsoleWriter{Out: writer, TimeFormat: "15:04:05"}
	}

	base := zerolog.New(writer).Level(level).With().Timestamp().Logger()
	return &Logger{base: base}, nil
}

func parseLevel(level string) (zerolog.Level, error) {
	if level == "" {
		return zerolog.InfoLevel, nil
	}
	return zerolog.ParseLevel(strings.ToLower(level))
}

// Zerolog exposes the underlying zerolog.Logger for components that accept
// one directly (engine, injector).
func (l *Logger) Zerolog() zerolog.Logger {
	if l == nil {
		return zerolog.Nop()
	}
	return l.base
}

// WithFields returns a derived Logger that always writes the supplied
// fields, applied in sorted key order for deterministic output.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	if l == nil || len(fields) == 0 {
		return l
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ctx := l.base.With()
	for _, k := range keys {
		ctx = ctx.Interface(k, fields[k])
	}
	return &Logger{base: ctx.Logger()}
}

// Info writes an informational log entry.
func (l *Logger) Info(msg string) { l.base.Info().Msg(strings.TrimSpace(msg)) }

// Debug writes a debug-level log entry.
func (l *Logger) Debug(msg string) { l.base.Debug().Msg(strings.TrimSpace(msg)) }

// Warn writes a warning-level log entry.
func (l *Logger) Warn(msg string) { l.base.Warn().Msg(strings.TrimSpace(msg)) }

// Error writes an error log entry including the supplied error context.
func (l *Logger) Error(err error, msg string) {
	l.base.Error().Err(err).Msg(strings.TrimSpace(msg))
}
