package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// SlogLogger adapts a *slog.Logger to the Logger interface
type SlogLogger struct {
	log    *slog.Logger
	closer io.Closer
}

// NewSlogLogger wraps an existing handler. closer, if non-nil, is closed by Close.
func NewSlogLogger(h slog.Handler, closer io.Closer) *SlogLogger {
	return &SlogLogger{log: slog.New(h), closer: closer}
}

// NewConsoleLogger logs to w. Text output goes through tint, colored only when
// w is a terminal; JSON output uses the standard slog JSON handler.
func NewConsoleLogger(w io.Writer, format Format, level Level) *SlogLogger {
	if format == FormatJSON {
		return NewSlogLogger(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level.slogLevel()}), nil)
	}
	return NewSlogLogger(tint.NewHandler(w, &tint.Options{
		Level:      level.slogLevel(),
		TimeFormat: time.TimeOnly,
		NoColor:    !isTerminal(w),
	}), nil)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Debug logs a debug message
func (l *SlogLogger) Debug(ctx context.Context, msg string, fields Fields) {
	l.log.LogAttrs(ctx, slog.LevelDebug, msg, attrs(fields)...)
}

// Info logs an info message
func (l *SlogLogger) Info(ctx context.Context, msg string, fields Fields) {
	l.log.LogAttrs(ctx, slog.LevelInfo, msg, attrs(fields)...)
}

// Warn logs a warning message
func (l *SlogLogger) Warn(ctx context.Context, msg string, fields Fields) {
	l.log.LogAttrs(ctx, slog.LevelWarn, msg, attrs(fields)...)
}

// Error logs an error message
func (l *SlogLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	as := attrs(fields)
	if err != nil {
		as = append(as, slog.String("error", err.Error()))
	}
	l.log.LogAttrs(ctx, slog.LevelError, msg, as...)
}

// WithFields returns a logger with additional fields.
// The derived logger shares the output but does not own it.
func (l *SlogLogger) WithFields(fields Fields) Logger {
	as := attrs(fields)
	args := make([]any, len(as))
	for i, a := range as {
		args[i] = a
	}
	return &SlogLogger{log: l.log.With(args...)}
}

// Close closes the underlying output if this logger owns it
func (l *SlogLogger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// attrs converts fields into attributes in key order
func attrs(fields Fields) []slog.Attr {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]slog.Attr, 0, len(keys))
	for _, k := range keys {
		out = append(out, slog.Any(k, fields[k]))
	}
	return out
}
