// Package stakelog wraps log/slog with WithContext-style derived
// loggers carrying fixed fields, and Info/Warn/Error calls taking a
// message plus alternating key/value pairs.
package stakelog

import (
	"context"
	"log/slog"
)

type Logger struct {
	inner *slog.Logger
}

func New(inner *slog.Logger) *Logger {
	if inner == nil {
		inner = slog.Default()
	}
	return &Logger{inner: inner}
}

// WithContext returns l unchanged; ctx is not read.
func (l *Logger) WithContext(_ context.Context) *Logger {
	return l
}

// A nil *Logger is usable and silent, so callers holding an optional
// logger dependency never have to branch before logging.

func (l *Logger) With(args ...any) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{inner: l.inner.With(args...)}
}

func (l *Logger) Info(msg string, args ...any) {
	if l == nil {
		return
	}
	l.inner.Info(msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	if l == nil {
		return
	}
	l.inner.Warn(msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	if l == nil {
		return
	}
	l.inner.Error(msg, args...)
}

func (l *Logger) Debug(msg string, args ...any) {
	if l == nil {
		return
	}
	l.inner.Debug(msg, args...)
}
