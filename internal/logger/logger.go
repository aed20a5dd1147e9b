// Package logger wraps log/slog with leveled, service-scoped loggers.
package logger

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// Level aliases slog levels so callers don't import slog directly.
type Level = slog.Level

const (
	LevelDebug Level = slog.LevelDebug
	LevelInfo  Level = slog.LevelInfo
	LevelWarn  Level = slog.LevelWarn
	LevelError Level = slog.LevelError
)

// LoggerInterface is the logging surface consumed by services.
type LoggerInterface interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
	With(args ...any) *Logger
	Slog() *slog.Logger
}

// Logger is a thin wrapper over *slog.Logger with context-first methods.
type Logger struct {
	sl *slog.Logger
}

// New creates a Logger writing to w at the given level. The service name is
// attached to every record. Extra attrs are optional.
func New(w io.Writer, level Level, service string, attrs []slog.Attr) *Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	sl := slog.New(h).With("service", service)
	for _, a := range attrs {
		sl = sl.With(a)
	}
	return &Logger{sl: sl}
}

// ParseLevel maps a config string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.sl.DebugContext(ctx, msg, args...)
}

func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.sl.InfoContext(ctx, msg, args...)
}

func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.sl.WarnContext(ctx, msg, args...)
}

func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	l.sl.ErrorContext(ctx, msg, args...)
}

// With returns a child logger with extra key/value pairs attached.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{sl: l.sl.With(args...)}
}

// Slog exposes the underlying *slog.Logger for services that take one.
func (l *Logger) Slog() *slog.Logger {
	return l.sl
}
