package mapstruct

import (
	"context"
	"log/slog"
	"os"

	"github.com/hupe1980/mapstruct/snapshot"
)

// Logger wraps slog.Logger with mapstruct-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{Logger: slog.New(slog.DiscardHandler)}
}

// WithPath adds a path field to the logger.
func (l *Logger) WithPath(path string) *Logger {
	return &Logger{Logger: l.Logger.With("path", path)}
}

// LogOpen logs opening or creating a store.
func (l *Logger) LogOpen(ctx context.Context, created bool, size uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "open failed", "create", created, "error", err)
		return
	}
	l.InfoContext(ctx, "store opened", "create", created, "size", size)
}

// LogFlush logs a flush.
func (l *Logger) LogFlush(ctx context.Context, used uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "flush failed", "used", used, "error", err)
		return
	}
	l.DebugContext(ctx, "flush completed", "used", used)
}

// LogSnapshot logs a snapshot.
func (l *Logger) LogSnapshot(ctx context.Context, name string, s snapshot.Stats, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed", "name", name, "error", err)
		return
	}
	l.InfoContext(ctx, "snapshot saved",
		"name", name,
		"raw_bytes", s.RawBytes,
		"stored_bytes", s.StoredBytes,
	)
}

// LogRestore logs a restore from a snapshot.
func (l *Logger) LogRestore(ctx context.Context, name string, size uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "restore failed", "name", name, "error", err)
		return
	}
	l.InfoContext(ctx, "snapshot restored", "name", name, "size", size)
}
