package gistkit

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with gistkit-specific context.
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
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithConfig adds a text search configuration name to the logger.
func (l *Logger) WithConfig(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("config", name),
	}
}

// LogVectorize logs a document-to-tsvector conversion.
func (l *Logger) LogVectorize(ctx context.Context, lexemes int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "to_tsvector failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "to_tsvector completed",
			"lexemes", lexemes,
		)
	}
}

// LogQueryRewrite logs a query-to-tsquery conversion.
func (l *Logger) LogQueryRewrite(ctx context.Context, items int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "to_tsquery failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "to_tsquery completed",
			"items", items,
		)
	}
}

// LogHeadline logs a headline generation.
func (l *Logger) LogHeadline(ctx context.Context, length int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "ts_headline failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "ts_headline completed",
			"length", length,
		)
	}
}
