package matchgrid

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with matchgrid-specific context.
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
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithComponent tags the logger with the component name.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("component", name),
	}
}

// WithConstraint adds a geometric constraint id field to the logger.
func (l *Logger) WithConstraint(id ConstraintID) *Logger {
	return &Logger{
		Logger: l.Logger.With("constraint", int(id)),
	}
}

// LogInsert logs a hit insertion batch.
func (l *Logger) LogInsert(ctx context.Context, id ConstraintID, count int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "insert failed",
			"constraint", int(id),
			"count", count,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "insert completed",
			"constraint", int(id),
			"count", count,
		)
	}
}

// LogComponents logs the outcome of a connected-component decomposition.
func (l *Logger) LogComponents(ctx context.Context, hits, groups int) {
	l.DebugContext(ctx, "connected components computed",
		"hits", hits,
		"groups", groups,
	)
}

// LogMatchCount logs a match-count estimate.
func (l *Logger) LogMatchCount(ctx context.Context, estimate uint64, bins int) {
	if estimate >= TooManyMatches {
		l.WarnContext(ctx, "match count saturated",
			"bins", bins,
			"cap", uint64(TooManyMatches),
		)
		return
	}
	l.DebugContext(ctx, "match count estimated",
		"bins", bins,
		"estimate", estimate,
	)
}
