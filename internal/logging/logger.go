// Package logging defines the structured-logging interface used across the
// journal client. The only implementation wraps log/slog; output goes to
// stdout or to a size-rotated file.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Warn(ctx, "mirror insert failed", "kind", "prayer", "id", id, "error", err)
type Logger interface {
	// Debug logs diagnostic detail (mirror successes, cache backfills).
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}
