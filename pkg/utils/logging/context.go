package logging

import (
	"context"
	"log/slog"
)

type ctxLoggerKey struct{}

// With attaches a request-scoped logger to the context. The HTTP access-log
// middleware uses this to carry the request ID into every line logged
// below it.
func With(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxLoggerKey{}, logger)
}

// From returns the context logger, or the process default when none has
// been attached.
func From(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxLoggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return Default()
}
