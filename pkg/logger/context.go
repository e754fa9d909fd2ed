package logger

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// With stores a child of the context logger carrying fields, so everything
// logged further down the request shares them.
func With(ctx context.Context, fields ...any) context.Context {
	return context.WithValue(ctx, ctxKey{}, From(ctx).With(fields...))
}

// From falls back to the process logger when ctx carries none.
func From(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
			return l
		}
	}
	return LoggerWrapper()
}
