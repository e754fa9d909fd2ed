package internal

import (
	"context"
	"time"
)

type ctxKey string

const ContextIdentityKey ctxKey = "identity"

// AnonymousIdentity is what the identity collaborator supplies when a request
// carries no credentials.
const AnonymousIdentity = "anonymous"

func IdentityFromContext(ctx context.Context) string {
	if ctx == nil {
		return AnonymousIdentity
	}
	if identity, ok := ctx.Value(ContextIdentityKey).(string); ok && identity != "" {
		return identity
	}
	return AnonymousIdentity
}

func ContextWithIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, ContextIdentityKey, identity)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
