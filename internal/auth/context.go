package auth

import "context"

type contextKey struct{}

// ContextWithIdentity attaches the caller to ctx.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// CurrentIdentity returns the caller attached by ContextWithIdentity.
func CurrentIdentity(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}
