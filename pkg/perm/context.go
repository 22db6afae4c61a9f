package perm

import "context"

// principalCtxKey is the context key for storing the request principal.
type principalCtxKey struct{}

// WithPrincipal stores the principal in the context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, p)
}

// PrincipalFromContext retrieves the principal from the context.
// Absence of a principal yields Anonymous, so capability checks downstream
// deny by default instead of branching on a missing value.
func PrincipalFromContext(ctx context.Context) Principal {
	if p, ok := ctx.Value(principalCtxKey{}).(Principal); ok && p != nil {
		return p
	}
	return Anonymous{}
}
