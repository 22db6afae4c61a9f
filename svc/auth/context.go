package auth

import "context"

type contextKey struct{ name string }

var userContextKey = contextKey{"auth.user"}

// WithUser stores the authenticated user in the context. The host framework
// calls this after validating the bearer token.
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext retrieves the authenticated user, or ok=false for
// anonymous requests.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey).(*User)
	return user, ok && user != nil
}
