package pg

import "context"

// logger is the interface required for migration logging integration.
// Compatible with slog; routes goose output through application logging
// instead of stdout/stderr.
type logger interface {
	InfoContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}
