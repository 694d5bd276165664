// Package logging is the structured-logging facade used by the server, the
// admin CLI and their components. The only implementation wraps log/slog.
package logging

import "context"

// Logger writes leveled, structured records. Trailing args are alternating
// keys and values:
//
//	logger.Info(ctx, "code requested", "phone", phone)
//
// Components usually receive a child from With("module", name).
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a logger that prefixes every record with args.
	With(args ...any) Logger
}
