// Package logging is the client's structured logger. Two backends exist:
// log/slog (the default) and zap, chosen with Options.Backend. Request-scoped
// pairs such as the X-Request-ID travel in the context (see ContextWith).
package logging

import (
	"context"
	"io"
)

// Logger takes a message plus key-value pairs:
//
//	log.Warn(ctx, "failed to fetch notifications", "error", err)
//
// Pairs stored in ctx with ContextWith are appended after args.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always adds args.
	With(args ...any) Logger
}

// Nop discards everything.
func Nop() Logger {
	return NewSlogHandlerLogger(io.Discard, "error", false)
}
