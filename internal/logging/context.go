package logging

import "context"

type attrsKey struct{}

// ContextWith returns a copy of ctx carrying key-value pairs that every
// Logger appends to entries logged with that context.
func ContextWith(ctx context.Context, args ...any) context.Context {
	if len(args) == 0 {
		return ctx
	}
	prev := attrsFrom(ctx)
	merged := make([]any, 0, len(prev)+len(args))
	merged = append(merged, prev...)
	merged = append(merged, args...)
	return context.WithValue(ctx, attrsKey{}, merged)
}

// WithRequestID tags ctx with the id sent as X-Request-ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return ContextWith(ctx, "request_id", id)
}

func attrsFrom(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	v, _ := ctx.Value(attrsKey{}).([]any)
	return v
}

// withContextAttrs appends the pairs carried by ctx to args.
func withContextAttrs(ctx context.Context, args []any) []any {
	extra := attrsFrom(ctx)
	if len(extra) == 0 {
		return args
	}
	out := make([]any, 0, len(args)+len(extra))
	out = append(out, args...)
	return append(out, extra...)
}
