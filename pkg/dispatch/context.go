package dispatch

import "context"

type contextKey string

const requestIDKey contextKey = "request-id"

// WithRequestID returns a context carrying the transport request id, which
// is added to the dispatcher's log lines.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFrom returns the request id stored by WithRequestID.
func RequestIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok && id != ""
}
