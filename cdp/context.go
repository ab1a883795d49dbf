package cdp

import "context"

type ctxKey int

const (
	ctxKeySessionID ctxKey = iota
)

// WithSessionID returns a context that routes CDP messages to the target
// (page, frame, ...) attached under the given session ID. Without it,
// messages address the top-level browser target.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, ctxKeySessionID, sessionID)
}

// GetSessionID returns the session ID set on the context, or "".
func GetSessionID(ctx context.Context) string {
	v := ctx.Value(ctxKeySessionID)
	if sid, ok := v.(string); ok {
		return sid
	}
	return ""
}
