package context

import (
	"context"
)

// RequestMeta identifies one API request in logs and error bodies.
type RequestMeta struct {
	RequestID string
	// TraceID is propagated from the caller; it equals RequestID when none was sent.
	TraceID  string
	ClientIP string
}

type requestKey struct{}

// WithRequest stores meta on ctx.
func WithRequest(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestKey{}, meta)
}

// RequestFrom returns the request meta stored on ctx.
func RequestFrom(ctx context.Context) (RequestMeta, bool) {
	meta, ok := ctx.Value(requestKey{}).(RequestMeta)
	return meta, ok
}

// RequestID returns the request id on ctx, or "".
func RequestID(ctx context.Context) string {
	meta, _ := RequestFrom(ctx)
	return meta.RequestID
}
