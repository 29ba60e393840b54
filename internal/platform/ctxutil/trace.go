package ctxutil

import "context"

type scopeKey struct{}

// RequestScope identifies one inbound request across logs, spans and error bodies.
type RequestScope struct {
	TraceID   string
	SpanID    string
	RequestID string
}

func WithRequestScope(ctx context.Context, s RequestScope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

func RequestScopeFrom(ctx context.Context) (RequestScope, bool) {
	if ctx == nil {
		return RequestScope{}, false
	}
	s, ok := ctx.Value(scopeKey{}).(RequestScope)
	return s, ok
}

// RequestID is empty outside a request.
func RequestID(ctx context.Context) string {
	s, _ := RequestScopeFrom(ctx)
	return s.RequestID
}

// LogFields returns the non-empty ids as logger key/value pairs.
func (s RequestScope) LogFields() []interface{} {
	out := make([]interface{}, 0, 6)
	if s.TraceID != "" {
		out = append(out, "trace_id", s.TraceID)
	}
	if s.SpanID != "" {
		out = append(out, "span_id", s.SpanID)
	}
	if s.RequestID != "" {
		out = append(out, "request_id", s.RequestID)
	}
	return out
}
