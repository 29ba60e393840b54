package ctxutil

import (
	"context"
	"testing"
)

func TestRequestScopeRoundTrip(t *testing.T) {
	ctx := WithRequestScope(context.Background(), RequestScope{TraceID: "t1", RequestID: "r1"})
	s, ok := RequestScopeFrom(ctx)
	if !ok || s.TraceID != "t1" {
		t.Fatalf("scope: want=t1 got=%+v ok=%v", s, ok)
	}
	if got := RequestID(ctx); got != "r1" {
		t.Fatalf("request id: want=r1 got=%q", got)
	}
	if got := RequestID(context.Background()); got != "" {
		t.Fatalf("request id outside request: want empty got=%q", got)
	}
}

func TestRequestScopeLogFieldsSkipsEmpty(t *testing.T) {
	got := RequestScope{RequestID: "r1"}.LogFields()
	if len(got) != 2 || got[0] != "request_id" || got[1] != "r1" {
		t.Fatalf("log fields: want=[request_id r1] got=%v", got)
	}
	if got := (RequestScope{}).LogFields(); len(got) != 0 {
		t.Fatalf("empty scope: want no fields got=%v", got)
	}
}
