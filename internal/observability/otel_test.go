package observability

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestOtelConfigFromEnv(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_SAMPLER_RATIO", "4")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "x-team=learn, broken ,=v")

	cfg := OtelConfigFromEnv("learnqueue", "test", "dev")
	if !cfg.Enabled || cfg.Endpoint != "collector:4318" {
		t.Fatalf("config: got=%+v", cfg)
	}
	if cfg.SampleRatio != 1 {
		t.Fatalf("ratio should clamp to 1: got=%v", cfg.SampleRatio)
	}
	if len(cfg.Headers) != 1 || cfg.Headers["x-team"] != "learn" {
		t.Fatalf("headers: want map[x-team:learn] got=%v", cfg.Headers)
	}
}

func TestOtelConfigDefaults(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "")
	t.Setenv("OTEL_SAMPLER_RATIO", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")
	cfg := OtelConfigFromEnv("", "", "")
	if cfg.Enabled || cfg.SampleRatio != defaultSampleRatio || cfg.Headers != nil {
		t.Fatalf("defaults: got=%+v", cfg)
	}
	if err := InitOTel(context.Background(), nil, cfg)(context.Background()); err != nil {
		t.Fatalf("disabled shutdown: %v", err)
	}
}

func TestTracerProviderExportsWithServiceResource(t *testing.T) {
	ctx := context.Background()
	exp := tracetest.NewInMemoryExporter()
	tp := newTracerProvider(ctx, nil, OtelConfig{ServiceName: "lq-test", SampleRatio: 1}, exp)

	_, span := tp.Tracer("test").Start(ctx, "Learning.Queue.EnqueueAtEnd")
	span.End()
	if err := tp.ForceFlush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	spans := exp.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("spans: want=1 got=%d", len(spans))
	}
	found := false
	for _, kv := range spans[0].Resource.Attributes() {
		if string(kv.Key) == "service.name" && kv.Value.AsString() == "lq-test" {
			found = true
		}
	}
	if !found {
		t.Fatalf("service.name missing from resource: %v", spans[0].Resource.Attributes())
	}
	if err := tp.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestTracerProviderZeroRatioDropsRootSpans(t *testing.T) {
	ctx := context.Background()
	exp := tracetest.NewInMemoryExporter()
	tp := newTracerProvider(ctx, nil, OtelConfig{SampleRatio: 0}, exp)
	_, span := tp.Tracer("test").Start(ctx, "dropped")
	span.End()
	_ = tp.ForceFlush(ctx)
	if n := len(exp.GetSpans()); n != 0 {
		t.Fatalf("spans: want=0 got=%d", n)
	}
}
