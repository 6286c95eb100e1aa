package tracing

import (
	"context"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestProviderRecordsSpans(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	p := newProvider(sdktrace.WithSyncer(exporter), Options{ServiceName: "test", ServiceVersion: "1.0.0"})

	_, span := p.Tracer("test").Start(context.Background(), "telegram.sendMessage")
	span.End()

	spans := exporter.GetSpans()
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error: %v", err)
	}
	if len(spans) != 1 || spans[0].Name != "telegram.sendMessage" {
		t.Fatalf("spans = %+v", spans)
	}
	var service string
	for _, kv := range spans[0].Resource.Attributes() {
		if kv.Key == "service.name" {
			service = kv.Value.AsString()
		}
	}
	if service != "test" {
		t.Errorf("service.name = %q, want test", service)
	}
}

func TestProviderSampleRatioZeroDropsNothing(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	p := newProvider(sdktrace.WithSyncer(exporter), Options{})
	for range 5 {
		_, span := p.Tracer("test").Start(context.Background(), "op")
		span.End()
	}
	if got := len(exporter.GetSpans()); got != 5 {
		t.Errorf("recorded %d spans, want 5", got)
	}
}

func TestSetupDisabled(t *testing.T) {
	p, err := Setup(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Setup() error: %v", err)
	}
	_, span := p.Tracer("test").Start(context.Background(), "op")
	if span.SpanContext().IsValid() {
		t.Error("disabled provider produced a recording span")
	}
	span.End()
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error: %v", err)
	}
}
