package tracing_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/flashkv/flashload/internal/config"
	"github.com/flashkv/flashload/internal/tracing"
)

func TestInitDisabled(t *testing.T) {
	p, err := tracing.Init(context.Background(), config.TracingConfig{})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if p.Tracer() == nil {
		t.Error("Tracer() must never be nil")
	}
	if p.ShouldPropagate() {
		t.Error("ShouldPropagate() = true, want false when tracing disabled")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestInitEnabledWithoutEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	p, err := tracing.Init(context.Background(), config.TracingConfig{
		Enable:     true,
		SampleRate: 1.0,
	})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if !p.ShouldPropagate() {
		t.Error("ShouldPropagate() = false, want true when tracing enabled")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestInitWithGRPCExporter(t *testing.T) {
	p, err := tracing.Init(context.Background(), config.TracingConfig{
		Enable:     true,
		Endpoint:   "localhost:4317",
		Protocol:   "grpc",
		Insecure:   true,
		SampleRate: 1.0,
	})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if !p.ShouldPropagate() {
		t.Error("ShouldPropagate() = false, want true")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = p.Shutdown(ctx)
}

func TestInitInvalidSampleRate(t *testing.T) {
	for _, rate := range []float64{-0.1, 1.5} {
		_, err := tracing.Init(context.Background(), config.TracingConfig{
			Enable:     true,
			Endpoint:   "localhost:4317",
			Insecure:   true,
			SampleRate: rate,
		})
		if err == nil {
			t.Errorf("Init with sample rate %g: expected error", rate)
		}
	}
}

func TestInitUnsupportedExporterProtocol(t *testing.T) {
	_, err := tracing.Init(context.Background(), config.TracingConfig{
		Enable:     true,
		Endpoint:   "localhost:4317",
		Protocol:   "udp",
		SampleRate: 1.0,
	})
	if err == nil {
		t.Fatal("expected error for unsupported OTLP protocol")
	}
}

func TestShouldPropagateOverride(t *testing.T) {
	off := false
	p, err := tracing.Init(context.Background(), config.TracingConfig{
		Enable:     true,
		Propagate:  &off,
		SampleRate: 1.0,
	})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if p.ShouldPropagate() {
		t.Error("ShouldPropagate() = true, want false when explicitly disabled")
	}

	var nilProvider *tracing.Provider
	if nilProvider.ShouldPropagate() {
		t.Error("nil provider ShouldPropagate() = true, want false")
	}
}

func TestSpanLifecycleWithNoopTracer(t *testing.T) {
	p, err := tracing.Init(context.Background(), config.TracingConfig{})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	ctx, span := tracing.StartRequestSpan(context.Background(), p.Tracer(), "http", "http://localhost:8080")
	if ctx == nil || span == nil {
		t.Fatal("span start returned nil")
	}
	tracing.EndSpan(span, nil)

	_, span = tracing.StartRequestSpan(context.Background(), p.Tracer(), "flashkv", "localhost:6379")
	tracing.EndSpan(span, context.DeadlineExceeded)
}

func TestInjectHTTPHeadersDoesNotPanic(t *testing.T) {
	headers := http.Header{}
	tracing.InjectHTTPHeaders(context.Background(), headers)
}
