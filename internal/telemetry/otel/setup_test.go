package otel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewProvider_EmptyEndpoint(t *testing.T) {
	p, err := NewProvider(context.Background(), "", "workstack-test")
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if p.TracerProvider == nil {
		t.Fatal("TracerProvider should not be nil")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("shutdown should be a no-op, got %v", err)
	}
}

func TestNewProvider_InvalidEndpoint(t *testing.T) {
	for _, endpoint := range []string{"://bad", "http://[bad", "http://"} {
		if _, err := NewProvider(context.Background(), endpoint, "workstack-test"); err == nil {
			t.Errorf("NewProvider(%q) should return error", endpoint)
		}
	}
}

func TestMiddleware_RecordsSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	handler := Middleware(tp.Tracer("test"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/organizations", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Name != "GET /organizations" {
		t.Errorf("span name = %q, want %q", spans[0].Name, "GET /organizations")
	}
}
