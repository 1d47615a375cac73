package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/mindmate/mindmate-backend/internal/config"
)

func preserveGlobals(t *testing.T) {
	t.Helper()
	prevTP := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})
}

func enabledCfg(name string) config.OTELConfig {
	return config.OTELConfig{
		Enabled:     true,
		Insecure:    true,
		Endpoint:    "localhost:4317",
		ServiceName: name,
		SampleRatio: 1.0,
	}
}

func TestSetupOTelDisabledNoOp(t *testing.T) {
	preserveGlobals(t)

	shutdown, err := SetupOTel(context.Background(), config.OTELConfig{Enabled: false}, "v0")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if shutdown == nil {
		t.Fatal("expected non-nil shutdown func")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("no-op shutdown returned error: %v", err)
	}
}

func TestSetupOTelInstallsProvider(t *testing.T) {
	preserveGlobals(t)

	shutdown, err := SetupOTel(context.Background(), enabledCfg("svc-insecure"), "v1.2.3")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); !ok {
		t.Fatal("expected *sdktrace.TracerProvider to be installed")
	}

	_, span := otel.Tracer("smoke").Start(context.Background(), "root")
	span.End()
}

func TestSetupOTelTLSBranch(t *testing.T) {
	preserveGlobals(t)

	cfg := enabledCfg("svc-tls")
	cfg.Insecure = false

	shutdown, err := SetupOTel(context.Background(), cfg, "v1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); !ok {
		t.Fatal("expected *sdktrace.TracerProvider to be installed")
	}
}

func TestSetupOTelExporterErrorLeavesGlobalsIntact(t *testing.T) {
	preserveGlobals(t)

	orig := newOTLPExporter
	defer func() { newOTLPExporter = orig }()
	newOTLPExporter = func(ctx context.Context, client otlptrace.Client) (*otlptrace.Exporter, error) {
		return nil, errors.New("exporter down")
	}

	prevTP := otel.GetTracerProvider()

	if _, err := SetupOTel(context.Background(), enabledCfg("svc"), "v0"); err == nil {
		t.Fatal("expected error, got nil")
	}
	if otel.GetTracerProvider() != prevTP {
		t.Fatal("tracer provider changed on failure")
	}
}

func TestSetupOTelResourceErrorLeavesGlobalsIntact(t *testing.T) {
	preserveGlobals(t)

	orig := newServiceResource
	defer func() { newServiceResource = orig }()
	newServiceResource = func(ctx context.Context, serviceName, version string) (*resource.Resource, error) {
		return nil, errors.New("resource failed")
	}

	prevTP := otel.GetTracerProvider()

	if _, err := SetupOTel(context.Background(), enabledCfg("svc"), "v0"); err == nil {
		t.Fatal("expected error, got nil")
	}
	if otel.GetTracerProvider() != prevTP {
		t.Fatal("tracer provider changed on failure")
	}
}

func TestShutdownWithDeadline(t *testing.T) {
	preserveGlobals(t)

	shutdown, err := SetupOTel(context.Background(), enabledCfg("svc-shutdown"), "v1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		t.Fatalf("shutdown returned error: %v", err)
	}
}
