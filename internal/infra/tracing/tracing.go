package tracing

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"numrelay/internal/config"
)

// Shutdown flushes and stops the provider installed by Init.
type Shutdown func(context.Context) error

// Init installs a tracer provider for cfg.Exporter. "none" leaves the global
// no-op provider in place.
func Init(cfg config.TracingConfig) (Shutdown, error) {
	return InitWithWriter(os.Stdout, cfg)
}

func InitWithWriter(w io.Writer, cfg config.TracingConfig) (Shutdown, error) {
	noop := func(context.Context) error { return nil }

	switch cfg.Exporter {
	case "", "none":
		return noop, nil
	case "stdout":
	default:
		return noop, fmt.Errorf("tracing.exporter %q: must be none or stdout", cfg.Exporter)
	}

	name := cfg.ServiceName
	if name == "" {
		name = "numrelay"
	}
	res, err := resource.New(context.Background(), resource.WithAttributes(semconv.ServiceName(name)))
	if err != nil {
		return noop, fmt.Errorf("tracing resource: %w", err)
	}
	exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return noop, fmt.Errorf("stdout exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// WrapHandler adds otelhttp spans and context propagation to next.
func WrapHandler(name string, next http.Handler) http.Handler {
	return otelhttp.NewHandler(next, name)
}
