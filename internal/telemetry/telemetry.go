package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

const defaultServiceName = "freshersjob"

// TracesFile receives spans when no collector endpoint is configured.
var TracesFile = "traces.txt"

func newFileExporter(w io.Writer) (trace.SpanExporter, error) {
	return stdouttrace.New(
		stdouttrace.WithWriter(w),
		stdouttrace.WithPrettyPrint(),
		stdouttrace.WithoutTimestamps(),
	)
}

// newCollectorExporter sends spans to an OTLP/HTTP collector such as "localhost:4318".
func newCollectorExporter(endpoint string) (trace.SpanExporter, error) {
	endpoint = strings.TrimPrefix(endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")

	return otlptracehttp.New(
		context.Background(),
		otlptracehttp.WithInsecure(),
		otlptracehttp.WithEndpoint(endpoint),
	)
}

func newResource() *resource.Resource {
	serviceName := os.Getenv("OTEL_SERVICE_NAME")
	if serviceName == "" {
		serviceName = defaultServiceName
	}

	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion("0.1.0"),
	)
}

// NewProvider installs a tracer provider and the W3C trace context propagator globally.
// Spans go to the collector at endpoint, or to TracesFile when endpoint is empty.
//
// Returns a teardown func
func NewProvider(endpoint string) func() {
	var (
		exp       trace.SpanExporter
		err       error
		closeFile = func() error { return nil }
	)

	if endpoint != "" {
		slog.Info("Exporting traces to collector", slog.String("endpoint", endpoint))
		exp, err = newCollectorExporter(endpoint)
	} else {
		f, ferr := os.Create(TracesFile)
		if ferr != nil {
			slog.Error("Unable to create traces file", slog.String("file", TracesFile), slog.Any("error", ferr))
			return func() {}
		}
		closeFile = f.Close

		slog.Info("Using file-based tracing", slog.String("file", TracesFile))
		exp, err = newFileExporter(f)
	}

	if err != nil {
		slog.Error("Unable to create exporter", slog.Any("error", err))
		panic(err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exp),
		trace.WithResource(newResource()),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			slog.Error("unable to shutdown trace provider", slog.Any("error", err))
		}

		if err := closeFile(); err != nil {
			slog.Error("Unable to close traces file", slog.Any("error", err))
		}
	}
}
