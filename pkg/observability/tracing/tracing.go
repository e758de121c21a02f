// Package tracing sets up OpenTelemetry tracing with a configurable
// exporter and provides HTTP middleware that opens a span per request.
package tracing

import (
	"context"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/exporters/zipkin"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/fluxorio/todo-service/pkg/web"
)

// Config selects the tracing exporter
type Config struct {
	// Exporter is one of none|stdout|zipkin|jaeger
	Exporter string

	// Endpoint is the collector endpoint for zipkin/jaeger
	Endpoint string

	// ServiceName labels exported spans (default "todo-service")
	ServiceName string
}

// Setup installs a global TracerProvider and returns its shutdown func.
// Exporter "none" installs nothing and returns a no-op shutdown.
func Setup(cfg Config) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "todo-service"
	}

	var (
		exporter sdktrace.SpanExporter
		err      error
	)
	switch cfg.Exporter {
	case "", "none":
		return noop, nil
	case "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	case "zipkin":
		exporter, err = zipkin.New(cfg.Endpoint)
	case "jaeger":
		exporter, err = jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(cfg.Endpoint)))
	default:
		return noop, fmt.Errorf("unknown tracing exporter %q", cfg.Exporter)
	}
	if err != nil {
		return noop, fmt.Errorf("create %s exporter: %w", cfg.Exporter, err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(sdkresource.NewSchemaless(
			attribute.String("service.name", serviceName),
		)),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// Middleware opens a span per request on the global tracer
func Middleware() web.Middleware {
	tracer := otel.Tracer("todo-service/web")

	return func(next web.RequestHandler) web.RequestHandler {
		return func(ctx *web.RequestContext) error {
			spanCtx, span := tracer.Start(ctx.Context(),
				ctx.Request.Method+" "+ctx.Request.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer))
			defer span.End()
			ctx.WithContext(spanCtx)

			span.SetAttributes(
				attribute.String("http.method", ctx.Request.Method),
				attribute.String("http.target", ctx.Request.URL.Path),
			)

			err := next(ctx)

			status := ctx.Response.Status()
			if status != 0 {
				span.SetAttributes(attribute.String("http.status_code", strconv.Itoa(status)))
			}
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			return err
		}
	}
}
