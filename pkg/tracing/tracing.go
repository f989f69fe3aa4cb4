// Package tracing holds the process-wide tracer and small helpers for
// reading the active span.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

var tracer trace.Tracer

// SetTracer installs the tracer used by StartSpan. Called once from main.
func SetTracer(t trace.Tracer) {
	tracer = t
}

// StartSpan starts a new span under the active one. With no tracer
// installed it passes through, so library code never needs a nil check.
func StartSpan(ctx context.Context, spanName string) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, spanName)
}

// GetActiveSpan returns the active span, or nil when the context only
// carries a no-op span.
func GetActiveSpan(ctx context.Context) trace.Span {
	if tracer == nil {
		return nil
	}
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return nil
	}
	return span
}

// GetTraceID returns the active trace ID, or empty without a span
func GetTraceID(ctx context.Context) string {
	span := GetActiveSpan(ctx)
	if span == nil {
		return ""
	}
	return span.SpanContext().TraceID().String()
}

// GetTraceParent returns the W3C traceparent value for the active span,
// for propagation across non-HTTP transports
func GetTraceParent(ctx context.Context) string {
	return injectedField(ctx, "traceparent")
}

// GetTraceState returns the W3C tracestate value for the active span
func GetTraceState(ctx context.Context) string {
	return injectedField(ctx, "tracestate")
}

func injectedField(ctx context.Context, field string) string {
	if GetActiveSpan(ctx) == nil {
		return ""
	}

	tp := propagation.TraceContext{}
	carrier := propagation.MapCarrier{}
	tp.Inject(ctx, carrier)

	return carrier.Get(field)
}
