package exporters

import (
	"context"

	"github.com/Gobusters/ectologger"
	"go.opentelemetry.io/otel/sdk/trace"
)

// ConsoleExporter writes finished spans to the service logger. Intended
// for local development where no OTLP collector is running.
type ConsoleExporter struct {
	logger ectologger.Logger
}

// NewConsoleExporter creates a console exporter backed by the given logger
func NewConsoleExporter(logger ectologger.Logger) *ConsoleExporter {
	return &ConsoleExporter{logger: logger}
}

func (c *ConsoleExporter) ExportSpans(ctx context.Context, spans []trace.ReadOnlySpan) error {
	for _, span := range spans {
		c.logger.WithContext(ctx).WithFields(map[string]any{
			"span_name":   span.Name(),
			"trace_id":    span.SpanContext().TraceID().String(),
			"span_id":     span.SpanContext().SpanID().String(),
			"duration_ms": span.EndTime().Sub(span.StartTime()).Milliseconds(),
		}).Debug("Span completed")
	}
	return nil
}

func (c *ConsoleExporter) Shutdown(ctx context.Context) error {
	return nil
}
