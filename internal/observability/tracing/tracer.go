package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the process-wide tracer for this service. All spans share
// one instrumentation scope since the binary is a single API server.
var tracer = otel.Tracer("linkdeck")

// StartSpan starts a child span under whatever span ctx already
// carries. Internal operations such as the upstream metadata fetch use
// it to show up as children of the HTTP server span.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, opts...)
}
