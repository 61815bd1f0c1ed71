package tracing

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"linkdeck/internal/handler/http/responsewriter"
)

// TraceIDHeader carries the trace ID back to the client so a user
// report about a broken preview can be matched to its trace.
const TraceIDHeader = "X-Trace-Id"

// Middleware starts a server span for each request. Incoming W3C trace
// context is honored, so a frontend that already traces its API calls
// gets a connected trace across the fetch of a link preview.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.path", r.URL.Path),
			),
		)
		defer span.End()

		w.Header().Set(TraceIDHeader, span.SpanContext().TraceID().String())

		rw := responsewriter.Wrap(w)
		next.ServeHTTP(rw, r.WithContext(ctx))

		status := rw.StatusCode()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	})
}
