// Package tracing provides OpenTelemetry tracing integration.
//
// The HTTP middleware starts a server span per request, propagates
// incoming W3C trace context, and echoes the trace ID back to clients
// via the X-Trace-Id response header so a failed preview fetch can be
// correlated with its server-side trace.
//
// Example usage:
//
//	handler = tracing.Middleware(handler)
package tracing
