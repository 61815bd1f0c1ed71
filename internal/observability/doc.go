// Package observability groups the telemetry subpackages.
//
// logging configures the slog-based process logger, metrics holds the
// Prometheus registry and the domain counters for link and preview
// activity, and tracing wires OpenTelemetry spans through the HTTP
// stack and the upstream metadata fetch.
package observability
