// Package metrics provides centralized Prometheus metrics for the
// preview pipeline, link management, HTTP handling, and database access.
//
// All metrics are registered with the default registry via promauto and
// exposed through the /metrics endpoint. Recorder functions keep metric
// names and label vocabularies in one place so instrumentation call sites
// stay one-liners.
package metrics
