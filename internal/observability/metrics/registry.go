// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Preview pipeline metrics track the metadata resolution core
var (
	// PreviewResolutionsTotal counts preview resolutions by outcome.
	// Outcomes: success, cache_hit, forbidden, timeout, not_found,
	// transport, unexpected.
	PreviewResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "preview_resolutions_total",
			Help: "Total number of preview resolutions by outcome",
		},
		[]string{"outcome"},
	)

	// PreviewResolveDuration measures successful resolution latency.
	// Buckets stretch past the 15s fetch deadline so timeouts stay visible.
	PreviewResolveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "preview_resolve_duration_seconds",
			Help:    "Time taken to resolve preview metadata",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
		},
	)

	// MetadataFetchesTotal counts outbound metadata fetches by result
	MetadataFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metadata_fetches_total",
			Help: "Total number of outbound metadata fetch attempts",
		},
		[]string{"result"},
	)

	// MetadataFetchSize measures fetched HTML document size in bytes
	MetadataFetchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "metadata_fetch_size_bytes",
			Help:    "Fetched HTML document size in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		},
	)

	// PreviewPersistJobsTotal counts background preview persistence jobs.
	// Results: success, fallback, abandoned.
	PreviewPersistJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "preview_persist_jobs_total",
			Help: "Total number of background preview persistence jobs",
		},
		[]string{"result"},
	)

	// PreviewPersistDuration measures background job duration
	PreviewPersistDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "preview_persist_duration_seconds",
			Help:    "Time taken by a background preview persistence job",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		},
	)

	// ImageRehostsTotal counts preview image re-host attempts by result
	ImageRehostsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_rehosts_total",
			Help: "Total number of preview image re-host attempts",
		},
		[]string{"result"},
	)
)

// Business metrics track link management operations
var (
	// LinksCreatedTotal counts links created by whether a preview job was dispatched
	LinksCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "links_created_total",
			Help: "Total number of links created",
		},
		[]string{"preview_dispatched"},
	)

	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)
)
