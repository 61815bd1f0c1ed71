package metrics

import "time"

// RecordPreviewResolved records a preview resolution outcome.
// Outcome must be one of: success, cache_hit, forbidden, timeout,
// not_found, transport, unexpected.
func RecordPreviewResolved(outcome string) {
	PreviewResolutionsTotal.WithLabelValues(outcome).Inc()
}

// RecordPreviewResolveDuration records the latency of a successful
// resolution, fetch and parse included.
func RecordPreviewResolveDuration(duration time.Duration) {
	PreviewResolveDuration.Observe(duration.Seconds())
}

// RecordMetadataFetch records the result of an outbound metadata fetch.
// size is the body size in bytes; pass 0 when no body was read.
func RecordMetadataFetch(success bool, size int, _ time.Duration) {
	result := "success"
	if !success {
		result = "failure"
	}
	MetadataFetchesTotal.WithLabelValues(result).Inc()
	if size > 0 {
		MetadataFetchSize.Observe(float64(size))
	}
}

// RecordPreviewPersist records the terminal state of a background preview
// persistence job. Result is success, fallback, or abandoned. Duration is
// only observed for the success path.
func RecordPreviewPersist(result string, duration time.Duration) {
	PreviewPersistJobsTotal.WithLabelValues(result).Inc()
	if result == "success" && duration > 0 {
		PreviewPersistDuration.Observe(duration.Seconds())
	}
}

// RecordImageRehost records a preview image re-host attempt.
func RecordImageRehost(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	ImageRehostsTotal.WithLabelValues(result).Inc()
}

// RecordLinkCreated records a link creation and whether a background
// preview job was dispatched for it.
func RecordLinkCreated(previewDispatched bool) {
	dispatched := "false"
	if previewDispatched {
		dispatched = "true"
	}
	LinksCreatedTotal.WithLabelValues(dispatched).Inc()
}

// RecordOperationDuration records the duration of a named database operation.
func RecordOperationDuration(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
