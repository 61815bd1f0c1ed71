// Package preview provides use cases for resolving link preview metadata.
// It owns the closed error taxonomy shared between the metadata fetcher, the
// resolution orchestrator, and the background persistence job.
package preview

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a metadata fetch failure. The enumeration is closed:
// the fetcher is the only producer, and callers switch exhaustively instead
// of matching on message strings.
type ErrorKind string

const (
	// KindForbidden means the origin actively blocked the request (HTTP 403).
	KindForbidden ErrorKind = "FORBIDDEN"

	// KindTimeout means no response arrived within the fetch deadline.
	KindTimeout ErrorKind = "TIMEOUT"

	// KindNotFound means the target page does not exist (HTTP 404).
	KindNotFound ErrorKind = "NOT_FOUND"

	// KindTransport covers every other network or HTTP failure and carries
	// the raw status code when one was received.
	KindTransport ErrorKind = "TRANSPORT"
)

// MetadataError is the tagged failure type produced by the metadata fetcher.
type MetadataError struct {
	Kind   ErrorKind
	Status int    // HTTP status when one was received, 0 otherwise
	URL    string // URL that was being fetched
	Err    error  // underlying cause, may be nil
}

// Error formats the failure for logs. The kind tag leads so grepping by
// classification stays cheap.
func (e *MetadataError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: HTTP %d fetching %s", e.Kind, e.Status, e.URL)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: fetching %s: %v", e.Kind, e.URL, e.Err)
	}
	return fmt.Sprintf("%s: fetching %s", e.Kind, e.URL)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *MetadataError) Unwrap() error { return e.Err }

// AsMetadataError extracts a *MetadataError from an error chain.
func AsMetadataError(err error) (*MetadataError, bool) {
	var mErr *MetadataError
	if errors.As(err, &mErr) {
		return mErr, true
	}
	return nil, false
}
