// Package responsewriter wraps http.ResponseWriter so middleware can
// observe the status code and body size after the handler has run.
// Access logging and the Prometheus middleware both rely on it.
package responsewriter

import "net/http"

// ResponseWriter records the outcome of a response as it is written.
// The zero value is not usable; construct one with Wrap.
type ResponseWriter struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

// Wrap returns a recording wrapper around w. Until the handler writes
// anything the recorded status is 200, matching net/http's implicit
// default.
func Wrap(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{ResponseWriter: w, status: http.StatusOK}
}

// WriteHeader records the first status code written. Duplicate calls
// are dropped so a late WriteHeader from a confused handler cannot
// corrupt what gets logged.
func (w *ResponseWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.status = status
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(status)
}

// Write forwards to the wrapped writer and accumulates the byte count.
func (w *ResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// StatusCode reports the status sent to the client.
func (w *ResponseWriter) StatusCode() int {
	return w.status
}

// BytesWritten reports the size of the body sent to the client.
func (w *ResponseWriter) BytesWritten() int {
	return w.bytes
}

// Unwrap exposes the underlying writer so http.ResponseController can
// reach flushers and hijackers through the wrapper.
func (w *ResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
