// Package urlnorm normalizes and validates user-supplied URLs.
// It is the single validation point consumed by every boundary that accepts
// a raw URL string, so the rules cannot drift between callers.
package urlnorm

import (
	"fmt"
	"net/url"
	"strings"
)

// maxURLLength bounds input size before any parsing work is done.
// 2083 matches the longest URL commonly accepted by browsers.
const maxURLLength = 2083

// ValidationError describes why a raw URL string was rejected.
// The message is safe to show to end users.
type ValidationError struct {
	Reason  string
	Message string
}

// Error returns the user-facing message.
func (e *ValidationError) Error() string { return e.Message }

// Rejection reasons. Empty input is deliberately distinct from malformed
// input so the form layer can render different hints.
const (
	ReasonRequired = "required"
	ReasonInvalid  = "invalid_format"
)

// ErrURLRequired is returned for empty or whitespace-only input.
var ErrURLRequired = &ValidationError{
	Reason:  ReasonRequired,
	Message: "URL parameter is required",
}

// ErrInvalidFormat is returned for present but malformed input.
var ErrInvalidFormat = &ValidationError{
	Reason:  ReasonInvalid,
	Message: "invalid URL format: provide a valid URL with a proper domain",
}

// NormalizedURL is a raw user string that passed normalization. The zero
// value is never valid; obtain one through Normalize.
type NormalizedURL struct {
	u *url.URL
}

// String returns the canonical absolute form of the URL.
func (n NormalizedURL) String() string {
	if n.u == nil {
		return ""
	}
	return n.u.String()
}

// Host returns the host component, including any port.
func (n NormalizedURL) Host() string {
	if n.u == nil {
		return ""
	}
	return n.u.Host
}

// Normalize validates a raw user-supplied URL string and returns its
// canonical absolute form. Input without an http:// or https:// prefix gets
// https:// prepended before validation. Pure function, no network access.
func Normalize(raw string) (NormalizedURL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return NormalizedURL{}, ErrURLRequired
	}
	if len(trimmed) > maxURLLength {
		return NormalizedURL{}, ErrInvalidFormat
	}

	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		// Any other explicit scheme (ftp, javascript, file, ...) is rejected
		// rather than silently rewritten.
		if strings.Contains(trimmed, "://") {
			return NormalizedURL{}, ErrInvalidFormat
		}
		trimmed = "https://" + trimmed
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return NormalizedURL{}, ErrInvalidFormat
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return NormalizedURL{}, ErrInvalidFormat
	}
	if u.Host == "" || u.Hostname() == "" {
		return NormalizedURL{}, ErrInvalidFormat
	}
	if strings.ContainsAny(u.Host, " \t") {
		return NormalizedURL{}, ErrInvalidFormat
	}

	// Canonical form always carries a path, matching what the fetch layer
	// will actually request.
	if u.Path == "" {
		u.Path = "/"
	}

	return NormalizedURL{u: u}, nil
}

// MustNormalize is a test helper that panics on validation failure.
func MustNormalize(raw string) NormalizedURL {
	n, err := Normalize(raw)
	if err != nil {
		panic(fmt.Sprintf("urlnorm: %q did not normalize: %v", raw, err))
	}
	return n
}
