package metadata

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"linkdeck/internal/domain/entity"
	"linkdeck/internal/observability/metrics"
	"linkdeck/internal/pkg/urlnorm"
	"linkdeck/internal/resilience/circuitbreaker"
	"linkdeck/internal/usecase/preview"
)

// HTTPFetcher implements the preview.MetadataFetcher interface.
// It fetches page HTML with browser-like request headers and extracts
// preview metadata from the response.
//
// Every failure is reported as a *preview.MetadataError with a closed
// classification; the fetcher never retries internally, so one caller
// request costs at most one origin request.
//
// Thread safety: HTTPFetcher is safe for concurrent use.
type HTTPFetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	config         Config
}

// NewHTTPFetcher creates a new HTTPFetcher with the given configuration.
//
// The fetcher is configured with:
//   - Custom HTTP client with timeout and TLS settings
//   - Circuit breaker for fault tolerance
//   - Redirect validation for security
//   - Browser-like headers to avoid bot blocking
func NewHTTPFetcher(config Config) *HTTPFetcher {
	breakerCfg := circuitbreaker.MetadataFetchConfig()
	breakerCfg.IsSuccessful = isBreakerSuccess

	fetcher := &HTTPFetcher{
		circuitBreaker: circuitbreaker.New(breakerCfg),
		config:         config,
	}

	// Each redirect target is validated for security (SSRF check).
	client := &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= fetcher.config.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", ErrTooManyRedirects, len(via))
			}
			if err := validateTarget(req.URL, fetcher.config.DenyPrivateIPs); err != nil {
				return fmt.Errorf("redirect target validation failed: %w", err)
			}
			return nil
		},
	}

	fetcher.client = client
	return fetcher
}

// Fetch retrieves the page at the given URL and extracts its preview
// metadata. This method implements the preview.MetadataFetcher interface.
//
// The fetch process:
//  1. Validates the target for security (SSRF prevention)
//  2. Executes the HTTP request through the circuit breaker
//  3. Classifies failures (403 forbidden, 404 not found, deadline timeout,
//     everything else transport)
//  4. Enforces the body size limit while reading the response
//  5. Extracts metadata from the HTML, keyed to the final landed URL
//
// The returned preview's URL is taken from the response's request URL, so
// after redirects it reflects where the page actually lives.
func (f *HTTPFetcher) Fetch(ctx context.Context, u urlnorm.NormalizedURL) (*entity.Preview, error) {
	urlStr := u.String()

	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, &preview.MetadataError{Kind: preview.KindTransport, URL: urlStr, Err: err}
	}
	if err := validateTarget(parsed, f.config.DenyPrivateIPs); err != nil {
		return nil, &preview.MetadataError{Kind: preview.KindTransport, URL: urlStr, Err: err}
	}

	result, err := f.circuitBreaker.Execute(func() (interface{}, error) {
		return f.doFetch(ctx, urlStr)
	})
	if err != nil {
		metrics.RecordMetadataFetch(false, 0, 0)
		return nil, f.classify(urlStr, err)
	}

	return result.(*entity.Preview), nil
}

// doFetch performs the actual HTTP request and metadata extraction.
// This is called by Fetch through the circuit breaker.
func (f *HTTPFetcher) doFetch(ctx context.Context, urlStr string) (interface{}, error) {
	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	setBrowserHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		if reqCtx.Err() == context.DeadlineExceeded {
			return nil, context.DeadlineExceeded
		}
		// Surface redirect validation failures directly.
		if urlErr, ok := err.(*url.Error); ok && urlErr.Err != nil {
			return nil, urlErr.Err
		}
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &statusError{status: resp.StatusCode}
	}

	// Read the body with a size limit to prevent memory exhaustion.
	limitedReader := io.LimitReader(resp.Body, f.config.MaxBodySize+1)
	htmlBytes, err := io.ReadAll(limitedReader)
	if err != nil {
		if reqCtx.Err() == context.DeadlineExceeded {
			return nil, context.DeadlineExceeded
		}
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if int64(len(htmlBytes)) > f.config.MaxBodySize {
		return nil, fmt.Errorf("response size exceeds limit %d bytes", f.config.MaxBodySize)
	}

	// The final URL may differ from the requested one after redirects.
	finalURL := urlStr
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	p, err := ExtractPreview(string(htmlBytes), finalURL)
	if err != nil {
		return nil, fmt.Errorf("extract metadata: %w", err)
	}

	metrics.RecordMetadataFetch(true, len(htmlBytes), time.Since(start))
	return p, nil
}

// isBreakerSuccess keeps expected per-origin outcomes out of the
// breaker's failure count. Bot walls (403) and dead links (404) are
// routine when fetching arbitrary third-party pages; counting them
// would let a burst of hostile origins trip the shared breaker and
// refuse fetches for healthy URLs. Only egress-level failures count.
func isBreakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	var sErr *statusError
	if errors.As(err, &sErr) {
		return sErr.status == http.StatusForbidden || sErr.status == http.StatusNotFound
	}
	return false
}

// statusError carries a non-2xx HTTP status out of the circuit breaker for
// classification.
type statusError struct {
	status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.status, http.StatusText(e.status))
}

// classify maps a raw fetch failure onto the closed MetadataError taxonomy.
// 403 and 404 get their own kinds, deadline expiry becomes a timeout, and
// everything else (including circuit-open rejections) is a transport error.
func (f *HTTPFetcher) classify(urlStr string, err error) *preview.MetadataError {
	var sErr *statusError
	if errors.As(err, &sErr) {
		switch sErr.status {
		case http.StatusForbidden:
			return &preview.MetadataError{Kind: preview.KindForbidden, Status: sErr.status, URL: urlStr, Err: err}
		case http.StatusNotFound:
			return &preview.MetadataError{Kind: preview.KindNotFound, Status: sErr.status, URL: urlStr, Err: err}
		default:
			return &preview.MetadataError{Kind: preview.KindTransport, Status: sErr.status, URL: urlStr, Err: err}
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &preview.MetadataError{Kind: preview.KindTimeout, URL: urlStr, Err: err}
	}

	return &preview.MetadataError{Kind: preview.KindTransport, URL: urlStr, Err: err}
}
