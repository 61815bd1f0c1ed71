// Package metadata provides the HTTP implementation of link preview
// metadata fetching and HTML extraction.
package metadata

import (
	"errors"
	"fmt"
	"net"
	"net/url"
)

// ErrPrivateIP is returned when a hostname resolves to a private, loopback,
// or link-local address and private IP access is denied.
var ErrPrivateIP = errors.New("URL resolves to a private IP address")

// ErrTooManyRedirects is returned when a fetch exceeds the redirect limit.
var ErrTooManyRedirects = errors.New("too many redirects")

// validateTarget validates a URL for security before making an HTTP request.
// This function prevents Server-Side Request Forgery (SSRF) attacks by:
//   - Checking URL scheme (only http/https allowed)
//   - Resolving DNS to check for private IP addresses
//   - Blocking access to loopback, private, and link-local addresses
//
// Blocked IP ranges (when denyPrivateIPs is true):
//   - 127.0.0.0/8 (loopback)
//   - 10.0.0.0/8 (private)
//   - 172.16.0.0/12 (private)
//   - 192.168.0.0/16 (private)
//   - 169.254.0.0/16 (link-local)
//   - ::1 (IPv6 loopback)
//   - fc00::/7 (IPv6 private)
//   - fe80::/10 (IPv6 link-local)
func validateTarget(u *url.URL, denyPrivateIPs bool) error {
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme '%s' not allowed (only http/https)", u.Scheme)
	}

	hostname := u.Hostname()
	if hostname == "" {
		return errors.New("empty hostname")
	}

	if !denyPrivateIPs {
		return nil
	}

	// DNS resolution to check for private IPs. This prevents SSRF attacks
	// where a link URL points into the internal network.
	ips, err := net.LookupIP(hostname)
	if err != nil {
		return fmt.Errorf("DNS lookup failed for %s: %w", hostname, err)
	}

	for _, ip := range ips {
		if isPrivateIP(ip) {
			return fmt.Errorf("%w: hostname '%s' resolves to %s", ErrPrivateIP, hostname, ip.String())
		}
	}

	return nil
}

// isPrivateIP checks if an IP address is in a private or loopback range.
// Supports both IPv4 and IPv6 addresses.
//
// Reference:
//   - https://tools.ietf.org/html/rfc1918 (Private IPv4)
//   - https://tools.ietf.org/html/rfc4193 (Private IPv6)
//   - https://tools.ietf.org/html/rfc3927 (Link-local IPv4)
//   - https://tools.ietf.org/html/rfc4291 (Link-local IPv6)
func isPrivateIP(ip net.IP) bool {
	if ip.IsLoopback() {
		return true
	}
	if ip.IsPrivate() {
		return true
	}
	if ip.IsLinkLocalUnicast() {
		return true
	}
	return false
}
