// Package pathutil holds small helpers for working with request paths:
// parsing wildcard IDs and collapsing ID-bearing paths into templates
// for metric labels.
package pathutil

import (
	"regexp"
	"strings"
)

// routeTemplates maps ID-bearing routes onto their template form, most
// specific first.
var routeTemplates = []struct {
	pattern  *regexp.Regexp
	template string
}{
	{regexp.MustCompile(`^/links/\d+$`), "/links/:id"},
	{regexp.MustCompile(`^/profiles/\d+/links$`), "/profiles/:id/links"},
	{regexp.MustCompile(`^/profiles/\d+$`), "/profiles/:id"},
}

// NormalizePath collapses per-entity paths into a template so metric
// labels stay bounded: "/links/123" and "/links/456" both become
// "/links/:id". Static paths such as /health or /preview pass through
// unchanged, as does anything that matches no known route.
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}
	path = strings.TrimSuffix(path, "/")
	if path == "" {
		path = "/"
	}

	for _, rt := range routeTemplates {
		if rt.pattern.MatchString(path) {
			return rt.template
		}
	}
	return path
}
