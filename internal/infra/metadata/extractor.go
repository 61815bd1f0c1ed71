package metadata

import (
	"fmt"
	"net/url"
	"strings"

	"linkdeck/internal/domain/entity"

	"github.com/PuerkitoBio/goquery"
)

// ExtractPreview parses an HTML document and extracts preview metadata.
// Each field walks its own priority chain, so one ecosystem's absence never
// blocks another's:
//
//	title:       og:title -> twitter:title -> <title>
//	description: og:description -> twitter:description -> meta[name=description]
//	image:       og:image -> twitter:image -> twitter:image:src
//	logo:        first of link[rel=icon|shortcut icon|apple-touch-icon]
//
// Image and logo URLs are resolved against baseURL before being returned.
// A field with no candidate stays nil; extraction itself never fails on
// missing metadata, only on unparseable input.
func ExtractPreview(html string, baseURL string) (*entity.Preview, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	title := firstOf(
		metaProperty(doc, "og:title"),
		metaProperty(doc, "twitter:title"),
		metaName(doc, "twitter:title"),
		nonEmpty(strings.TrimSpace(doc.Find("title").First().Text())),
	)

	description := firstOf(
		metaProperty(doc, "og:description"),
		metaProperty(doc, "twitter:description"),
		metaName(doc, "twitter:description"),
		metaName(doc, "description"),
	)

	image := firstOf(
		metaProperty(doc, "og:image"),
		metaProperty(doc, "twitter:image"),
		metaName(doc, "twitter:image"),
		metaName(doc, "twitter:image:src"),
	)
	if image != nil {
		resolved := resolveURL(*image, baseURL)
		image = &resolved
	}

	var logo *string
	if href, ok := doc.Find(`link[rel="icon"], link[rel="shortcut icon"], link[rel="apple-touch-icon"]`).First().Attr("href"); ok && href != "" {
		resolved := resolveURL(href, baseURL)
		logo = &resolved
	}

	return &entity.Preview{
		Title:       title,
		Description: description,
		Image:       image,
		Logo:        logo,
		URL:         baseURL,
	}, nil
}

// metaProperty returns the content of <meta property="..."> or nil.
func metaProperty(doc *goquery.Document, property string) *string {
	if val, ok := doc.Find(fmt.Sprintf(`meta[property=%q]`, property)).First().Attr("content"); ok && val != "" {
		return &val
	}
	return nil
}

// metaName returns the content of <meta name="..."> or nil.
func metaName(doc *goquery.Document, name string) *string {
	if val, ok := doc.Find(fmt.Sprintf(`meta[name=%q]`, name)).First().Attr("content"); ok && val != "" {
		return &val
	}
	return nil
}

// firstOf returns the first non-nil candidate.
func firstOf(candidates ...*string) *string {
	for _, c := range candidates {
		if c != nil {
			return c
		}
	}
	return nil
}

// nonEmpty lifts a string to a pointer, mapping "" to nil.
func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// resolveURL resolves an extracted asset reference against the page URL.
// Resolution order:
//   - absolute http(s) URLs pass through unchanged
//   - protocol-relative (//cdn...) gain https:
//   - root-relative (/img...) gain the page's scheme and host
//   - anything else resolves as a relative reference
//
// On any failure the original reference is returned untouched; a broken
// asset URL degrades one field, never the whole extraction.
func resolveURL(ref string, baseURL string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	if strings.HasPrefix(ref, "//") {
		return "https:" + ref
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return ref
	}
	if strings.HasPrefix(ref, "/") {
		return fmt.Sprintf("%s://%s%s", base.Scheme, base.Host, ref)
	}
	rel, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(rel).String()
}
