// Package fallback supplies the default placeholder image used when
// metadata extraction yields no usable image.
package fallback

import (
	"context"
	"os"
)

// defaultImagePath is served by the static file layer of the frontend.
const defaultImagePath = "/images/default-link-preview.png"

// StaticProvider implements preview.FallbackImageProvider with a fixed URL.
// The URL is built from the PUBLIC_BASE_URL environment variable so the
// placeholder resolves correctly behind any deployment hostname.
type StaticProvider struct {
	imageURL string
}

// NewStaticProvider creates a provider serving the configured placeholder.
// When imageURL is empty it falls back to PUBLIC_BASE_URL plus the bundled
// default path, and to a bare relative path when that is unset too.
func NewStaticProvider(imageURL string) *StaticProvider {
	if imageURL == "" {
		imageURL = os.Getenv("PUBLIC_BASE_URL") + defaultImagePath
	}
	return &StaticProvider{imageURL: imageURL}
}

// FallbackImage returns the placeholder image URL.
func (p *StaticProvider) FallbackImage(_ context.Context) (string, error) {
	return p.imageURL, nil
}
