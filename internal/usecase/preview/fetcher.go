package preview

import (
	"context"

	"linkdeck/internal/domain/entity"
	"linkdeck/internal/pkg/urlnorm"
)

// MetadataFetcher fetches a page and extracts its preview metadata.
// Implementations must enforce their own fetch deadline, follow redirects,
// and report every failure as a *MetadataError; they never retry internally.
// On success the returned preview carries the final landed URL, which may
// differ from the requested one after redirects.
type MetadataFetcher interface {
	Fetch(ctx context.Context, url urlnorm.NormalizedURL) (*entity.Preview, error)
}

// FallbackImageProvider supplies the default placeholder image substituted
// whenever real extraction yields none. It may be backed by static storage
// and may fail; callers tolerate an empty result.
type FallbackImageProvider interface {
	FallbackImage(ctx context.Context) (string, error)
}

// ImageStore downloads an externally hosted image and re-hosts it so the
// persisted preview does not depend on the third-party origin staying
// reachable. Returns the stable URL of the stored copy.
type ImageStore interface {
	Upload(ctx context.Context, sourceImageURL string, linkID int64) (string, error)
}

// ResultCache caches resolved previews keyed by normalized URL. Both methods
// are best-effort: cache failures must never fail a resolution.
type ResultCache interface {
	Get(ctx context.Context, url string) (*entity.Preview, bool, error)
	Set(ctx context.Context, url string, p *entity.Preview) error
}
