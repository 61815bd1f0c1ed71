package preview

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"linkdeck/internal/domain/entity"
	"linkdeck/internal/observability/metrics"
	"linkdeck/internal/observability/tracing"
	"linkdeck/internal/pkg/urlnorm"
)

// Service resolves preview metadata for a raw user-supplied URL. It is the
// single entry point consumed by the HTTP layer.
//
// Failure policy: once the URL itself validates, no fetch-side failure ever
// reaches the caller. Every classified fetch error, and anything unexpected,
// is converted into a degraded result carrying the fallback image. Metadata
// fetch failure must never block the user from adding a link.
type Service struct {
	Fetcher  MetadataFetcher
	Fallback FallbackImageProvider
	Cache    ResultCache // optional, nil disables caching
	Logger   *slog.Logger
}

// NewService creates a preview resolution service. cache may be nil.
func NewService(fetcher MetadataFetcher, fallback FallbackImageProvider, cache ResultCache, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return Service{
		Fetcher:  fetcher,
		Fallback: fallback,
		Cache:    cache,
		Logger:   logger,
	}
}

// ResolvePreview validates rawURL and resolves its preview metadata.
//
// The only error it returns is a *urlnorm.ValidationError for bad input,
// which the HTTP layer maps to a 400. Valid input always yields a preview:
// real metadata, or the degraded fallback shape when fetching failed. A
// successful extraction that found no image also gets the fallback image
// substituted, so image presence is guaranteed whenever the fallback source
// is available.
func (s *Service) ResolvePreview(ctx context.Context, rawURL string) (*entity.Preview, error) {
	normalized, err := urlnorm.Normalize(rawURL)
	if err != nil {
		return nil, err
	}
	target := normalized.String()

	if cached, ok := s.cacheGet(ctx, target); ok {
		metrics.RecordPreviewResolved("cache_hit")
		return cached, nil
	}

	start := time.Now()
	fetchCtx, span := tracing.StartSpan(ctx, "metadata.fetch",
		trace.WithAttributes(attribute.String("url.host", normalized.Host())))
	result, err := s.Fetcher.Fetch(fetchCtx, normalized)
	span.End()
	if err != nil {
		s.logFetchFailure(ctx, target, err)
		metrics.RecordPreviewResolved(resolveOutcome(err))
		return entity.DegradedPreview(target, s.fallbackImage(ctx)), nil
	}

	if result.Image == nil {
		if img := s.fallbackImage(ctx); img != "" {
			result.Image = &img
		}
	}

	metrics.RecordPreviewResolved("success")
	metrics.RecordPreviewResolveDuration(time.Since(start))
	s.cacheSet(ctx, target, result)
	return result, nil
}

// fallbackImage asks the provider for the placeholder image. The provider
// may itself fail, in which case the result simply has no image.
func (s *Service) fallbackImage(ctx context.Context) string {
	if s.Fallback == nil {
		return ""
	}
	img, err := s.Fallback.FallbackImage(ctx)
	if err != nil {
		s.Logger.Warn("fallback image unavailable", slog.Any("error", err))
		return ""
	}
	return img
}

func (s *Service) cacheGet(ctx context.Context, url string) (*entity.Preview, bool) {
	if s.Cache == nil {
		return nil, false
	}
	p, ok, err := s.Cache.Get(ctx, url)
	if err != nil {
		s.Logger.Warn("preview cache read failed", slog.String("url", url), slog.Any("error", err))
		return nil, false
	}
	return p, ok
}

func (s *Service) cacheSet(ctx context.Context, url string, p *entity.Preview) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Set(ctx, url, p); err != nil {
		s.Logger.Warn("preview cache write failed", slog.String("url", url), slog.Any("error", err))
	}
}

// logFetchFailure records the classified failure. Expected kinds log at
// info level since they are routine (hostile origins, dead links); anything
// unclassified logs at warn.
func (s *Service) logFetchFailure(ctx context.Context, url string, err error) {
	if mErr, ok := AsMetadataError(err); ok {
		s.Logger.InfoContext(ctx, "metadata fetch failed, serving fallback",
			slog.String("url", url),
			slog.String("kind", string(mErr.Kind)),
			slog.Int("status", mErr.Status))
		return
	}
	s.Logger.WarnContext(ctx, "unexpected preview failure, serving fallback",
		slog.String("url", url),
		slog.Any("error", err))
}

// resolveOutcome maps a fetch error to a metrics label.
func resolveOutcome(err error) string {
	if mErr, ok := AsMetadataError(err); ok {
		switch mErr.Kind {
		case KindForbidden:
			return "forbidden"
		case KindTimeout:
			return "timeout"
		case KindNotFound:
			return "not_found"
		case KindTransport:
			return "transport"
		}
	}
	return "unexpected"
}
