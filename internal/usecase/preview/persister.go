package preview

import (
	"context"
	"log/slog"
	"time"

	"linkdeck/internal/domain/entity"
	"linkdeck/internal/handler/http/requestid"
	"linkdeck/internal/observability/logging"
	"linkdeck/internal/observability/metrics"
	"linkdeck/internal/pkg/urlnorm"
	"linkdeck/internal/repository"
)

// TaskExecutor runs fire-and-forget units of work with their own error
// boundary, instead of unobserved dangling goroutines.
type TaskExecutor interface {
	Submit(name string, fn func(ctx context.Context))
}

// Persister is the background preview persistence job. It is triggered once
// per newly created link without an explicit icon, after the creation
// request has already returned. It re-runs fetch+extract directly (not via
// the orchestrator) so it can tell "no image found" apart from "fetch
// failed", re-hosts the discovered image, and writes the outcome onto the
// link row.
//
// Nothing awaits it and no error ever reaches the original request.
type Persister struct {
	Fetcher      MetadataFetcher
	Images       ImageStore
	Fallback     FallbackImageProvider
	Links        repository.LinkRepository
	Exec         TaskExecutor
	FetchTimeout time.Duration
	Logger       *slog.Logger
}

// NewPersister wires up the background job. fetchTimeout bounds the job's
// own fetch so a job can never retain resources indefinitely; zero selects
// the same 15 second deadline the synchronous path uses.
func NewPersister(
	fetcher MetadataFetcher,
	images ImageStore,
	fallback FallbackImageProvider,
	links repository.LinkRepository,
	exec TaskExecutor,
	fetchTimeout time.Duration,
	logger *slog.Logger,
) *Persister {
	if fetchTimeout <= 0 {
		fetchTimeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Persister{
		Fetcher:      fetcher,
		Images:       images,
		Fallback:     fallback,
		Links:        links,
		Exec:         exec,
		FetchTimeout: fetchTimeout,
		Logger:       logger,
	}
}

// Dispatch submits the persistence job for a freshly created link and
// returns immediately. Links with an explicit icon are skipped. The
// originating request's ID is carried into the job so its log lines can
// be correlated with the create request.
func (p *Persister) Dispatch(ctx context.Context, link *entity.Link) {
	if link == nil || link.HasExplicitIcon() {
		return
	}
	// Copy what the job needs; the caller's link may be mutated after return.
	id := link.ID
	rawURL := link.URL
	reqID := requestid.FromContext(ctx)
	p.Exec.Submit("link-preview-persist", func(jobCtx context.Context) {
		if reqID != "" {
			jobCtx = requestid.WithRequestID(jobCtx, reqID)
		}
		p.persist(jobCtx, id, rawURL)
	})
}

// persist runs the single attempt. Recovery is two-tiered: if the primary
// fetch/extract/re-host sequence fails, it still tries to write the fallback
// image alone; if that secondary write also fails, it logs and gives up,
// leaving the link without preview data.
func (p *Persister) persist(ctx context.Context, linkID int64, rawURL string) {
	logger := logging.WithRequestID(ctx, p.Logger).With(
		slog.Int64("link_id", linkID), slog.String("url", rawURL))
	start := time.Now()

	update, err := p.buildUpdate(ctx, logger, linkID, rawURL)
	if err != nil {
		logger.Warn("preview resolution failed, persisting fallback only", slog.Any("error", err))
		p.persistFallbackOnly(ctx, logger, linkID)
		return
	}

	if err := p.Links.UpdatePreview(ctx, linkID, update); err != nil {
		logger.Warn("preview persist failed, persisting fallback only", slog.Any("error", err))
		p.persistFallbackOnly(ctx, logger, linkID)
		return
	}

	metrics.RecordPreviewPersist("success", time.Since(start))
	logger.Info("link preview persisted",
		slog.Bool("has_image", update.PreviewImageURL != nil),
		slog.Bool("has_description", update.PreviewDescription != nil),
		slog.Duration("duration", time.Since(start)))
}

// buildUpdate fetches metadata and prepares the row update. A discovered
// image is re-hosted through the image store; re-host failure and "no image
// found" both resolve to the fallback image, but are logged distinctly.
func (p *Persister) buildUpdate(ctx context.Context, logger *slog.Logger, linkID int64, rawURL string) (repository.PreviewUpdate, error) {
	normalized, err := urlnorm.Normalize(rawURL)
	if err != nil {
		return repository.PreviewUpdate{}, err
	}

	fetchCtx, cancel := context.WithTimeout(ctx, p.FetchTimeout)
	defer cancel()

	result, err := p.Fetcher.Fetch(fetchCtx, normalized)
	if err != nil {
		return repository.PreviewUpdate{}, err
	}

	update := repository.PreviewUpdate{PreviewDescription: result.Description}

	if result.Image != nil {
		hosted, err := p.Images.Upload(ctx, *result.Image, linkID)
		if err != nil || hosted == "" {
			logger.Warn("image re-host failed, using fallback image",
				slog.String("image_url", *result.Image),
				slog.Any("error", err))
		} else {
			update.PreviewImageURL = &hosted
		}
	} else {
		logger.Debug("no preview image found, using fallback image")
	}

	if update.PreviewImageURL == nil {
		if img := p.fallbackImage(ctx); img != "" {
			update.PreviewImageURL = &img
		}
	}

	return update, nil
}

// persistFallbackOnly is the second recovery tier: write just the fallback
// image so the link at least renders a placeholder card.
func (p *Persister) persistFallbackOnly(ctx context.Context, logger *slog.Logger, linkID int64) {
	img := p.fallbackImage(ctx)
	if img == "" {
		metrics.RecordPreviewPersist("abandoned", 0)
		logger.Warn("no fallback image available, link stays without preview data")
		return
	}
	if err := p.Links.UpdatePreview(ctx, linkID, repository.PreviewUpdate{PreviewImageURL: &img}); err != nil {
		metrics.RecordPreviewPersist("abandoned", 0)
		logger.Error("fallback preview persist failed, giving up", slog.Any("error", err))
		return
	}
	metrics.RecordPreviewPersist("fallback", 0)
}

func (p *Persister) fallbackImage(ctx context.Context) string {
	if p.Fallback == nil {
		return ""
	}
	img, err := p.Fallback.FallbackImage(ctx)
	if err != nil {
		p.Logger.Warn("fallback image unavailable", slog.Any("error", err))
		return ""
	}
	return img
}
