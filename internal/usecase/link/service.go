package link

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"linkdeck/internal/domain/entity"
	"linkdeck/internal/observability/metrics"
	"linkdeck/internal/pkg/urlnorm"
	"linkdeck/internal/repository"
)

// replaceParallelism bounds concurrent inserts during a bulk replace.
const replaceParallelism = 8

// PreviewDispatcher triggers background preview resolution for a freshly
// created link. Dispatch returns immediately; the work happens after the
// creating request has already been answered. The context is only read
// for correlation metadata such as the request ID, never for deadlines.
type PreviewDispatcher interface {
	Dispatch(ctx context.Context, link *entity.Link)
}

// CreateInput represents the input parameters for creating a new link.
type CreateInput struct {
	ProfileID int64
	Title     string
	URL       string
	Icon      string
	Position  int
}

// UpdateInput represents the input parameters for updating an existing link.
// Fields with nil values will not be updated.
type UpdateInput struct {
	ID       int64
	Title    *string
	URL      *string
	Icon     *string
	Position *int
}

// Service provides link management use cases. It validates input, delegates
// persistence to the repository, and dispatches background preview
// resolution for links created without an explicit icon.
type Service struct {
	Repo     repository.LinkRepository
	Previews PreviewDispatcher // optional, nil disables preview dispatch
}

// ListByProfile retrieves a profile's links ordered by position.
func (s *Service) ListByProfile(ctx context.Context, profileID int64) ([]*entity.Link, error) {
	if profileID <= 0 {
		return nil, ErrInvalidProfileID
	}
	links, err := s.Repo.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	return links, nil
}

// Get retrieves a single link by its ID.
// Returns ErrInvalidLinkID if the ID is not positive.
// Returns ErrLinkNotFound if the link does not exist.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Link, error) {
	if id <= 0 {
		return nil, ErrInvalidLinkID
	}
	l, err := s.Repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("get link: %w", err)
	}
	return l, nil
}

// Create validates and persists a new link, then dispatches background
// preview resolution unless the user supplied their own icon. The stored
// URL is the normalized form, never the raw input.
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Link, error) {
	l, err := s.buildLink(in)
	if err != nil {
		return nil, err
	}

	if err := s.Repo.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("create link: %w", err)
	}

	dispatched := false
	if s.Previews != nil && !l.HasExplicitIcon() {
		s.Previews.Dispatch(ctx, l)
		dispatched = true
	}
	metrics.RecordLinkCreated(dispatched)

	return l, nil
}

// Update applies the non-nil fields of in to an existing link.
func (s *Service) Update(ctx context.Context, in UpdateInput) (*entity.Link, error) {
	if in.ID <= 0 {
		return nil, ErrInvalidLinkID
	}

	l, err := s.Get(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		l.Title = *in.Title
	}
	if in.URL != nil {
		normalized, err := urlnorm.Normalize(*in.URL)
		if err != nil {
			return nil, err
		}
		l.URL = normalized.String()
	}
	if in.Icon != nil {
		l.Icon = *in.Icon
	}
	if in.Position != nil {
		l.Position = *in.Position
	}

	if err := entity.ValidateLink(l); err != nil {
		return nil, err
	}

	if err := s.Repo.Update(ctx, l); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("update link: %w", err)
	}
	return l, nil
}

// Delete removes a link by its ID.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidLinkID
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return ErrLinkNotFound
		}
		return fmt.Errorf("delete link: %w", err)
	}
	return nil
}

// Replace swaps a profile's entire link set for the submitted one:
// existing links are removed, then the new set is inserted concurrently.
// Every input is validated before any write happens, so a bad entry
// rejects the whole batch up front. The delete and the inserts do not run
// in one transaction, so if an insert fails mid-batch the profile is left
// with a partial set and the caller should retry the replace. Returns the
// created links ordered by position.
func (s *Service) Replace(ctx context.Context, profileID int64, inputs []CreateInput) ([]*entity.Link, error) {
	if profileID <= 0 {
		return nil, ErrInvalidProfileID
	}

	// Validate everything up front.
	prepared := make([]*entity.Link, len(inputs))
	for i, in := range inputs {
		in.ProfileID = profileID
		l, err := s.buildLink(in)
		if err != nil {
			return nil, err
		}
		prepared[i] = l
	}

	if err := s.Repo.DeleteByProfile(ctx, profileID); err != nil {
		return nil, fmt.Errorf("replace links: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(replaceParallelism)
	for _, l := range prepared {
		g.Go(func() error {
			return s.Repo.Create(gctx, l)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("replace links: %w", err)
	}

	for _, l := range prepared {
		dispatched := false
		if s.Previews != nil && !l.HasExplicitIcon() {
			s.Previews.Dispatch(ctx, l)
			dispatched = true
		}
		metrics.RecordLinkCreated(dispatched)
	}

	sort.Slice(prepared, func(i, j int) bool {
		if prepared[i].Position != prepared[j].Position {
			return prepared[i].Position < prepared[j].Position
		}
		return prepared[i].ID < prepared[j].ID
	})
	return prepared, nil
}

// buildLink normalizes and validates one CreateInput into a Link ready for
// insertion.
func (s *Service) buildLink(in CreateInput) (*entity.Link, error) {
	if in.ProfileID <= 0 {
		return nil, ErrInvalidProfileID
	}

	normalized, err := urlnorm.Normalize(in.URL)
	if err != nil {
		return nil, err
	}

	l := &entity.Link{
		ProfileID: in.ProfileID,
		Title:     in.Title,
		URL:       normalized.String(),
		Icon:      in.Icon,
		Position:  in.Position,
	}
	if err := entity.ValidateLink(l); err != nil {
		return nil, err
	}
	return l, nil
}
