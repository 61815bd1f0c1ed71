// Package repository defines persistence interfaces consumed by the use case
// layer. Concrete implementations live under internal/infra/adapter.
package repository

import (
	"context"

	"linkdeck/internal/domain/entity"
)

// PreviewUpdate carries the preview fields the background job writes back
// onto a link after creation. Nil fields are persisted as NULL.
type PreviewUpdate struct {
	PreviewImageURL    *string
	PreviewDescription *string
}

type LinkRepository interface {
	// ListByProfile retrieves a profile's links ordered by position.
	ListByProfile(ctx context.Context, profileID int64) ([]*entity.Link, error)
	Get(ctx context.Context, id int64) (*entity.Link, error)
	Create(ctx context.Context, link *entity.Link) error
	Update(ctx context.Context, link *entity.Link) error
	Delete(ctx context.Context, id int64) error
	// DeleteByProfile removes all of a profile's links. Used by the bulk
	// replace operation before re-creating the submitted set.
	DeleteByProfile(ctx context.Context, profileID int64) error
	// UpdatePreview persists the background job's result onto a single link
	// row. Callers never retry; failure is logged and the link stays without
	// preview data.
	UpdatePreview(ctx context.Context, id int64, update PreviewUpdate) error
}
