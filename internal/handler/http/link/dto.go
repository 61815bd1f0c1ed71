// Package link provides HTTP handlers for link management endpoints.
// It includes handlers for listing, creating, updating, deleting, and
// bulk-replacing a profile's links.
package link

import (
	"time"

	"linkdeck/internal/domain/entity"
)

// DTO represents the JSON structure for link data transfer.
type DTO struct {
	ID                 int64     `json:"id"`
	ProfileID          int64     `json:"profile_id"`
	Title              string    `json:"title"`
	URL                string    `json:"url"`
	Icon               string    `json:"icon,omitempty"`
	Position           int       `json:"position"`
	PreviewImageURL    *string   `json:"preview_image_url"`
	PreviewDescription *string   `json:"preview_description"`
	CreatedAt          time.Time `json:"created_at"`
}

func toDTO(l *entity.Link) DTO {
	return DTO{
		ID:                 l.ID,
		ProfileID:          l.ProfileID,
		Title:              l.Title,
		URL:                l.URL,
		Icon:               l.Icon,
		Position:           l.Position,
		PreviewImageURL:    l.PreviewImageURL,
		PreviewDescription: l.PreviewDescription,
		CreatedAt:          l.CreatedAt,
	}
}

func toDTOs(links []*entity.Link) []DTO {
	out := make([]DTO, 0, len(links))
	for _, l := range links {
		out = append(out, toDTO(l))
	}
	return out
}
