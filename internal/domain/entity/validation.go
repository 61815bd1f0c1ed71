package entity

import "fmt"

const (
	// maxTitleLength bounds link titles to keep profile rendering sane.
	maxTitleLength = 100

	// maxIconLength bounds the stored icon reference.
	maxIconLength = 2048
)

// ValidateLink checks the user-editable fields of a link.
// URL format validation is handled separately by the URL normalizer so that
// every boundary shares a single implementation.
func ValidateLink(link *Link) error {
	if link.Title == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if len(link.Title) > maxTitleLength {
		return &ValidationError{
			Field:   "title",
			Message: fmt.Sprintf("title must not exceed %d characters", maxTitleLength),
		}
	}
	if len(link.Icon) > maxIconLength {
		return &ValidationError{
			Field:   "icon",
			Message: fmt.Sprintf("icon must not exceed %d characters", maxIconLength),
		}
	}
	if link.Position < 0 {
		return &ValidationError{Field: "position", Message: "position cannot be negative"}
	}
	return nil
}
