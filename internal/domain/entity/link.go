// Package entity defines the core domain entities and validation logic for the application.
// It contains the fundamental business objects such as Link and Preview, along with
// their validation rules and domain-specific errors.
package entity

import "time"

// Link represents a single entry on a user's public profile page.
// Preview fields are absent at creation time and populated once by the
// background preview persistence job.
type Link struct {
	ID                 int64
	ProfileID          int64
	Title              string
	URL                string
	Icon               string
	Position           int
	PreviewImageURL    *string
	PreviewDescription *string
	CreatedAt          time.Time
}

// HasExplicitIcon reports whether the user supplied their own icon for the
// link. Links with an explicit icon skip background preview resolution.
func (l *Link) HasExplicitIcon() bool {
	return l.Icon != ""
}
