// Package link provides use cases for managing profile links.
// It implements business logic for creating, updating, deleting, and
// querying links, including validation and background preview dispatch.
package link

import "errors"

// Sentinel errors for link use case operations.
var (
	// ErrLinkNotFound indicates that the requested link was not found.
	ErrLinkNotFound = errors.New("link not found")

	// ErrInvalidLinkID indicates that the provided link ID is invalid.
	// Link IDs must be positive integers.
	ErrInvalidLinkID = errors.New("invalid link ID")

	// ErrInvalidProfileID indicates that the provided profile ID is invalid.
	ErrInvalidProfileID = errors.New("invalid profile ID")
)
