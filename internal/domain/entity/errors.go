package entity

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repositories when the requested link does
// not exist or belongs to a different profile. Handlers map it to 404
// without distinguishing the two cases.
var ErrNotFound = errors.New("not found")

// ValidationError reports a rejected field on a link so the frontend
// can attach the message to the right form input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
