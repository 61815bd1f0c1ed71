package pathutil

import (
	"errors"
	"strconv"
)

// ErrInvalidID is returned when a path segment is not a positive
// integer ID.
var ErrInvalidID = errors.New("invalid id")

// ParseID parses a mux wildcard value as an int64 ID. IDs are always
// positive; zero and negative values are rejected along with anything
// non-numeric.
func ParseID(segment string) (int64, error) {
	id, err := strconv.ParseInt(segment, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}
