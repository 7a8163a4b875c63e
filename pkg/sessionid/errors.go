package sessionid

import "errors"

var (
	// ErrInvalidLength is returned when the requested length is less than 1.
	ErrInvalidLength = errors.New("sessionid.invalid_length")

	// ErrRandomSource wraps failures of the system random source.
	ErrRandomSource = errors.New("sessionid.random_source_failed")
)
