package http

import "errors"

var (
	// ErrInvalidJSON is returned for request bodies that cannot be decoded.
	ErrInvalidJSON = errors.New("invalid JSON was passed")

	// ErrInvalidQuery is returned for malformed query string parameters.
	ErrInvalidQuery = errors.New("invalid query parameter")
)
