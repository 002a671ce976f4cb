package adapter

import "errors"

var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("client unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrUnprocessableEntity = errors.New("unprocessable entity")
	ErrTooManyRequests     = errors.New("too many requests")
	ErrServerError         = errors.New("remote server error")

	// ErrTokenExpired is returned without a network call when the access
	// token has expired.
	ErrTokenExpired = errors.New("access token expired")

	// ErrInvalidRequest reports a call that cannot be expressed against the
	// remote store, such as an update without a record id.
	ErrInvalidRequest = errors.New("invalid remote request")

	ErrRemoteUnreachable = errors.New("remote store unreachable")
)
