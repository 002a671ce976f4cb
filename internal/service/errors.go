package service

import "errors"

var (
	// ErrInvalidRequest reports a request missing its collection name.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvalidOperation reports an operation other than insert, update or
	// delete.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrMalformedEntry reports a mutation that can never be replayed, such
	// as an update without a record id. Retrying it cannot help.
	ErrMalformedEntry = errors.New("malformed queue entry")

	ErrOffline = errors.New("remote store offline")

	// ErrNoRemote reports an operation that needs a remote store in a
	// cache-only deployment.
	ErrNoRemote = errors.New("remote store not configured")
)
