// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import "context"

// Client defines the lifecycle contract of the assembled runtime.
type Client interface {
	// Serve runs the workers and the HTTP API until ctx is done or a
	// termination signal arrives.
	Serve(ctx context.Context) error

	// Monitor runs the workers behind the terminal monitor until the user
	// quits.
	Monitor(ctx context.Context) error

	// Close releases the local store.
	Close() error
}
