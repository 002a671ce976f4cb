package server

import (
	"context"
	"net"
)

// Server defines the lifecycle contract of the process runner.
//
// Implementations block in [Server.RunServer] until ctx is cancelled or a
// termination signal arrives, then release resources in [Server.Shutdown].
type Server interface {
	// RunServer starts serving and blocks until the server stops.
	RunServer(ctx context.Context) error

	// Shutdown gracefully stops the HTTP listener and the workers.
	Shutdown()

	// Addr returns the address the HTTP listener is bound to, or nil while
	// it is not listening.
	Addr() net.Addr
}
