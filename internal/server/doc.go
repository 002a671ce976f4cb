// Package server runs the local API and the background workers of the
// offline keeper.
//
// It owns their lifecycle: startup, signal handling, and graceful shutdown
// of the HTTP listener followed by the workers.
package server
