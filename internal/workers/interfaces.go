// Package workers runs the background jobs of the offline store: the
// periodic queue drain, the connectivity monitor that drains on reconnect,
// and the scheduled housekeeping.
package workers

import (
	"context"

	"github.com/MKhiriev/go-offline-keeper/models"
)

// Worker is a background job.
//
// Start launches the job and returns immediately; the job runs until ctx is
// cancelled or Stop is called. Stop blocks until the job has fully exited
// and is a no-op when the job is not running.
type Worker interface {
	Start(ctx context.Context)
	Stop()
}

// Pinger probes the remote store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// UsageObserver receives housekeeping outcomes, typically to export them as
// metrics.
type UsageObserver interface {
	ObserveCleanup(report models.CleanupReport)
	ObserveStorage(usage models.StorageUsage)
}
