package service

import (
	"context"
	"time"

	"github.com/MKhiriev/go-offline-keeper/models"
)

// CacheReader serves reads from the local store and persists remote fetch
// results handed to it. It never calls the remote store.
type CacheReader interface {
	// Read returns the cached records of a collection. Fresh is false when
	// the collection was never refreshed or its TTL has elapsed; records are
	// returned regardless so the caller may show them flagged as stale.
	Read(ctx context.Context, req models.ReadRequest) models.ReadResult

	// CommitRefresh replaces the cached collection with records and stamps
	// its sync metadata in one transaction.
	CommitRefresh(ctx context.Context, table, companyID string, records []models.Record) error

	// CommitPartial upserts records into the cached collection and stamps
	// its sync metadata in one transaction.
	CommitPartial(ctx context.Context, table, companyID string, records []models.Record) error

	// Invalidate forgets when the collection was refreshed so the next read
	// is stale.
	Invalidate(ctx context.Context, table, companyID string) error

	// LastSyncTime returns when the collection was last refreshed, or nil.
	LastSyncTime(ctx context.Context, table, companyID string) *time.Time
}

// MutationQueue is the offline write path.
type MutationQueue interface {
	// Enqueue persists a pending mutation and returns its local id. It
	// returns store.ErrStorageUnavailable when the local store is absent;
	// the caller must then treat the mutation as lost.
	Enqueue(ctx context.Context, req models.EnqueueRequest) (string, error)

	// PendingCount and FailedCount return zero when the store is absent.
	PendingCount(ctx context.Context) int
	FailedCount(ctx context.Context) int

	// List returns queue entries, optionally of one status.
	List(ctx context.Context, status models.QueueStatus, limit int) ([]models.QueueEntry, error)
}

// SyncEngine drains the mutation queue against the remote store. Drains
// never return errors; every outcome is described by the report.
type SyncEngine interface {
	// ProcessQueue replays every due pending entry, oldest first. A call made
	// while another drain runs returns immediately with Skipped set.
	ProcessQueue(ctx context.Context) models.SyncReport

	// RetryFailed moves every failed entry back to pending with a cleared
	// retry count, then drains.
	RetryFailed(ctx context.Context) models.SyncReport

	// Status returns the current queue counts and engine state.
	Status(ctx context.Context) models.SyncStatus
}

// Housekeeping compacts the local store.
type Housekeeping interface {
	// Cleanup deletes terminal queue entries and sync metadata older than
	// the retention window.
	Cleanup(ctx context.Context) models.CleanupReport

	// EstimateStorageUsage reports local store usage against the soft cap.
	// Known is false when usage cannot be determined.
	EstimateStorageUsage(ctx context.Context) models.StorageUsage
}

// QueryService is the network-first read path with a cache fallback.
type QueryService interface {
	// Query serves fresh cached data, otherwise fetches from the remote
	// store and commits the result. When offline or when the fetch fails it
	// falls back to the cached records with FromCache set.
	Query(ctx context.Context, req models.ReadRequest) models.ReadResult

	// Preload refreshes the reference collections of a company concurrently.
	Preload(ctx context.Context, companyID string) error
}

// SessionService carries the user session of the browser client over to
// the remote store.
type SessionService interface {
	// SetToken replaces the access token used for replays and fetches. It
	// returns ErrNoRemote in a cache-only deployment.
	SetToken(ctx context.Context, token string) error

	// UserID is the subject of the current token, empty when unknown.
	UserID() string
}

// Connectivity reports whether the remote store is believed reachable.
type Connectivity interface {
	Online() bool
}

// UsageEstimator reports the size of the local store. It is optional: not
// every platform can tell.
type UsageEstimator interface {
	UsageBytes(ctx context.Context) (int64, error)
}

// Observer receives drain outcomes and queue status, typically to export
// them as metrics.
type Observer interface {
	ObserveDrain(report models.SyncReport, took time.Duration)
	ObserveStatus(status models.SyncStatus)
}

// IDGenerator produces local ids for queued mutations.
type IDGenerator interface {
	Generate() string
}
