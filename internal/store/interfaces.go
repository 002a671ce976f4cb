package store

import (
	"context"
	"time"

	"github.com/MKhiriev/go-offline-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// CacheRepository persists cached collections and their sync metadata.
type CacheRepository interface {
	// ReadRecords returns the records of table visible to companyID that
	// match filter.
	ReadRecords(ctx context.Context, table, companyID string, filter models.Filter) ([]models.Record, error)
	// GetRecord returns one cached record or ErrRecordNotFound.
	GetRecord(ctx context.Context, table, id string) (models.Record, error)
	// GetMetadata returns the sync metadata of (table, companyID) or
	// ErrMetadataNotFound.
	GetMetadata(ctx context.Context, table, companyID string) (models.SyncMetadata, error)
	// ReplaceCollection replaces every record of (table, companyID) and
	// stamps the metadata in one transaction.
	ReplaceCollection(ctx context.Context, table, companyID string, records []models.Record, syncedAt time.Time) error
	// UpsertRecords inserts or overwrites the given records and stamps the
	// metadata in one transaction.
	UpsertRecords(ctx context.Context, table, companyID string, records []models.Record, syncedAt time.Time) error
	// DeleteMetadata forgets when (table, companyID) was refreshed so the
	// next read is stale.
	DeleteMetadata(ctx context.Context, table, companyID string) error
	// DeleteRecord removes one cached record.
	DeleteRecord(ctx context.Context, table, id string) error
}

// QueueRepository persists the offline mutation queue.
type QueueRepository interface {
	// Enqueue inserts entry and, when localRecord is not nil, writes the
	// optimistic local copy in the same transaction. A local record with an
	// empty payload deletes the cached copy instead.
	Enqueue(ctx context.Context, entry models.QueueEntry, localRecord *models.Record) (int64, error)
	// ListDue returns pending entries whose not-before time has passed,
	// oldest first.
	ListDue(ctx context.Context, now time.Time) ([]models.QueueEntry, error)
	Get(ctx context.Context, id int64) (models.QueueEntry, error)
	GetByLocalID(ctx context.Context, localID string) (models.QueueEntry, error)
	// MarkSyncing moves a pending entry to syncing. It returns
	// ErrEntryNotFound when the entry is gone or not pending.
	MarkSyncing(ctx context.Context, id int64) error
	UpdatePayload(ctx context.Context, id int64, payload models.Payload) error
	// MarkRetry puts an entry back to pending with the new retry count.
	MarkRetry(ctx context.Context, id int64, retries int, nextAttemptAt *time.Time, errMsg string) error
	MarkFailed(ctx context.Context, id int64, retries int, errMsg string, settledAt time.Time) error
	// MarkPending puts a syncing entry back to pending without touching its
	// retry count.
	MarkPending(ctx context.Context, id int64) error
	MarkCompleted(ctx context.Context, id int64, settledAt time.Time) error
	Delete(ctx context.Context, id int64) error
	CountByStatus(ctx context.Context, status models.QueueStatus) (int, error)
	// ResetFailed moves every failed entry back to pending with a cleared
	// retry count and error. It returns the number of reset entries.
	ResetFailed(ctx context.Context) (int, error)
	// RecoverSyncing moves entries left in syncing by an interrupted drain
	// back to pending. It returns the number of recovered entries.
	RecoverSyncing(ctx context.Context) (int, error)
	// List returns entries, optionally filtered by status, oldest first.
	// A zero limit means no limit.
	List(ctx context.Context, status models.QueueStatus, limit int) ([]models.QueueEntry, error)
}

// MaintenanceRepository runs housekeeping statements over the whole store.
type MaintenanceRepository interface {
	// DeleteTerminalEntriesBefore deletes completed and failed entries
	// created before cutoff. Pending and syncing entries are never touched.
	DeleteTerminalEntriesBefore(ctx context.Context, cutoff time.Time) (int, error)
	// DeleteMetadataBefore deletes sync metadata refreshed before cutoff.
	DeleteMetadataBefore(ctx context.Context, cutoff time.Time) (int, error)
	// UsageBytes reports the size of the database file.
	UsageBytes(ctx context.Context) (int64, error)
}
