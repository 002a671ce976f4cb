package models

import "time"

// Reasons a drain did not run.
const (
	SkipInFlight           = "in_flight"
	SkipOffline            = "offline"
	SkipStorageUnavailable = "storage"
)

// SyncReport summarises one drain of the sync queue.
type SyncReport struct {
	// Synced is the number of entries delivered to the remote store.
	Synced int `json:"synced"`

	// Failed is the number of entries that reached the failed status
	// during this drain.
	Failed int `json:"failed"`

	// Pending is the number of entries still pending once the drain ended.
	Pending int `json:"pending"`

	// Errors holds one message per failed attempt, in processing order.
	Errors []string `json:"errors"`

	// Skipped is set when the drain did not run at all.
	Skipped string `json:"skipped,omitempty"`
}

// SyncStatus is a point-in-time view of the queue used for UI badges.
type SyncStatus struct {
	PendingCount int        `json:"pending_count"`
	FailedCount  int        `json:"failed_count"`
	IsSyncing    bool       `json:"is_syncing"`
	Online       bool       `json:"online"`
	LastSyncAt   *time.Time `json:"last_sync_at,omitempty"`
}
