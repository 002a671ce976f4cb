package models

import (
	"time"
)

// Operation is the kind of write a queued mutation replays against the
// remote store.
type Operation string

const (
	OperationInsert Operation = "insert"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// Valid reports whether op is one of the supported operations.
func (op Operation) Valid() bool {
	switch op {
	case OperationInsert, OperationUpdate, OperationDelete:
		return true
	}
	return false
}

// QueueStatus is the lifecycle state of a [QueueEntry].
type QueueStatus string

const (
	StatusPending   QueueStatus = "pending"
	StatusSyncing   QueueStatus = "syncing"
	StatusFailed    QueueStatus = "failed"
	StatusCompleted QueueStatus = "completed"
)

// Terminal reports whether entries in this status are no longer drained
// automatically and may be removed by housekeeping.
func (s QueueStatus) Terminal() bool {
	return s == StatusFailed || s == StatusCompleted
}

// Valid reports whether s is a known queue status.
func (s QueueStatus) Valid() bool {
	switch s {
	case StatusPending, StatusSyncing, StatusFailed, StatusCompleted:
		return true
	}
	return false
}

// QueueEntry is one pending offline mutation persisted in the sync queue.
type QueueEntry struct {
	// ID is the auto-incremented row identifier assigned by the local store.
	ID int64 `json:"id"`

	// LocalID is the client-generated token used for idempotency and tracing.
	// Optimistic local records created for inserts use it as their record id.
	LocalID string `json:"local_id"`

	Table     string    `json:"table"`
	Operation Operation `json:"operation"`

	// RecordID identifies the remote record for update and delete. It is
	// empty for inserts unless the caller supplied one.
	RecordID string `json:"record_id,omitempty"`

	// Payload is captured at enqueue time, after the safety guard ran.
	Payload Payload `json:"payload"`

	Status  QueueStatus `json:"status"`
	Retries int         `json:"retries"`

	CreatedAt time.Time `json:"created_at"`

	// NextAttemptAt is the not-before time of the next replay attempt.
	// Nil means the entry is due immediately.
	NextAttemptAt *time.Time `json:"next_attempt_at,omitempty"`

	// Error holds the last failure message, if any.
	Error *string `json:"error,omitempty"`

	CompanyID string `json:"company_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
}

// ErrorMessage returns the last failure message or an empty string.
func (e QueueEntry) ErrorMessage() string {
	if e.Error == nil {
		return ""
	}
	return *e.Error
}

// EnqueueRequest describes a write the application wants to perform while
// the remote store may be unreachable.
type EnqueueRequest struct {
	Table     string    `json:"table"`
	Operation Operation `json:"operation"`
	Payload   Payload   `json:"payload"`

	// RecordID is used for update/delete when the payload has no "id" field.
	RecordID string `json:"record_id,omitempty"`

	// LocalID lets the caller choose the idempotency token. A UUIDv7 is
	// generated when it is empty.
	LocalID string `json:"local_id,omitempty"`

	CompanyID string `json:"company_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
}
