package tui

import "github.com/MKhiriev/go-offline-keeper/models"

// statusMsg carries a status pushed by the engine.
type statusMsg models.SyncStatus

type snapshotMsg struct {
	status models.SyncStatus
	failed []models.QueueEntry
	usage  models.StorageUsage
	err    error
}

type drainDoneMsg struct {
	report models.SyncReport
}

type cleanupDoneMsg struct {
	report models.CleanupReport
}

type tickMsg struct{}

type clearNoticeMsg struct{}
