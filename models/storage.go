package models

// CleanupReport is the outcome of one housekeeping pass.
type CleanupReport struct {
	// DeletedRecords is the total number of rows removed.
	DeletedRecords int `json:"deletedRecords"`

	DeletedEntries  int `json:"deletedEntries"`
	DeletedMetadata int `json:"deletedMetadata"`
}

// StorageUsage is an advisory estimate of the local store size.
type StorageUsage struct {
	UsageBytes int64   `json:"usageBytes"`
	QuotaBytes int64   `json:"quotaBytes"`
	UsageMB    float64 `json:"usageMB"`

	// IsNearLimit is set once usage exceeds the configured soft cap.
	IsNearLimit bool `json:"isNearLimit"`

	// Known is false when the platform could not report usage.
	Known bool `json:"known"`
}
