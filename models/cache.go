// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// Record is one cached row of a named collection.
type Record struct {
	// ID is the record identifier inside its collection.
	ID string `json:"id"`

	// Payload is the opaque record body owned by the caller.
	Payload Payload `json:"payload"`

	// Offline marks an optimistic copy written by the offline write path
	// that the remote store has not acknowledged yet.
	Offline bool `json:"offline,omitempty"`
}

// RecordFromPayload builds a Record keyed by the payload "id" field.
// It returns false when the payload carries no usable identifier.
func RecordFromPayload(p Payload) (Record, bool) {
	id, ok := p.RecordID()
	if !ok {
		return Record{}, false
	}
	return Record{ID: id, Payload: p}, true
}

// SyncMetadata tracks when a (table, company) collection was last refreshed
// from the remote store.
type SyncMetadata struct {
	Table        string    `json:"table"`
	CompanyID    string    `json:"company_id,omitempty"`
	LastSyncedAt time.Time `json:"last_synced_at"`
	RecordCount  int       `json:"record_count"`
}

// Filter narrows a read. The zero value selects the whole collection.
type Filter struct {
	// IDs restricts the result to the given record identifiers.
	IDs []string `json:"ids,omitempty"`

	// Fields restricts the result to records whose payload field equals
	// the given value.
	Fields map[string]any `json:"fields,omitempty"`

	// OrderBy is a payload field name to sort by.
	OrderBy    string `json:"order_by,omitempty"`
	Descending bool   `json:"descending,omitempty"`

	// Limit caps the number of returned records; zero means no limit.
	Limit int `json:"limit,omitempty"`
}

// IsZero reports whether f selects everything.
func (f Filter) IsZero() bool {
	return len(f.IDs) == 0 && len(f.Fields) == 0 && f.OrderBy == "" && f.Limit == 0
}

// ReadRequest is a cache read for one collection.
type ReadRequest struct {
	Table     string `json:"table"`
	CompanyID string `json:"company_id,omitempty"`
	Filter    Filter `json:"filter"`
}

// ReadResult is the answer of a cache read.
//
// Fresh is false when the collection was never refreshed or its TTL has
// elapsed; the caller is then expected to fetch from the remote store.
// Records are returned even when stale so the caller may show them flagged
// as such.
type ReadResult struct {
	Fresh        bool       `json:"fresh"`
	FromCache    bool       `json:"from_cache"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
	Records      []Record   `json:"records"`
	Error        string     `json:"error,omitempty"`
}
