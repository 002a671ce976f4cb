// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-offline-keeper/models"
)

func Test_buildReadRecordsQuery(t *testing.T) {
	tests := []struct {
		name       string
		companyID  string
		filter     models.Filter
		wantParts  []string
		wantArgs   []any
		wantErr    bool
		absentPart string
	}{
		{
			name:       "whole collection",
			filter:     models.Filter{},
			wantParts:  []string{"SELECT record_id, payload, offline FROM cached_records", "WHERE table_name = ?", "ORDER BY record_id"},
			wantArgs:   []any{"invoices"},
			absentPart: "LIMIT",
		},
		{
			name:      "company and ids",
			companyID: "acme",
			filter:    models.Filter{IDs: []string{"a", "b"}},
			wantParts: []string{"company_id = ?", "record_id IN (?,?)"},
			wantArgs:  []any{"invoices", "acme", "a", "b"},
		},
		{
			name:      "fields are sorted by name",
			filter:    models.Filter{Fields: map[string]any{"status": "draft", "amount": 10}},
			wantParts: []string{"json_extract(payload, ?) = ?"},
			wantArgs:  []any{"invoices", "$.amount", 10, "$.status", "draft"},
		},
		{
			name:      "nil field value",
			filter:    models.Filter{Fields: map[string]any{"deleted_at": nil}},
			wantParts: []string{"json_extract(payload, ?) IS NULL"},
			wantArgs:  []any{"invoices", "$.deleted_at"},
		},
		{
			name:      "order desc with limit",
			filter:    models.Filter{OrderBy: "date", Descending: true, Limit: 5},
			wantParts: []string{"ORDER BY json_extract(payload, ?) DESC, record_id", "LIMIT 5"},
			wantArgs:  []any{"invoices", "$.date"},
		},
		{
			name:    "bad order field",
			filter:  models.Filter{OrderBy: "a.b"},
			wantErr: true,
		},
		{
			name:    "bad filter field",
			filter:  models.Filter{Fields: map[string]any{"x') OR 1=1 --": 1}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := buildReadRecordsQuery("invoices", tt.companyID, tt.filter)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrBuildingSQLQuery)
				return
			}
			require.NoError(t, err)

			for _, part := range tt.wantParts {
				assert.Contains(t, query, part)
			}
			if tt.absentPart != "" {
				assert.NotContains(t, query, tt.absentPart)
			}
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func Test_buildListDueQuery(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))

	query, args, err := buildListDueQuery(now)
	require.NoError(t, err)

	q := strings.ToLower(query)
	assert.Contains(t, q, "from sync_queue")
	assert.Contains(t, q, "status = ?")
	assert.Contains(t, q, "next_attempt_at is null or next_attempt_at <= ?")
	assert.Contains(t, q, "order by created_at, id")

	require.Len(t, args, 2)
	assert.Equal(t, "pending", args[0])
	assert.Equal(t, now.UTC(), args[1])
}

func Test_buildDeleteTerminalEntriesQuery(t *testing.T) {
	cutoff := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	query, args, err := buildDeleteTerminalEntriesQuery(cutoff)
	require.NoError(t, err)

	assert.Contains(t, query, "DELETE FROM sync_queue")
	assert.Contains(t, query, "status IN (?,?)")
	assert.Contains(t, query, "COALESCE(settled_at, created_at) < ?")
	assert.Equal(t, []any{"completed", "failed", cutoff}, args)
	assert.NotContains(t, args, "pending")
	assert.NotContains(t, args, "syncing")
}

func Test_buildListQueueQuery(t *testing.T) {
	query, args, err := buildListQueueQuery("", 0)
	require.NoError(t, err)
	assert.NotContains(t, query, "WHERE")
	assert.NotContains(t, query, "LIMIT")
	assert.Empty(t, args)

	query, args, err = buildListQueueQuery(models.StatusFailed, 10)
	require.NoError(t, err)
	assert.Contains(t, query, "WHERE status = ?")
	assert.Contains(t, query, "LIMIT 10")
	assert.Equal(t, []any{"failed"}, args)
}
