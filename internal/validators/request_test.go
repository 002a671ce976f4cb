// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-offline-keeper/models"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func validEnqueueRequest() models.EnqueueRequest {
	return models.EnqueueRequest{
		Table:     "invoices",
		Operation: models.OperationInsert,
		LocalID:   "local-1",
		CompanyID: "acme",
	}
}

// ---------------------------------------------------------------------------
// TestValidate_Dispatch
// ---------------------------------------------------------------------------

func TestValidate_Dispatch(t *testing.T) {
	v := NewRequestValidator()
	ctx := context.Background()

	t.Run("unsupported type", func(t *testing.T) {
		require.ErrorIs(t, v.Validate(ctx, "a string"), ErrUnsupportedType)
	})

	t.Run("pointer forms", func(t *testing.T) {
		req := validEnqueueRequest()
		assert.NoError(t, v.Validate(ctx, &req))
		assert.NoError(t, v.Validate(ctx, &models.ReadRequest{Table: "journals"}))
	})

	t.Run("unknown field", func(t *testing.T) {
		assert.ErrorIs(t, v.Validate(ctx, validEnqueueRequest(), "hash"), ErrUnknownField)
		assert.ErrorIs(t, v.Validate(ctx, models.ReadRequest{Table: "journals"}, "hash"), ErrUnknownField)
		assert.ErrorIs(t, v.Validate(ctx, []models.Record{}, "hash"), ErrUnknownField)
	})
}

// ---------------------------------------------------------------------------
// EnqueueRequest
// ---------------------------------------------------------------------------

func TestValidate_EnqueueRequest(t *testing.T) {
	v := NewRequestValidator()
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(r *models.EnqueueRequest)
		fields  []string
		wantErr error
	}{
		{name: "valid", mutate: func(*models.EnqueueRequest) {}},
		{name: "generated local id", mutate: func(r *models.EnqueueRequest) { r.LocalID = "" }},
		{name: "empty table", mutate: func(r *models.EnqueueRequest) { r.Table = "" }, wantErr: ErrInvalidTable},
		{name: "table with path", mutate: func(r *models.EnqueueRequest) { r.Table = "invoices/../users" }, wantErr: ErrInvalidTable},
		{name: "uppercase table", mutate: func(r *models.EnqueueRequest) { r.Table = "Invoices" }, wantErr: ErrInvalidTable},
		{name: "bad operation", mutate: func(r *models.EnqueueRequest) { r.Operation = "upsert" }, wantErr: ErrInvalidOperation},
		{name: "local id with space", mutate: func(r *models.EnqueueRequest) { r.LocalID = "a b" }, wantErr: ErrInvalidLocalID},
		{name: "local id too long", mutate: func(r *models.EnqueueRequest) { r.LocalID = strings.Repeat("x", 129) }, wantErr: ErrInvalidLocalID},
		{name: "company with slash", mutate: func(r *models.EnqueueRequest) { r.CompanyID = "a/b" }, wantErr: ErrInvalidCompanyID},
		{
			name:   "scoped to table only",
			mutate: func(r *models.EnqueueRequest) { r.Operation = "upsert" },
			fields: []string{FieldTable},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validEnqueueRequest()
			tt.mutate(&req)

			err := v.Validate(ctx, req, tt.fields...)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

// ---------------------------------------------------------------------------
// ReadRequest
// ---------------------------------------------------------------------------

func TestValidate_ReadRequest(t *testing.T) {
	v := NewRequestValidator()
	ctx := context.Background()

	tests := []struct {
		name    string
		req     models.ReadRequest
		wantErr error
	}{
		{name: "whole collection", req: models.ReadRequest{Table: "chart_of_accounts", CompanyID: "acme"}},
		{
			name: "full filter",
			req: models.ReadRequest{Table: "invoices", Filter: models.Filter{
				IDs: []string{"1"}, Fields: map[string]any{"status": "draft"}, OrderBy: "created_at", Limit: 10,
			}},
		},
		{name: "bad table", req: models.ReadRequest{Table: "1invoices"}, wantErr: ErrInvalidTable},
		{name: "negative limit", req: models.ReadRequest{Table: "invoices", Filter: models.Filter{Limit: -1}}, wantErr: ErrInvalidLimit},
		{name: "bad order", req: models.ReadRequest{Table: "invoices", Filter: models.Filter{OrderBy: "x'); drop"}}, wantErr: ErrInvalidFieldName},
		{name: "bad field", req: models.ReadRequest{Table: "invoices", Filter: models.Filter{Fields: map[string]any{"a.b": 1}}}, wantErr: ErrInvalidFieldName},
		{name: "empty id", req: models.ReadRequest{Table: "invoices", Filter: models.Filter{IDs: []string{""}}}, wantErr: ErrEmptyRecordID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(ctx, tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

// ---------------------------------------------------------------------------
// Records
// ---------------------------------------------------------------------------

func TestValidate_Records(t *testing.T) {
	v := NewRequestValidator()
	ctx := context.Background()

	assert.NoError(t, v.Validate(ctx, []models.Record{}))
	assert.NoError(t, v.Validate(ctx, []models.Record{{ID: "1"}, {ID: "2"}}))
	assert.ErrorIs(t, v.Validate(ctx, []models.Record{{ID: "1"}, {ID: " "}}), ErrEmptyRecordID)
	assert.ErrorIs(t, v.Validate(ctx, []models.Record{}, FieldRecords, FieldNonEmpty), ErrEmptyRecords)
}

func TestIsTableName(t *testing.T) {
	assert.True(t, IsTableName("journal_entry_lines"))
	assert.False(t, IsTableName(""))
	assert.False(t, IsTableName("_private"))
	assert.False(t, IsTableName(strings.Repeat("a", 64)))
}
