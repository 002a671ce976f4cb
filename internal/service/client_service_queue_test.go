package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-offline-keeper/internal/logger"
	"github.com/MKhiriev/go-offline-keeper/internal/store"
	"github.com/MKhiriev/go-offline-keeper/models"
)

func TestMutationQueue_Enqueue_InsertWritesPlaceholder(t *testing.T) {
	env := newTestEnv(t, testConfig())
	ctx := context.Background()

	localID := env.enqueue(t, models.EnqueueRequest{
		Table:     "third_parties",
		Operation: models.OperationInsert,
		Payload:   models.Payload{"name": "Dupont SARL"},
		CompanyID: "acme",
	})
	assert.Equal(t, "local-a", localID)

	entry := env.entry(t, localID)
	assert.Equal(t, models.StatusPending, entry.Status)
	assert.Equal(t, 0, entry.Retries)
	assert.Equal(t, "user-1", entry.UserID)
	assert.Equal(t, "acme", entry.CompanyID)
	assert.Empty(t, entry.RecordID)
	assert.Equal(t, baseTime, entry.CreatedAt.UTC())

	record, err := env.storages.CacheRepository.GetRecord(ctx, "third_parties", localID)
	require.NoError(t, err)
	assert.True(t, record.Offline)
	assert.Equal(t, models.Payload{"id": localID, "name": "Dupont SARL"}, record.Payload)

	assert.Equal(t, 1, env.services.Queue.PendingCount(ctx))
	assert.Equal(t, 0, env.services.Queue.FailedCount(ctx))
}

func TestMutationQueue_Enqueue_ForcesDraft(t *testing.T) {
	env := newTestEnv(t, testConfig())

	localID := env.enqueue(t, models.EnqueueRequest{
		Table:     "invoices",
		Operation: models.OperationInsert,
		Payload:   models.Payload{"number": "F-2026-001", "status": "validated"},
	})

	entry := env.entry(t, localID)
	assert.Equal(t, "draft", entry.Payload["status"])
	assert.Equal(t, "F-2026-001", entry.Payload["number"])

	record, err := env.storages.CacheRepository.GetRecord(context.Background(), "invoices", localID)
	require.NoError(t, err)
	assert.Equal(t, "draft", record.Payload["status"])
}

func TestMutationQueue_Enqueue_NonSensitiveTableKeepsStatus(t *testing.T) {
	env := newTestEnv(t, testConfig())

	localID := env.enqueue(t, models.EnqueueRequest{
		Table:     "articles",
		Operation: models.OperationInsert,
		Payload:   models.Payload{"status": "active"},
	})
	assert.Equal(t, "active", env.entry(t, localID).Payload["status"])
}

func TestMutationQueue_Enqueue_UpdateMergesCachedRecord(t *testing.T) {
	env := newTestEnv(t, testConfig())
	ctx := context.Background()

	require.NoError(t, env.storages.CacheRepository.ReplaceCollection(ctx, "third_parties", "acme", []models.Record{
		{ID: "tp-1", Payload: models.Payload{"id": "tp-1", "name": "Martin", "city": "Lyon"}},
	}, baseTime))

	localID := env.enqueue(t, models.EnqueueRequest{
		Table:     "third_parties",
		Operation: models.OperationUpdate,
		Payload:   models.Payload{"id": "tp-1", "city": "Paris"},
		CompanyID: "acme",
	})
	assert.Equal(t, "tp-1", env.entry(t, localID).RecordID)

	record, err := env.storages.CacheRepository.GetRecord(ctx, "third_parties", "tp-1")
	require.NoError(t, err)
	assert.True(t, record.Offline)
	assert.Equal(t, models.Payload{"id": "tp-1", "name": "Martin", "city": "Paris"}, record.Payload)
}

func TestMutationQueue_Enqueue_DeleteDropsCachedRecord(t *testing.T) {
	env := newTestEnv(t, testConfig())
	ctx := context.Background()

	require.NoError(t, env.storages.CacheRepository.ReplaceCollection(ctx, "third_parties", "acme", []models.Record{
		{ID: "tp-1", Payload: models.Payload{"id": "tp-1"}},
	}, baseTime))

	env.enqueue(t, models.EnqueueRequest{
		Table:     "third_parties",
		Operation: models.OperationDelete,
		RecordID:  "tp-1",
		CompanyID: "acme",
	})

	_, err := env.storages.CacheRepository.GetRecord(ctx, "third_parties", "tp-1")
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
}

func TestMutationQueue_Enqueue_UncachedTableHasNoPlaceholder(t *testing.T) {
	env := newTestEnv(t, testConfig())

	localID := env.enqueue(t, models.EnqueueRequest{
		Table:     "audit_notes",
		Operation: models.OperationInsert,
		Payload:   models.Payload{"text": "hello"},
	})

	_, err := env.storages.CacheRepository.GetRecord(context.Background(), "audit_notes", localID)
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
}

func TestMutationQueue_Enqueue_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		req     models.EnqueueRequest
		wantErr error
	}{
		{
			name:    "empty table",
			req:     models.EnqueueRequest{Operation: models.OperationInsert},
			wantErr: ErrInvalidRequest,
		},
		{
			name:    "unknown operation",
			req:     models.EnqueueRequest{Table: "invoices", Operation: "upsert"},
			wantErr: ErrInvalidOperation,
		},
		{
			name:    "update without id",
			req:     models.EnqueueRequest{Table: "invoices", Operation: models.OperationUpdate, Payload: models.Payload{"amount": 10}},
			wantErr: ErrMalformedEntry,
		},
		{
			name:    "delete without id",
			req:     models.EnqueueRequest{Table: "invoices", Operation: models.OperationDelete},
			wantErr: ErrMalformedEntry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, testConfig())

			_, err := env.services.Queue.Enqueue(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 0, env.services.Queue.PendingCount(context.Background()))
		})
	}
}

func TestMutationQueue_Enqueue_DuplicateLocalID(t *testing.T) {
	env := newTestEnv(t, testConfig())
	req := models.EnqueueRequest{
		Table:     "articles",
		Operation: models.OperationInsert,
		LocalID:   "fixed",
		Payload:   models.Payload{"name": "Stylo"},
	}

	env.enqueue(t, req)
	_, err := env.services.Queue.Enqueue(context.Background(), req)
	assert.ErrorIs(t, err, store.ErrDuplicateLocalID)
	assert.Equal(t, 1, env.services.Queue.PendingCount(context.Background()))
}

func TestMutationQueue_Enqueue_PublishesStatus(t *testing.T) {
	env := newTestEnv(t, testConfig())
	updates, unsubscribe := env.services.Status.Subscribe()
	defer unsubscribe()

	env.enqueue(t, models.EnqueueRequest{Table: "articles", Operation: models.OperationInsert})

	status := <-updates
	assert.Equal(t, 1, status.PendingCount)
	assert.False(t, status.IsSyncing)
}

func TestMutationQueue_List(t *testing.T) {
	env := newTestEnv(t, testConfig())
	ctx := context.Background()

	env.enqueue(t, models.EnqueueRequest{Table: "articles", Operation: models.OperationInsert})
	env.enqueue(t, models.EnqueueRequest{Table: "journals", Operation: models.OperationInsert})

	entries, err := env.services.Queue.List(ctx, models.StatusPending, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "articles", entries[0].Table)

	_, err = env.services.Queue.List(ctx, "lost", 0)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestMutationQueue_NilStorage(t *testing.T) {
	svc := NewClientServices(nil, nil, nil, testConfig(), logger.Nop())
	ctx := context.Background()

	_, err := svc.Queue.Enqueue(ctx, models.EnqueueRequest{Table: "invoices", Operation: models.OperationInsert})
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)
	assert.Equal(t, 0, svc.Queue.PendingCount(ctx))
	assert.Equal(t, 0, svc.Queue.FailedCount(ctx))

	_, err = svc.Queue.List(ctx, "", 0)
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)
}
