package store

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-offline-keeper/models"
)

func TestMaintenanceRepository_DeleteTerminalEntriesBefore(t *testing.T) {
	ctx := context.Background()
	s := newTestStorages(t)
	q := s.QueueRepository

	old := baseTime.Add(-10 * 24 * time.Hour)
	cutoff := baseTime.Add(-7 * 24 * time.Hour)

	idOldPending, err := q.Enqueue(ctx, pendingEntry("old-pending", "invoices", old), nil)
	require.NoError(t, err)
	idOldSyncing, err := q.Enqueue(ctx, pendingEntry("old-syncing", "invoices", old), nil)
	require.NoError(t, err)
	idOldFailed, err := q.Enqueue(ctx, pendingEntry("old-failed", "invoices", old), nil)
	require.NoError(t, err)
	idOldCompleted, err := q.Enqueue(ctx, pendingEntry("old-completed", "invoices", old), nil)
	require.NoError(t, err)
	idNewFailed, err := q.Enqueue(ctx, pendingEntry("new-failed", "invoices", baseTime), nil)
	require.NoError(t, err)
	// queued long ago, failed only now: the user must still be able to retry it
	idOldFailedLate, err := q.Enqueue(ctx, pendingEntry("old-failed-late", "invoices", old), nil)
	require.NoError(t, err)

	require.NoError(t, q.MarkSyncing(ctx, idOldSyncing))
	require.NoError(t, q.MarkFailed(ctx, idOldFailed, 3, "x", old.Add(time.Hour)))
	require.NoError(t, q.MarkCompleted(ctx, idOldCompleted, old))
	require.NoError(t, q.MarkFailed(ctx, idNewFailed, 3, "x", baseTime))
	require.NoError(t, q.MarkFailed(ctx, idOldFailedLate, 3, "x", baseTime))

	n, err := s.MaintenanceRepository.DeleteTerminalEntriesBefore(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for _, id := range []int64{idOldPending, idOldSyncing, idNewFailed, idOldFailedLate} {
		_, err = q.Get(ctx, id)
		assert.NoError(t, err, "entry %d must survive", id)
	}
	for _, id := range []int64{idOldFailed, idOldCompleted} {
		_, err = q.Get(ctx, id)
		assert.ErrorIs(t, err, ErrEntryNotFound)
	}
}

func TestMaintenanceRepository_DeleteMetadataBefore(t *testing.T) {
	ctx := context.Background()
	s := newTestStorages(t)

	require.NoError(t, s.CacheRepository.ReplaceCollection(ctx, "journals", "", nil, baseTime.Add(-8*24*time.Hour)))
	require.NoError(t, s.CacheRepository.ReplaceCollection(ctx, "invoices", "", nil, baseTime))

	n, err := s.MaintenanceRepository.DeleteMetadataBefore(ctx, baseTime.Add(-7*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.CacheRepository.GetMetadata(ctx, "journals", "")
	assert.ErrorIs(t, err, ErrMetadataNotFound)
	_, err = s.CacheRepository.GetMetadata(ctx, "invoices", "")
	assert.NoError(t, err)
}

func TestMaintenanceRepository_UsageBytes(t *testing.T) {
	ctx := context.Background()
	s := newTestStorages(t)

	before, err := s.MaintenanceRepository.UsageBytes(ctx)
	require.NoError(t, err)
	assert.Positive(t, before)

	records := make([]models.Record, 0, 200)
	for i := 0; i < 200; i++ {
		records = append(records, models.Record{
			ID:      fmt.Sprintf("art-%03d", i),
			Payload: models.Payload{"blob": strings.Repeat("x", 512)},
		})
	}
	require.NoError(t, s.CacheRepository.ReplaceCollection(ctx, "articles", "", records, baseTime))

	after, err := s.MaintenanceRepository.UsageBytes(ctx)
	require.NoError(t, err)
	assert.Greater(t, after, before)
}
