package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-offline-keeper/internal/adapter"
	"github.com/MKhiriev/go-offline-keeper/internal/logger"
	"github.com/MKhiriev/go-offline-keeper/internal/policy"
	"github.com/MKhiriev/go-offline-keeper/internal/store"
	"github.com/MKhiriev/go-offline-keeper/internal/utils"
	"github.com/MKhiriev/go-offline-keeper/models"
)

type mutationQueue struct {
	storages  *store.ClientStorages
	remote    adapter.RemoteStore
	guard     *policy.SafetyGuard
	freshness *policy.FreshnessPolicy
	ids       IDGenerator
	clock     utils.Clock

	// notify is called after every accepted mutation.
	notify func(ctx context.Context)

	logger *logger.Logger
}

// NewMutationQueue returns the offline write path. remote is only asked for
// the current user id and may be nil.
func NewMutationQueue(
	storages *store.ClientStorages,
	remote adapter.RemoteStore,
	guard *policy.SafetyGuard,
	freshness *policy.FreshnessPolicy,
	ids IDGenerator,
	clock utils.Clock,
	log *logger.Logger,
) MutationQueue {
	return &mutationQueue{
		storages:  storages,
		remote:    remote,
		guard:     guard,
		freshness: freshness,
		ids:       ids,
		clock:     clock,
		logger:    log,
	}
}

func (q *mutationQueue) Enqueue(ctx context.Context, req models.EnqueueRequest) (string, error) {
	log := logger.FromContext(ctx)

	if q.storages == nil {
		log.Warn().Str("func", "mutationQueue.Enqueue").Str("table", req.Table).Msg("local storage unavailable, mutation not queued")
		return "", store.ErrStorageUnavailable
	}
	if req.Table == "" {
		return "", fmt.Errorf("%w: empty table", ErrInvalidRequest)
	}
	if !req.Operation.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidOperation, req.Operation)
	}

	payload := req.Payload
	if payload == nil {
		payload = models.Payload{}
	}

	payload, rewrite := q.guard.Apply(req.Table, payload)
	if rewrite != nil {
		log.Info().
			Str("func", "mutationQueue.Enqueue").
			Str("table", rewrite.Table).
			Interface("requested_status", rewrite.Previous).
			Msg("offline financial document forced to draft")
	}

	recordID := req.RecordID
	if recordID == "" {
		recordID, _ = payload.RecordID()
	}
	if req.Operation != models.OperationInsert && recordID == "" {
		return "", fmt.Errorf("%w: %s on %s without record id", ErrMalformedEntry, req.Operation, req.Table)
	}

	localID := req.LocalID
	if localID == "" {
		localID = q.ids.Generate()
	}

	userID := req.UserID
	if userID == "" && q.remote != nil {
		userID = q.remote.UserID()
	}

	entry := models.QueueEntry{
		LocalID:   localID,
		Table:     req.Table,
		Operation: req.Operation,
		RecordID:  recordID,
		Payload:   payload,
		Status:    models.StatusPending,
		Retries:   0,
		CreatedAt: q.clock.Now(),
		CompanyID: req.CompanyID,
		UserID:    userID,
	}

	id, err := q.storages.QueueRepository.Enqueue(ctx, entry, q.localRecord(ctx, entry))
	if err != nil {
		if errors.Is(err, store.ErrDuplicateLocalID) {
			return "", err
		}
		log.Err(err).Str("func", "mutationQueue.Enqueue").Str("table", req.Table).Msg("failed to persist mutation")
		return "", fmt.Errorf("enqueue %s on %s: %w", req.Operation, req.Table, err)
	}

	log.Debug().
		Str("func", "mutationQueue.Enqueue").
		Int64("entry_id", id).
		Str("local_id", localID).
		Str("table", req.Table).
		Str("operation", string(req.Operation)).
		Msg("mutation queued")

	if q.notify != nil {
		q.notify(ctx)
	}
	return localID, nil
}

// localRecord builds the optimistic copy written next to the entry so reads
// reflect the mutation before it reaches the remote store. Collections that
// are not cached get none.
func (q *mutationQueue) localRecord(ctx context.Context, entry models.QueueEntry) *models.Record {
	if !q.freshness.Cacheable(entry.Table) {
		return nil
	}

	switch entry.Operation {
	case models.OperationInsert:
		id := entry.RecordID
		if id == "" {
			id = entry.LocalID
		}
		return &models.Record{
			ID:      id,
			Payload: entry.Payload.Merge(models.Payload{models.FieldID: id}),
			Offline: true,
		}

	case models.OperationUpdate:
		base := models.Payload{models.FieldID: entry.RecordID}
		cached, err := q.storages.CacheRepository.GetRecord(ctx, entry.Table, entry.RecordID)
		if err == nil {
			base = cached.Payload
		}
		return &models.Record{
			ID:      entry.RecordID,
			Payload: base.Merge(entry.Payload),
			Offline: true,
		}

	case models.OperationDelete:
		return &models.Record{ID: entry.RecordID}
	}
	return nil
}

func (q *mutationQueue) PendingCount(ctx context.Context) int {
	return q.count(ctx, models.StatusPending)
}

func (q *mutationQueue) FailedCount(ctx context.Context) int {
	return q.count(ctx, models.StatusFailed)
}

func (q *mutationQueue) count(ctx context.Context, status models.QueueStatus) int {
	if q.storages == nil {
		return 0
	}

	n, err := q.storages.QueueRepository.CountByStatus(ctx, status)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "mutationQueue.count").
			Str("status", string(status)).
			Msg("failed to count queue entries")
		return 0
	}
	return n
}

func (q *mutationQueue) List(ctx context.Context, status models.QueueStatus, limit int) ([]models.QueueEntry, error) {
	if q.storages == nil {
		return nil, store.ErrStorageUnavailable
	}
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidRequest, status)
	}
	return q.storages.QueueRepository.List(ctx, status, limit)
}
