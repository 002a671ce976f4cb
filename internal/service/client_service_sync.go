package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/MKhiriev/go-offline-keeper/internal/adapter"
	"github.com/MKhiriev/go-offline-keeper/internal/config"
	"github.com/MKhiriev/go-offline-keeper/internal/logger"
	"github.com/MKhiriev/go-offline-keeper/internal/policy"
	"github.com/MKhiriev/go-offline-keeper/internal/store"
	"github.com/MKhiriev/go-offline-keeper/internal/utils"
	"github.com/MKhiriev/go-offline-keeper/models"
)

// MaxRetries is the number of failed attempts after which an entry stops
// being drained automatically.
const MaxRetries = 3

type outcome int

const (
	delivered outcome = iota
	deferred
	skipped
)

type syncEngine struct {
	storages     *store.ClientStorages
	remote       adapter.RemoteStore
	connectivity Connectivity
	guard        *policy.SafetyGuard
	hub          *StatusHub
	observer     Observer
	clock        utils.Clock
	cfg          config.Sync

	syncing   atomic.Bool
	recovered atomic.Bool

	mu         sync.RWMutex
	lastSyncAt *time.Time

	logger *logger.Logger
}

// NewSyncEngine returns the queue drainer. A nil connectivity means the
// remote store is always considered reachable.
func NewSyncEngine(
	storages *store.ClientStorages,
	remote adapter.RemoteStore,
	connectivity Connectivity,
	guard *policy.SafetyGuard,
	cfg config.Sync,
	clock utils.Clock,
	log *logger.Logger,
) SyncEngine {
	return newSyncEngine(storages, remote, connectivity, guard, cfg, clock, log)
}

func newSyncEngine(
	storages *store.ClientStorages,
	remote adapter.RemoteStore,
	connectivity Connectivity,
	guard *policy.SafetyGuard,
	cfg config.Sync,
	clock utils.Clock,
	log *logger.Logger,
) *syncEngine {
	return &syncEngine{
		storages:     storages,
		remote:       remote,
		connectivity: connectivity,
		guard:        guard,
		clock:        clock,
		cfg:          cfg,
		logger:       log,
	}
}

func (e *syncEngine) ProcessQueue(ctx context.Context) models.SyncReport {
	log := logger.FromContext(ctx)

	if e.storages == nil {
		return models.SyncReport{Errors: []string{}, Skipped: models.SkipStorageUnavailable}
	}
	if !e.syncing.CompareAndSwap(false, true) {
		log.Debug().Str("func", "syncEngine.ProcessQueue").Msg("drain already in progress")
		return models.SyncReport{Errors: []string{}, Skipped: models.SkipInFlight}
	}
	defer e.syncing.Store(false)

	if !e.online() {
		return models.SyncReport{
			Errors:  []string{},
			Pending: e.count(ctx, models.StatusPending),
			Skipped: models.SkipOffline,
		}
	}

	started := e.clock.Now()
	e.notify(ctx)

	report := e.drain(ctx)

	finished := e.clock.Now()
	e.mu.Lock()
	e.lastSyncAt = &finished
	e.mu.Unlock()

	log.Info().
		Str("func", "syncEngine.ProcessQueue").
		Int("synced", report.Synced).
		Int("failed", report.Failed).
		Int("pending", report.Pending).
		Msg("queue drained")

	if e.observer != nil {
		e.observer.ObserveDrain(report, finished.Sub(started))
	}
	// the flag is released by the deferred Store only; the final status is
	// published as idle while this drain still owns it
	e.publish(ctx, func(status *models.SyncStatus) { status.IsSyncing = false })

	return report
}

func (e *syncEngine) drain(ctx context.Context) models.SyncReport {
	log := logger.FromContext(ctx)
	report := models.SyncReport{Errors: []string{}}

	if !e.recovered.Load() {
		n, err := e.storages.QueueRepository.RecoverSyncing(ctx)
		if err != nil {
			log.Err(err).Str("func", "syncEngine.drain").Msg("failed to recover interrupted entries")
		} else {
			e.recovered.Store(true)
			if n > 0 {
				log.Warn().Str("func", "syncEngine.drain").Int("recovered", n).Msg("entries left syncing by an interrupted drain are pending again")
			}
		}
	}

	entries, err := e.storages.QueueRepository.ListDue(ctx, e.clock.Now())
	if err != nil {
		log.Err(err).Str("func", "syncEngine.drain").Msg("failed to load pending entries")
		report.Errors = append(report.Errors, err.Error())
		report.Pending = e.count(ctx, models.StatusPending)
		return report
	}

	// once an entry for a record is held back, later entries for the same
	// record must wait too
	blocked := make(map[string]struct{})

	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}

		key := causalKey(entry)
		if _, ok := blocked[key]; ok {
			log.Debug().
				Str("func", "syncEngine.drain").
				Int64("entry_id", entry.ID).
				Str("table", entry.Table).
				Msg("entry held back behind an earlier mutation of the same record")
			continue
		}

		if e.process(ctx, entry, &report) != delivered {
			blocked[key] = struct{}{}
		}
	}

	report.Pending = e.count(context.WithoutCancel(ctx), models.StatusPending)
	return report
}

func (e *syncEngine) process(ctx context.Context, entry models.QueueEntry, report *models.SyncReport) outcome {
	log := logger.FromContext(ctx).With().
		Int64("entry_id", entry.ID).
		Str("local_id", entry.LocalID).
		Str("table", entry.Table).
		Str("operation", string(entry.Operation)).
		Logger()

	queue := e.storages.QueueRepository

	if err := queue.MarkSyncing(ctx, entry.ID); err != nil {
		if errors.Is(err, store.ErrEntryNotFound) {
			return skipped
		}
		log.Err(err).Str("func", "syncEngine.process").Msg("failed to claim entry")
		report.Errors = append(report.Errors, entryError(entry, err))
		return deferred
	}

	payload, rewrite := e.guard.Apply(entry.Table, entry.Payload)
	if rewrite != nil {
		log.Info().
			Str("func", "syncEngine.process").
			Interface("requested_status", rewrite.Previous).
			Msg("queued financial document forced to draft before replay")
		if err := queue.UpdatePayload(ctx, entry.ID, payload); err != nil {
			log.Err(err).Str("func", "syncEngine.process").Msg("failed to persist rewritten payload")
		}
		entry.Payload = payload
	}

	err := e.dispatch(ctx, entry)
	if err == nil {
		e.complete(ctx, entry)
		report.Synced++
		return delivered
	}

	// a cancelled drain leaves the entry as it found it
	if ctx.Err() != nil {
		if markErr := queue.MarkPending(context.WithoutCancel(ctx), entry.ID); markErr != nil {
			log.Err(markErr).Str("func", "syncEngine.process").Msg("failed to release entry after cancellation")
		}
		return deferred
	}

	retries := entry.Retries + 1
	msg := failureMessage(err)
	report.Errors = append(report.Errors, entryError(entry, err))

	if isPermanent(err) || retries >= MaxRetries {
		if markErr := queue.MarkFailed(ctx, entry.ID, retries, msg, e.clock.Now()); markErr != nil {
			log.Err(markErr).Str("func", "syncEngine.process").Msg("failed to mark entry failed")
			return deferred
		}
		log.Warn().Err(err).Str("func", "syncEngine.process").Int("retries", retries).Msg("entry failed permanently")
		report.Failed++
		return deferred
	}

	var nextAttemptAt *time.Time
	if delay := e.backoff(retries); delay > 0 {
		next := e.clock.Now().Add(delay)
		nextAttemptAt = &next
	}
	if markErr := queue.MarkRetry(ctx, entry.ID, retries, nextAttemptAt, msg); markErr != nil {
		log.Err(markErr).Str("func", "syncEngine.process").Msg("failed to reschedule entry")
		return deferred
	}
	log.Info().Err(err).Str("func", "syncEngine.process").Int("retries", retries).Msg("entry will be retried")
	return deferred
}

func (e *syncEngine) dispatch(ctx context.Context, entry models.QueueEntry) error {
	if e.remote == nil {
		return ErrOffline
	}

	switch entry.Operation {
	case models.OperationInsert:
		return e.remote.Insert(ctx, entry.Table, entry.Payload)
	case models.OperationUpdate:
		id, err := replayRecordID(entry)
		if err != nil {
			return err
		}
		return e.remote.Update(ctx, entry.Table, id, entry.Payload)
	case models.OperationDelete:
		id, err := replayRecordID(entry)
		if err != nil {
			return err
		}
		return e.remote.Delete(ctx, entry.Table, id)
	default:
		return fmt.Errorf("%w: unknown operation %q", ErrMalformedEntry, entry.Operation)
	}
}

// complete removes a delivered entry, drops the optimistic placeholder of an
// insert and invalidates the collection so the next read refreshes it.
func (e *syncEngine) complete(ctx context.Context, entry models.QueueEntry) {
	log := logger.FromContext(ctx)
	queue := e.storages.QueueRepository
	cache := e.storages.CacheRepository

	var err error
	if e.cfg.KeepCompleted {
		err = queue.MarkCompleted(ctx, entry.ID, e.clock.Now())
	} else {
		err = queue.Delete(ctx, entry.ID)
	}
	if err != nil {
		log.Err(err).Str("func", "syncEngine.complete").Int64("entry_id", entry.ID).Msg("failed to settle delivered entry")
	}

	if entry.Operation == models.OperationInsert && entry.RecordID == "" {
		placeholder, getErr := cache.GetRecord(ctx, entry.Table, entry.LocalID)
		if getErr == nil && placeholder.Offline {
			if err = cache.DeleteRecord(ctx, entry.Table, entry.LocalID); err != nil {
				log.Err(err).Str("func", "syncEngine.complete").Str("local_id", entry.LocalID).Msg("failed to drop offline placeholder")
			}
		}
	}

	if err = cache.DeleteMetadata(ctx, entry.Table, entry.CompanyID); err != nil {
		log.Err(err).Str("func", "syncEngine.complete").Str("table", entry.Table).Msg("failed to invalidate collection")
	}
}

func (e *syncEngine) RetryFailed(ctx context.Context) models.SyncReport {
	if e.storages == nil {
		return models.SyncReport{Errors: []string{}, Skipped: models.SkipStorageUnavailable}
	}

	n, err := e.storages.QueueRepository.ResetFailed(ctx)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "syncEngine.RetryFailed").Msg("failed to reset failed entries")
	} else {
		logger.FromContext(ctx).Info().Str("func", "syncEngine.RetryFailed").Int("reset", n).Msg("failed entries reset to pending")
	}

	return e.ProcessQueue(ctx)
}

func (e *syncEngine) Status(ctx context.Context) models.SyncStatus {
	e.mu.RLock()
	last := e.lastSyncAt
	e.mu.RUnlock()

	return models.SyncStatus{
		PendingCount: e.count(ctx, models.StatusPending),
		FailedCount:  e.count(ctx, models.StatusFailed),
		IsSyncing:    e.syncing.Load(),
		Online:       e.online(),
		LastSyncAt:   last,
	}
}

// notify publishes the current status to subscribers and the observer.
func (e *syncEngine) notify(ctx context.Context) {
	e.publish(ctx, nil)
}

func (e *syncEngine) publish(ctx context.Context, adjust func(*models.SyncStatus)) {
	if e.hub == nil && e.observer == nil {
		return
	}

	status := e.Status(ctx)
	if adjust != nil {
		adjust(&status)
	}
	if e.hub != nil {
		e.hub.Publish(status)
	}
	if e.observer != nil {
		e.observer.ObserveStatus(status)
	}
}

// online is false without a remote store, so a cache-only setup never
// spends retries on entries it cannot deliver.
func (e *syncEngine) online() bool {
	if e.remote == nil {
		return false
	}
	return e.connectivity == nil || e.connectivity.Online()
}

func (e *syncEngine) count(ctx context.Context, status models.QueueStatus) int {
	if e.storages == nil {
		return 0
	}

	n, err := e.storages.QueueRepository.CountByStatus(ctx, status)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "syncEngine.count").Str("status", string(status)).Msg("failed to count entries")
		return 0
	}
	return n
}

// backoff returns the not-before delay after the given number of failed
// attempts: base, 2*base, 4*base, ... capped at MaxBackoff.
func (e *syncEngine) backoff(retries int) time.Duration {
	base := e.cfg.Backoff()
	if base <= 0 || retries <= 0 {
		return 0
	}

	b := retry.NewExponential(base)
	if e.cfg.MaxBackoff > 0 {
		b = retry.WithCappedDuration(e.cfg.MaxBackoff, b)
	}

	var delay time.Duration
	for i := 0; i < retries; i++ {
		delay, _ = b.Next()
	}
	return delay
}

// replayRecordID returns the remote id an update or delete targets.
func replayRecordID(entry models.QueueEntry) (string, error) {
	if entry.RecordID != "" {
		return entry.RecordID, nil
	}
	if id, ok := entry.Payload.RecordID(); ok {
		return id, nil
	}
	return "", fmt.Errorf("%w: %s on %s without record id", ErrMalformedEntry, entry.Operation, entry.Table)
}

// causalKey identifies the record an entry mutates. Inserts without an id
// are keyed by their local id, which is also the id of their placeholder.
func causalKey(entry models.QueueEntry) string {
	id := entry.RecordID
	if id == "" {
		id, _ = entry.Payload.RecordID()
	}
	if id == "" {
		id = entry.LocalID
	}
	return entry.Table + "/" + id
}

func entryError(entry models.QueueEntry, err error) string {
	return fmt.Sprintf("%s %s %s: %s", entry.Table, entry.Operation, entry.LocalID, failureMessage(err))
}
