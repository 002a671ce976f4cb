package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/mattn/go-sqlite3"

	"github.com/MKhiriev/go-offline-keeper/internal/logger"
	"github.com/MKhiriev/go-offline-keeper/models"
)

type queueRepository struct {
	*DB
	logger *logger.Logger
}

// NewQueueRepository returns the SQLite-backed [QueueRepository].
func NewQueueRepository(db *DB, logger *logger.Logger) QueueRepository {
	return &queueRepository{
		DB:     db,
		logger: logger,
	}
}

func (q *queueRepository) Enqueue(ctx context.Context, entry models.QueueEntry, localRecord *models.Record) (int64, error) {
	log := logger.FromContext(ctx)

	payload, err := encodePayload(entry.Payload)
	if err != nil {
		return 0, err
	}

	var id int64
	err = q.withTx(ctx, func(tx *sql.Tx) error {
		result, execErr := tx.ExecContext(ctx, insertQueueEntry,
			entry.LocalID,
			entry.Table,
			string(entry.Operation),
			entry.RecordID,
			payload,
			string(entry.Status),
			entry.Retries,
			entry.CreatedAt.UTC(),
			nullTime(entry.NextAttemptAt),
			nullString(entry.Error),
			entry.CompanyID,
			entry.UserID,
		)
		if execErr != nil {
			if isUniqueViolation(execErr) {
				return ErrDuplicateLocalID
			}
			return fmt.Errorf("%w: %w", ErrExecutingStatement, execErr)
		}

		if id, execErr = result.LastInsertId(); execErr != nil {
			return fmt.Errorf("%w: %w", ErrExecutingStatement, execErr)
		}

		if localRecord == nil {
			return nil
		}
		if localRecord.Payload == nil {
			_, execErr = tx.ExecContext(ctx, deleteCachedRecord, entry.Table, localRecord.ID)
			if execErr != nil {
				return fmt.Errorf("%w: %w", ErrExecutingStatement, execErr)
			}
			return nil
		}
		return upsertRecord(ctx, tx, entry.Table, entry.CompanyID, *localRecord, entry.CreatedAt)
	})
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.Enqueue").
			Str("table", entry.Table).
			Str("local_id", entry.LocalID).
			Msg("failed to enqueue mutation")
		return 0, err
	}

	return id, nil
}

func (q *queueRepository) ListDue(ctx context.Context, now time.Time) ([]models.QueueEntry, error) {
	query, args, err := buildListDueQuery(now)
	if err != nil {
		return nil, err
	}
	return q.list(ctx, "queueRepository.ListDue", query, args)
}

func (q *queueRepository) List(ctx context.Context, status models.QueueStatus, limit int) ([]models.QueueEntry, error) {
	query, args, err := buildListQueueQuery(status, limit)
	if err != nil {
		return nil, err
	}
	return q.list(ctx, "queueRepository.List", query, args)
}

func (q *queueRepository) Get(ctx context.Context, id int64) (models.QueueEntry, error) {
	return q.get(ctx, "queueRepository.Get", sq.Eq{"id": id})
}

func (q *queueRepository) GetByLocalID(ctx context.Context, localID string) (models.QueueEntry, error) {
	return q.get(ctx, "queueRepository.GetByLocalID", sq.Eq{"local_id": localID})
}

func (q *queueRepository) MarkSyncing(ctx context.Context, id int64) error {
	return q.execOne(ctx, "queueRepository.MarkSyncing", id, markQueueEntrySyncing, id)
}

func (q *queueRepository) MarkPending(ctx context.Context, id int64) error {
	return q.execOne(ctx, "queueRepository.MarkPending", id, markQueueEntryPending, id)
}

func (q *queueRepository) UpdatePayload(ctx context.Context, id int64, payload models.Payload) error {
	encoded, err := encodePayload(payload)
	if err != nil {
		return err
	}
	return q.execOne(ctx, "queueRepository.UpdatePayload", id, updateQueueEntryPayload, encoded, id)
}

func (q *queueRepository) MarkRetry(ctx context.Context, id int64, retries int, nextAttemptAt *time.Time, errMsg string) error {
	return q.execOne(ctx, "queueRepository.MarkRetry", id, markQueueEntryRetry, retries, nullTime(nextAttemptAt), errMsg, id)
}

func (q *queueRepository) MarkFailed(ctx context.Context, id int64, retries int, errMsg string, settledAt time.Time) error {
	return q.execOne(ctx, "queueRepository.MarkFailed", id, markQueueEntryFailed, retries, errMsg, settledAt.UTC(), id)
}

func (q *queueRepository) MarkCompleted(ctx context.Context, id int64, settledAt time.Time) error {
	return q.execOne(ctx, "queueRepository.MarkCompleted", id, markQueueEntryCompleted, settledAt.UTC(), id)
}

func (q *queueRepository) Delete(ctx context.Context, id int64) error {
	return q.execOne(ctx, "queueRepository.Delete", id, deleteQueueEntry, id)
}

func (q *queueRepository) CountByStatus(ctx context.Context, status models.QueueStatus) (int, error) {
	query, args, err := buildCountByStatusQuery(status)
	if err != nil {
		return 0, err
	}

	var count int
	if err = q.DB.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "queueRepository.CountByStatus").
			Str("status", string(status)).
			Msg("failed to count queue entries")
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return count, nil
}

func (q *queueRepository) ResetFailed(ctx context.Context) (int, error) {
	return q.execMany(ctx, "queueRepository.ResetFailed", resetFailedQueueEntries)
}

func (q *queueRepository) RecoverSyncing(ctx context.Context) (int, error) {
	return q.execMany(ctx, "queueRepository.RecoverSyncing", recoverSyncingQueueEntries)
}

func (q *queueRepository) get(ctx context.Context, fn string, where sq.Eq) (models.QueueEntry, error) {
	query, args, err := buildGetQueueEntryQuery(where)
	if err != nil {
		return models.QueueEntry{}, err
	}

	entry, err := scanQueueEntry(q.DB.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.QueueEntry{}, ErrEntryNotFound
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", fn).Msg("failed to get queue entry")
		return models.QueueEntry{}, err
	}
	return entry, nil
}

func (q *queueRepository) list(ctx context.Context, fn, query string, args []any) ([]models.QueueEntry, error) {
	log := logger.FromContext(ctx)

	rows, err := q.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", fn).Msg("failed to execute query for queue entries")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	entries := make([]models.QueueEntry, 0)
	for rows.Next() {
		entry, scanErr := scanQueueEntry(rows)
		if scanErr != nil {
			log.Err(scanErr).Str("func", fn).Msg("failed to scan queue entry row")
			return nil, scanErr
		}
		entries = append(entries, entry)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).Str("func", fn).Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRow, rowsErr)
	}

	return entries, nil
}

// execOne runs a statement targeting a single entry and reports
// ErrEntryNotFound when it matched nothing.
func (q *queueRepository) execOne(ctx context.Context, fn string, id int64, query string, args ...any) error {
	log := logger.FromContext(ctx)

	result, err := q.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", fn).Int64("entry_id", id).Msg("failed to execute statement")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		log.Err(err).Str("func", fn).Int64("entry_id", id).Msg("failed to get rows affected")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if affected == 0 {
		log.Debug().Str("func", fn).Int64("entry_id", id).Msg("no rows affected")
		return fmt.Errorf("%w (id=%d)", ErrEntryNotFound, id)
	}
	return nil
}

func (q *queueRepository) execMany(ctx context.Context, fn, query string) (int, error) {
	result, err := q.DB.ExecContext(ctx, query)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", fn).Msg("failed to execute statement")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return int(affected), nil
}

func scanQueueEntry(row rowScanner) (models.QueueEntry, error) {
	var (
		entry     models.QueueEntry
		operation string
		status    string
		payload   string
		nextAt    sql.NullTime
		errMsg    sql.NullString
	)

	err := row.Scan(
		&entry.ID,
		&entry.LocalID,
		&entry.Table,
		&operation,
		&entry.RecordID,
		&payload,
		&status,
		&entry.Retries,
		&entry.CreatedAt,
		&nextAt,
		&errMsg,
		&entry.CompanyID,
		&entry.UserID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.QueueEntry{}, err
		}
		return models.QueueEntry{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	p, err := decodePayload(payload)
	if err != nil {
		return models.QueueEntry{}, err
	}

	entry.Operation = models.Operation(operation)
	entry.Status = models.QueueStatus(status)
	entry.Payload = p
	if nextAt.Valid {
		t := nextAt.Time
		entry.NextAttemptAt = &t
	}
	if errMsg.Valid {
		msg := errMsg.String
		entry.Error = &msg
	}

	return entry, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
