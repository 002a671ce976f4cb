// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-offline-keeper/models"
)

const (
	upsertCachedRecord = `
		INSERT INTO cached_records (table_name, record_id, company_id, payload, offline, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (table_name, record_id) DO UPDATE SET
			company_id = excluded.company_id,
			payload    = excluded.payload,
			offline    = excluded.offline,
			updated_at = excluded.updated_at;`

	getCachedRecord = `
		SELECT record_id, payload, offline
		FROM cached_records
		WHERE table_name = ? AND record_id = ?;`

	deleteCachedRecord = `
		DELETE FROM cached_records
		WHERE table_name = ? AND record_id = ?;`

	deleteCachedCollection = `
		DELETE FROM cached_records
		WHERE table_name = ? AND company_id = ?;`

	upsertSyncMetadata = `
		INSERT INTO sync_metadata (table_name, company_id, last_synced_at, record_count)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (table_name, company_id) DO UPDATE SET
			last_synced_at = excluded.last_synced_at,
			record_count   = excluded.record_count;`

	getSyncMetadata = `
		SELECT table_name, company_id, last_synced_at, record_count
		FROM sync_metadata
		WHERE table_name = ? AND company_id = ?;`

	deleteSyncMetadata = `
		DELETE FROM sync_metadata
		WHERE table_name = ? AND company_id = ?;`

	insertQueueEntry = `
		INSERT INTO sync_queue (
			local_id,
			table_name,
			operation,
			record_id,
			payload,
			status,
			retries,
			created_at,
			next_attempt_at,
			error,
			company_id,
			user_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`

	markQueueEntrySyncing = `
		UPDATE sync_queue SET status = 'syncing'
		WHERE id = ? AND status = 'pending';`

	markQueueEntryPending = `
		UPDATE sync_queue SET status = 'pending'
		WHERE id = ? AND status = 'syncing';`

	updateQueueEntryPayload = `
		UPDATE sync_queue SET payload = ?
		WHERE id = ?;`

	markQueueEntryRetry = `
		UPDATE sync_queue SET
			status          = 'pending',
			retries         = ?,
			next_attempt_at = ?,
			error           = ?
		WHERE id = ?;`

	markQueueEntryFailed = `
		UPDATE sync_queue SET
			status          = 'failed',
			retries         = ?,
			next_attempt_at = NULL,
			error           = ?,
			settled_at      = ?
		WHERE id = ?;`

	markQueueEntryCompleted = `
		UPDATE sync_queue SET
			status          = 'completed',
			next_attempt_at = NULL,
			error           = NULL,
			settled_at      = ?
		WHERE id = ?;`

	deleteQueueEntry = `
		DELETE FROM sync_queue
		WHERE id = ?;`

	resetFailedQueueEntries = `
		UPDATE sync_queue SET
			status          = 'pending',
			retries         = 0,
			next_attempt_at = NULL,
			error           = NULL,
			settled_at      = NULL
		WHERE status = 'failed';`

	recoverSyncingQueueEntries = `
		UPDATE sync_queue SET status = 'pending'
		WHERE status = 'syncing';`

	databaseSize = `
		SELECT page_count * page_size
		FROM pragma_page_count(), pragma_page_size();`
)

var queueColumns = []string{
	"id",
	"local_id",
	"table_name",
	"operation",
	"record_id",
	"payload",
	"status",
	"retries",
	"created_at",
	"next_attempt_at",
	"error",
	"company_id",
	"user_id",
}

// payloadFieldPattern restricts payload field names used in JSON paths.
var payloadFieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func payloadPath(field string) (string, error) {
	if !payloadFieldPattern.MatchString(field) {
		return "", fmt.Errorf("%w: invalid payload field %q", ErrBuildingSQLQuery, field)
	}
	return "$." + field, nil
}

// buildReadRecordsQuery builds the SELECT of a filtered cache read. Payload
// fields are matched and ordered through json_extract.
func buildReadRecordsQuery(table, companyID string, filter models.Filter) (string, []any, error) {
	qb := sq.Select("record_id", "payload", "offline").
		From("cached_records").
		Where(sq.Eq{"table_name": table})

	if companyID != "" {
		qb = qb.Where(sq.Eq{"company_id": companyID})
	}

	if len(filter.IDs) > 0 {
		qb = qb.Where(sq.Eq{"record_id": filter.IDs})
	}

	fields := make([]string, 0, len(filter.Fields))
	for field := range filter.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		value := filter.Fields[field]
		path, err := payloadPath(field)
		if err != nil {
			return "", nil, err
		}
		if value == nil {
			qb = qb.Where(sq.Expr("json_extract(payload, ?) IS NULL", path))
			continue
		}
		qb = qb.Where(sq.Expr("json_extract(payload, ?) = ?", path, sqlValue(value)))
	}

	if filter.OrderBy != "" {
		path, err := payloadPath(filter.OrderBy)
		if err != nil {
			return "", nil, err
		}
		direction := "ASC"
		if filter.Descending {
			direction = "DESC"
		}
		qb = qb.OrderByClause("json_extract(payload, ?) "+direction, path)
	}
	qb = qb.OrderBy("record_id")

	if filter.Limit > 0 {
		qb = qb.Limit(uint64(filter.Limit))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

// buildListDueQuery selects pending entries whose not-before time is unset
// or has passed, oldest first.
func buildListDueQuery(now time.Time) (string, []any, error) {
	query, args, err := sq.Select(queueColumns...).
		From("sync_queue").
		Where(sq.Eq{"status": string(models.StatusPending)}).
		Where(sq.Or{
			sq.Eq{"next_attempt_at": nil},
			sq.LtOrEq{"next_attempt_at": now.UTC()},
		}).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildGetQueueEntryQuery(where sq.Eq) (string, []any, error) {
	query, args, err := sq.Select(queueColumns...).
		From("sync_queue").
		Where(where).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

// buildListQueueQuery lists entries, optionally of one status.
func buildListQueueQuery(status models.QueueStatus, limit int) (string, []any, error) {
	qb := sq.Select(queueColumns...).
		From("sync_queue").
		OrderBy("created_at", "id")

	if status != "" {
		qb = qb.Where(sq.Eq{"status": string(status)})
	}
	if limit > 0 {
		qb = qb.Limit(uint64(limit))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildCountByStatusQuery(status models.QueueStatus) (string, []any, error) {
	query, args, err := sq.Select("COUNT(*)").
		From("sync_queue").
		Where(sq.Eq{"status": string(status)}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

// buildDeleteTerminalEntriesQuery only ever matches completed and failed
// entries. Age counts from the moment an entry reached its terminal status;
// rows settled before that moment was recorded fall back to created_at.
func buildDeleteTerminalEntriesQuery(cutoff time.Time) (string, []any, error) {
	query, args, err := sq.Delete("sync_queue").
		Where(sq.Eq{"status": []string{string(models.StatusCompleted), string(models.StatusFailed)}}).
		Where(sq.Lt{"COALESCE(settled_at, created_at)": cutoff.UTC()}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildDeleteMetadataQuery(cutoff time.Time) (string, []any, error) {
	query, args, err := sq.Delete("sync_metadata").
		Where(sq.Lt{"last_synced_at": cutoff.UTC()}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

// sqlValue binds a json.Number as a number; the driver would otherwise bind
// it as text and json_extract would never match.
func sqlValue(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
