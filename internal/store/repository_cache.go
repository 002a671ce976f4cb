package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-offline-keeper/internal/logger"
	"github.com/MKhiriev/go-offline-keeper/models"
)

type cacheRepository struct {
	*DB
	logger *logger.Logger
}

// NewCacheRepository returns the SQLite-backed [CacheRepository].
func NewCacheRepository(db *DB, logger *logger.Logger) CacheRepository {
	return &cacheRepository{
		DB:     db,
		logger: logger,
	}
}

func (c *cacheRepository) ReadRecords(ctx context.Context, table, companyID string, filter models.Filter) ([]models.Record, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildReadRecordsQuery(table, companyID, filter)
	if err != nil {
		log.Err(err).Str("func", "cacheRepository.ReadRecords").Str("table", table).Msg("failed to build read query")
		return nil, err
	}

	rows, err := c.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "cacheRepository.ReadRecords").
			Str("table", table).
			Str("company_id", companyID).
			Msg("failed to execute query for cached records")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	records := make([]models.Record, 0)
	for rows.Next() {
		record, scanErr := scanRecord(rows)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "cacheRepository.ReadRecords").
				Str("table", table).
				Msg("failed to scan cached record row")
			return nil, scanErr
		}
		records = append(records, record)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "cacheRepository.ReadRecords").
			Str("table", table).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRow, rowsErr)
	}

	return records, nil
}

func (c *cacheRepository) GetRecord(ctx context.Context, table, id string) (models.Record, error) {
	record, err := scanRecord(c.DB.QueryRowContext(ctx, getCachedRecord, table, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Record{}, ErrRecordNotFound
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "cacheRepository.GetRecord").
			Str("table", table).
			Str("record_id", id).
			Msg("failed to get cached record")
		return models.Record{}, err
	}
	return record, nil
}

func (c *cacheRepository) GetMetadata(ctx context.Context, table, companyID string) (models.SyncMetadata, error) {
	var meta models.SyncMetadata

	err := c.DB.QueryRowContext(ctx, getSyncMetadata, table, companyID).
		Scan(&meta.Table, &meta.CompanyID, &meta.LastSyncedAt, &meta.RecordCount)
	if errors.Is(err, sql.ErrNoRows) {
		return models.SyncMetadata{}, ErrMetadataNotFound
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "cacheRepository.GetMetadata").
			Str("table", table).
			Str("company_id", companyID).
			Msg("failed to get sync metadata")
		return models.SyncMetadata{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return meta, nil
}

func (c *cacheRepository) ReplaceCollection(ctx context.Context, table, companyID string, records []models.Record, syncedAt time.Time) error {
	err := c.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, deleteCachedCollection, table, companyID); err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
		return writeRecordsAndMetadata(ctx, tx, table, companyID, records, syncedAt)
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "cacheRepository.ReplaceCollection").
			Str("table", table).
			Str("company_id", companyID).
			Int("records", len(records)).
			Msg("failed to replace cached collection")
		return fmt.Errorf("failed to replace collection %s: %w", table, err)
	}
	return nil
}

func (c *cacheRepository) UpsertRecords(ctx context.Context, table, companyID string, records []models.Record, syncedAt time.Time) error {
	err := c.withTx(ctx, func(tx *sql.Tx) error {
		return writeRecordsAndMetadata(ctx, tx, table, companyID, records, syncedAt)
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "cacheRepository.UpsertRecords").
			Str("table", table).
			Str("company_id", companyID).
			Int("records", len(records)).
			Msg("failed to upsert cached records")
		return fmt.Errorf("failed to upsert records into %s: %w", table, err)
	}
	return nil
}

func (c *cacheRepository) DeleteMetadata(ctx context.Context, table, companyID string) error {
	if _, err := c.DB.ExecContext(ctx, deleteSyncMetadata, table, companyID); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "cacheRepository.DeleteMetadata").
			Str("table", table).
			Str("company_id", companyID).
			Msg("failed to delete sync metadata")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

func (c *cacheRepository) DeleteRecord(ctx context.Context, table, id string) error {
	if _, err := c.DB.ExecContext(ctx, deleteCachedRecord, table, id); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "cacheRepository.DeleteRecord").
			Str("table", table).
			Str("record_id", id).
			Msg("failed to delete cached record")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

// writeRecordsAndMetadata upserts records and stamps the metadata with the
// number of records handed over.
func writeRecordsAndMetadata(ctx context.Context, tx *sql.Tx, table, companyID string, records []models.Record, syncedAt time.Time) error {
	for _, record := range records {
		if err := upsertRecord(ctx, tx, table, companyID, record, syncedAt); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, upsertSyncMetadata, table, companyID, syncedAt.UTC(), len(records)); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

func upsertRecord(ctx context.Context, tx *sql.Tx, table, companyID string, record models.Record, at time.Time) error {
	payload, err := encodePayload(record.Payload)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, upsertCachedRecord, table, record.ID, companyID, payload, record.Offline, at.UTC())
	if err != nil {
		return fmt.Errorf("%w: record %s: %w", ErrExecutingStatement, record.ID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (models.Record, error) {
	var (
		record  models.Record
		payload string
	)

	if err := row.Scan(&record.ID, &payload, &record.Offline); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Record{}, err
		}
		return models.Record{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	p, err := decodePayload(payload)
	if err != nil {
		return models.Record{}, err
	}
	record.Payload = p

	return record, nil
}
