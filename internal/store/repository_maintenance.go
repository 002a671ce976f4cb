package store

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/go-offline-keeper/internal/logger"
)

type maintenanceRepository struct {
	*DB
	logger *logger.Logger
}

// NewMaintenanceRepository returns the SQLite-backed [MaintenanceRepository].
func NewMaintenanceRepository(db *DB, logger *logger.Logger) MaintenanceRepository {
	return &maintenanceRepository{
		DB:     db,
		logger: logger,
	}
}

func (m *maintenanceRepository) DeleteTerminalEntriesBefore(ctx context.Context, cutoff time.Time) (int, error) {
	query, args, err := buildDeleteTerminalEntriesQuery(cutoff)
	if err != nil {
		return 0, err
	}
	return m.delete(ctx, "maintenanceRepository.DeleteTerminalEntriesBefore", query, args)
}

func (m *maintenanceRepository) DeleteMetadataBefore(ctx context.Context, cutoff time.Time) (int, error) {
	query, args, err := buildDeleteMetadataQuery(cutoff)
	if err != nil {
		return 0, err
	}
	return m.delete(ctx, "maintenanceRepository.DeleteMetadataBefore", query, args)
}

func (m *maintenanceRepository) UsageBytes(ctx context.Context) (int64, error) {
	var size int64
	if err := m.DB.QueryRowContext(ctx, databaseSize).Scan(&size); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "maintenanceRepository.UsageBytes").
			Msg("failed to read database size")
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return size, nil
}

func (m *maintenanceRepository) delete(ctx context.Context, fn, query string, args []any) (int, error) {
	log := logger.FromContext(ctx)

	result, err := m.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", fn).Msg("failed to execute housekeeping delete")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		log.Err(err).Str("func", fn).Msg("failed to get rows affected")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return int(affected), nil
}
