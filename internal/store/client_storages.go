package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-offline-keeper/internal/config"
	"github.com/MKhiriev/go-offline-keeper/internal/logger"
)

// ClientStorages groups all local storage repositories into a single value
// that can be passed around the service layer.
type ClientStorages struct {
	// CacheRepository holds cached collections and their sync metadata.
	CacheRepository CacheRepository

	// QueueRepository holds the offline mutation queue.
	QueueRepository QueueRepository

	// MaintenanceRepository runs housekeeping deletes and size estimates.
	MaintenanceRepository MaintenanceRepository

	db *DB
}

// NewClientStorages initialises the local storage layer using the supplied
// configuration and logger. It performs the following steps:
//  1. Opens an SQLite connection to the file path specified in cfg.DB.DSN,
//     creating missing parent directories.
//  2. Runs pending schema migrations via [DB.Migrate].
//  3. Constructs the repositories over the shared connection.
//
// Every failure is wrapped in [ErrStorageUnavailable] so callers can fall
// back to online-only behaviour.
func NewClientStorages(ctx context.Context, cfg config.Storage, logger *logger.Logger) (*ClientStorages, error) {
	logger.Info().Str("dsn", cfg.DB.DSN).Msg("creating new storages...")

	db, err := NewConnectSQLite(ctx, cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err = db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: migration failed: %w", ErrStorageUnavailable, err)
	}

	return NewClientStoragesFromDB(db, logger), nil
}

// NewClientStoragesFromDB builds the repositories over an already prepared
// connection.
func NewClientStoragesFromDB(db *DB, logger *logger.Logger) *ClientStorages {
	return &ClientStorages{
		CacheRepository:       NewCacheRepository(db, logger),
		QueueRepository:       NewQueueRepository(db, logger),
		MaintenanceRepository: NewMaintenanceRepository(db, logger),
		db:                    db,
	}
}

// Close releases the database connection.
func (s *ClientStorages) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
