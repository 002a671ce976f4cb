package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-offline-keeper/internal/logger"
	"github.com/MKhiriev/go-offline-keeper/internal/policy"
	"github.com/MKhiriev/go-offline-keeper/internal/store"
	"github.com/MKhiriev/go-offline-keeper/internal/utils"
	"github.com/MKhiriev/go-offline-keeper/models"
)

type cacheReader struct {
	storages  *store.ClientStorages
	freshness *policy.FreshnessPolicy
	clock     utils.Clock

	logger *logger.Logger
}

// NewCacheReader returns a [CacheReader] over storages. A nil storages makes
// every read stale and every commit fail with store.ErrStorageUnavailable.
func NewCacheReader(storages *store.ClientStorages, freshness *policy.FreshnessPolicy, clock utils.Clock, log *logger.Logger) CacheReader {
	return &cacheReader{
		storages:  storages,
		freshness: freshness,
		clock:     clock,
		logger:    log,
	}
}

func (c *cacheReader) Read(ctx context.Context, req models.ReadRequest) models.ReadResult {
	log := logger.FromContext(ctx)

	result := models.ReadResult{Records: []models.Record{}}
	if req.Table == "" {
		result.Error = ErrInvalidRequest.Error()
		return result
	}
	if c.storages == nil {
		result.Error = store.ErrStorageUnavailable.Error()
		return result
	}

	meta, err := c.storages.CacheRepository.GetMetadata(ctx, req.Table, req.CompanyID)
	switch {
	case errors.Is(err, store.ErrMetadataNotFound):
	case err != nil:
		log.Err(err).Str("func", "cacheReader.Read").Str("table", req.Table).Msg("failed to read sync metadata")
		result.Error = err.Error()
		return result
	default:
		last := meta.LastSyncedAt
		result.LastSyncedAt = &last
		result.Fresh = c.freshness.IsFresh(last, req.Table, c.clock.Now())
	}

	records, err := c.storages.CacheRepository.ReadRecords(ctx, req.Table, req.CompanyID, req.Filter)
	if err != nil {
		log.Err(err).Str("func", "cacheReader.Read").Str("table", req.Table).Msg("failed to read cached records")
		result.Fresh = false
		result.Error = err.Error()
		return result
	}

	result.Records = records
	result.FromCache = true
	return result
}

func (c *cacheReader) CommitRefresh(ctx context.Context, table, companyID string, records []models.Record) error {
	if err := c.checkCommit(table); err != nil {
		return err
	}

	if err := c.storages.CacheRepository.ReplaceCollection(ctx, table, companyID, records, c.clock.Now()); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "cacheReader.CommitRefresh").
			Str("table", table).
			Int("records", len(records)).
			Msg("failed to commit refresh")
		return fmt.Errorf("commit refresh of %s: %w", table, err)
	}
	return nil
}

func (c *cacheReader) CommitPartial(ctx context.Context, table, companyID string, records []models.Record) error {
	if err := c.checkCommit(table); err != nil {
		return err
	}

	if err := c.storages.CacheRepository.UpsertRecords(ctx, table, companyID, records, c.clock.Now()); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "cacheReader.CommitPartial").
			Str("table", table).
			Int("records", len(records)).
			Msg("failed to commit partial refresh")
		return fmt.Errorf("commit partial refresh of %s: %w", table, err)
	}
	return nil
}

func (c *cacheReader) checkCommit(table string) error {
	if table == "" {
		return ErrInvalidRequest
	}
	if c.storages == nil {
		return store.ErrStorageUnavailable
	}
	return nil
}

func (c *cacheReader) Invalidate(ctx context.Context, table, companyID string) error {
	if err := c.checkCommit(table); err != nil {
		return err
	}
	return c.storages.CacheRepository.DeleteMetadata(ctx, table, companyID)
}

func (c *cacheReader) LastSyncTime(ctx context.Context, table, companyID string) *time.Time {
	if c.storages == nil || table == "" {
		return nil
	}

	meta, err := c.storages.CacheRepository.GetMetadata(ctx, table, companyID)
	if err != nil {
		return nil
	}
	last := meta.LastSyncedAt
	return &last
}
