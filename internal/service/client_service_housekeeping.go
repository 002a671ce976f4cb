package service

import (
	"context"
	"math"

	"github.com/MKhiriev/go-offline-keeper/internal/config"
	"github.com/MKhiriev/go-offline-keeper/internal/logger"
	"github.com/MKhiriev/go-offline-keeper/internal/store"
	"github.com/MKhiriev/go-offline-keeper/internal/utils"
	"github.com/MKhiriev/go-offline-keeper/models"
)

type housekeeping struct {
	storages  *store.ClientStorages
	estimator UsageEstimator
	retention config.Housekeeping
	limits    config.Storage
	clock     utils.Clock

	logger *logger.Logger
}

// NewHousekeeping returns the compaction service. estimator may be nil, in
// which case usage is reported as unknown.
func NewHousekeeping(
	storages *store.ClientStorages,
	estimator UsageEstimator,
	retention config.Housekeeping,
	limits config.Storage,
	clock utils.Clock,
	log *logger.Logger,
) Housekeeping {
	return &housekeeping{
		storages:  storages,
		estimator: estimator,
		retention: retention,
		limits:    limits,
		clock:     clock,
		logger:    log,
	}
}

func (h *housekeeping) Cleanup(ctx context.Context) models.CleanupReport {
	log := logger.FromContext(ctx)

	var report models.CleanupReport
	if h.storages == nil {
		return report
	}

	cutoff := h.clock.Now().Add(-h.retention.Retention)

	entries, err := h.storages.MaintenanceRepository.DeleteTerminalEntriesBefore(ctx, cutoff)
	if err != nil {
		log.Err(err).Str("func", "housekeeping.Cleanup").Msg("failed to delete old queue entries")
	}

	metadata, err := h.storages.MaintenanceRepository.DeleteMetadataBefore(ctx, cutoff)
	if err != nil {
		log.Err(err).Str("func", "housekeeping.Cleanup").Msg("failed to delete old sync metadata")
	}

	report.DeletedEntries = entries
	report.DeletedMetadata = metadata
	report.DeletedRecords = entries + metadata

	log.Info().
		Str("func", "housekeeping.Cleanup").
		Time("cutoff", cutoff).
		Int("deleted_entries", entries).
		Int("deleted_metadata", metadata).
		Msg("local store compacted")

	return report
}

func (h *housekeeping) EstimateStorageUsage(ctx context.Context) models.StorageUsage {
	usage := models.StorageUsage{QuotaBytes: h.limits.QuotaBytes}
	if h.estimator == nil {
		return usage
	}

	used, err := h.estimator.UsageBytes(ctx)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "housekeeping.EstimateStorageUsage").Msg("storage usage unknown")
		return usage
	}

	usage.Known = true
	usage.UsageBytes = used
	usage.UsageMB = math.Round(float64(used)/(1024*1024)*100) / 100
	usage.IsNearLimit = h.limits.SoftCapBytes > 0 && used > h.limits.SoftCapBytes
	return usage
}
