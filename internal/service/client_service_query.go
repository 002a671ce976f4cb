package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/MKhiriev/go-offline-keeper/internal/adapter"
	"github.com/MKhiriev/go-offline-keeper/internal/logger"
	"github.com/MKhiriev/go-offline-keeper/internal/policy"
	"github.com/MKhiriev/go-offline-keeper/internal/utils"
	"github.com/MKhiriev/go-offline-keeper/models"
)

// preloadConcurrency bounds parallel fetches during Preload.
const preloadConcurrency = 3

type queryService struct {
	cache        CacheReader
	remote       adapter.RemoteStore
	connectivity Connectivity
	freshness    *policy.FreshnessPolicy
	clock        utils.Clock

	logger *logger.Logger
}

// NewQueryService returns the read-through query. remote may be nil, which
// makes every query cache-only.
func NewQueryService(
	cache CacheReader,
	remote adapter.RemoteStore,
	connectivity Connectivity,
	freshness *policy.FreshnessPolicy,
	clock utils.Clock,
	log *logger.Logger,
) QueryService {
	return &queryService{
		cache:        cache,
		remote:       remote,
		connectivity: connectivity,
		freshness:    freshness,
		clock:        clock,
		logger:       log,
	}
}

func (s *queryService) Query(ctx context.Context, req models.ReadRequest) models.ReadResult {
	log := logger.FromContext(ctx)

	cached := s.cache.Read(ctx, req)
	if cached.Fresh || req.Table == "" {
		return cached
	}

	if s.remote == nil || (s.connectivity != nil && !s.connectivity.Online()) {
		return fallback(cached, ErrOffline)
	}

	records, err := s.remote.Fetch(ctx, req.Table, req.Filter)
	if err != nil {
		log.Warn().Err(err).Str("func", "queryService.Query").Str("table", req.Table).Msg("remote fetch failed, serving cache")
		return fallback(cached, err)
	}

	if s.freshness.Cacheable(req.Table) {
		commit := s.cache.CommitRefresh
		if !req.Filter.IsZero() {
			commit = s.cache.CommitPartial
		}
		if err = commit(ctx, req.Table, req.CompanyID, records); err != nil {
			log.Warn().Err(err).Str("func", "queryService.Query").Str("table", req.Table).Msg("fetched records were not cached")
		}
	}

	if records == nil {
		records = []models.Record{}
	}

	now := s.clock.Now()
	return models.ReadResult{
		Fresh:        true,
		LastSyncedAt: &now,
		Records:      records,
	}
}

func fallback(cached models.ReadResult, err error) models.ReadResult {
	cached.FromCache = true
	if cached.Error == "" {
		cached.Error = err.Error()
	}
	return cached
}

func (s *queryService) Preload(ctx context.Context, companyID string) error {
	log := logger.FromContext(ctx)

	var g errgroup.Group
	g.SetLimit(preloadConcurrency)

	for _, table := range policy.ReferenceTables {
		g.Go(func() error {
			result := s.Query(ctx, models.ReadRequest{Table: table, CompanyID: companyID})
			if result.Error != "" && !result.Fresh {
				log.Warn().
					Str("func", "queryService.Preload").
					Str("table", table).
					Str("company_id", companyID).
					Str("error", result.Error).
					Msg("reference data not preloaded")
				return fmt.Errorf("preload %s: %s", table, result.Error)
			}
			return nil
		})
	}

	return g.Wait()
}
