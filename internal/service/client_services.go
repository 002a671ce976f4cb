package service

import (
	"context"

	"github.com/MKhiriev/go-offline-keeper/internal/adapter"
	"github.com/MKhiriev/go-offline-keeper/internal/config"
	"github.com/MKhiriev/go-offline-keeper/internal/logger"
	"github.com/MKhiriev/go-offline-keeper/internal/policy"
	"github.com/MKhiriev/go-offline-keeper/internal/store"
	"github.com/MKhiriev/go-offline-keeper/internal/utils"
)

// ClientServices groups the offline services built over one local store and
// one remote store.
type ClientServices struct {
	Cache        CacheReader
	Queue        MutationQueue
	Sync         SyncEngine
	Housekeeping Housekeeping
	Query        QueryService
	Session      SessionService

	// Status publishes a SyncStatus after every enqueue and around every
	// drain.
	Status *StatusHub
}

type options struct {
	clock     utils.Clock
	ids       IDGenerator
	observer  Observer
	freshness *policy.FreshnessPolicy
	guard     *policy.SafetyGuard
}

// Option customises NewClientServices.
type Option func(*options)

// WithClock replaces the system clock.
func WithClock(clock utils.Clock) Option {
	return func(o *options) { o.clock = clock }
}

// WithIDGenerator replaces the UUIDv7 local id generator.
func WithIDGenerator(ids IDGenerator) Option {
	return func(o *options) { o.ids = ids }
}

// WithObserver registers an observer of drains and status changes.
func WithObserver(observer Observer) Option {
	return func(o *options) { o.observer = observer }
}

// WithFreshnessPolicy replaces the built-in table tiers.
func WithFreshnessPolicy(p *policy.FreshnessPolicy) Option {
	return func(o *options) { o.freshness = p }
}

// WithSafetyGuard replaces the built-in safety rules.
func WithSafetyGuard(g *policy.SafetyGuard) Option {
	return func(o *options) { o.guard = g }
}

// NewClientServices wires the offline services. storages may be nil when the
// local store could not be opened; every service then degrades as described
// on its interface. remote may be nil for a cache-only deployment, and a nil
// connectivity means the remote is always considered reachable.
func NewClientServices(
	storages *store.ClientStorages,
	remote adapter.RemoteStore,
	connectivity Connectivity,
	cfg *config.StructuredConfig,
	log *logger.Logger,
	opts ...Option,
) *ClientServices {
	o := options{
		clock:     utils.SystemClock{},
		ids:       utils.NewUUIDGenerator(),
		freshness: policy.NewFreshnessPolicy(nil),
		guard:     policy.NewSafetyGuard(policy.DefaultSafetyRules()),
	}
	for _, opt := range opts {
		opt(&o)
	}

	var estimator UsageEstimator
	if storages != nil {
		estimator = storages.MaintenanceRepository
	}

	hub := NewStatusHub()

	cache := NewCacheReader(storages, o.freshness, o.clock, log)

	engine := newSyncEngine(storages, remote, connectivity, o.guard, cfg.Sync, o.clock, log)
	engine.hub = hub
	engine.observer = o.observer

	queue := &mutationQueue{
		storages:  storages,
		remote:    remote,
		guard:     o.guard,
		freshness: o.freshness,
		ids:       o.ids,
		clock:     o.clock,
		notify:    func(ctx context.Context) { engine.notify(ctx) },
		logger:    log,
	}

	return &ClientServices{
		Cache:        cache,
		Queue:        queue,
		Sync:         engine,
		Housekeeping: NewHousekeeping(storages, estimator, cfg.Housekeeping, cfg.Storage, o.clock, log),
		Query:        NewQueryService(cache, remote, connectivity, o.freshness, o.clock, log),
		Session:      &sessionService{remote: remote, notify: engine.notify, logger: log},
		Status:       hub,
	}
}
