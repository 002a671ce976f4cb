package workers

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/MKhiriev/go-offline-keeper/internal/logger"
	"github.com/MKhiriev/go-offline-keeper/internal/service"
)

// HousekeepingJob compacts the local store on a cron schedule.
type HousekeepingJob struct {
	housekeeping service.Housekeeping
	schedule     cron.Schedule
	spec         string
	observer     UsageObserver
	logger       *logger.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

// NewHousekeepingJob parses spec, a standard five-field cron expression or a
// descriptor such as "@every 1h". observer may be nil.
func NewHousekeepingJob(housekeeping service.Housekeeping, spec string, observer UsageObserver, log *logger.Logger) (*HousekeepingJob, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid housekeeping schedule %q: %w", spec, err)
	}

	return &HousekeepingJob{
		housekeeping: housekeeping,
		schedule:     schedule,
		spec:         spec,
		observer:     observer,
		logger:       log,
	}, nil
}

// Run performs one housekeeping pass.
func (j *HousekeepingJob) Run(ctx context.Context) {
	report := j.housekeeping.Cleanup(ctx)
	usage := j.housekeeping.EstimateStorageUsage(ctx)

	if j.observer != nil {
		j.observer.ObserveCleanup(report)
		j.observer.ObserveStorage(usage)
	}

	if usage.IsNearLimit {
		j.logger.Warn().
			Str("func", "HousekeepingJob.Run").
			Int64("usage_bytes", usage.UsageBytes).
			Float64("usage_mb", usage.UsageMB).
			Msg("local store is close to its size limit")
	}
}

// Start implements Worker. One pass runs right away, before the schedule
// takes over.
func (j *HousekeepingJob) Start(ctx context.Context) {
	j.Stop()

	j.Run(ctx)

	c := cron.New()
	c.Schedule(j.schedule, cron.FuncJob(func() { j.Run(ctx) }))

	j.mu.Lock()
	j.cron = c
	j.mu.Unlock()

	c.Start()
	j.logger.Info().Str("schedule", j.spec).Msg("housekeeping job started")
}

// Stop implements Worker. It waits for a running pass to finish.
func (j *HousekeepingJob) Stop() {
	j.mu.Lock()
	c := j.cron
	j.cron = nil
	j.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}
