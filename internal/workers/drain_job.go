package workers

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-offline-keeper/internal/logger"
	"github.com/MKhiriev/go-offline-keeper/internal/service"
)

// DefaultDrainInterval is used when a non-positive interval is configured.
const DefaultDrainInterval = 5 * time.Minute

// DrainJob drains the mutation queue on a ticker.
type DrainJob struct {
	engine   service.SyncEngine
	interval time.Duration
	logger   *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDrainJob creates a DrainJob that calls engine.ProcessQueue every
// interval. The job is idle until Start is called.
func NewDrainJob(engine service.SyncEngine, interval time.Duration, log *logger.Logger) *DrainJob {
	if interval <= 0 {
		interval = DefaultDrainInterval
	}
	return &DrainJob{engine: engine, interval: interval, logger: log}
}

// Start implements Worker. It stops any previously running job, then
// launches a goroutine that drains every interval until ctx is cancelled or
// Stop is called.
func (j *DrainJob) Start(ctx context.Context) {
	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	j.logger.Info().Dur("interval", j.interval).Msg("drain job started")

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(j.interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				report := j.engine.ProcessQueue(jobCtx)
				if report.Skipped != "" {
					j.logger.Debug().Str("func", "DrainJob.Start").Str("skipped", report.Skipped).Msg("scheduled drain skipped")
				}
			}
		}
	}()
}

// Stop implements Worker.
func (j *DrainJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}
