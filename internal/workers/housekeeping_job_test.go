package workers

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-offline-keeper/internal/logger"
	"github.com/MKhiriev/go-offline-keeper/models"
)

type spyHousekeeping struct {
	mu    sync.Mutex
	calls []string
	usage models.StorageUsage
}

func (s *spyHousekeeping) Cleanup(context.Context) models.CleanupReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "cleanup")
	return models.CleanupReport{DeletedRecords: 2, DeletedEntries: 2}
}

func (s *spyHousekeeping) EstimateStorageUsage(context.Context) models.StorageUsage {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "usage")
	return s.usage
}

type spyUsageObserver struct {
	cleanups []models.CleanupReport
	usages   []models.StorageUsage
}

func (o *spyUsageObserver) ObserveCleanup(r models.CleanupReport) { o.cleanups = append(o.cleanups, r) }
func (o *spyUsageObserver) ObserveStorage(u models.StorageUsage)  { o.usages = append(o.usages, u) }

func TestHousekeepingJob_Run(t *testing.T) {
	hk := &spyHousekeeping{usage: models.StorageUsage{Known: true, UsageBytes: 10, IsNearLimit: true}}
	observer := &spyUsageObserver{}

	job, err := NewHousekeepingJob(hk, "@every 1h", observer, logger.Nop())
	require.NoError(t, err)

	job.Run(context.Background())

	assert.Equal(t, []string{"cleanup", "usage"}, hk.calls)
	assert.Equal(t, []models.CleanupReport{{DeletedRecords: 2, DeletedEntries: 2}}, observer.cleanups)
	assert.Equal(t, []models.StorageUsage{hk.usage}, observer.usages)
}

func TestHousekeepingJob_InvalidSchedule(t *testing.T) {
	_, err := NewHousekeepingJob(&spyHousekeeping{}, "every hour", nil, logger.Nop())
	assert.Error(t, err)
}

func TestHousekeepingJob_StandardSpec(t *testing.T) {
	job, err := NewHousekeepingJob(&spyHousekeeping{}, "30 3 * * *", nil, logger.Nop())
	require.NoError(t, err)

	job.Run(context.Background())
}

func TestHousekeepingJob_StartStop(t *testing.T) {
	job, err := NewHousekeepingJob(&spyHousekeeping{}, "@every 1h", nil, logger.Nop())
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		job.Stop()
		job.Start(context.Background())
		job.Start(context.Background())
		job.Stop()
		job.Stop()
	})
}

func TestHousekeepingJob_StartRunsImmediately(t *testing.T) {
	hk := &spyHousekeeping{}
	observer := &spyUsageObserver{}

	job, err := NewHousekeepingJob(hk, "@every 1h", observer, logger.Nop())
	require.NoError(t, err)

	job.Start(context.Background())
	defer job.Stop()

	// расписание раз в час, но первый проход уже выполнен
	hk.mu.Lock()
	assert.Equal(t, []string{"cleanup", "usage"}, hk.calls)
	hk.mu.Unlock()
	assert.Len(t, observer.cleanups, 1)
}
