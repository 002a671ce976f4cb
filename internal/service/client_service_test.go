package service

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-offline-keeper/internal/config"
	"github.com/MKhiriev/go-offline-keeper/internal/logger"
	"github.com/MKhiriev/go-offline-keeper/internal/mock"
	"github.com/MKhiriev/go-offline-keeper/internal/store"
	"github.com/MKhiriev/go-offline-keeper/internal/utils"
	"github.com/MKhiriev/go-offline-keeper/models"
)

var baseTime = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

type fakeConnectivity struct {
	offline atomic.Bool
}

func (c *fakeConnectivity) Online() bool { return !c.offline.Load() }

type sequentialIDs struct {
	n atomic.Int64
}

func (g *sequentialIDs) Generate() string {
	return "local-" + string(rune('a'+g.n.Add(1)-1))
}

type testEnv struct {
	storages *store.ClientStorages
	remote   *mock.MockRemoteStore
	clock    *utils.FakeClock
	conn     *fakeConnectivity
	services *ClientServices
}

func testConfig() *config.StructuredConfig {
	return &config.StructuredConfig{
		Sync:         config.Sync{ImmediateRetry: true},
		Housekeeping: config.Housekeeping{Retention: 24 * time.Hour},
		Storage:      config.Storage{SoftCapBytes: 1 << 20, QuotaBytes: 4 << 20},
	}
}

func newTestStorages(t *testing.T) *store.ClientStorages {
	t.Helper()

	cfg := config.Storage{DB: config.DB{DSN: filepath.Join(t.TempDir(), "keeper.db")}}
	s, err := store.NewClientStorages(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestEnv(t *testing.T, cfg *config.StructuredConfig) *testEnv {
	t.Helper()

	ctrl := gomock.NewController(t)
	remote := mock.NewMockRemoteStore(ctrl)
	remote.EXPECT().UserID().Return("user-1").AnyTimes()

	env := &testEnv{
		storages: newTestStorages(t),
		remote:   remote,
		clock:    utils.NewFakeClock(baseTime),
		conn:     &fakeConnectivity{},
	}
	env.services = NewClientServices(env.storages, remote, env.conn, cfg, logger.Nop(),
		WithClock(env.clock),
		WithIDGenerator(&sequentialIDs{}),
	)
	return env
}

func (e *testEnv) enqueue(t *testing.T, req models.EnqueueRequest) string {
	t.Helper()

	id, err := e.services.Queue.Enqueue(context.Background(), req)
	require.NoError(t, err)
	return id
}

func (e *testEnv) entry(t *testing.T, localID string) models.QueueEntry {
	t.Helper()

	entry, err := e.storages.QueueRepository.GetByLocalID(context.Background(), localID)
	require.NoError(t, err)
	return entry
}

// rawEnqueue stores an entry without going through the mutation queue.
func (e *testEnv) rawEnqueue(t *testing.T, entry models.QueueEntry) {
	t.Helper()

	if entry.Status == "" {
		entry.Status = models.StatusPending
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = e.clock.Now()
	}
	_, err := e.storages.QueueRepository.Enqueue(context.Background(), entry, nil)
	require.NoError(t, err)
}
