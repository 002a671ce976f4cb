package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-offline-keeper/internal/config"
	"github.com/MKhiriev/go-offline-keeper/internal/logger"
)

func newTestStorages(t *testing.T) *ClientStorages {
	t.Helper()

	cfg := config.Storage{DB: config.DB{DSN: filepath.Join(t.TempDir(), "nested", "keeper.db")}}
	s, err := NewClientStorages(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
