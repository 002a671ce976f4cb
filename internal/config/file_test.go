package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseFile_YAML(t *testing.T) {
	path := writeConfigFile(t, "keeper.yaml", `
app:
  log_level: debug
  company_id: acme
storage:
  dsn: /data/keeper.db
  soft_cap_bytes: 1024
remote:
  url: https://project.example.co
  request_timeout: 3s
  rate_limit: 4
sync:
  retry_backoff: 1m
  max_backoff: 5m
  keep_completed: true
workers:
  sync_interval: 2m
  connectivity_interval: 10s
  housekeeping_schedule: "@daily"
housekeeping:
  retention: 48h
`)

	cfg, err := parseFile(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, "acme", cfg.App.CompanyID)
	assert.Equal(t, "/data/keeper.db", cfg.Storage.DB.DSN)
	assert.Equal(t, int64(1024), cfg.Storage.SoftCapBytes)
	assert.Equal(t, "https://project.example.co", cfg.Remote.URL)
	assert.Equal(t, 3*time.Second, cfg.Remote.RequestTimeout)
	assert.InDelta(t, 4.0, cfg.Remote.RateLimit, 0.0001)
	assert.Equal(t, time.Minute, cfg.Sync.RetryBackoff)
	assert.Equal(t, 5*time.Minute, cfg.Sync.MaxBackoff)
	assert.True(t, cfg.Sync.KeepCompleted)
	assert.Equal(t, 2*time.Minute, cfg.Workers.SyncInterval)
	assert.Equal(t, 10*time.Second, cfg.Workers.ConnectivityInterval)
	assert.Equal(t, "@daily", cfg.Workers.HousekeepingSchedule)
	assert.Equal(t, 48*time.Hour, cfg.Housekeeping.Retention)
}

func TestParseFile_JSON(t *testing.T) {
	path := writeConfigFile(t, "keeper.json", `{
		"storage": {"dsn": "/data/keeper.db"},
		"server": {"http_address": "127.0.0.1:9001"},
		"remote": {"request_timeout": 2000000000},
		"housekeeping": {"retention": "72h"}
	}`)

	cfg, err := parseFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/keeper.db", cfg.Storage.DB.DSN)
	assert.Equal(t, "127.0.0.1:9001", cfg.Server.HTTPAddress)
	assert.Equal(t, 2*time.Second, cfg.Remote.RequestTimeout)
	assert.Equal(t, 72*time.Hour, cfg.Housekeeping.Retention)
}

func TestParseFile_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := parseFile(filepath.Join(t.TempDir(), "absent.json"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error reading config file")
	})

	t.Run("broken json", func(t *testing.T) {
		_, err := parseFile(writeConfigFile(t, "bad.json", `{"storage":`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error decoding json configs")
	})

	t.Run("bad yaml duration", func(t *testing.T) {
		_, err := parseFile(writeConfigFile(t, "bad.yml", "sync:\n  retry_backoff: soon\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error decoding yaml configs")
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := parseFile(writeConfigFile(t, "keeper.toml", "a = 1"))
		assert.True(t, errors.Is(err, ErrUnsupportedConfigFile))
	})
}

func TestDuration_JSONRoundTrip(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalJSON([]byte(`"90s"`)))
	assert.Equal(t, 90*time.Second, time.Duration(d))

	out, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"1m30s"`, string(out))

	assert.Error(t, d.UnmarshalJSON([]byte(`"ninety"`)))
}
