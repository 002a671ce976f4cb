package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-offline-keeper/internal/config"
	"github.com/MKhiriev/go-offline-keeper/models"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("REMOTE_URL", "")
	t.Setenv("CONFIG", "")

	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand(models.NewAppBuildInfo("1.2.0", "", ""))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand(models.NewAppBuildInfo("1.2.0", "", "abc"))
	require.NotNil(t, cmd)
	assert.Equal(t, "offline-keeper", cmd.Use)
	assert.Equal(t, "1.2.0 (built N/A, commit abc)", cmd.Version)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand(models.AppBuildInfo{})
	commands := []string{"serve", "monitor", "sync", "retry", "cleanup", "status", "usage"}

	for _, name := range commands {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand(models.AppBuildInfo{})

	for _, name := range []string{"config", "dsn", "remote-url", "api-key", "access-token", "address", "log-level", "company-id"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
	assert.Equal(t, "d", cmd.PersistentFlags().Lookup("dsn").Shorthand)
}

func TestStatusCommand(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "keeper.db")

	out, err := execute(t, "--dsn", dsn, "status")
	require.NoError(t, err)

	var status models.SyncStatus
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.Zero(t, status.PendingCount)
	assert.False(t, status.Online)
}

func TestUsageCommand(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "keeper.db")

	out, err := execute(t, "--dsn", dsn, "usage")
	require.NoError(t, err)

	var usage models.StorageUsage
	require.NoError(t, json.Unmarshal([]byte(out), &usage))
	assert.True(t, usage.Known)
	assert.Positive(t, usage.UsageBytes)
}

func TestCleanupCommand(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "keeper.db")

	out, err := execute(t, "--dsn", dsn, "cleanup")
	require.NoError(t, err)
	assert.JSONEq(t, `{"deletedRecords":0,"deletedEntries":0,"deletedMetadata":0}`, out)
}

func TestRemoteRequired(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "keeper.db")

	for _, name := range []string{"sync", "retry", "serve", "monitor"} {
		t.Run(name, func(t *testing.T) {
			_, err := execute(t, "--dsn", dsn, name)
			assert.ErrorIs(t, err, config.ErrRemoteURLRequired)
		})
	}
}

func TestSyncCommand_Unreachable(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "keeper.db")

	out, err := execute(t, "--dsn", dsn, "--remote-url", "http://127.0.0.1:1", "sync")
	require.NoError(t, err)

	var report models.SyncReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Zero(t, report.Synced)
	assert.Zero(t, report.Pending)
}

func TestUnknownArgs(t *testing.T) {
	_, err := execute(t, "status", "extra")
	assert.Error(t, err)
}
