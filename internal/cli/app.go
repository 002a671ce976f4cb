package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-offline-keeper/internal/client"
	"github.com/MKhiriev/go-offline-keeper/internal/config"
	"github.com/MKhiriev/go-offline-keeper/internal/logger"
)

const (
	role = "offline-keeper"

	// defaultMonitorLogFile keeps log lines off the monitor screen when no
	// log file is configured.
	defaultMonitorLogFile = "offline-keeper.log"
)

// loadConfig merges defaults, file, env and flags. Commands that replay
// mutations pass requireRemote.
func loadConfig(opts *RootOptions, requireRemote bool) (*config.StructuredConfig, error) {
	cfg, err := config.Load(opts.Flags)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if requireRemote {
		if err = cfg.RequireRemote(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// withApp builds the runtime, runs fn and closes the store.
func withApp(ctx context.Context, cfg *config.StructuredConfig, log *logger.Logger, fn func(app *client.App) error) error {
	app, err := client.NewApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := app.Close(); closeErr != nil {
			log.Err(closeErr).Str("func", "cli.withApp").Msg("error closing local storage")
		}
	}()

	return fn(app)
}

// runOneShot loads the config, logs to stderr and prints the JSON result of
// fn on stdout.
func runOneShot(cmd *cobra.Command, opts *RootOptions, requireRemote bool, fn func(ctx context.Context, app *client.App) any) error {
	cfg, err := loadConfig(opts, requireRemote)
	if err != nil {
		return err
	}

	log := logger.NewWriterLogger(cmd.ErrOrStderr(), role, cfg.App.LogLevel)
	ctx := log.WithContext(cmd.Context())

	return withApp(ctx, cfg, log, func(app *client.App) error {
		return writeJSON(cmd.OutOrStdout(), fn(ctx, app))
	})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
