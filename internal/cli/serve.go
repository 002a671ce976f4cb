package cli

import (
	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-offline-keeper/internal/client"
	"github.com/MKhiriev/go-offline-keeper/internal/logger"
)

// NewServeCommand creates the serve command.
func NewServeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the workers and the local HTTP API",
		Long: `Run the background workers (queue drain, connectivity monitor,
housekeeping) and expose the cache, queue and sync operations over a
localhost HTTP API until interrupted.

Example:
  offline-keeper serve --remote-url https://api.example.fr --address 127.0.0.1:8787`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts, true)
			if err != nil {
				return err
			}

			log := logger.NewFileLogger(role, cfg.App.LogLevel, cfg.App.LogFile)
			log.Info().Str("build", opts.Build.String()).Msg("starting offline keeper")

			ctx := log.WithContext(cmd.Context())
			return withApp(ctx, cfg, log, func(app *client.App) error {
				return app.Serve(ctx)
			})
		},
	}
}

// NewMonitorCommand creates the monitor command.
func NewMonitorCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Run the workers behind a terminal monitor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts, true)
			if err != nil {
				return err
			}

			logFile := cfg.App.LogFile
			if logFile == "" {
				logFile = defaultMonitorLogFile
			}
			log := logger.NewFileLogger(role, cfg.App.LogLevel, logFile)

			ctx := log.WithContext(cmd.Context())
			return withApp(ctx, cfg, log, func(app *client.App) error {
				return app.Monitor(ctx)
			})
		},
	}
}
