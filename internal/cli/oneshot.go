package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-offline-keeper/internal/client"
)

// NewSyncCommand creates the sync command.
func NewSyncCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Drain the queue once and print the report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOneShot(cmd, opts, true, func(ctx context.Context, app *client.App) any {
				return app.Services().Sync.ProcessQueue(ctx)
			})
		},
	}
}

// NewRetryCommand creates the retry command.
func NewRetryCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "retry",
		Short: "Reset failed entries and drain the queue once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOneShot(cmd, opts, true, func(ctx context.Context, app *client.App) any {
				return app.Services().Sync.RetryFailed(ctx)
			})
		},
	}
}

// NewCleanupCommand creates the cleanup command.
func NewCleanupCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove terminal queue entries and stale metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOneShot(cmd, opts, false, func(ctx context.Context, app *client.App) any {
				return app.Services().Housekeeping.Cleanup(ctx)
			})
		},
	}
}

// NewStatusCommand creates the status command.
func NewStatusCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print queue counts and the online flag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOneShot(cmd, opts, false, func(ctx context.Context, app *client.App) any {
				return app.Services().Sync.Status(ctx)
			})
		},
	}
}

// NewUsageCommand creates the usage command.
func NewUsageCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Print the local storage usage estimate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOneShot(cmd, opts, false, func(ctx context.Context, app *client.App) any {
				return app.Services().Housekeeping.EstimateStorageUsage(ctx)
			})
		},
	}
}
