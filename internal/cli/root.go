// Package cli builds the offline-keeper command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-offline-keeper/internal/config"
	"github.com/MKhiriev/go-offline-keeper/models"
)

// RootOptions holds the persistent flags shared by every command.
type RootOptions struct {
	Flags *config.Flags
	Build models.AppBuildInfo
}

// NewRootCommand creates the root command and its subcommands.
func NewRootCommand(build models.AppBuildInfo) *cobra.Command {
	opts := &RootOptions{Build: build}

	cmd := &cobra.Command{
		Use:           "offline-keeper",
		Short:         "Offline cache and mutation sync agent",
		Long:          "Keeps accounting data usable without a connection: caches collections locally, queues writes and replays them once the backend is reachable.",
		Version:       build.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	opts.Flags = config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMonitorCommand(opts))
	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewRetryCommand(opts))
	cmd.AddCommand(NewCleanupCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewUsageCommand(opts))

	return cmd
}
