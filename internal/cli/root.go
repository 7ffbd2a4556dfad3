// Package cli implements the pitlane service command line.
package cli

import (
	"github.com/spf13/cobra"
)

// BuildInfo carries values stamped in by ldflags.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
	GoVersion string
}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Build      BuildInfo
}

// NewRootCommand creates the root command for the pitlane service.
func NewRootCommand(build BuildInfo) *cobra.Command {
	opts := &RootOptions{Build: build}

	cmd := &cobra.Command{
		Use:           "pitlane",
		Short:         "pitlane - session and lap telemetry service",
		Long:          "Stores racing session and lap telemetry in DuckDB and serves it over HTTP and a local socket.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default is $HOME/.config/pitlane/config.yml)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewIngestCommand(opts))
	cmd.AddCommand(NewVersionCommand(opts))

	return cmd
}
