package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVersionCommand prints build information.
func NewVersionCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			b := opts.Build
			fmt.Fprintf(out, "pitlane - Telemetry Service\n")
			fmt.Fprintf(out, "  Version:    %s\n", b.Version)
			fmt.Fprintf(out, "  Commit:     %s\n", b.Commit)
			fmt.Fprintf(out, "  Built:      %s\n", b.BuildTime)
			fmt.Fprintf(out, "  Go version: %s\n", b.GoVersion)
		},
	}
}
