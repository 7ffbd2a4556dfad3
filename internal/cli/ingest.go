package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tinytelemetry/pitlane/internal/duckdb"
	"github.com/tinytelemetry/pitlane/internal/ingest"
)

// NewIngestCommand loads dataset files into the store.
func NewIngestCommand(opts *RootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "ingest <file>...",
		Short: "Load session and lap datasets (YAML or JSON) into the store",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.ConfigPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "loading config", err)
			}
			if dbPath != "" {
				cfg.DBPath = dbPath
			}

			cleanupLogger := ConfigureRuntimeLogger("pitlane")
			defer cleanupLogger()

			store, err := duckdb.NewStore(cfg.DBPath, cfg.QueryTimeout)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to initialize DuckDB", err)
			}
			defer store.Close()

			sum, err := ingest.NewLoader(store).LoadFiles(cmd.Context(), args...)
			fmt.Fprintf(cmd.OutOrStdout(), "Ingested %s into %s\n", sum, shortenPath(cfg.DBPath))
			if err != nil {
				return WrapExitError(ExitCommandError, "ingest aborted", err)
			}
			if sum.SkippedSessions > 0 {
				return NewExitError(ExitFailure, fmt.Sprintf("%d sessions skipped, see the log for details", sum.SkippedSessions))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "DuckDB database path")

	return cmd
}
