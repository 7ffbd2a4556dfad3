package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tinytelemetry/pitlane/internal/backup"
	"github.com/tinytelemetry/pitlane/internal/duckdb"
	"github.com/tinytelemetry/pitlane/internal/httpserver"
	"github.com/tinytelemetry/pitlane/internal/socketrpc"
)

// NewServeCommand runs the HTTP API and socket RPC servers.
func NewServeCommand(opts *RootOptions) *cobra.Command {
	var apiAddr string
	var dbPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve sessions and laps over HTTP and the local socket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.ConfigPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "loading config", err)
			}
			if apiAddr != "" {
				cfg.APIAddr = apiAddr
			}
			if dbPath != "" {
				cfg.DBPath = dbPath
			}

			cleanupLogger := ConfigureRuntimeLogger("pitlane")
			defer cleanupLogger()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runServer(ctx, cfg, opts.Build, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&apiAddr, "api-addr", "", "HTTP API listen address (overrides api-port)")
	cmd.Flags().StringVar(&dbPath, "db", "", "DuckDB database path")

	return cmd
}

// service is one long-running part of the server. run blocks until ctx is
// done or the part fails.
type service struct {
	name string
	run  func(ctx context.Context) error
}

// runServer serves until ctx is canceled or a service fails.
func runServer(ctx context.Context, cfg appConfig, build BuildInfo, out io.Writer) error {
	store, err := duckdb.NewStore(cfg.DBPath, cfg.QueryTimeout)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to initialize DuckDB", err)
	}
	defer store.Close()

	var services []service

	if cfg.APIEnabled {
		apiServer := httpserver.NewServer(cfg.APIAddr, store)
		if err := apiServer.Listen(); err != nil {
			return WrapExitError(ExitFailure, "failed to start API server", err)
		}
		cfg.APIAddr = apiServer.Addr()
		log.Printf("httpserver: listening on %s", cfg.APIAddr)
		services = append(services, service{name: "api server", run: apiServer.Serve})
	}

	socketUp := false
	if cfg.SocketEnabled {
		sockServer := socketrpc.NewServer(cfg.SocketPath, store)
		if err := sockServer.Start(); err != nil {
			log.Printf("Warning: failed to start socket server: %v", err)
		} else {
			socketUp = true
			defer sockServer.Stop()
			services = append(services, service{name: "socket server", run: sockServer.Serve})
		}
	}

	backups, err := backup.NewManager(store, backup.Config{
		Enabled:  cfg.BackupEnabled,
		Interval: cfg.BackupInterval,
		LocalDir: cfg.BackupDir,
		KeepLast: cfg.BackupKeepLast,
	})
	if err != nil {
		log.Printf("Warning: backups disabled: %v", err)
	}
	if backups != nil {
		services = append(services, service{name: "backups", run: func(ctx context.Context) error {
			backups.Run(ctx)
			return nil
		}})
	}

	counts, err := store.TableRowCounts(ctx)
	if err != nil {
		log.Printf("duckdb: row counts: %v", err)
	}

	printStartupBanner(out, cfg, build, bannerState{socketUp: socketUp, backupsUp: backups != nil, counts: counts})

	if err := runServices(ctx, services...); err != nil {
		log.Printf("server: %v", err)
		return err
	}

	fmt.Fprintln(out, "\nShutting down...")
	return nil
}

// runServices runs every service in one errgroup. The first failure
// cancels the rest and is returned as an ExitError.
func runServices(ctx context.Context, services ...service) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})
	for _, svc := range services {
		g.Go(func() error {
			if err := svc.run(gctx); err != nil {
				return WrapExitError(ExitFailure, svc.name+" stopped", err)
			}
			return nil
		})
	}
	return g.Wait()
}
