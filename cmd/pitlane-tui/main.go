package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/tinytelemetry/pitlane/internal/apiclient"
	"github.com/tinytelemetry/pitlane/internal/cli"
	"github.com/tinytelemetry/pitlane/internal/model"
	"github.com/tinytelemetry/pitlane/internal/socketrpc"
	"github.com/tinytelemetry/pitlane/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)

func main() {
	var configPath string
	var baseURL string
	var origin string
	var transport string
	var socketPath string
	var showVersion bool

	flag.StringVar(&configPath, "config", "", "config file (default is $HOME/.config/pitlane/config.yml)")
	flag.StringVar(&baseURL, "api-base-url", "", "API base URL, absolute or relative to -api-origin")
	flag.StringVar(&origin, "api-origin", "", "origin a relative API base URL is resolved against")
	flag.StringVar(&transport, "transport", "", "data transport: http or socket")
	flag.StringVar(&socketPath, "socket", "", "override socket path to connect to pitlane service")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("pitlane-tui - Dashboard Client\n")
		fmt.Printf("  Version:    %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Built:      %s\n", buildTime)
		fmt.Printf("  Go version: %s\n", goVersion)
		return
	}

	cfg, err := loadCLIConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if baseURL != "" {
		cfg.APIBaseURL = baseURL
	}
	if origin != "" {
		cfg.APIOrigin = origin
	}
	if transport != "" {
		cfg.Transport = strings.ToLower(transport)
	}
	if socketPath != "" {
		cfg.SocketPath = socketPath
		if transport == "" {
			cfg.Transport = transportSocket
		}
	}

	if err := runTUI(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runTUI(cfg cliConfig) error {
	cleanupLogger := cli.ConfigureRuntimeLogger("pitlane-tui")
	defer cleanupLogger()

	store, source, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	dashboard := tui.NewDashboardModel(store, tui.Options{
		DataSource:         source,
		RequestTimeout:     cfg.RequestTimeout,
		ReverseScrollWheel: cfg.ReverseScrollWheel,
	})
	app := tui.NewApp(tui.NewDashboardPage(dashboard), tui.NewLapDetailPage())

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		if strings.Contains(err.Error(), "TTY") || strings.Contains(err.Error(), "/dev/tty") {
			return fmt.Errorf("TUI requires a real terminal")
		}
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// openStore builds the data source for the configured transport.
func openStore(cfg cliConfig) (model.TelemetryQuerier, string, func(), error) {
	switch cfg.Transport {
	case transportSocket:
		// Dial errors surface in the dashboard on the first fetch, like HTTP ones.
		client := socketrpc.NewClient(cfg.SocketPath)
		return client, "Socket " + cfg.SocketPath, func() { client.Close() }, nil
	case transportHTTP:
		url, err := apiclient.ResolveBaseURL(cfg.APIOrigin, cfg.APIBaseURL)
		if err != nil {
			return nil, "", nil, fmt.Errorf("resolving API base URL: %w", err)
		}
		client := apiclient.New(url, apiclient.WithTimeout(cfg.RequestTimeout))
		return client, "HTTP " + client.BaseURL(), func() {}, nil
	default:
		return nil, "", nil, fmt.Errorf("unknown transport %q", cfg.Transport)
	}
}
