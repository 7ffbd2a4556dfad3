package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

type bannerState struct {
	socketUp  bool
	backupsUp bool
	counts    map[string]int64
}

func printStartupBanner(w io.Writer, cfg appConfig, build BuildInfo, st bannerState) {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cyan := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	bold := lipgloss.NewStyle().Bold(true)

	check := green.Render("●")
	dot := dim.Render("●")

	logo := cyan.Bold(true).Render(`
    ╔═╗╦╔╦╗╦  ╔═╗╔╗╔╔═╗
    ╠═╝║ ║ ║  ╠═╣║║║║╣
    ╩  ╩ ╩ ╩═╝╩ ╩╝╚╝╚═╝`)

	var lines []string
	lines = append(lines, "", logo, "    "+dim.Render("v"+build.Version), "")

	separator := dim.Render("    ─────────────────────────────────")
	lines = append(lines, separator, "")

	lines = append(lines, bold.Render("    Gateway"), "")
	if cfg.APIEnabled {
		lines = append(lines, fmt.Sprintf("    %s  HTTP API       %s", check, cyan.Render("http://"+cfg.APIAddr+"/api")))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  HTTP API       %s", dot, dim.Render("disabled")))
	}
	if st.socketUp {
		lines = append(lines, fmt.Sprintf("    %s  Unix Socket    %s", check, cyan.Render(shortenPath(cfg.SocketPath))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Unix Socket    %s", dot, dim.Render("disabled")))
	}
	lines = append(lines, "")

	lines = append(lines, bold.Render("    Storage"), "")
	storage := cfg.DBPath
	if storage == "" {
		storage = "in-memory"
	}
	lines = append(lines, fmt.Sprintf("    %s  DuckDB         %s", check, dim.Render(shortenPath(storage))))
	if st.counts != nil {
		lines = append(lines, fmt.Sprintf("    %s  Sessions       %s", check, dim.Render(humanize.Comma(st.counts["sessions"]))))
		lines = append(lines, fmt.Sprintf("    %s  Laps           %s", check, dim.Render(humanize.Comma(st.counts["laps"]))))
	}
	if st.backupsUp {
		lines = append(lines, fmt.Sprintf("    %s  Snapshots      %s", check, dim.Render(shortenPath(cfg.BackupDir)+" every "+cfg.BackupInterval.String())))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Snapshots      %s", dot, dim.Render("disabled")))
	}
	lines = append(lines, "")

	lines = append(lines, bold.Render("    Config"), "")
	if cfg.ConfigPath != "" {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", check, dim.Render(shortenPath(cfg.ConfigPath))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", dot, dim.Render("default (no file)")))
	}

	lines = append(lines, "", separator, "")
	lines = append(lines, "    "+dim.Render("Press ")+yellow.Render("Ctrl+C")+dim.Render(" to stop"), "")

	fmt.Fprintln(w, strings.Join(lines, "\n"))
}

func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return path
}
