package cli

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/tinytelemetry/pitlane/internal/model"
	"github.com/tinytelemetry/pitlane/internal/socketrpc"
)

const (
	defaultBindHost     = "127.0.0.1"
	defaultAPIPort      = 3000
	defaultQueryTimeout = model.DefaultQueryTimeout
)

// appConfig is the service runtime configuration.
// It is package-private to keep defaults and shape local to the CLI.
type appConfig struct {
	DBPath        string        `mapstructure:"db-path"`
	APIEnabled    bool          `mapstructure:"api-enabled"`
	APIPort       int           `mapstructure:"api-port"`
	APIAddr       string        `mapstructure:"api-addr"`
	SocketEnabled bool          `mapstructure:"socket-enabled"`
	SocketPath    string        `mapstructure:"socket-path"`
	QueryTimeout  time.Duration `mapstructure:"query-timeout"`

	BackupEnabled  bool          `mapstructure:"backup-enabled"`
	BackupInterval time.Duration `mapstructure:"backup-interval"`
	BackupDir      string        `mapstructure:"backup-dir"`
	BackupKeepLast int           `mapstructure:"backup-keep-last"`

	ConfigPath string `mapstructure:"-"` // not from config file
}

// defaultConfigPath is ~/.config/pitlane/config.yml.
func defaultConfigPath(home string) string {
	return filepath.Join(home, ".config", "pitlane", "config.yml")
}

func loadConfig(configPath string) (appConfig, error) {
	var cfg appConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("PITLANE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("db-path", filepath.Join(home, ".local", "share", "pitlane", "pitlane.duckdb"))
	v.SetDefault("api-enabled", true)
	v.SetDefault("api-port", defaultAPIPort)
	v.SetDefault("api-addr", "")
	v.SetDefault("socket-enabled", true)
	v.SetDefault("socket-path", socketrpc.DefaultSocketPath())
	v.SetDefault("query-timeout", defaultQueryTimeout)
	v.SetDefault("backup-enabled", false)
	v.SetDefault("backup-interval", 6*time.Hour)
	v.SetDefault("backup-dir", filepath.Join(home, ".local", "share", "pitlane", "backups"))
	v.SetDefault("backup-keep-last", 24)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(defaultConfigPath(home))
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	cfg.ConfigPath = v.ConfigFileUsed()
	if _, err := os.Stat(cfg.ConfigPath); err != nil {
		cfg.ConfigPath = ""
	}

	if cfg.APIPort <= 0 || cfg.APIPort > 65535 {
		return cfg, fmt.Errorf("invalid api-port: %d", cfg.APIPort)
	}
	if cfg.QueryTimeout < 0 {
		return cfg, fmt.Errorf("invalid query-timeout: %s", cfg.QueryTimeout)
	}

	if cfg.BackupEnabled && cfg.BackupInterval <= 0 {
		return cfg, fmt.Errorf("invalid backup-interval: %s", cfg.BackupInterval)
	}

	cfg.DBPath = expandHome(home, cfg.DBPath)
	cfg.BackupDir = expandHome(home, cfg.BackupDir)

	if cfg.APIAddr == "" {
		cfg.APIAddr = net.JoinHostPort(defaultBindHost, strconv.Itoa(cfg.APIPort))
	}

	return cfg, nil
}

func expandHome(home, path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
