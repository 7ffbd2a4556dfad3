package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/tinytelemetry/pitlane/internal/model"
	"github.com/tinytelemetry/pitlane/internal/socketrpc"
)

const (
	transportHTTP   = "http"
	transportSocket = "socket"
)

// cliConfig holds only dashboard-relevant configuration.
type cliConfig struct {
	APIBaseURL         string        `mapstructure:"api-base-url"`
	APIOrigin          string        `mapstructure:"api-origin"`
	Transport          string        `mapstructure:"transport"`
	SocketPath         string        `mapstructure:"socket-path"`
	RequestTimeout     time.Duration `mapstructure:"request-timeout"`
	ReverseScrollWheel bool          `mapstructure:"reverse-scroll-wheel"`
}

func loadCLIConfig(configPath string) (cliConfig, error) {
	var cfg cliConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("PITLANE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("api-base-url", model.DefaultAPIBaseURL)
	v.SetDefault("api-origin", model.DefaultAPIOrigin)
	v.SetDefault("transport", model.DefaultTransport)
	v.SetDefault("socket-path", socketrpc.DefaultSocketPath())
	v.SetDefault("request-timeout", model.DefaultRequestTimeout)
	v.SetDefault("reverse-scroll-wheel", false)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(filepath.Join(home, ".config", "pitlane", "config.yml"))
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

	cfg.Transport = strings.ToLower(strings.TrimSpace(cfg.Transport))
	switch cfg.Transport {
	case transportHTTP, transportSocket:
	default:
		return cfg, fmt.Errorf("invalid transport %q (want %s or %s)", cfg.Transport, transportHTTP, transportSocket)
	}
	if cfg.RequestTimeout < 0 {
		return cfg, fmt.Errorf("invalid request-timeout: %s", cfg.RequestTimeout)
	}

	return cfg, nil
}
