package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tinytelemetry/pitlane/internal/model"
)

func TestLoadCLIConfigDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := loadCLIConfig("")
	if err != nil {
		t.Fatalf("loadCLIConfig: %v", err)
	}
	if cfg.APIBaseURL != model.DefaultAPIBaseURL {
		t.Errorf("APIBaseURL = %q, want %q", cfg.APIBaseURL, model.DefaultAPIBaseURL)
	}
	if cfg.APIOrigin != model.DefaultAPIOrigin {
		t.Errorf("APIOrigin = %q, want %q", cfg.APIOrigin, model.DefaultAPIOrigin)
	}
	if cfg.Transport != transportHTTP {
		t.Errorf("Transport = %q, want %q", cfg.Transport, transportHTTP)
	}
	if cfg.RequestTimeout != model.DefaultRequestTimeout {
		t.Errorf("RequestTimeout = %s, want %s", cfg.RequestTimeout, model.DefaultRequestTimeout)
	}
}

func TestLoadCLIConfigEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PITLANE_API_BASE_URL", "https://f1.example.com/v1")
	t.Setenv("PITLANE_REQUEST_TIMEOUT", "2s")

	cfg, err := loadCLIConfig("")
	if err != nil {
		t.Fatalf("loadCLIConfig: %v", err)
	}
	if cfg.APIBaseURL != "https://f1.example.com/v1" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.RequestTimeout != 2*time.Second {
		t.Errorf("RequestTimeout = %s, want 2s", cfg.RequestTimeout)
	}
}

func TestLoadCLIConfigFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yml")
	body := "transport: socket\nsocket-path: /tmp/pitlane-test.sock\nreverse-scroll-wheel: true\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadCLIConfig(path)
	if err != nil {
		t.Fatalf("loadCLIConfig: %v", err)
	}
	if cfg.Transport != transportSocket {
		t.Errorf("Transport = %q, want socket", cfg.Transport)
	}
	if cfg.SocketPath != "/tmp/pitlane-test.sock" {
		t.Errorf("SocketPath = %q", cfg.SocketPath)
	}
	if !cfg.ReverseScrollWheel {
		t.Error("ReverseScrollWheel = false, want true")
	}
}

func TestLoadCLIConfigRejectsUnknownTransport(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PITLANE_TRANSPORT", "carrier-pigeon")

	if _, err := loadCLIConfig(""); err == nil {
		t.Fatal("expected error for unknown transport")
	}
}

func TestOpenStoreHTTPResolvesRelativeBase(t *testing.T) {
	cfg := cliConfig{
		APIBaseURL: "/api",
		APIOrigin:  "http://127.0.0.1:3000",
		Transport:  transportHTTP,
	}

	store, source, closeStore, err := openStore(cfg)
	if err != nil {
		t.Fatalf("openStore: %v", err)
	}
	defer closeStore()
	if store == nil {
		t.Fatal("store is nil")
	}
	if source != "HTTP http://127.0.0.1:3000/api" {
		t.Errorf("source = %q", source)
	}
}

func TestOpenStoreHTTPRejectsRelativeOrigin(t *testing.T) {
	cfg := cliConfig{APIBaseURL: "/api", APIOrigin: "localhost", Transport: transportHTTP}
	if _, _, _, err := openStore(cfg); err == nil {
		t.Fatal("expected error for relative origin")
	}
}

func TestOpenStoreSocketDefersDial(t *testing.T) {
	cfg := cliConfig{
		Transport:  transportSocket,
		SocketPath: filepath.Join(t.TempDir(), "missing.sock"),
	}

	store, source, closeStore, err := openStore(cfg)
	if err != nil {
		t.Fatalf("openStore with no server running: %v", err)
	}
	defer closeStore()
	if source != "Socket "+cfg.SocketPath {
		t.Errorf("source = %q", source)
	}

	if _, err := store.ListSessions(context.Background()); err == nil {
		t.Fatal("expected ListSessions to report the dial failure")
	}
}
