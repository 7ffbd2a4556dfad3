// Package backup takes periodic snapshots of the session and lap store.
package backup

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	defaultInterval = 6 * time.Hour
	defaultKeepLast = 24

	filePrefix = "pitlane-"
	fileSuffix = ".duckdb"
)

// Manager snapshots the store on an interval and prunes old copies.
type Manager struct {
	store Snapshotter
	cfg   Config
	now   func() time.Time
}

// NewManager validates cfg and prepares the snapshot dir. It returns nil
// when snapshots are disabled.
func NewManager(store Snapshotter, cfg Config) (*Manager, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if store == nil {
		return nil, fmt.Errorf("backup: nil snapshotter")
	}
	if strings.TrimSpace(store.Path()) == "" {
		return nil, fmt.Errorf("backup: db-path is empty (in-memory store)")
	}
	if strings.TrimSpace(cfg.LocalDir) == "" {
		return nil, fmt.Errorf("backup: dir is required when backups are enabled")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.KeepLast <= 0 {
		cfg.KeepLast = defaultKeepLast
	}
	if err := os.MkdirAll(cfg.LocalDir, 0755); err != nil {
		return nil, fmt.Errorf("backup: create dir: %w", err)
	}

	return &Manager{
		store: store,
		cfg:   cfg,
		now:   time.Now,
	}, nil
}

// Run takes a startup snapshot and then one per interval until ctx is
// done. Failed snapshots are logged and retried on the next tick.
func (m *Manager) Run(ctx context.Context) {
	if err := m.RunOnce(ctx); err != nil && ctx.Err() == nil {
		log.Printf("backup: startup snapshot failed: %v", err)
	}

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := m.RunOnce(ctx); err != nil && ctx.Err() == nil {
				log.Printf("backup: periodic snapshot failed: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// RunOnce writes one snapshot and prunes copies beyond KeepLast.
func (m *Manager) RunOnce(ctx context.Context) error {
	name := filePrefix + m.now().UTC().Format("20060102-150405.000") + fileSuffix
	localPath := filepath.Join(m.cfg.LocalDir, name)

	if err := m.store.SnapshotTo(ctx, localPath); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	log.Printf("backup: created snapshot %s", localPath)

	if err := pruneLocalBackups(m.cfg.LocalDir, m.cfg.KeepLast); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}

// Dir returns the snapshot directory.
func (m *Manager) Dir() string {
	return m.cfg.LocalDir
}

func pruneLocalBackups(localDir string, keepLast int) error {
	if keepLast <= 0 {
		return nil
	}

	matches, err := filepath.Glob(filepath.Join(localDir, filePrefix+"*"+fileSuffix))
	if err != nil {
		return err
	}
	if len(matches) <= keepLast {
		return nil
	}

	// Timestamps sort lexically.
	sort.Sort(sort.Reverse(sort.StringSlice(matches)))

	for _, oldPath := range matches[keepLast:] {
		if err := os.Remove(oldPath); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
