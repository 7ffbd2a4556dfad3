package backup

import (
	"context"
	"time"
)

// Config controls periodic store snapshots.
type Config struct {
	Enabled  bool
	Interval time.Duration
	LocalDir string
	KeepLast int
}

// Snapshotter is the store contract the Manager needs.
type Snapshotter interface {
	Path() string
	SnapshotTo(ctx context.Context, dstPath string) error
}
