package backup

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type fakeSnapshotter struct {
	dbPath string
	data   []byte
}

func (f *fakeSnapshotter) Path() string { return f.dbPath }

func (f *fakeSnapshotter) SnapshotTo(_ context.Context, dstPath string) error {
	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(dstPath, f.data, 0644)
}

// steppingClock returns a time one second later on every call.
func steppingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2023, 3, 5, 15, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func TestNewManager_Disabled(t *testing.T) {
	t.Parallel()

	m, err := NewManager(&fakeSnapshotter{dbPath: "/tmp/pitlane.duckdb", data: []byte("x")}, Config{})
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}
	if m != nil {
		t.Fatal("expected nil manager when disabled")
	}
}

func TestNewManager_EnabledRequiresDBPath(t *testing.T) {
	t.Parallel()

	_, err := NewManager(&fakeSnapshotter{dbPath: "", data: []byte("x")}, Config{
		Enabled:  true,
		LocalDir: t.TempDir(),
	})
	if err == nil {
		t.Fatal("expected error for in-memory store")
	}
}

func TestNewManager_EnabledRequiresDir(t *testing.T) {
	t.Parallel()

	_, err := NewManager(&fakeSnapshotter{dbPath: "/tmp/pitlane.duckdb"}, Config{Enabled: true})
	if err == nil {
		t.Fatal("expected error for empty dir")
	}
}

func TestRun_TakesStartupSnapshot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m, err := NewManager(&fakeSnapshotter{dbPath: "/tmp/pitlane.duckdb", data: []byte("x")}, Config{
		Enabled:  true,
		Interval: time.Hour,
		LocalDir: dir,
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		files, err := filepath.Glob(filepath.Join(dir, "pitlane-*.duckdb"))
		if err != nil {
			t.Fatalf("glob: %v", err)
		}
		if len(files) == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("snapshot files = %d, want 1", len(files))
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	<-done
	if m.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", m.Dir(), dir)
	}
}

func TestRunOnce_CreatesAndPrunesLocalBackups(t *testing.T) {
	t.Parallel()

	localDir := t.TempDir()
	m, err := NewManager(&fakeSnapshotter{dbPath: "/tmp/pitlane.duckdb", data: []byte("snapshot")}, Config{
		Enabled:  true,
		LocalDir: localDir,
		KeepLast: 2,
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	m.now = steppingClock()

	for i := 1; i <= 3; i++ {
		if err := m.RunOnce(context.Background()); err != nil {
			t.Fatalf("RunOnce #%d: %v", i, err)
		}
	}

	files, err := filepath.Glob(filepath.Join(localDir, "pitlane-*.duckdb"))
	if err != nil {
		t.Fatalf("glob backups: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("backup files = %d, want 2", len(files))
	}
	if filepath.Base(files[0]) != "pitlane-20230305-150002.000.duckdb" {
		t.Errorf("oldest kept = %s, want the second snapshot", filepath.Base(files[0]))
	}
}

type blockingSnapshotter struct {
	started chan struct{}
	once    sync.Once
}

func (b *blockingSnapshotter) Path() string { return "/tmp/pitlane.duckdb" }

func (b *blockingSnapshotter) SnapshotTo(ctx context.Context, _ string) error {
	b.once.Do(func() { close(b.started) })
	<-ctx.Done()
	return ctx.Err()
}

func TestRun_CancelStopsInFlightSnapshot(t *testing.T) {
	t.Parallel()

	snap := &blockingSnapshotter{started: make(chan struct{})}
	m, err := NewManager(snap, Config{
		Enabled:  true,
		Interval: 5 * time.Millisecond,
		LocalDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	select {
	case <-snap.started:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot to start")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return; snapshot likely not canceled")
	}
}
