package ingest

import (
	"context"
	"fmt"
	"log"

	"github.com/dustin/go-humanize"

	"github.com/tinytelemetry/pitlane/internal/model"
)

// Summary counts what a Load call wrote and skipped.
type Summary struct {
	Sessions        int
	Laps            int
	SkippedSessions int
	DroppedLaps     int
}

// Add accumulates other into s.
func (s *Summary) Add(other Summary) {
	s.Sessions += other.Sessions
	s.Laps += other.Laps
	s.SkippedSessions += other.SkippedSessions
	s.DroppedLaps += other.DroppedLaps
}

func (s Summary) String() string {
	out := fmt.Sprintf("%s %s, %s %s",
		humanize.Comma(int64(s.Sessions)), plural(s.Sessions, "session", "sessions"),
		humanize.Comma(int64(s.Laps)), plural(s.Laps, "lap", "laps"))
	if s.SkippedSessions > 0 {
		out += fmt.Sprintf(", %s skipped", humanize.Comma(int64(s.SkippedSessions)))
	}
	if s.DroppedLaps > 0 {
		out += fmt.Sprintf(", %s %s dropped",
			humanize.Comma(int64(s.DroppedLaps)), plural(s.DroppedLaps, "lap", "laps"))
	}
	return out
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// Loader writes datasets through a model.TelemetryWriter.
type Loader struct {
	store model.TelemetryWriter
}

// NewLoader creates a Loader backed by store.
func NewLoader(store model.TelemetryWriter) *Loader {
	return &Loader{store: store}
}

// Load upserts every session in ds followed by its laps. A session that
// fails validation or storage is logged and skipped; the rest continue.
// The returned error is non-nil only when ctx is done.
func (l *Loader) Load(ctx context.Context, ds *Dataset) (Summary, error) {
	var sum Summary
	if ds == nil {
		return sum, nil
	}

	for i, rec := range ds.Sessions {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		sess, err := rec.Session()
		if err != nil {
			log.Printf("ingest: session #%d skipped: %v", i+1, err)
			sum.SkippedSessions++
			continue
		}

		id, err := l.store.UpsertSession(ctx, sess)
		if err != nil {
			log.Printf("ingest: session %d %s %s skipped: %v", sess.Year, sess.GPName, sess.SessionType, err)
			sum.SkippedSessions++
			continue
		}

		laps := make([]model.Lap, 0, len(rec.Laps))
		for _, lr := range rec.Laps {
			lap, ok := lr.Lap()
			if !ok {
				sum.DroppedLaps++
				continue
			}
			laps = append(laps, lap)
		}

		n, err := l.store.UpsertLaps(ctx, id, laps)
		if err != nil {
			log.Printf("ingest: laps for session %d (%s %s) failed: %v", id, sess.GPName, sess.SessionType, err)
			sum.SkippedSessions++
			continue
		}

		sum.Sessions++
		sum.Laps += n
		log.Printf("ingest: session %d %s %s (id %d): %s laps", sess.Year, sess.GPName, sess.SessionType, id, humanize.Comma(int64(n)))
	}
	return sum, nil
}

// LoadFiles decodes and loads each path in order. A file that cannot be
// read or decoded aborts the run.
func (l *Loader) LoadFiles(ctx context.Context, paths ...string) (Summary, error) {
	var total Summary
	for _, path := range paths {
		ds, err := LoadFile(path)
		if err != nil {
			return total, err
		}
		sum, err := l.Load(ctx, ds)
		total.Add(sum)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
