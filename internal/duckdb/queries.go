package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/tinytelemetry/pitlane/internal/model"
)

// ErrSessionNotFound is returned when a session id has no row.
var ErrSessionNotFound = errors.New("session not found")

const lapColumns = `lap_id, session_id, driver, lap_number, lap_time_ms,
	sector1_time_ms, sector2_time_ms, sector3_time_ms, speed_trap_kmh, tyre_compound`

// ListSessions returns every session, oldest first.
func (s *Store) ListSessions(ctx context.Context) ([]model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, year, gp_name, session_type, strftime(date, '%Y-%m-%d'), round_number
		FROM sessions
		ORDER BY date, session_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []model.Session{}
	for rows.Next() {
		var sess model.Session
		if err := rows.Scan(&sess.SessionID, &sess.Year, &sess.GPName, &sess.SessionType, &sess.Date, &sess.RoundNumber); err != nil {
			log.Printf("duckdb scan error (ListSessions): %v", err)
			continue
		}
		results = append(results, sess)
	}
	return results, rows.Err()
}

// GetSession returns one session by id.
func (s *Store) GetSession(ctx context.Context, sessionID int64) (model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	var sess model.Session
	err := s.db.QueryRowContext(ctx, `
		SELECT session_id, year, gp_name, session_type, strftime(date, '%Y-%m-%d'), round_number
		FROM sessions
		WHERE session_id = ?`, sessionID).
		Scan(&sess.SessionID, &sess.Year, &sess.GPName, &sess.SessionType, &sess.Date, &sess.RoundNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return sess, fmt.Errorf("session %d: %w", sessionID, ErrSessionNotFound)
	}
	return sess, err
}

// SessionExists reports whether a session row with the given id exists.
func (s *Store) SessionExists(ctx context.Context, sessionID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) > 0 FROM sessions WHERE session_id = ?", sessionID).Scan(&exists)
	return exists, err
}

// LapsForSession returns the laps of one session ordered by lap number,
// then driver. An unknown session yields an empty slice.
func (s *Store) LapsForSession(ctx context.Context, sessionID int64) ([]model.Lap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+lapColumns+`
		FROM laps
		WHERE session_id = ?
		ORDER BY lap_number, driver`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []model.Lap{}
	for rows.Next() {
		lap, err := scanLap(rows)
		if err != nil {
			log.Printf("duckdb scan error (LapsForSession): %v", err)
			continue
		}
		results = append(results, lap)
	}
	return results, rows.Err()
}

// TableRowCounts returns row counts for the telemetry tables.
func (s *Store) TableRowCounts(ctx context.Context) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	counts := make(map[string]int64, 2)
	for _, table := range []string{"sessions", "laps"} {
		var n int64
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLap(row rowScanner) (model.Lap, error) {
	var (
		lap                 model.Lap
		lapTime, s1, s2, s3 sql.NullInt64
		speedTrap           sql.NullInt64
		tyre                sql.NullString
	)
	err := row.Scan(&lap.LapID, &lap.SessionID, &lap.Driver, &lap.LapNumber,
		&lapTime, &s1, &s2, &s3, &speedTrap, &tyre)
	if err != nil {
		return lap, err
	}
	lap.LapTimeMs = nullInt(lapTime)
	lap.Sector1TimeMs = nullInt(s1)
	lap.Sector2TimeMs = nullInt(s2)
	lap.Sector3TimeMs = nullInt(s3)
	lap.SpeedTrapKmh = nullInt(speedTrap)
	if tyre.Valid {
		lap.TyreCompound = model.String(tyre.String)
	}
	return lap, nil
}

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return model.Int64(v.Int64)
}

// argInt converts an optional value into a driver argument, nil for NULL.
func argInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func argString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}
