package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/tinytelemetry/pitlane/internal/model"
)

// UpsertSession inserts s unless a session with the same year, grand prix,
// session type and round already exists, in which case its date is
// refreshed. The stored session id is returned either way.
func (s *Store) UpsertSession(ctx context.Context, sess model.Session) (int64, error) {
	if strings.TrimSpace(sess.GPName) == "" || strings.TrimSpace(sess.SessionType) == "" {
		return 0, fmt.Errorf("duckdb: session needs gp_name and session_type")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, `
		SELECT session_id FROM sessions
		WHERE year = ? AND gp_name = ? AND session_type = ? AND round_number = ?`,
		sess.Year, sess.GPName, sess.SessionType, sess.RoundNumber).Scan(&id)

	switch {
	case err == nil:
		if _, err := tx.ExecContext(ctx,
			"UPDATE sessions SET date = CAST(? AS DATE) WHERE session_id = ?", sess.Date, id); err != nil {
			return 0, fmt.Errorf("update session %d: %w", id, err)
		}
	case errors.Is(err, sql.ErrNoRows):
		err = tx.QueryRowContext(ctx, `
			INSERT INTO sessions (year, gp_name, session_type, date, round_number)
			VALUES (?, ?, ?, CAST(? AS DATE), ?)
			RETURNING session_id`,
			sess.Year, sess.GPName, sess.SessionType, sess.Date, sess.RoundNumber).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("insert session: %w", err)
		}
	default:
		return 0, fmt.Errorf("lookup session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// UpsertLaps writes laps under sessionID in one transaction. A lap that
// already exists for the same driver and lap number has its timing, speed
// trap and tyre fields overwritten. It returns the number of laps written.
func (s *Store) UpsertLaps(ctx context.Context, sessionID int64, laps []model.Lap) (int, error) {
	if len(laps) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) > 0 FROM sessions WHERE session_id = ?", sessionID).Scan(&exists); err != nil {
		return 0, fmt.Errorf("lookup session %d: %w", sessionID, err)
	}
	if !exists {
		return 0, fmt.Errorf("session %d: %w", sessionID, ErrSessionNotFound)
	}

	written := 0
	for _, lap := range laps {
		if err := upsertLap(ctx, tx, sessionID, lap); err != nil {
			return 0, fmt.Errorf("lap %s/%d: %w", lap.Driver, lap.LapNumber, err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return written, nil
}

func upsertLap(ctx context.Context, tx *sql.Tx, sessionID int64, lap model.Lap) error {
	var lapID int64
	err := tx.QueryRowContext(ctx, `
		SELECT lap_id FROM laps
		WHERE session_id = ? AND driver = ? AND lap_number = ?`,
		sessionID, lap.Driver, lap.LapNumber).Scan(&lapID)

	switch {
	case err == nil:
		_, err = tx.ExecContext(ctx, `
			UPDATE laps SET
				lap_time_ms = ?,
				sector1_time_ms = ?,
				sector2_time_ms = ?,
				sector3_time_ms = ?,
				speed_trap_kmh = ?,
				tyre_compound = ?
			WHERE lap_id = ?`,
			argInt(lap.LapTimeMs), argInt(lap.Sector1TimeMs), argInt(lap.Sector2TimeMs),
			argInt(lap.Sector3TimeMs), argInt(lap.SpeedTrapKmh), argString(lap.TyreCompound), lapID)
		return err
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx, `
			INSERT INTO laps (session_id, driver, lap_number, lap_time_ms,
				sector1_time_ms, sector2_time_ms, sector3_time_ms, speed_trap_kmh, tyre_compound)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sessionID, lap.Driver, lap.LapNumber, argInt(lap.LapTimeMs),
			argInt(lap.Sector1TimeMs), argInt(lap.Sector2TimeMs), argInt(lap.Sector3TimeMs),
			argInt(lap.SpeedTrapKmh), argString(lap.TyreCompound))
		return err
	default:
		return err
	}
}
