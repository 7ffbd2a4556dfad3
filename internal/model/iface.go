package model

import "context"

// TelemetryQuerier provides the two read operations the dashboard needs.
// It is implemented by the DuckDB store, the HTTP API client and the
// socket RPC client.
type TelemetryQuerier interface {
	ListSessions(ctx context.Context) ([]Session, error)
	LapsForSession(ctx context.Context, sessionID int64) ([]Lap, error)
}

// TelemetryWriter provides idempotent write operations used by ingest.
type TelemetryWriter interface {
	// UpsertSession inserts s, or finds the existing row with the same
	// (year, gp_name, session_type, round_number), and returns its id.
	UpsertSession(ctx context.Context, s Session) (int64, error)
	// UpsertLaps writes laps for sessionID, updating timing fields of laps
	// already stored under the same (driver, lap_number).
	UpsertLaps(ctx context.Context, sessionID int64, laps []Lap) (int, error)
}

// TelemetryStore is the unified read/write contract of the storage layer.
type TelemetryStore interface {
	TelemetryQuerier
	TelemetryWriter
}
