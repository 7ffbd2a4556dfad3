package model

// Session is one racing event segment (practice, qualifying, race).
// It is the canonical type for storage, transport (HTTP and socket RPC),
// and display.
type Session struct {
	SessionID   int64  `json:"session_id"`
	Year        int    `json:"year"`
	GPName      string `json:"gp_name"`
	SessionType string `json:"session_type"`
	Date        string `json:"date"` // YYYY-MM-DD
	RoundNumber int    `json:"round_number,omitempty"`
}

// Lap is one completed circuit by a driver within a session.
// Nil pointers mean the value was not recorded.
type Lap struct {
	LapID         int64   `json:"lap_id"`
	SessionID     int64   `json:"session_id,omitempty"`
	Driver        string  `json:"driver"`
	LapNumber     int     `json:"lap_number"`
	LapTimeMs     *int64  `json:"lap_time_ms"`
	Sector1TimeMs *int64  `json:"sector1_time_ms"`
	Sector2TimeMs *int64  `json:"sector2_time_ms"`
	Sector3TimeMs *int64  `json:"sector3_time_ms"`
	SpeedTrapKmh  *int64  `json:"speed_trap_kmh"`
	TyreCompound  *string `json:"tyre_compound"`
}

// Int64 returns a pointer to v. Handy for building laps in code and tests.
func Int64(v int64) *int64 { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }
