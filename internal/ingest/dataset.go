// Package ingest loads session and lap datasets into the telemetry store.
//
// A dataset is a YAML (or JSON) document:
//
//	sessions:
//	  - year: 2023
//	    gp_name: Bahrain Grand Prix
//	    session_type: Race
//	    date: 2023-03-05
//	    round_number: 1
//	    laps:
//	      - driver: VER
//	        lap_number: 1
//	        lap_time_ms: "1:33.456"
//	        sector1_time_ms: 30123
//	        speed_trap_kmh: 318
//	        tyre_compound: SOFT
//
// Time fields accept integer milliseconds or M:SS.mmm strings.
package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tinytelemetry/pitlane/internal/laptime"
	"github.com/tinytelemetry/pitlane/internal/model"
)

// Dataset is the top-level document of an ingest file.
type Dataset struct {
	Sessions []SessionRecord `yaml:"sessions"`
}

// SessionRecord is one session with its laps as written in a dataset file.
type SessionRecord struct {
	Year        int         `yaml:"year"`
	GPName      string      `yaml:"gp_name"`
	SessionType string      `yaml:"session_type"`
	Date        string      `yaml:"date"`
	RoundNumber int         `yaml:"round_number"`
	Laps        []LapRecord `yaml:"laps"`
}

// LapRecord is one lap as written in a dataset file. Pointer fields are
// nil when the key is absent or null.
type LapRecord struct {
	Driver        string  `yaml:"driver"`
	LapNumber     *int    `yaml:"lap_number"`
	LapTimeMs     *Millis `yaml:"lap_time_ms"`
	Sector1TimeMs *Millis `yaml:"sector1_time_ms"`
	Sector2TimeMs *Millis `yaml:"sector2_time_ms"`
	Sector3TimeMs *Millis `yaml:"sector3_time_ms"`
	SpeedTrapKmh  *int64  `yaml:"speed_trap_kmh"`
	TyreCompound  *string `yaml:"tyre_compound"`
}

// Millis is a duration in milliseconds that decodes from an integer or a
// M:SS.mmm string.
type Millis int64

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *Millis) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: lap time must be a scalar", value.Line)
	}

	var n int64
	if err := value.Decode(&n); err == nil {
		*m = Millis(n)
		return nil
	}

	ms, err := laptime.Parse(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*m = Millis(ms)
	return nil
}

func (m *Millis) ptr() *int64 {
	if m == nil {
		return nil
	}
	v := int64(*m)
	return &v
}

// Decode reads a dataset from r. JSON input is accepted since it is valid
// YAML.
func Decode(r io.Reader) (*Dataset, error) {
	dec := yaml.NewDecoder(r)

	var ds Dataset
	if err := dec.Decode(&ds); err != nil {
		if errors.Is(err, io.EOF) {
			return &ds, nil
		}
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return &ds, nil
}

// LoadFile reads and decodes a dataset file.
func LoadFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ds, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// Session validates the record and converts it to a model.Session.
func (r SessionRecord) Session() (model.Session, error) {
	sess := model.Session{
		Year:        r.Year,
		GPName:      strings.TrimSpace(r.GPName),
		SessionType: strings.TrimSpace(r.SessionType),
		Date:        strings.TrimSpace(r.Date),
		RoundNumber: r.RoundNumber,
	}
	switch {
	case sess.Year <= 0:
		return sess, fmt.Errorf("year must be positive, got %d", r.Year)
	case sess.GPName == "":
		return sess, errors.New("gp_name is required")
	case sess.SessionType == "":
		return sess, errors.New("session_type is required")
	}
	if _, err := time.Parse(time.DateOnly, sess.Date); err != nil {
		return sess, fmt.Errorf("date %q is not YYYY-MM-DD", r.Date)
	}
	return sess, nil
}

// Lap converts the record to a model.Lap. ok is false when the record has
// no driver or no lap number, which the store cannot key on.
func (r LapRecord) Lap() (lap model.Lap, ok bool) {
	driver := strings.TrimSpace(r.Driver)
	if driver == "" || r.LapNumber == nil {
		return model.Lap{}, false
	}

	lap = model.Lap{
		Driver:        driver,
		LapNumber:     *r.LapNumber,
		LapTimeMs:     r.LapTimeMs.ptr(),
		Sector1TimeMs: r.Sector1TimeMs.ptr(),
		Sector2TimeMs: r.Sector2TimeMs.ptr(),
		Sector3TimeMs: r.Sector3TimeMs.ptr(),
		SpeedTrapKmh:  r.SpeedTrapKmh,
	}
	if r.TyreCompound != nil {
		if tyre := strings.TrimSpace(*r.TyreCompound); tyre != "" {
			lap.TyreCompound = &tyre
		}
	}
	return lap, true
}
