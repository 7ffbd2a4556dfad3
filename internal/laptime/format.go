// Package laptime formats and parses lap and sector durations expressed in
// integer milliseconds.
package laptime

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Placeholder is rendered for values that were not recorded.
const Placeholder = "-"

// Format renders ms as M:SS.mmm, or Placeholder when ms is nil.
func Format(ms *int64) string {
	if ms == nil {
		return Placeholder
	}
	return FormatMillis(*ms)
}

// FormatMillis renders ms as M:SS.mmm. Minutes are unbounded; negative
// values get a leading sign on the absolute value.
func FormatMillis(ms int64) string {
	if ms < 0 {
		return "-" + formatAbs(magnitude(ms))
	}
	return formatAbs(uint64(ms))
}

// FormatDelta renders a signed gap between two times: +0.321 under a
// minute, +1:02.345 from a minute up. Zero renders as +0.000.
func FormatDelta(ms int64) string {
	sign := "+"
	if ms < 0 {
		sign = "-"
	}
	abs := magnitude(ms)
	if abs < 60000 {
		return fmt.Sprintf("%s%d.%03d", sign, abs/1000, abs%1000)
	}
	return sign + formatAbs(abs)
}

// magnitude is |ms|, exact for math.MinInt64.
func magnitude(ms int64) uint64 {
	if ms < 0 {
		return ^uint64(ms) + 1
	}
	return uint64(ms)
}

func formatAbs(abs uint64) string {
	return fmt.Sprintf("%d:%02d.%03d", abs/60000, (abs/1000)%60, abs%1000)
}

// FormatDuration renders d truncated to whole milliseconds.
func FormatDuration(d time.Duration) string {
	return FormatMillis(d.Milliseconds())
}

// Parse is the inverse of FormatMillis. It accepts M:SS.mmm with any number
// of minute digits and an optional leading '-'.
func Parse(s string) (int64, error) {
	orig := s
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	minPart, rest, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("laptime: %q: missing ':'", orig)
	}
	secPart, msPart, ok := strings.Cut(rest, ".")
	if !ok {
		return 0, fmt.Errorf("laptime: %q: missing '.'", orig)
	}
	if len(secPart) != 2 || len(msPart) != 3 {
		return 0, fmt.Errorf("laptime: %q: want M:SS.mmm", orig)
	}

	minutes, err := parseDigits(minPart)
	if err != nil {
		return 0, fmt.Errorf("laptime: %q: minutes: %w", orig, err)
	}
	seconds, err := parseDigits(secPart)
	if err != nil {
		return 0, fmt.Errorf("laptime: %q: seconds: %w", orig, err)
	}
	if seconds >= 60 {
		return 0, fmt.Errorf("laptime: %q: seconds out of range", orig)
	}
	millis, err := parseDigits(msPart)
	if err != nil {
		return 0, fmt.Errorf("laptime: %q: milliseconds: %w", orig, err)
	}

	limit := uint64(math.MaxInt64)
	if neg {
		limit++
	}
	if minutes > limit/60000 {
		return 0, fmt.Errorf("laptime: %q: out of range", orig)
	}
	total := minutes*60000 + seconds*1000 + millis
	if total > limit {
		return 0, fmt.Errorf("laptime: %q: out of range", orig)
	}
	if neg {
		return int64(^total + 1), nil
	}
	return int64(total), nil
}

func parseDigits(s string) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("non-digit %q", r)
		}
	}
	return strconv.ParseUint(s, 10, 64)
}

// FormatSpeed renders a speed trap reading in km/h. Missing and zero
// readings both render as Placeholder.
func FormatSpeed(kmh *int64) string {
	if kmh == nil || *kmh == 0 {
		return Placeholder
	}
	return strconv.FormatInt(*kmh, 10)
}

// FormatText renders an optional label, falling back to Placeholder.
func FormatText(s *string) string {
	if s == nil || *s == "" {
		return Placeholder
	}
	return *s
}
