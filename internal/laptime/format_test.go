package laptime

import (
	"math"
	"math/rand"
	"testing"
	"time"
)

func ptr(v int64) *int64 { return &v }

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		in   *int64
		want string
	}{
		{"nil", nil, "-"},
		{"zero", ptr(0), "0:00.000"},
		{"sub second", ptr(7), "0:00.007"},
		{"bahrain lap", ptr(93456), "1:33.456"},
		{"exact minute", ptr(60000), "1:00.000"},
		{"sector", ptr(29871), "0:29.871"},
		{"long stint", ptr(3723004), "62:03.004"},
		{"negative", ptr(-1500), "-0:01.500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.in); got != tt.want {
				t.Errorf("Format(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	d := time.Minute + 33*time.Second + 456*time.Millisecond + 900*time.Microsecond
	if got := FormatDuration(d); got != "1:33.456" {
		t.Errorf("FormatDuration = %q, want 1:33.456", got)
	}
}

func TestParse_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	values := []int64{0, 1, 999, 1000, 59999, 60000, 93456, 3599999, -93456}
	for i := 0; i < 500; i++ {
		values = append(values, rng.Int63n(10*60*60*1000))
	}

	for _, v := range values {
		s := FormatMillis(v)
		got, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q): %v", s, err)
		}
		if got != v {
			t.Fatalf("Parse(Format(%d)) = %d (via %q)", v, got, s)
		}
	}
}

func TestFormatMillis_Extremes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{math.MaxInt64, "153722867280912:55.807"},
		{math.MinInt64, "-153722867280912:55.808"},
		{math.MinInt64 + 1, "-153722867280912:55.807"},
	}
	for _, tt := range tests {
		got := FormatMillis(tt.in)
		if got != tt.want {
			t.Errorf("FormatMillis(%d) = %q, want %q", tt.in, got, tt.want)
		}
		back, err := Parse(got)
		if err != nil {
			t.Fatalf("Parse(%q): %v", got, err)
		}
		if back != tt.in {
			t.Errorf("Parse(%q) = %d, want %d", got, back, tt.in)
		}
	}
}

func TestFormatDelta(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "+0.000"},
		{321, "+0.321"},
		{-500, "-0.500"},
		{12345, "+12.345"},
		{59999, "+59.999"},
		{62345, "+1:02.345"},
		{-62345, "-1:02.345"},
		{math.MinInt64, "-153722867280912:55.808"},
	}
	for _, tt := range tests {
		if got := FormatDelta(tt.in); got != tt.want {
			t.Errorf("FormatDelta(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParse_OutOfRange(t *testing.T) {
	for _, s := range []string{
		"153722867280912:55.808",
		"-153722867280912:55.809",
		"153722867280913:00.000",
		"999999999999999999:00.000",
		"99999999999999999999:00.000",
	} {
		if v, err := Parse(s); err == nil {
			t.Errorf("Parse(%q) = %d, want out of range error", s, v)
		}
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, s := range []string{"", "-", "93456", "1:33", "1:3.456", "1:33.45", "1:60.000", "a:33.456", "1:33.4x6"} {
		if _, err := Parse(s); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", s)
		}
	}
}

func TestFormatSpeedAndText(t *testing.T) {
	if got := FormatSpeed(nil); got != "-" {
		t.Errorf("FormatSpeed(nil) = %q", got)
	}
	if got := FormatSpeed(ptr(0)); got != "-" {
		t.Errorf("FormatSpeed(0) = %q", got)
	}
	if got := FormatSpeed(ptr(312)); got != "312" {
		t.Errorf("FormatSpeed(312) = %q", got)
	}

	empty, soft := "", "SOFT"
	if got := FormatText(nil); got != "-" {
		t.Errorf("FormatText(nil) = %q", got)
	}
	if got := FormatText(&empty); got != "-" {
		t.Errorf("FormatText(\"\") = %q", got)
	}
	if got := FormatText(&soft); got != "SOFT" {
		t.Errorf("FormatText(SOFT) = %q", got)
	}
}
