package utils

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	cases := map[time.Duration]string{
		0:                                        "00:00:00",
		59 * time.Second:                         "00:00:59",
		time.Hour + 2*time.Minute + 3*time.Second: "01:02:03",
		8*time.Hour + 1500*time.Millisecond:      "08:00:01",
		27 * time.Hour:                           "27:00:00",
		-5 * time.Second:                         "00:00:00",
	}
	for in, want := range cases {
		if got := FormatDuration(in); got != want {
			t.Errorf("FormatDuration(%v) = %s, want %s", in, got, want)
		}
	}
}

func TestParseFlexibleDate(t *testing.T) {
	loc := time.FixedZone("WAT", 3600)
	for _, in := range []string{"2026-10-14", "2026-10-14 18:30", "2026-10-14 18:30:05"} {
		got, err := ParseFlexibleDate(in, loc)
		if err != nil {
			t.Fatalf("ParseFlexibleDate(%q): %v", in, err)
		}
		if got.Location() != loc || got.Day() != 14 {
			t.Errorf("ParseFlexibleDate(%q) = %v", in, got)
		}
	}
	if _, err := ParseFlexibleDate("14/10/2026", loc); err == nil {
		t.Error("expected error for unsupported layout")
	}
}

func TestDayBounds(t *testing.T) {
	at := time.Date(2026, 10, 14, 15, 4, 5, 0, time.UTC)
	if got := StartOfDay(at); !got.Equal(time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("StartOfDay = %v", got)
	}
	end := EndOfDay(at)
	if end.Day() != 14 || !end.Add(time.Nanosecond).Equal(time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("EndOfDay = %v", end)
	}
}
