package timeutil

import (
	"testing"
	"time"
)

func TestParseBoundDate(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	start, err := ParseBound("2026-01-05", loc, true)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if want := time.Date(2026, 1, 5, 0, 0, 0, 0, loc); !start.Equal(want) {
		t.Errorf("start: got %v want %v", start, want)
	}

	end, err := ParseBound("2026-01-11", loc, false)
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if want := time.Date(2026, 1, 11, 23, 59, 59, 0, loc); !end.Equal(want) {
		t.Errorf("end: got %v want %v", end, want)
	}
}

func TestParseBoundRFC3339(t *testing.T) {
	got, err := ParseBound("2026-01-05T09:30:00Z", time.UTC, true)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if want := time.Date(2026, 1, 5, 9, 30, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("got %v want %v", got, want)
	}
}

func TestParseBoundInvalid(t *testing.T) {
	if _, err := ParseBound("next tuesday", time.UTC, true); err == nil {
		t.Fatalf("expected error")
	}
}
