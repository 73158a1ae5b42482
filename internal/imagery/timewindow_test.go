package imagery

import (
	"testing"
	"time"
)

func TestResolveQueryTime(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 7, 0, 0, time.UTC)

	got := ResolveQueryTime(now)
	if got != "2024-01-01T11:30:00Z" {
		t.Fatalf("expected 2024-01-01T11:30:00Z, got %s", got)
	}
}

func TestResolveQueryTime_NonUTCInput(t *testing.T) {
	loc := time.FixedZone("UTC-3", -3*60*60)
	now := time.Date(2024, 1, 1, 9, 7, 30, 0, loc) // 12:07:30Z

	if got := ResolveQueryTime(now); got != "2024-01-01T11:30:00Z" {
		t.Fatalf("expected 2024-01-01T11:30:00Z, got %s", got)
	}
}

func TestResolveQueryTime_CrossesMidnight(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 5, 0, 0, time.UTC)

	if got := ResolveQueryTime(now); got != "2024-02-29T23:30:00Z" {
		t.Fatalf("expected 2024-02-29T23:30:00Z, got %s", got)
	}
}

func TestQueryWindow_StrictlyEarlierAndDeterministic(t *testing.T) {
	base := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 24*60; i += 7 {
		now := base.Add(time.Duration(i)*time.Minute + 13*time.Second)
		w := NewQueryWindow(now)

		resolved := w.Resolved()
		if !resolved.Before(now) {
			t.Fatalf("resolved %s is not before %s", resolved, now)
		}
		if w.String() != NewQueryWindow(now).String() {
			t.Fatalf("non-deterministic result for %s", now)
		}

		parsed, err := time.Parse(QueryTimeFormat, w.String())
		if err != nil {
			t.Fatalf("formatted time %q does not parse: %v", w.String(), err)
		}
		if !parsed.Equal(resolved) {
			t.Fatalf("round trip mismatch: %s vs %s", parsed, resolved)
		}
		if parsed.Minute()%10 != 0 || parsed.Second() != 0 {
			t.Fatalf("resolved time %s is not on a 10 minute boundary", parsed)
		}
	}
}

func TestQueryWindow_CustomRoundingAndLag(t *testing.T) {
	w := QueryWindow{
		Requested: time.Date(2024, 1, 1, 12, 59, 59, 0, time.UTC),
		Rounding:  time.Hour,
		Lag:       15 * time.Minute,
	}
	if got := w.String(); got != "2024-01-01T11:45:00Z" {
		t.Fatalf("expected 2024-01-01T11:45:00Z, got %s", got)
	}
}
