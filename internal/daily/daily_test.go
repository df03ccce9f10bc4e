package daily

import (
	"testing"
	"time"
)

func TestDateKeyUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	ts := time.Date(2024, 3, 2, 5, 0, 0, 0, loc) // 2024-03-01 19:00 UTC
	if got := DateKey(ts); got != "2024-03-01" {
		t.Errorf("expected 2024-03-01, got %s", got)
	}
}

func TestSeedStablePerDay(t *testing.T) {
	morning := time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC)
	evening := time.Date(2024, 3, 1, 23, 0, 0, 0, time.UTC)
	next := time.Date(2024, 3, 2, 1, 0, 0, 0, time.UTC)

	if Seed(morning, "s") != Seed(evening, "s") {
		t.Error("same day should give the same seed")
	}
	if Seed(morning, "s") == Seed(next, "s") {
		t.Error("different days should give different seeds")
	}
	if Seed(morning, "s") == Seed(morning, "other") {
		t.Error("different salts should give different seeds")
	}
	if Seed(morning, "s") < 0 {
		t.Error("seed must be non-negative")
	}
}
