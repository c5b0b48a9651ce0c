package calendar

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestHolidaySetDedupesAndSorts(t *testing.T) {
	hs := NewHolidaySet([]time.Time{
		date(2024, 1, 3),
		date(2024, 1, 1),
		date(2024, 1, 3),
		date(2024, 1, 2),
	})
	if hs.Len() != 3 {
		t.Fatalf("len=%d want=3", hs.Len())
	}
	dates := hs.Dates()
	for i := 0; i < len(dates)-1; i++ {
		if !dates[i].Before(dates[i+1]) {
			t.Fatalf("dates not strictly ascending: %v", dates)
		}
	}
	if !hs.Contains(date(2024, 1, 2)) {
		t.Fatalf("expected 2024-01-02 in set")
	}
	if hs.Contains(date(2024, 1, 4)) {
		t.Fatalf("2024-01-04 should not be in set")
	}
}

func TestDriftReturnsNonHolidayUnchanged(t *testing.T) {
	hs := NewHolidaySet([]time.Time{date(2024, 1, 1)})
	got, err := Drift(date(2024, 1, 12), hs)
	if err != nil {
		t.Fatalf("drift: %v", err)
	}
	if !got.Equal(date(2024, 1, 12)) {
		t.Fatalf("got=%s want=2024-01-12", got.Format("2006-01-02"))
	}
}

func TestDriftWalksBackwardOverHolidayRun(t *testing.T) {
	hs := NewHolidaySet([]time.Time{
		date(2024, 5, 3),
		date(2024, 5, 4),
		date(2024, 5, 5),
	})
	got, err := Drift(date(2024, 5, 5), hs)
	if err != nil {
		t.Fatalf("drift: %v", err)
	}
	if !got.Equal(date(2024, 5, 2)) {
		t.Fatalf("got=%s want=2024-05-02", got.Format("2006-01-02"))
	}
	if hs.Contains(got) {
		t.Fatalf("drift landed on a holiday: %s", got.Format("2006-01-02"))
	}
}

func TestDriftFailsOnOverlongHolidayRun(t *testing.T) {
	var run []time.Time
	for d := 1; d <= 8; d++ {
		run = append(run, date(2024, 1, d))
	}
	hs := NewHolidaySet(run)
	if _, err := Drift(date(2024, 1, 8), hs); !errors.Is(err, ErrHolidayRun) {
		t.Fatalf("want ErrHolidayRun, got %v", err)
	}
}
