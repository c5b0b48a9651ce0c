package calendar

import (
	"fmt"
	"sort"
	"time"
)

const dateLayout = "2006-01-02"

// maxDriftSteps bounds the backward walk in Drift. The exchange never
// closes for anywhere near a week of consecutive days, so running out of
// steps means the holiday set itself is broken.
const maxDriftSteps = 7

// HolidaySet is an immutable collection of non-trading dates: public
// holidays plus exchange closures such as year-end days. Dates are
// calendar dates, not timestamps; membership is O(1).
type HolidaySet struct {
	days   map[string]struct{}
	sorted []time.Time
}

// NewHolidaySet builds a set from calendar dates. Input may be unordered
// and contain duplicates; time-of-day and location are ignored.
func NewHolidaySet(dates []time.Time) *HolidaySet {
	days := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		days[d.Format(dateLayout)] = struct{}{}
	}
	sorted := make([]time.Time, 0, len(days))
	for key := range days {
		d, _ := time.Parse(dateLayout, key)
		sorted = append(sorted, d)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })
	return &HolidaySet{days: days, sorted: sorted}
}

func (h *HolidaySet) Contains(d time.Time) bool {
	_, ok := h.days[d.Format(dateLayout)]
	return ok
}

func (h *HolidaySet) Len() int { return len(h.sorted) }

// Dates returns the ordered, de-duplicated dates as a copy.
func (h *HolidaySet) Dates() []time.Time {
	return append([]time.Time(nil), h.sorted...)
}

// Drift shifts a date backward to the nearest prior non-holiday date. A
// date outside the set is returned unchanged. If maxDriftSteps days back
// are all holidays the walk fails with ErrHolidayRun instead of looping.
func Drift(d time.Time, holidays *HolidaySet) (time.Time, error) {
	if !holidays.Contains(d) {
		return d, nil
	}
	for i := 0; i < maxDriftSteps; i++ {
		d = d.AddDate(0, 0, -1)
		if !holidays.Contains(d) {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: no trading day within %d days before %s",
		ErrHolidayRun, maxDriftSteps, d.AddDate(0, 0, maxDriftSteps).Format(dateLayout))
}
