package provider

import (
	"sync"
	"time"

	"github.com/finpy/jpx-derivatives/internal/calendar"
)

// Snapshot holds the most recently published calendar and holiday set.
// A rebuild replaces both wholesale under the lock; readers get the
// current pair without coordination and never observe a half-built
// calendar.
type Snapshot struct {
	mu       sync.RWMutex
	cal      calendar.Calendar
	holidays *calendar.HolidaySet
	builtAt  time.Time
	ok       bool
}

func NewSnapshot() *Snapshot {
	return &Snapshot{holidays: calendar.NewHolidaySet(nil)}
}

// Replace installs a freshly reconciled calendar and its holiday set.
func (s *Snapshot) Replace(cal calendar.Calendar, holidays *calendar.HolidaySet, builtAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cal = cal
	s.holidays = holidays
	s.builtAt = builtAt
	s.ok = true
}

// Calendar returns the current calendar, its build time, and whether a
// rebuild has published one yet.
func (s *Snapshot) Calendar() (calendar.Calendar, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cal, s.builtAt, s.ok
}

// Holidays returns the current holiday set.
func (s *Snapshot) Holidays() *calendar.HolidaySet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.holidays
}
