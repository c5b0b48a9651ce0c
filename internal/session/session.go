// Package session classifies wall-clock time against the two-phase JPX
// derivatives trading day: a day session and an overnight session, each
// ending in a closing auction.
package session

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Phase is the trading state of the market at a point in time.
type Phase string

const (
	Day          Phase = "DAY"
	DayClosing   Phase = "DAY_CLOSING"
	Night        Phase = "NIGHT"
	NightClosing Phase = "NIGHT_CLOSING"
	OffHours     Phase = "OFF_HOURS"
)

// ErrSchedule marks a malformed schedule: bad HH:MM values or windows
// that overlap when projected onto one 24-hour cycle. Raised at load
// time; Classify itself has no error path.
var ErrSchedule = errors.New("malformed trading-hours schedule")

// Window is a named time-of-day span. Start > End means the window
// crosses midnight and runs from Start until End on the following day.
type Window struct {
	Start int // minutes since midnight, inclusive
	End   int // minutes since midnight, exclusive
}

func (w Window) contains(minute int) bool {
	if w.Start <= w.End {
		return minute >= w.Start && minute < w.End
	}
	return minute >= w.Start || minute < w.End
}

func (w Window) wraps() bool { return w.Start > w.End }

// Schedule is one full trading cycle. Together with the implicit
// off-hours phase the four windows cover the 24-hour clock.
type Schedule struct {
	Day          Window
	DayClosing   Window
	Night        Window
	NightClosing Window
}

// ParseClock converts an "HH:MM" string to minutes since midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("%w: clock value %q", ErrSchedule, s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// NewSchedule parses the four windows from "HH:MM" pairs and validates
// that none of them overlap on the projected 24-hour cycle.
func NewSchedule(day, dayClosing, night, nightClosing [2]string) (Schedule, error) {
	parse := func(name string, pair [2]string) (Window, error) {
		start, err := ParseClock(pair[0])
		if err != nil {
			return Window{}, fmt.Errorf("%s start: %w", name, err)
		}
		end, err := ParseClock(pair[1])
		if err != nil {
			return Window{}, fmt.Errorf("%s end: %w", name, err)
		}
		if start == end {
			return Window{}, fmt.Errorf("%w: %s window %s-%s is empty", ErrSchedule, name, pair[0], pair[1])
		}
		return Window{Start: start, End: end}, nil
	}

	var s Schedule
	var err error
	if s.Day, err = parse("day", day); err != nil {
		return Schedule{}, err
	}
	if s.DayClosing, err = parse("day_closing", dayClosing); err != nil {
		return Schedule{}, err
	}
	if s.Night, err = parse("night", night); err != nil {
		return Schedule{}, err
	}
	if s.NightClosing, err = parse("night_closing", nightClosing); err != nil {
		return Schedule{}, err
	}
	if err := s.checkOverlap(); err != nil {
		return Schedule{}, err
	}
	return s, nil
}

// checkOverlap projects every window onto [0,1440) segments and rejects
// any intersection between different windows.
func (s Schedule) checkOverlap() error {
	type segment struct {
		name       string
		start, end int
	}
	var segments []segment
	add := func(name string, w Window) {
		if w.wraps() {
			segments = append(segments,
				segment{name, w.Start, 24 * 60},
				segment{name, 0, w.End})
			return
		}
		segments = append(segments, segment{name, w.Start, w.End})
	}
	add("day", s.Day)
	add("day_closing", s.DayClosing)
	add("night", s.Night)
	add("night_closing", s.NightClosing)

	sort.Slice(segments, func(i, j int) bool { return segments[i].start < segments[j].start })
	for i := 0; i < len(segments)-1; i++ {
		a, b := segments[i], segments[i+1]
		if b.start < a.end && a.name != b.name {
			return fmt.Errorf("%w: %s overlaps %s", ErrSchedule, a.name, b.name)
		}
	}
	return nil
}

// Classify returns the phase active at t. Only the time-of-day matters;
// the night window uses the crosses-midnight interpretation, so both a
// late evening and an early morning fall into NIGHT.
func Classify(s Schedule, t time.Time) Phase {
	minute := t.Hour()*60 + t.Minute()
	switch {
	case s.Day.contains(minute):
		return Day
	case s.DayClosing.contains(minute):
		return DayClosing
	case s.Night.contains(minute):
		return Night
	case s.NightClosing.contains(minute):
		return NightClosing
	default:
		return OffHours
	}
}

// ClosingDeadline returns the end of the closing auction that terminates
// the session now belongs to, or false during off-hours.
//
// During NIGHT the window itself straddles midnight: once the clock has
// passed the night-closing start time (i.e. it is late evening, before
// midnight), the auction that ends this session happens on the following
// calendar date, so the deadline rolls one day ahead rather than picking
// today's already-elapsed occurrence.
func ClosingDeadline(s Schedule, now time.Time) (time.Time, bool) {
	switch Classify(s, now) {
	case Day, DayClosing:
		return nextOccurrence(now, s.DayClosing.End), true
	case Night:
		minute := now.Hour()*60 + now.Minute()
		if minute >= s.NightClosing.Start {
			return clockOn(now.AddDate(0, 0, 1), s.NightClosing.End), true
		}
		return nextOccurrence(now, s.NightClosing.End), true
	case NightClosing:
		return nextOccurrence(now, s.NightClosing.End), true
	default:
		return time.Time{}, false
	}
}

// nextOccurrence is the first instant with the given time-of-day strictly
// after now: today if still ahead, otherwise tomorrow.
func nextOccurrence(now time.Time, minute int) time.Time {
	candidate := clockOn(now, minute)
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}

func clockOn(d time.Time, minute int) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), minute/60, minute%60, 0, 0, d.Location())
}
