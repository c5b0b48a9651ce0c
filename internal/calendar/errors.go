package calendar

import "errors"

// Sentinel errors for the failure modes of a calendar rebuild. Callers
// classify with errors.Is; any of these aborts the rebuild so a partially
// reconciled calendar is never published.
var (
	// ErrFormat marks an unparseable contract-month key. Caller data bug,
	// not retryable.
	ErrFormat = errors.New("malformed contract month key")

	// ErrConflict marks two sources supplying different non-null values
	// for the same field of the same contract month.
	ErrConflict = errors.New("conflicting source values")

	// ErrInvalidRecord marks a merged record whose days break the
	// calendar rules: a last trading day on or after the SQ day, or
	// either day on a holiday. Derived days cannot trip this; it catches
	// source-supplied values that agree with each other but are wrong.
	ErrInvalidRecord = errors.New("invalid calendar record")

	// ErrHolidayRun marks a backward drift that hit the step limit,
	// i.e. a malformed or pathologically long holiday run.
	ErrHolidayRun = errors.New("holiday run exceeds drift limit")
)
