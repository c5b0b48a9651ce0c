package sqlite

import "time"

// Calendar dates are stored as YYYY-MM-DD TEXT so that lexicographic
// ordering matches date ordering.
const dateLayout = "2006-01-02"

func formatDate(d time.Time) string {
	return d.Format(dateLayout)
}

func parseStoredDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}
