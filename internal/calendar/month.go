package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ContractMonth identifies one expiry cycle of a JPX index derivative.
// Week == 0 means a regular monthly contract ("2024-03"); Week >= 1 means
// the weekly mini contract anchored to the Week-th Friday cycle of the
// month ("2024-03-W3").
type ContractMonth struct {
	Year  int
	Month time.Month
	Week  int
}

func (m ContractMonth) IsWeekly() bool { return m.Week > 0 }

// Key formats the canonical textual key. Key and ParseContractMonth are
// exact inverses.
func (m ContractMonth) Key() string {
	if m.IsWeekly() {
		return fmt.Sprintf("%04d-%02d-W%d", m.Year, int(m.Month), m.Week)
	}
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// ParseContractMonth parses "YYYY-MM" or "YYYY-MM-W<n>" with a positive
// integer week index. Anything else fails with ErrFormat.
func ParseContractMonth(key string) (ContractMonth, error) {
	parts := strings.Split(key, "-")
	if len(parts) != 2 && len(parts) != 3 {
		return ContractMonth{}, fmt.Errorf("%w: %q", ErrFormat, key)
	}

	year, err := parseFixedInt(parts[0], 4)
	if err != nil {
		return ContractMonth{}, fmt.Errorf("%w: %q", ErrFormat, key)
	}
	month, err := parseFixedInt(parts[1], 2)
	if err != nil || month < 1 || month > 12 {
		return ContractMonth{}, fmt.Errorf("%w: %q", ErrFormat, key)
	}

	cm := ContractMonth{Year: year, Month: time.Month(month)}
	if len(parts) == 2 {
		return cm, nil
	}

	w := parts[2]
	if len(w) < 2 || w[0] != 'W' {
		return ContractMonth{}, fmt.Errorf("%w: %q", ErrFormat, key)
	}
	week, err := strconv.Atoi(w[1:])
	// Reject week 0, negatives and leading zeros ("W03") so that
	// Key(Parse(k)) == k holds for every accepted key.
	if err != nil || week < 1 || w[1:] != strconv.Itoa(week) {
		return ContractMonth{}, fmt.Errorf("%w: %q", ErrFormat, key)
	}
	cm.Week = week
	return cm, nil
}

// parseFixedInt parses a base-10 integer that must be exactly width digits.
func parseFixedInt(s string, width int) (int, error) {
	if len(s) != width {
		return 0, fmt.Errorf("want %d digits, got %q", width, s)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("non-digit in %q", s)
		}
	}
	return strconv.Atoi(s)
}

// Compare orders contract months by year, then month, with the monthly
// contract before any weekly of the same month and weeklies by ascending
// week index. Returns -1, 0 or 1.
func (m ContractMonth) Compare(o ContractMonth) int {
	switch {
	case m.Year != o.Year:
		return sign(m.Year - o.Year)
	case m.Month != o.Month:
		return sign(int(m.Month) - int(o.Month))
	default:
		return sign(m.Week - o.Week)
	}
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}
