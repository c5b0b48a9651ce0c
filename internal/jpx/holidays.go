package jpx

import (
	"fmt"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/finpy/jpx-derivatives/internal/calendar"
)

// Holiday is one entry of the public holiday list.
type Holiday struct {
	Date time.Time
	Name string
}

// holidayTradingStart is the day JPX holiday trading began. From this day
// on a public holiday is a trading day unless the exchange publishes it
// as a non-implementation day, so the public list stops feeding the
// holiday set here; later closures arrive via configuration.
var holidayTradingStart = time.Date(2022, time.September, 23, 0, 0, 0, 0, time.UTC)

type holidayEntry struct {
	Date   string `yaml:"date"`
	NameEn string `yaml:"name_en"`
}

// parseHolidayYAML decodes the holiday_jp holidays.yml format: a mapping
// of YYYY-MM-DD keys to entry bodies. Output is sorted by date.
func parseHolidayYAML(b []byte) ([]Holiday, error) {
	entries := map[string]holidayEntry{}
	if err := yaml.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("parse holiday yaml: %w", err)
	}

	out := make([]Holiday, 0, len(entries))
	for key, entry := range entries {
		d, err := time.Parse("2006-01-02", key)
		if err != nil {
			return nil, fmt.Errorf("parse holiday yaml: bad date key %q", key)
		}
		out = append(out, Holiday{Date: d, Name: entry.NameEn})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// YearEndClosures generates the exchange-specific non-trading days that
// never appear in the public holiday list. Through 2022 the exchange
// closed for the year-end/new-year run (Jan 2, Jan 3, Dec 31); from 2023,
// under holiday trading, only New Year's Day itself is force-closed.
func YearEndClosures(fromYear, toYear int) []time.Time {
	var out []time.Time
	for y := fromYear; y <= toYear; y++ {
		if y <= 2022 {
			out = append(out,
				time.Date(y, time.January, 2, 0, 0, 0, 0, time.UTC),
				time.Date(y, time.January, 3, 0, 0, 0, 0, time.UTC),
				time.Date(y, time.December, 31, 0, 0, 0, 0, time.UTC))
		} else {
			out = append(out, time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC))
		}
	}
	return out
}

// BuildHolidaySet merges the public list (bounded to [from,
// holidayTradingStart)), the generated year-end closures and any
// configured extra closures into one immutable holiday set.
func BuildHolidaySet(public []Holiday, from time.Time, extra []time.Time) *calendar.HolidaySet {
	var dates []time.Time
	maxYear := from.Year()
	for _, h := range public {
		if h.Date.Before(from) || !h.Date.Before(holidayTradingStart) {
			continue
		}
		dates = append(dates, h.Date)
	}
	for _, h := range public {
		if h.Date.Year() > maxYear {
			maxYear = h.Date.Year()
		}
	}
	for _, d := range extra {
		if d.Year() > maxYear {
			maxYear = d.Year()
		}
	}
	dates = append(dates, YearEndClosures(from.Year(), maxYear)...)
	dates = append(dates, extra...)
	return calendar.NewHolidaySet(dates)
}
