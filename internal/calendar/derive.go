package calendar

import "time"

// SpecialQuotationDay derives the SQ day for a contract month and adjusts
// it for holidays.
//
// Monthly contracts settle on the second Friday of the month. Weekly
// contracts settle on the first Friday of the month plus 7*(week-1) days;
// note this is "first Friday plus whole weeks", which lands on calendar
// Fridays even when the cycle runs past the end of the month.
func SpecialQuotationDay(m ContractMonth, holidays *HolidaySet) (time.Time, error) {
	anchor := firstFriday(m.Year, m.Month)
	var candidate time.Time
	if m.IsWeekly() {
		candidate = anchor.AddDate(0, 0, 7*(m.Week-1))
	} else {
		candidate = anchor.AddDate(0, 0, 7)
	}
	return Drift(candidate, holidays)
}

// LastTradingDay derives the last trading day from a known SQ day: the
// prior calendar day, drifted over holidays.
func LastTradingDay(sqDay time.Time, holidays *HolidaySet) (time.Time, error) {
	return Drift(sqDay.AddDate(0, 0, -1), holidays)
}

// firstFriday returns the first Friday on or after the 1st of the month.
func firstFriday(year int, month time.Month) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(time.Friday) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, offset)
}
