package sqlite

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finpy/jpx-derivatives/internal/calendar"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testRecord(t *testing.T, key string, sq, last time.Time, price string) calendar.Record {
	t.Helper()
	month, err := calendar.ParseContractMonth(key)
	if err != nil {
		t.Fatalf("parse %s: %v", key, err)
	}
	r := calendar.Record{Month: month, SpecialQuotationDay: sq, LastTradingDay: last}
	if price != "" {
		p := decimal.RequireFromString(price)
		r.FinalSettlementPrice = &p
	}
	return r
}

func TestCalendarRoundTrip(t *testing.T) {
	db := openTestDB(t)

	stored := calendar.Calendar{Records: []calendar.Record{
		// Settled monthly contract: all four fields.
		testRecord(t, "2024-01", date(2024, 1, 12), date(2024, 1, 11), "35781.29"),
		// Unsettled weekly contract: NULL price.
		testRecord(t, "2024-02-W1", date(2024, 2, 2), date(2024, 2, 1), ""),
	}}
	if err := ReplaceCalendar(db, stored); err != nil {
		t.Fatalf("replace: %v", err)
	}

	loaded, err := LoadCalendar(db)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.Records) != len(stored.Records) {
		t.Fatalf("records=%d want=%d", len(loaded.Records), len(stored.Records))
	}
	for i, want := range stored.Records {
		got := loaded.Records[i]
		if got.Key() != want.Key() {
			t.Errorf("pos=%d key got=%s want=%s", i, got.Key(), want.Key())
		}
		if !got.SpecialQuotationDay.Equal(want.SpecialQuotationDay) {
			t.Errorf("%s: sq got=%s want=%s", want.Key(),
				got.SpecialQuotationDay.Format("2006-01-02"), want.SpecialQuotationDay.Format("2006-01-02"))
		}
		if !got.LastTradingDay.Equal(want.LastTradingDay) {
			t.Errorf("%s: last got=%s want=%s", want.Key(),
				got.LastTradingDay.Format("2006-01-02"), want.LastTradingDay.Format("2006-01-02"))
		}
		switch {
		case want.FinalSettlementPrice == nil:
			if got.FinalSettlementPrice != nil {
				t.Errorf("%s: price got=%s want=nil", want.Key(), got.FinalSettlementPrice)
			}
		case got.FinalSettlementPrice == nil:
			t.Errorf("%s: price got=nil want=%s", want.Key(), want.FinalSettlementPrice)
		case !got.FinalSettlementPrice.Equal(*want.FinalSettlementPrice):
			t.Errorf("%s: price got=%s want=%s", want.Key(), got.FinalSettlementPrice, want.FinalSettlementPrice)
		}
	}
}

func TestReplaceCalendarIsWholesale(t *testing.T) {
	db := openTestDB(t)

	first := calendar.Calendar{Records: []calendar.Record{
		testRecord(t, "2024-01", date(2024, 1, 12), date(2024, 1, 11), "35781.29"),
	}}
	if err := ReplaceCalendar(db, first); err != nil {
		t.Fatalf("first replace: %v", err)
	}
	second := calendar.Calendar{Records: []calendar.Record{
		testRecord(t, "2024-02", date(2024, 2, 9), date(2024, 2, 8), ""),
	}}
	if err := ReplaceCalendar(db, second); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	loaded, err := LoadCalendar(db)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.Records) != 1 || loaded.Records[0].Key() != "2024-02" {
		t.Fatalf("old rows survived the replace: %+v", loaded.Records)
	}
}

func TestUpcomingRecords(t *testing.T) {
	db := openTestDB(t)

	cal := calendar.Calendar{Records: []calendar.Record{
		testRecord(t, "2024-01", date(2024, 1, 12), date(2024, 1, 11), "35781.29"),
		testRecord(t, "2024-02", date(2024, 2, 9), date(2024, 2, 8), ""),
		testRecord(t, "2024-03", date(2024, 3, 8), date(2024, 3, 7), ""),
		testRecord(t, "2024-02-W1", date(2024, 2, 2), date(2024, 2, 1), ""),
		testRecord(t, "2024-02-W3", date(2024, 2, 16), date(2024, 2, 15), ""),
	}}
	if err := ReplaceCalendar(db, cal); err != nil {
		t.Fatalf("replace: %v", err)
	}

	now := date(2024, 1, 15)
	monthly, err := UpcomingRecords(db, now, 2, false)
	if err != nil {
		t.Fatalf("monthly: %v", err)
	}
	if len(monthly) != 2 || monthly[0].Key() != "2024-02" || monthly[1].Key() != "2024-03" {
		t.Fatalf("monthly upcoming wrong: %+v", monthly)
	}

	weekly, err := UpcomingRecords(db, now, 10, true)
	if err != nil {
		t.Fatalf("weekly: %v", err)
	}
	if len(weekly) != 2 || weekly[0].Key() != "2024-02-W1" || weekly[1].Key() != "2024-02-W3" {
		t.Fatalf("weekly upcoming wrong: %+v", weekly)
	}

	// Past SQ days never come back, even with room in the limit.
	monthly, err = UpcomingRecords(db, date(2024, 2, 9), 10, false)
	if err != nil {
		t.Fatalf("monthly after feb sq: %v", err)
	}
	if len(monthly) != 1 || monthly[0].Key() != "2024-03" {
		t.Fatalf("past records returned: %+v", monthly)
	}
}

func TestHolidaysRoundTrip(t *testing.T) {
	db := openTestDB(t)

	stored := calendar.NewHolidaySet([]time.Time{
		date(2024, 1, 1),
		date(2024, 1, 8),
		date(2024, 2, 12),
	})
	if err := ReplaceHolidays(db, stored); err != nil {
		t.Fatalf("replace: %v", err)
	}

	loaded, err := LoadHolidays(db)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Len() != stored.Len() {
		t.Fatalf("len=%d want=%d", loaded.Len(), stored.Len())
	}
	for _, d := range stored.Dates() {
		if !loaded.Contains(d) {
			t.Errorf("missing holiday %s", d.Format("2006-01-02"))
		}
	}
}
