package calendar

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func datePtr(y int, m time.Month, d int) *time.Time {
	v := date(y, m, d)
	return &v
}

func pricePtr(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func TestReconcileMergesFieldsAcrossSources(t *testing.T) {
	// Historical settlement table: price only. Published trading-day
	// table: both dates. One record per source plus one shared key.
	settlement := []PartialRecord{
		{ContractMonth: "2024-01", FinalSettlementPrice: pricePtr("35781.29")},
	}
	tradingDays := []PartialRecord{
		{
			ContractMonth:       "2024-01",
			SpecialQuotationDay: datePtr(2024, 1, 12),
			LastTradingDay:      datePtr(2024, 1, 11),
		},
		{
			ContractMonth:       "2024-02",
			SpecialQuotationDay: datePtr(2024, 2, 9),
			LastTradingDay:      datePtr(2024, 2, 8),
		},
	}

	cal, err := Reconcile(noHolidays, settlement, tradingDays)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(cal.Records) != 2 {
		t.Fatalf("records=%d want=2", len(cal.Records))
	}

	jan := cal.Records[0]
	if jan.Key() != "2024-01" {
		t.Fatalf("first record key=%s want=2024-01", jan.Key())
	}
	if !jan.SpecialQuotationDay.Equal(date(2024, 1, 12)) || !jan.LastTradingDay.Equal(date(2024, 1, 11)) {
		t.Fatalf("merged dates wrong: %+v", jan)
	}
	if jan.FinalSettlementPrice == nil || !jan.FinalSettlementPrice.Equal(decimal.RequireFromString("35781.29")) {
		t.Fatalf("merged price wrong: %v", jan.FinalSettlementPrice)
	}
	feb := cal.Records[1]
	if feb.FinalSettlementPrice != nil {
		t.Fatalf("future contract should have no settlement price")
	}
}

func TestReconcileDerivesMissingDays(t *testing.T) {
	hs := NewHolidaySet([]time.Time{date(2024, 1, 12)})
	source := []PartialRecord{
		{ContractMonth: "2024-01", FinalSettlementPrice: pricePtr("36000")},
	}

	cal, err := Reconcile(hs, source)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	r := cal.Records[0]
	// Second Friday 2024-01-12 is a holiday, so SQ drifts to the 11th and
	// the last trading day is the prior calendar day.
	if !r.SpecialQuotationDay.Equal(date(2024, 1, 11)) {
		t.Fatalf("sq got=%s want=2024-01-11", r.SpecialQuotationDay.Format("2006-01-02"))
	}
	if !r.LastTradingDay.Equal(date(2024, 1, 10)) {
		t.Fatalf("last got=%s want=2024-01-10", r.LastTradingDay.Format("2006-01-02"))
	}
	if hs.Contains(r.SpecialQuotationDay) || hs.Contains(r.LastTradingDay) {
		t.Fatalf("derived day fell on a holiday: %+v", r)
	}
	if !r.LastTradingDay.Before(r.SpecialQuotationDay) {
		t.Fatalf("last trading day must precede sq day: %+v", r)
	}
}

func TestReconcileConflictingFieldFails(t *testing.T) {
	a := []PartialRecord{
		{ContractMonth: "2024-01", SpecialQuotationDay: datePtr(2024, 1, 12)},
	}
	b := []PartialRecord{
		{ContractMonth: "2024-01", SpecialQuotationDay: datePtr(2024, 1, 11)},
	}
	if _, err := Reconcile(noHolidays, a, b); !errors.Is(err, ErrConflict) {
		t.Fatalf("want ErrConflict, got %v", err)
	}
}

func TestReconcileAgreeingDuplicatesAreFine(t *testing.T) {
	a := []PartialRecord{
		{ContractMonth: "2024-01", FinalSettlementPrice: pricePtr("27000")},
	}
	b := []PartialRecord{
		// Same fixing, different decimal representation.
		{ContractMonth: "2024-01", FinalSettlementPrice: pricePtr("27000.0")},
	}
	cal, err := Reconcile(noHolidays, a, b)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(cal.Records) != 1 {
		t.Fatalf("records=%d want=1", len(cal.Records))
	}
}

func TestReconcileRejectsInvalidSuppliedDays(t *testing.T) {
	holidays := NewHolidaySet([]time.Time{date(2024, 1, 12)})
	cases := []struct {
		name   string
		source []PartialRecord
	}{
		{
			// Both sources agree, both are wrong: last trading day after
			// the SQ day.
			name: "last trading day after sq day",
			source: []PartialRecord{{
				ContractMonth:       "2024-01",
				SpecialQuotationDay: datePtr(2024, 1, 12),
				LastTradingDay:      datePtr(2024, 1, 15),
			}},
		},
		{
			name: "last trading day equals sq day",
			source: []PartialRecord{{
				ContractMonth:       "2024-01",
				SpecialQuotationDay: datePtr(2024, 1, 12),
				LastTradingDay:      datePtr(2024, 1, 12),
			}},
		},
		{
			name: "supplied sq day on a holiday",
			source: []PartialRecord{{
				ContractMonth:       "2024-01",
				SpecialQuotationDay: datePtr(2024, 1, 12),
				LastTradingDay:      datePtr(2024, 1, 10),
			}},
		},
		{
			name: "supplied last trading day on a holiday",
			source: []PartialRecord{{
				ContractMonth:       "2024-01",
				SpecialQuotationDay: datePtr(2024, 1, 15),
				LastTradingDay:      datePtr(2024, 1, 12),
			}},
		},
	}
	for _, c := range cases {
		if _, err := Reconcile(holidays, c.source); !errors.Is(err, ErrInvalidRecord) {
			t.Errorf("%s: want ErrInvalidRecord, got %v", c.name, err)
		}
	}
}

func TestReconcileDropsSecondWeekContracts(t *testing.T) {
	source := []PartialRecord{
		{ContractMonth: "2024-01-W1"},
		{ContractMonth: "2024-01-W2"},
		{ContractMonth: "2024-01-W3"},
	}
	cal, err := Reconcile(noHolidays, source)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	for _, r := range cal.Records {
		if r.Month.Week == 2 {
			t.Fatalf("week-2 record survived: %s", r.Key())
		}
	}
	if len(cal.Records) != 2 {
		t.Fatalf("records=%d want=2", len(cal.Records))
	}
}

func TestReconcileMalformedKeyFails(t *testing.T) {
	source := []PartialRecord{{ContractMonth: "2024-1"}}
	if _, err := Reconcile(noHolidays, source); !errors.Is(err, ErrFormat) {
		t.Fatalf("want ErrFormat, got %v", err)
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	settlement := []PartialRecord{
		{ContractMonth: "2024-02", FinalSettlementPrice: pricePtr("36158.02")},
		{ContractMonth: "2024-01-W3", FinalSettlementPrice: pricePtr("35700")},
		{ContractMonth: "2024-01", FinalSettlementPrice: pricePtr("35781.29")},
	}
	tradingDays := []PartialRecord{
		{ContractMonth: "2024-03", SpecialQuotationDay: datePtr(2024, 3, 8), LastTradingDay: datePtr(2024, 3, 7)},
	}

	first, err := Reconcile(noHolidays, settlement, tradingDays)
	if err != nil {
		t.Fatalf("first reconcile: %v", err)
	}
	second, err := Reconcile(noHolidays, settlement, tradingDays)
	if err != nil {
		t.Fatalf("second reconcile: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("reconcile not idempotent:\nfirst=%+v\nsecond=%+v", first, second)
	}

	want := []string{"2024-01", "2024-01-W3", "2024-02", "2024-03"}
	for i, r := range first.Records {
		if r.Key() != want[i] {
			t.Fatalf("pos=%d: got=%s want=%s", i, r.Key(), want[i])
		}
	}
}

func TestCalendarUpcoming(t *testing.T) {
	tradingDays := []PartialRecord{
		{ContractMonth: "2024-01"},
		{ContractMonth: "2024-02"},
		{ContractMonth: "2024-03"},
		{ContractMonth: "2024-02-W1"},
		{ContractMonth: "2024-02-W3"},
	}
	cal, err := Reconcile(noHolidays, tradingDays)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	now := date(2024, 1, 15)
	monthly := cal.Upcoming(now, 2, false)
	if len(monthly) != 2 || monthly[0].Key() != "2024-02" || monthly[1].Key() != "2024-03" {
		t.Fatalf("monthly upcoming wrong: %+v", monthly)
	}
	weekly := cal.Upcoming(now, 10, true)
	if len(weekly) != 2 || weekly[0].Key() != "2024-02-W1" {
		t.Fatalf("weekly upcoming wrong: %+v", weekly)
	}
}
