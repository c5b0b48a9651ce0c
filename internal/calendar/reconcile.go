package calendar

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// PartialRecord is one row of an input stream: a contract-month key plus
// whichever fields that publication carries. Nil means "not supplied".
type PartialRecord struct {
	ContractMonth        string
	SpecialQuotationDay  *time.Time
	LastTradingDay       *time.Time
	FinalSettlementPrice *decimal.Decimal
}

// Record is one row of the canonical calendar. SpecialQuotationDay and
// LastTradingDay are always set after reconciliation and never fall on a
// holiday; FinalSettlementPrice stays nil for contracts that have not
// settled yet.
type Record struct {
	Month                ContractMonth    `json:"-"`
	SpecialQuotationDay  time.Time        `json:"special_quotation_day"`
	LastTradingDay       time.Time        `json:"last_trading_day"`
	FinalSettlementPrice *decimal.Decimal `json:"final_settlement_price"`
}

func (r Record) Key() string { return r.Month.Key() }

// Calendar is the full reconciled record set, sorted by contract month.
type Calendar struct {
	Records []Record
}

// Reconcile merges partial record streams into one canonical calendar.
//
// Fields are unioned per contract-month key; two streams supplying
// different non-null values for the same field is ErrConflict, never a
// silent overwrite. Missing SQ days are derived from the contract month,
// missing last trading days from the (then known) SQ day. Weekly records
// with week index 2 are dropped: the exchange lists no second-week mini
// contract in this product line. The result is sorted by contract month
// and the whole operation is deterministic, so reconciling the same
// streams twice yields an identical calendar. Resolved days are checked
// against the calendar rules before publication, so sources that agree
// on a bad value (last trading day on or after the SQ day, or a day on
// a holiday) fail with ErrInvalidRecord instead of being published.
func Reconcile(holidays *HolidaySet, sources ...[]PartialRecord) (Calendar, error) {
	type entry struct {
		month  ContractMonth
		record PartialRecord
	}
	merged := make(map[string]*entry)
	order := make([]string, 0)

	for _, source := range sources {
		for _, partial := range source {
			month, err := ParseContractMonth(partial.ContractMonth)
			if err != nil {
				return Calendar{}, err
			}
			key := month.Key()
			e, ok := merged[key]
			if !ok {
				e = &entry{month: month, record: PartialRecord{ContractMonth: key}}
				merged[key] = e
				order = append(order, key)
			}
			if err := mergeDate(key, "SpecialQuotationDay", &e.record.SpecialQuotationDay, partial.SpecialQuotationDay); err != nil {
				return Calendar{}, err
			}
			if err := mergeDate(key, "LastTradingDay", &e.record.LastTradingDay, partial.LastTradingDay); err != nil {
				return Calendar{}, err
			}
			if err := mergePrice(key, &e.record.FinalSettlementPrice, partial.FinalSettlementPrice); err != nil {
				return Calendar{}, err
			}
		}
	}

	records := make([]Record, 0, len(merged))
	for _, key := range order {
		e := merged[key]
		if e.month.Week == 2 {
			continue
		}

		sqDay := e.record.SpecialQuotationDay
		if sqDay == nil {
			derived, err := SpecialQuotationDay(e.month, holidays)
			if err != nil {
				return Calendar{}, fmt.Errorf("derive sq day for %s: %w", key, err)
			}
			sqDay = &derived
		}
		lastDay := e.record.LastTradingDay
		if lastDay == nil {
			derived, err := LastTradingDay(*sqDay, holidays)
			if err != nil {
				return Calendar{}, fmt.Errorf("derive last trading day for %s: %w", key, err)
			}
			lastDay = &derived
		}

		if err := validateRecord(key, *sqDay, *lastDay, holidays); err != nil {
			return Calendar{}, err
		}

		records = append(records, Record{
			Month:                e.month,
			SpecialQuotationDay:  *sqDay,
			LastTradingDay:       *lastDay,
			FinalSettlementPrice: e.record.FinalSettlementPrice,
		})
	}

	cal := Calendar{Records: records}
	cal.SortRecords()
	return cal, nil
}

// SortRecords restores the canonical contract-month ordering.
func (c *Calendar) SortRecords() {
	sort.Slice(c.Records, func(i, j int) bool {
		return c.Records[i].Month.Compare(c.Records[j].Month) < 0
	})
}

// validateRecord checks the resolved days of one record against the
// calendar rules before it is published.
func validateRecord(key string, sqDay, lastDay time.Time, holidays *HolidaySet) error {
	if !lastDay.Before(sqDay) {
		return fmt.Errorf("%w: %s: last trading day %s not before sq day %s",
			ErrInvalidRecord, key, lastDay.Format(dateLayout), sqDay.Format(dateLayout))
	}
	if holidays.Contains(sqDay) {
		return fmt.Errorf("%w: %s: sq day %s is a holiday",
			ErrInvalidRecord, key, sqDay.Format(dateLayout))
	}
	if holidays.Contains(lastDay) {
		return fmt.Errorf("%w: %s: last trading day %s is a holiday",
			ErrInvalidRecord, key, lastDay.Format(dateLayout))
	}
	return nil
}

func mergeDate(key, field string, dst **time.Time, src *time.Time) error {
	if src == nil {
		return nil
	}
	if *dst == nil {
		d := *src
		*dst = &d
		return nil
	}
	if !(*dst).Equal(*src) {
		return fmt.Errorf("%w: %s on %s (%s vs %s)", ErrConflict, field, key,
			(*dst).Format(dateLayout), src.Format(dateLayout))
	}
	return nil
}

func mergePrice(key string, dst **decimal.Decimal, src *decimal.Decimal) error {
	if src == nil {
		return nil
	}
	if *dst == nil {
		p := *src
		*dst = &p
		return nil
	}
	// Numeric equality: "27000" and "27000.0" describe the same fixing.
	if !(*dst).Equal(*src) {
		return fmt.Errorf("%w: FinalSettlementPrice on %s (%s vs %s)", ErrConflict, key,
			(*dst).String(), src.String())
	}
	return nil
}

// Upcoming returns up to count records whose SQ day is after the given
// time, weekly or monthly contracts only depending on the flag. Records
// keep calendar order, which for a sorted calendar is also SQ-day order
// within each product line.
func (c Calendar) Upcoming(after time.Time, count int, weekly bool) []Record {
	out := make([]Record, 0, count)
	for _, r := range c.Records {
		if r.Month.IsWeekly() != weekly {
			continue
		}
		if !r.SpecialQuotationDay.After(after) {
			continue
		}
		out = append(out, r)
		if len(out) == count {
			break
		}
	}
	return out
}

// Lookup returns the record for a contract-month key, if present.
func (c Calendar) Lookup(key string) (Record, bool) {
	for _, r := range c.Records {
		if r.Key() == key {
			return r, true
		}
	}
	return Record{}, false
}
