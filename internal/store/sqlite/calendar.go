package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finpy/jpx-derivatives/internal/calendar"
)

// ReplaceCalendar swaps the stored calendar for a freshly reconciled one
// in a single transaction. The calendar is always replaced wholesale;
// readers either see the old rows or the new ones, never a mix.
func ReplaceCalendar(db *sql.DB, cal calendar.Calendar) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM special_quotation`); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO special_quotation(
			contract_month, special_quotation_day, last_trading_day, final_settlement_price
		) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range cal.Records {
		var price any
		if r.FinalSettlementPrice != nil {
			price = r.FinalSettlementPrice.String()
		}
		if _, err := stmt.Exec(r.Key(), formatDate(r.SpecialQuotationDay), formatDate(r.LastTradingDay), price); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadCalendar reads the stored calendar back, ordered by contract month.
func LoadCalendar(db *sql.DB) (calendar.Calendar, error) {
	rows, err := db.Query(`
		SELECT contract_month, special_quotation_day, last_trading_day, final_settlement_price
		FROM special_quotation
	`)
	if err != nil {
		return calendar.Calendar{}, err
	}
	defer rows.Close()

	var records []calendar.Record
	for rows.Next() {
		var key, sqDay, lastDay string
		var price sql.NullString
		if err := rows.Scan(&key, &sqDay, &lastDay, &price); err != nil {
			return calendar.Calendar{}, err
		}
		r, err := scanRecord(key, sqDay, lastDay, price)
		if err != nil {
			return calendar.Calendar{}, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return calendar.Calendar{}, err
	}

	cal := calendar.Calendar{Records: records}
	cal.SortRecords()
	return cal, nil
}

// UpcomingRecords queries records whose SQ day is after the given time,
// monthly or weekly only, ordered by SQ day, limited to count rows.
func UpcomingRecords(db *sql.DB, after time.Time, count int, weekly bool) ([]calendar.Record, error) {
	pattern := `%-W%`
	clause := `NOT LIKE`
	if weekly {
		clause = `LIKE`
	}
	rows, err := db.Query(fmt.Sprintf(`
		SELECT contract_month, special_quotation_day, last_trading_day, final_settlement_price
		FROM special_quotation
		WHERE special_quotation_day > ? AND contract_month %s ?
		ORDER BY special_quotation_day
		LIMIT ?
	`, clause), formatDate(after), pattern, count)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []calendar.Record
	for rows.Next() {
		var key, sqDay, lastDay string
		var price sql.NullString
		if err := rows.Scan(&key, &sqDay, &lastDay, &price); err != nil {
			return nil, err
		}
		r, err := scanRecord(key, sqDay, lastDay, price)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func scanRecord(key, sqDay, lastDay string, price sql.NullString) (calendar.Record, error) {
	month, err := calendar.ParseContractMonth(key)
	if err != nil {
		return calendar.Record{}, err
	}
	sq, err := parseStoredDate(sqDay)
	if err != nil {
		return calendar.Record{}, fmt.Errorf("record %s: %w", key, err)
	}
	last, err := parseStoredDate(lastDay)
	if err != nil {
		return calendar.Record{}, fmt.Errorf("record %s: %w", key, err)
	}
	r := calendar.Record{Month: month, SpecialQuotationDay: sq, LastTradingDay: last}
	if price.Valid {
		p, err := decimal.NewFromString(price.String)
		if err != nil {
			return calendar.Record{}, fmt.Errorf("record %s: bad price %q", key, price.String)
		}
		r.FinalSettlementPrice = &p
	}
	return r, nil
}

// LogRebuild appends one audit row per completed rebuild.
func LogRebuild(db *sql.DB, builtAt time.Time, recordCount, holidayCount int) error {
	_, err := db.Exec(`
		INSERT INTO rebuild_log(built_at, record_count, holiday_count)
		VALUES (?, ?, ?)
		ON CONFLICT(built_at) DO UPDATE SET
			record_count=excluded.record_count,
			holiday_count=excluded.holiday_count
	`, builtAt.UTC().Format(time.RFC3339), recordCount, holidayCount)
	return err
}
