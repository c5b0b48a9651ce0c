package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/finpy/jpx-derivatives/internal/calendar"
)

// ReplaceHolidays swaps the stored holiday set wholesale, mirroring
// ReplaceCalendar.
func ReplaceHolidays(db *sql.DB, holidays *calendar.HolidaySet) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM holidays`); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO holidays(date) VALUES (?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, d := range holidays.Dates() {
		if _, err := stmt.Exec(formatDate(d)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadHolidays reads the stored holiday set back.
func LoadHolidays(db *sql.DB) (*calendar.HolidaySet, error) {
	rows, err := db.Query(`SELECT date FROM holidays ORDER BY date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		t, err := parseStoredDate(d)
		if err != nil {
			return nil, fmt.Errorf("holiday row %q: %w", d, err)
		}
		dates = append(dates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return calendar.NewHolidaySet(dates), nil
}
