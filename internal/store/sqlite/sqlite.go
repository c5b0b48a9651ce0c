package sqlite

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

func Open(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite uses a file path DSN.
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return db, nil
}

func Migrate(db *sql.DB) error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA synchronous=NORMAL;`,

		// The canonical calendar: one row per contract month. Dates are
		// YYYY-MM-DD TEXT so lexicographic compare matches date order;
		// the price is decimal TEXT (NULL until the contract settles).
		`CREATE TABLE IF NOT EXISTS special_quotation (
			contract_month TEXT PRIMARY KEY,
			special_quotation_day TEXT NOT NULL,
			last_trading_day TEXT NOT NULL,
			final_settlement_price TEXT
		);`,

		`CREATE INDEX IF NOT EXISTS idx_sq_day
			ON special_quotation(special_quotation_day);`,

		`CREATE TABLE IF NOT EXISTS holidays (
			date TEXT PRIMARY KEY
		);`,

		// One row per completed rebuild, for operational visibility.
		`CREATE TABLE IF NOT EXISTS rebuild_log (
			built_at TEXT PRIMARY KEY,
			record_count INTEGER NOT NULL,
			holiday_count INTEGER NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}
