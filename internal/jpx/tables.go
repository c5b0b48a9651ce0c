package jpx

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finpy/jpx-derivatives/internal/calendar"
)

// LoadSettlementTable reads a CSV export of a historical settlement-price
// publication. Required columns: ContractMonth, FinalSettlementPrice.
// Optional: SpecialQuotationDay.
func LoadSettlementTable(path string) ([]calendar.PartialRecord, error) {
	var out []calendar.PartialRecord
	err := readTable(path, []string{"ContractMonth", "FinalSettlementPrice"}, func(row map[string]string) error {
		price, err := parsePrice(row["FinalSettlementPrice"])
		if err != nil {
			return err
		}
		record := calendar.PartialRecord{
			ContractMonth:        strings.TrimSpace(row["ContractMonth"]),
			FinalSettlementPrice: price,
		}
		if v, ok := row["SpecialQuotationDay"]; ok && strings.TrimSpace(v) != "" {
			d, err := parseDate(v)
			if err != nil {
				return err
			}
			record.SpecialQuotationDay = d
		}
		out = append(out, record)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("settlement table %s: %w", path, err)
	}
	return out, nil
}

// LoadTradingDayTable reads a CSV export of a published trading-day
// table. Required columns: ContractMonth, SpecialQuotationDay,
// LastTradingDay.
func LoadTradingDayTable(path string) ([]calendar.PartialRecord, error) {
	var out []calendar.PartialRecord
	columns := []string{"ContractMonth", "SpecialQuotationDay", "LastTradingDay"}
	err := readTable(path, columns, func(row map[string]string) error {
		sq, err := parseDate(row["SpecialQuotationDay"])
		if err != nil {
			return err
		}
		last, err := parseDate(row["LastTradingDay"])
		if err != nil {
			return err
		}
		out = append(out, calendar.PartialRecord{
			ContractMonth:       strings.TrimSpace(row["ContractMonth"]),
			SpecialQuotationDay: sq,
			LastTradingDay:      last,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("trading day table %s: %w", path, err)
	}
	return out, nil
}

// readTable streams a header-mapped CSV. Every row is handed to the
// callback as a column-name map; required columns must exist in the
// header.
func readTable(path string, required []string, callback func(map[string]string) error) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	headers, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[strings.TrimSpace(h)] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return fmt.Errorf("missing column %q", col)
		}
	}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return err
		}
		row := make(map[string]string, len(index))
		for name, i := range index {
			if i < len(record) {
				row[name] = record[i]
			}
		}
		if err := callback(row); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
	return nil
}

// parsePrice accepts the publications' comma-grouped numbers ("35,781.29").
func parsePrice(s string) (*decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return nil, nil
	}
	price, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("bad price %q: %w", s, err)
	}
	return &price, nil
}

func parseDate(s string) (*time.Time, error) {
	d, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("bad date %q", strings.TrimSpace(s))
	}
	return &d, nil
}
