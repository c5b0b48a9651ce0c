package runtimecfg

import "github.com/finpy/jpx-derivatives/internal/config"

// Patch is a partial update for settings exposed over the web API.
// Fields are pointers so "not set" can be distinguished from zero values.
type Patch struct {
	Provider     *string `json:"provider,omitempty"`
	ProductCount *int    `json:"product_count,omitempty"`

	RebuildIntervalHours *int `json:"rebuild_interval_hours,omitempty"`

	HolidaysURL   *string  `json:"holidays_url,omitempty"`
	ExtraClosures []string `json:"extra_closures,omitempty"`

	SettlementCSV []string `json:"settlement_csv,omitempty"`
	TradingDayCSV []string `json:"trading_day_csv,omitempty"`
}

func (p Patch) Apply(cfg *config.Config) {
	if p.Provider != nil {
		cfg.Provider = *p.Provider
	}
	if p.ProductCount != nil {
		cfg.ProductCount = *p.ProductCount
	}
	if p.RebuildIntervalHours != nil {
		cfg.Rebuild.IntervalHours = *p.RebuildIntervalHours
	}
	if p.HolidaysURL != nil {
		cfg.Holidays.URL = *p.HolidaysURL
	}
	if p.ExtraClosures != nil {
		cfg.Holidays.ExtraClosures = p.ExtraClosures
	}
	if p.SettlementCSV != nil {
		cfg.Sources.SettlementCSV = p.SettlementCSV
	}
	if p.TradingDayCSV != nil {
		cfg.Sources.TradingDayCSV = p.TradingDayCSV
	}
}
