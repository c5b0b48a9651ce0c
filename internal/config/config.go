package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/finpy/jpx-derivatives/internal/session"
)

const defaultHolidayURL = "https://raw.githubusercontent.com/holiday-jp/holiday_jp/master/holidays.yml"

type Config struct {
	DBPath   string `yaml:"db_path"`
	Timezone string `yaml:"timezone"`

	// Provider selects how callers read the calendar: "store" queries
	// SQLite, "memory" reads the in-process snapshot.
	Provider     string `yaml:"provider"`
	ProductCount int    `yaml:"product_count"`

	Rebuild struct {
		IntervalHours int   `yaml:"interval_hours"`
		OnStart       *bool `yaml:"on_start"`
	} `yaml:"rebuild"`

	Holidays HolidaysConfig `yaml:"holidays"`
	Sources  SourcesConfig  `yaml:"sources"`

	TradingHours TradingHoursConfig `yaml:"trading_hours"`
}

type HolidaysConfig struct {
	URL  string `yaml:"url"`
	From string `yaml:"from"`

	// ExtraClosures lists additional non-trading dates (YYYY-MM-DD) on
	// top of the generated year-end closures.
	ExtraClosures []string `yaml:"extra_closures"`
}

type SourcesConfig struct {
	// CSV exports of the historical settlement-price publications and of
	// the published trading-day tables.
	SettlementCSV []string `yaml:"settlement_csv"`
	TradingDayCSV []string `yaml:"trading_day_csv"`
}

type TradingHoursConfig struct {
	Day          WindowConfig `yaml:"day"`
	DayClosing   WindowConfig `yaml:"day_closing"`
	Night        WindowConfig `yaml:"night"`
	NightClosing WindowConfig `yaml:"night_closing"`
}

type WindowConfig struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}

	if err := NormalizeAndValidate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Timezone == "" {
		cfg.Timezone = "Asia/Tokyo"
	}
	if cfg.Provider == "" {
		cfg.Provider = "store"
	}
	if cfg.ProductCount == 0 {
		cfg.ProductCount = 6
	}
	if cfg.Rebuild.IntervalHours == 0 {
		cfg.Rebuild.IntervalHours = 24
	}
	if cfg.Rebuild.OnStart == nil {
		v := true
		cfg.Rebuild.OnStart = &v
	}
	if cfg.Holidays.URL == "" {
		cfg.Holidays.URL = defaultHolidayURL
	}
	if cfg.Holidays.From == "" {
		cfg.Holidays.From = "2020-01-01"
	}
	applyWindowDefaults(&cfg.TradingHours.Day, "08:45", "15:40")
	applyWindowDefaults(&cfg.TradingHours.DayClosing, "15:40", "15:45")
	applyWindowDefaults(&cfg.TradingHours.Night, "17:00", "05:55")
	applyWindowDefaults(&cfg.TradingHours.NightClosing, "05:55", "06:00")
}

func applyWindowDefaults(w *WindowConfig, start, end string) {
	if w.Start == "" && w.End == "" {
		w.Start = start
		w.End = end
	}
}

// NormalizeAndValidate applies defaults and checks invariants. A
// malformed schedule fails here, at load time, not at classify time.
func NormalizeAndValidate(cfg *Config) error {
	applyDefaults(cfg)
	if cfg.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	if cfg.Provider != "store" && cfg.Provider != "memory" {
		return fmt.Errorf("provider must be store or memory, got %q", cfg.Provider)
	}
	if cfg.ProductCount < 1 {
		return fmt.Errorf("product_count must be >= 1")
	}
	if cfg.Rebuild.IntervalHours < 1 {
		return fmt.Errorf("rebuild.interval_hours must be >= 1")
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	if _, err := time.Parse("2006-01-02", cfg.Holidays.From); err != nil {
		return fmt.Errorf("holidays.from: %w", err)
	}
	for _, d := range cfg.Holidays.ExtraClosures {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return fmt.Errorf("holidays.extra_closures: %w", err)
		}
	}
	if _, err := cfg.Schedule(); err != nil {
		return fmt.Errorf("trading_hours: %w", err)
	}
	return nil
}

// Schedule builds the validated session schedule from the configured
// trading hours.
func (c Config) Schedule() (session.Schedule, error) {
	return session.NewSchedule(
		[2]string{c.TradingHours.Day.Start, c.TradingHours.Day.End},
		[2]string{c.TradingHours.DayClosing.Start, c.TradingHours.DayClosing.End},
		[2]string{c.TradingHours.Night.Start, c.TradingHours.Night.End},
		[2]string{c.TradingHours.NightClosing.Start, c.TradingHours.NightClosing.End},
	)
}

// Location resolves the configured exchange timezone.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// HolidaysFrom returns the configured lower bound for the holiday list.
func (c Config) HolidaysFrom() time.Time {
	t, _ := time.Parse("2006-01-02", c.Holidays.From)
	return t
}
