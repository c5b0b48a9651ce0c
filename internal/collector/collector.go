// Package collector owns the calendar rebuild: it gathers the external
// inputs, reconciles them into one canonical calendar, persists the
// result and publishes the new snapshot.
package collector

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/finpy/jpx-derivatives/internal/calendar"
	"github.com/finpy/jpx-derivatives/internal/config"
	"github.com/finpy/jpx-derivatives/internal/jpx"
	"github.com/finpy/jpx-derivatives/internal/provider"
	"github.com/finpy/jpx-derivatives/internal/store/sqlite"
)

type Collector struct {
	cfg  config.Config
	db   *sql.DB
	jpx  *jpx.Client
	snap *provider.Snapshot
	loc  *time.Location
}

func New(cfg config.Config, db *sql.DB, snap *provider.Snapshot) *Collector {
	return &Collector{
		cfg:  cfg,
		db:   db,
		jpx:  jpx.NewClient(),
		snap: snap,
		loc:  cfg.Location(),
	}
}

// RebuildOnce runs one full rebuild. Any failure aborts before anything
// is persisted or published, so readers keep the previous calendar.
func (c *Collector) RebuildOnce(ctx context.Context, now time.Time) error {
	public, err := c.jpx.FetchHolidays(ctx, c.cfg.Holidays.URL)
	if err != nil {
		return fmt.Errorf("holidays: %w", err)
	}

	extra := make([]time.Time, 0, len(c.cfg.Holidays.ExtraClosures))
	for _, s := range c.cfg.Holidays.ExtraClosures {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			return fmt.Errorf("extra closure %q: %w", s, err)
		}
		extra = append(extra, d)
	}
	holidays := jpx.BuildHolidaySet(public, c.cfg.HolidaysFrom(), extra)

	var sources [][]calendar.PartialRecord
	for _, path := range c.cfg.Sources.SettlementCSV {
		records, err := jpx.LoadSettlementTable(path)
		if err != nil {
			return fmt.Errorf("settlement source: %w", err)
		}
		sources = append(sources, records)
	}
	for _, path := range c.cfg.Sources.TradingDayCSV {
		records, err := jpx.LoadTradingDayTable(path)
		if err != nil {
			return fmt.Errorf("trading day source: %w", err)
		}
		sources = append(sources, records)
	}

	cal, err := calendar.Reconcile(holidays, sources...)
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}

	if err := sqlite.ReplaceCalendar(c.db, cal); err != nil {
		return fmt.Errorf("store calendar: %w", err)
	}
	if err := sqlite.ReplaceHolidays(c.db, holidays); err != nil {
		return fmt.Errorf("store holidays: %w", err)
	}
	if err := sqlite.LogRebuild(c.db, now, len(cal.Records), holidays.Len()); err != nil {
		return fmt.Errorf("log rebuild: %w", err)
	}

	c.snap.Replace(cal, holidays, now)
	log.Printf("rebuild ok: records=%d holidays=%d sources=%d",
		len(cal.Records), holidays.Len(), len(sources))
	return nil
}

// RunPeriodic rebuilds on a fixed interval until the context is
// cancelled. A failed rebuild is logged and the previous calendar stays
// published until the next attempt.
func (c *Collector) RunPeriodic(ctx context.Context) error {
	interval := time.Duration(c.cfg.Rebuild.IntervalHours) * time.Hour
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("rebuild loop started: interval=%s settlement=%d trading_day=%d",
		interval, len(c.cfg.Sources.SettlementCSV), len(c.cfg.Sources.TradingDayCSV))

	if c.cfg.Rebuild.OnStart != nil && *c.cfg.Rebuild.OnStart {
		if err := c.RebuildOnce(ctx, time.Now().In(c.loc)); err != nil {
			log.Printf("rebuild err: %v", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := c.RebuildOnce(ctx, time.Now().In(c.loc)); err != nil {
				log.Printf("rebuild err: %v", err)
			}
		}
	}
}

// RestoreSnapshot loads the last persisted calendar into the snapshot,
// so a restarted process serves data before its first rebuild finishes.
func (c *Collector) RestoreSnapshot() error {
	cal, err := sqlite.LoadCalendar(c.db)
	if err != nil {
		return fmt.Errorf("load calendar: %w", err)
	}
	if len(cal.Records) == 0 {
		return nil
	}
	holidays, err := sqlite.LoadHolidays(c.db)
	if err != nil {
		return fmt.Errorf("load holidays: %w", err)
	}
	c.snap.Replace(cal, holidays, time.Now().In(c.loc))
	log.Printf("snapshot restored: records=%d holidays=%d", len(cal.Records), holidays.Len())
	return nil
}
