// Package provider exposes the canonical calendar to callers through a
// small query interface with enumerated backends selected by
// configuration, not subclassing.
package provider

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/finpy/jpx-derivatives/internal/calendar"
	"github.com/finpy/jpx-derivatives/internal/store/sqlite"
)

// Frequency selects the product line a query covers.
type Frequency string

const (
	Monthly Frequency = "monthly"
	Weekly  Frequency = "weekly"
)

func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(s) {
	case Monthly, Weekly:
		return Frequency(s), nil
	case "":
		return Monthly, nil
	default:
		return "", fmt.Errorf("frequency must be monthly or weekly, got %q", s)
	}
}

// Query asks for the next Count contracts of one product line whose SQ
// day is after Now. Now is always caller-supplied.
type Query struct {
	Now       time.Time
	Count     int
	Frequency Frequency
}

// Provider serves calendar queries from one of the enumerated backends.
type Provider interface {
	Upcoming(ctx context.Context, q Query) ([]calendar.Record, error)
}

// New selects a backend by kind: "store" reads SQLite directly, "memory"
// reads the in-process snapshot.
func New(kind string, db *sql.DB, snap *Snapshot) (Provider, error) {
	switch kind {
	case "store":
		if db == nil {
			return nil, fmt.Errorf("store provider needs a database")
		}
		return &storeProvider{db: db}, nil
	case "memory":
		if snap == nil {
			return nil, fmt.Errorf("memory provider needs a snapshot")
		}
		return &memoryProvider{snap: snap}, nil
	default:
		return nil, fmt.Errorf("unknown provider kind %q", kind)
	}
}

type storeProvider struct {
	db *sql.DB
}

func (p *storeProvider) Upcoming(ctx context.Context, q Query) ([]calendar.Record, error) {
	return sqlite.UpcomingRecords(p.db, q.Now, q.Count, q.Frequency == Weekly)
}

type memoryProvider struct {
	snap *Snapshot
}

func (p *memoryProvider) Upcoming(ctx context.Context, q Query) ([]calendar.Record, error) {
	cal, _, ok := p.snap.Calendar()
	if !ok {
		return nil, fmt.Errorf("no calendar published yet")
	}
	return cal.Upcoming(q.Now, q.Count, q.Frequency == Weekly), nil
}
