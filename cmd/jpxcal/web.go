package main

import (
	"database/sql"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/finpy/jpx-derivatives/internal/calendar"
	"github.com/finpy/jpx-derivatives/internal/provider"
	"github.com/finpy/jpx-derivatives/internal/runtimecfg"
	"github.com/finpy/jpx-derivatives/internal/session"
)

func newWebServer(mgr *runtimecfg.Manager, db *sql.DB, snap *provider.Snapshot) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	mux.HandleFunc("/api/calendar", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		cfg := mgr.Get()

		frequency, err := provider.ParseFrequency(r.URL.Query().Get("frequency"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}
		count := cfg.ProductCount
		if v := r.URL.Query().Get("count"); v != "" {
			count, err = strconv.Atoi(v)
			if err != nil || count < 1 {
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": "count must be a positive integer"})
				return
			}
		}

		p, err := provider.New(cfg.Provider, db, snap)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}
		records, err := p.Upcoming(r.Context(), provider.Query{
			Now:       time.Now().In(cfg.Location()),
			Count:     count,
			Frequency: frequency,
		})
		if err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"frequency": frequency,
			"records":   toRecordViews(records),
		})
	})

	mux.HandleFunc("/api/session", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		cfg := mgr.Get()
		schedule, err := cfg.Schedule()
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}

		at := time.Now().In(cfg.Location())
		if v := r.URL.Query().Get("at"); v != "" {
			at, err = time.ParseInLocation("2006-01-02 15:04", v, cfg.Location())
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": "at must be 2006-01-02 15:04"})
				return
			}
		}

		out := map[string]any{
			"at":    at.Format("2006-01-02 15:04"),
			"phase": session.Classify(schedule, at),
		}
		if deadline, ok := session.ClosingDeadline(schedule, at); ok {
			out["closing"] = deadline.Format("2006-01-02 15:04")
		} else {
			out["closing"] = nil
		}
		writeJSON(w, http.StatusOK, out)
	})

	mux.HandleFunc("/api/config", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, mgr.Get())
		case http.MethodPost:
			body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
				return
			}
			var p runtimecfg.Patch
			if err := json.Unmarshal(body, &p); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
				return
			}
			cfg, err := mgr.Update(p)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
				return
			}
			writeJSON(w, http.StatusOK, cfg)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	return mux
}

type recordView struct {
	ContractMonth        string  `json:"contract_month"`
	SpecialQuotationDay  string  `json:"special_quotation_day"`
	LastTradingDay       string  `json:"last_trading_day"`
	FinalSettlementPrice *string `json:"final_settlement_price"`
}

func toRecordViews(records []calendar.Record) []recordView {
	out := make([]recordView, 0, len(records))
	for _, r := range records {
		v := recordView{
			ContractMonth:       r.Key(),
			SpecialQuotationDay: r.SpecialQuotationDay.Format("2006-01-02"),
			LastTradingDay:      r.LastTradingDay.Format("2006-01-02"),
		}
		if r.FinalSettlementPrice != nil {
			s := r.FinalSettlementPrice.String()
			v.FinalSettlementPrice = &s
		}
		out = append(out, v)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write json err: %v", err)
	}
}
