package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/finpy/jpx-derivatives/internal/collector"
	"github.com/finpy/jpx-derivatives/internal/config"
	"github.com/finpy/jpx-derivatives/internal/provider"
	"github.com/finpy/jpx-derivatives/internal/runtimecfg"
	"github.com/finpy/jpx-derivatives/internal/session"
	"github.com/finpy/jpx-derivatives/internal/store/sqlite"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	switch cmd {
	case "init-db":
		fs := flag.NewFlagSet("init-db", flag.ExitOnError)
		cfgPath := fs.String("config", "configs/config.yaml", "config path (YAML)")
		_ = fs.Parse(os.Args[2:])

		cfg, err := config.Load(*cfgPath)
		fatalIf(err)
		db, err := sqlite.Open(cfg.DBPath)
		fatalIf(err)
		defer db.Close()
		fatalIf(sqlite.Migrate(db))
		log.Printf("db initialized: %s", cfg.DBPath)
	case "rebuild":
		fs := flag.NewFlagSet("rebuild", flag.ExitOnError)
		cfgPath := fs.String("config", "configs/config.yaml", "config path (YAML)")
		_ = fs.Parse(os.Args[2:])

		cfg, err := config.Load(*cfgPath)
		fatalIf(err)
		db, err := sqlite.Open(cfg.DBPath)
		fatalIf(err)
		defer db.Close()
		fatalIf(sqlite.Migrate(db))

		c := collector.New(cfg, db, provider.NewSnapshot())
		fatalIf(c.RebuildOnce(context.Background(), time.Now().In(cfg.Location())))
	case "session":
		fs := flag.NewFlagSet("session", flag.ExitOnError)
		cfgPath := fs.String("config", "configs/config.yaml", "config path (YAML)")
		atStr := fs.String("at", "", "timestamp (2006-01-02 15:04), default: exchange-local now")
		_ = fs.Parse(os.Args[2:])

		cfg, err := config.Load(*cfgPath)
		fatalIf(err)
		schedule, err := cfg.Schedule()
		fatalIf(err)

		at := time.Now().In(cfg.Location())
		if *atStr != "" {
			at, err = time.ParseInLocation("2006-01-02 15:04", *atStr, cfg.Location())
			fatalIf(err)
		}

		phase := session.Classify(schedule, at)
		fmt.Printf("at=%s phase=%s\n", at.Format("2006-01-02 15:04"), phase)
		if deadline, ok := session.ClosingDeadline(schedule, at); ok {
			fmt.Printf("closing=%s\n", deadline.Format("2006-01-02 15:04"))
		} else {
			fmt.Println("closing=none")
		}
	case "serve":
		fs := flag.NewFlagSet("serve", flag.ExitOnError)
		cfgPath := fs.String("config", "configs/config.yaml", "config path (YAML)")
		addr := fs.String("addr", ":8787", "listen address")
		_ = fs.Parse(os.Args[2:])

		mgr, err := runtimecfg.Load(*cfgPath)
		fatalIf(err)
		cfg := mgr.Get()

		db, err := sqlite.Open(cfg.DBPath)
		fatalIf(err)
		defer db.Close()
		fatalIf(sqlite.Migrate(db))

		snap := provider.NewSnapshot()
		c := collector.New(cfg, db, snap)
		if err := c.RestoreSnapshot(); err != nil {
			log.Printf("snapshot restore err: %v", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			if err := c.RunPeriodic(ctx); err != nil && ctx.Err() == nil {
				log.Printf("rebuild loop stopped: %v", err)
			}
		}()

		log.Printf("listening on %s", *addr)
		fatalIf(http.ListenAndServe(*addr, newWebServer(mgr, db, snap)))
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  jpxcal init-db -config configs/config.yaml")
	fmt.Fprintln(os.Stderr, "  jpxcal rebuild -config configs/config.yaml")
	fmt.Fprintln(os.Stderr, "  jpxcal session -config configs/config.yaml [-at \"2006-01-02 15:04\"]")
	fmt.Fprintln(os.Stderr, "  jpxcal serve   -config configs/config.yaml [-addr :8787]")
}

func fatalIf(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
