package cli

import (
	"fmt"
	"log/slog"

	"github.com/sadopc/liftlog/internal/calendar"
	"github.com/sadopc/liftlog/internal/carryover"
	"github.com/sadopc/liftlog/internal/config"
	"github.com/sadopc/liftlog/internal/plan"
	"github.com/sadopc/liftlog/internal/store"
	"github.com/sadopc/liftlog/internal/taskstate"
)

// app is everything a command needs once startup has finished.
type app struct {
	cfg    config.Config
	db     *store.Store
	clock  calendar.Clock
	engine *carryover.Engine
	log    *slog.Logger
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		a.log.Warn("close database", "error", err)
	}
}

func (o *options) loadConfig() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if o.dbPath != "" {
		cfg.DBPath = o.dbPath
	}
	return cfg, nil
}

func loadCatalog(path string) (plan.Catalog, error) {
	if path == "" {
		return plan.Default(), nil
	}
	return plan.LoadFile(path)
}

// open builds the engine from cfg. Values saved on the settings screen win
// over the config file; if they no longer validate they are ignored.
func (o *options) open(cfg config.Config, log *slog.Logger) (*app, error) {
	db, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	saved, err := db.SettingsMap()
	if err != nil {
		log.Warn("read saved settings", "error", err)
	} else if err := cfg.ApplySettings(saved); err != nil {
		log.Warn("ignoring saved settings", "error", err)
	}

	catalog, err := loadCatalog(cfg.PlanFile)
	if err != nil {
		db.Close()
		return nil, err
	}

	clock := o.clock
	if clock == nil {
		zc, err := cfg.Clock()
		if err != nil {
			db.Close()
			return nil, err
		}
		clock = zc
	}

	window, err := calendar.NewWindow(clock.Now(), cfg.Policy, cfg.Horizon)
	if err != nil {
		db.Close()
		return nil, err
	}

	st := taskstate.Open(taskstate.Options{
		Window:    window,
		Catalog:   catalog,
		KV:        db,
		Retention: cfg.Retention,
		Logger:    log,
	})
	engine := carryover.New(st, clock, db, log)
	if _, err := engine.Rollover(clock.Now()); err != nil {
		log.Warn("startup rollover", "error", err)
	}
	log.Debug("opened",
		"db", cfg.DBPath,
		"policy", string(cfg.Policy),
		"today", string(window.TodayKey()),
		"degraded", st.Degraded(),
	)

	return &app{cfg: cfg, db: db, clock: clock, engine: engine, log: log}, nil
}
