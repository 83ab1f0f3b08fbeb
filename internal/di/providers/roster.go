package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/listenupapp/binderkeep/internal/config"
	"github.com/listenupapp/binderkeep/internal/logger"
	"github.com/listenupapp/binderkeep/internal/roster"
)

// ProvideRosterEngine provides the roster engine loaded with the curated tables.
func ProvideRosterEngine(i do.Injector) (*roster.Engine, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	var (
		tables *roster.Tables
		err    error
	)
	if cfg.Roster.TablesDir != "" {
		tables, err = roster.LoadTablesDir(cfg.Roster.TablesDir)
	} else {
		tables, err = roster.DefaultTables()
	}
	if err != nil {
		return nil, err
	}

	log.Info("Roster tables loaded", "dir", cfg.Roster.TablesDir)
	return roster.NewEngine(tables), nil
}

// RosterWatcherHandle wraps the roster table watcher with shutdown capability.
// Watcher is nil when table watching is disabled.
type RosterWatcherHandle struct {
	*roster.Watcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *RosterWatcherHandle) Shutdown() error {
	if h.Watcher == nil {
		return nil
	}
	h.cancel()
	return h.Watcher.Close()
}

// ProvideRosterWatcher provides the roster table watcher and starts it when enabled.
func ProvideRosterWatcher(i do.Injector) (*RosterWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	engine := do.MustInvoke[*roster.Engine](i)

	if !cfg.Roster.Watch {
		return &RosterWatcherHandle{}, nil
	}

	w, err := roster.NewWatcher(engine, cfg.Roster.TablesDir, roster.DefaultReloadDebounce, log.Component("roster"))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)

	log.Info("Roster table watcher started", "dir", cfg.Roster.TablesDir)
	return &RosterWatcherHandle{Watcher: w, cancel: cancel}, nil
}
