// ABOUTME: Wires storage, the flag store, the event bus and the engine for one CLI run.
// ABOUTME: Bootstrap runs on first launch; the active user comes from config or the first user.
package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/harperreed/lift/internal/appstate"
	"github.com/harperreed/lift/internal/bootstrap"
	"github.com/harperreed/lift/internal/config"
	"github.com/harperreed/lift/internal/events"
	"github.com/harperreed/lift/internal/logging"
	"github.com/harperreed/lift/internal/seed"
	"github.com/harperreed/lift/internal/storage"
	"github.com/harperreed/lift/internal/workout"
	"go.uber.org/multierr"
)

type app struct {
	cfg    *config.Config
	logger *log.Logger
	db     *storage.DB
	flags  *bootstrap.BadgerFlags
	bus    *events.Bus
	boot   *bootstrap.Bootstrapper
	rec    *workout.Reconciler
	state  *appstate.Service
	userID int64
}

func openApp(cfg *config.Config) (*app, error) {
	logger, err := logging.New(cfg.LoggingOptions())
	if err != nil {
		return nil, err
	}

	db, err := cfg.OpenStorage()
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	flags, err := bootstrap.OpenFlags(cfg.FlagsDir())
	if err != nil {
		return nil, multierr.Append(err, db.Close())
	}

	dataset, err := seed.DefaultDataset()
	if err != nil {
		return nil, multierr.Combine(err, flags.Close(), db.Close())
	}

	bus := events.NewBus()
	rec := workout.NewReconciler(db, bus, logger, workout.Options{
		DefaultBodyweight: cfg.DefaultBodyweight,
	})
	return &app{
		cfg:    cfg,
		logger: logger,
		db:     db,
		flags:  flags,
		bus:    bus,
		boot:   bootstrap.New(db, flags, dataset, logger, bus),
		rec:    rec,
	}, nil
}

// ready bootstraps if needed, resolves the active user and attaches the
// state service to the bus.
func (a *app) ready(ctx context.Context) error {
	if _, err := a.boot.Initialize(ctx); err != nil {
		return err
	}

	a.userID = a.cfg.UserID
	if a.userID == 0 {
		id, err := a.db.FirstUserID(ctx)
		if err != nil {
			return fmt.Errorf("no user found; run 'lift reset --yes' to reseed: %w", err)
		}
		a.userID = id
	}

	a.state = appstate.New(a.db, a.userID, a.logger)
	a.state.Attach(a.bus)
	return nil
}

func (a *app) Close() error {
	if a.state != nil {
		a.state.Close()
	}
	return multierr.Combine(a.flags.Close(), a.db.Close())
}
