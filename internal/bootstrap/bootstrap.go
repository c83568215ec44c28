// ABOUTME: First-launch gate around schema creation and seeding.
// ABOUTME: Runs drop, create and seed once per install, then sets a persisted flag.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/harperreed/lift/internal/events"
	"github.com/harperreed/lift/internal/seed"
	"github.com/harperreed/lift/internal/storage"
)

// Result describes what Initialize did.
type Result struct {
	// Seeded is false when the first-launch flag was already set.
	Seeded    bool
	InstallID string
	Report    *seed.Report
}

// Bootstrapper prepares the relational store for use.
type Bootstrapper struct {
	db      *storage.DB
	flags   FlagStore
	dataset *seed.Dataset
	logger  *log.Logger
	events  events.Publisher
}

// New creates a Bootstrapper. A nil publisher drops events.
func New(db *storage.DB, flags FlagStore, dataset *seed.Dataset, logger *log.Logger, pub events.Publisher) *Bootstrapper {
	if logger == nil {
		logger = log.Default()
	}
	if pub == nil {
		pub = events.Nop{}
	}
	return &Bootstrapper{db: db, flags: flags, dataset: dataset, logger: logger, events: pub}
}

// Initialize runs the full bootstrap when the first-launch flag is absent:
// drop every table and view, recreate the schema, seed reference and sample
// data, then set the flag. Any failure returns before the flag is written, so
// the next launch retries from scratch.
func (b *Bootstrapper) Initialize(ctx context.Context) (*Result, error) {
	done, err := b.FirstLaunchDone()
	if err != nil {
		return nil, err
	}
	if done {
		installID, _, err := b.flags.Get(InstallIDKey)
		if err != nil {
			return nil, err
		}
		b.logger.Debug("first launch already done, skipping bootstrap")
		return &Result{InstallID: installID}, nil
	}

	b.logger.Info("first launch, building schema and seeding data")
	if err := b.db.DropSchema(ctx); err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	if err := b.db.CreateSchema(ctx); err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	report, err := seed.NewSeeder(b.db, b.dataset, b.logger).Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	installID, ok, err := b.flags.Get(InstallIDKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		installID = uuid.NewString()
		if err := b.flags.Set(InstallIDKey, installID); err != nil {
			return nil, err
		}
	}
	if err := b.flags.Set(FirstLaunchKey, "true"); err != nil {
		return nil, err
	}

	b.events.Publish(events.Bootstrapped, report.UserID, 0)
	b.logger.Info("bootstrap complete", "install_id", installID, "user_id", report.UserID)
	return &Result{Seeded: true, InstallID: installID, Report: report}, nil
}

// FirstLaunchDone reports whether bootstrap has completed for this install.
func (b *Bootstrapper) FirstLaunchDone() (bool, error) {
	v, ok, err := b.flags.Get(FirstLaunchKey)
	if err != nil {
		return false, err
	}
	return ok && v == "true", nil
}

// Reset clears the first-launch flag so the next Initialize wipes and reseeds.
func (b *Bootstrapper) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.flags.Delete(FirstLaunchKey); err != nil {
		return err
	}
	b.logger.Warn("first launch flag cleared; next start will wipe and reseed")
	return nil
}
