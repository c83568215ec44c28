// ABOUTME: Root Cobra command for lift CLI.
// ABOUTME: Opens the app in PersistentPreRunE and closes it after Execute returns.
package main

import (
	"context"
	"fmt"

	"github.com/harperreed/lift/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

// annotationManualBootstrap marks commands that run bootstrap themselves.
const annotationManualBootstrap = "manual-bootstrap"

var lift *app

var rootCmd = &cobra.Command{
	Use:   "lift",
	Short: "Strength training log",
	Long: `Lift is a CLI for logging strength workouts and tracking estimated one-rep maxes.

WHAT IT TRACKS:

  Workouts       sessions with exercises, sets, weights, reps and rest
  Records        best estimated one-rep max per exercise, append-only
  Routines       saved routines and splits that cycle them by day
  Recovery       per-muscle-group soreness from recent training load

QUICK START:

  $ lift init                                  # Create the database and sample data
  $ lift workout record --routine Push         # Log the Push routine as performed
  $ lift history list                          # See recent workouts
  $ lift workout update 3 --edit 1:1:weight=145
  $ lift stats --exercise "Bench Press"        # Records and trend

MCP INTEGRATION:

  Run 'lift mcp' to start the Model Context Protocol server:

  {
    "mcpServers": {
      "lift": { "command": "lift", "args": ["mcp"] }
    }
  }

DATA STORAGE:

  Workouts are stored in SQLite at ~/.local/share/lift/lift.db.
  The first-launch flag lives in ~/.local/share/lift/flags.
  Settings are read from ~/.config/lift/config.json.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip app init for commands that don't need it
		if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "version" {
			return nil
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		lift, err = openApp(cfg)
		if err != nil {
			return err
		}
		if cmd.Annotations[annotationManualBootstrap] == "true" {
			return nil
		}
		return lift.ready(cmd.Context())
	},
}

// Execute runs the CLI and releases the database and flag store afterwards,
// including when a command fails.
func Execute(ctx context.Context) (err error) {
	defer func() {
		if lift != nil {
			err = multierr.Append(err, lift.Close())
			lift = nil
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}
