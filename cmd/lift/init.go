// ABOUTME: CLI commands for first-launch setup and explicit reseeding.
// ABOUTME: init runs bootstrap if needed; reset clears the flag and rebuilds everything.
package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/lift/internal/bootstrap"
	"github.com/spf13/cobra"
)

var resetYes bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the database and seed reference data",
	Long: `Create the schema and seed muscle groups, muscles, equipment, exercises,
a default user and sample routines and splits.

This runs automatically the first time any command is used. Running it again
after a successful setup does nothing.`,
	Annotations: map[string]string{annotationManualBootstrap: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := lift.boot.Initialize(cmd.Context())
		if err != nil {
			return err
		}
		printBootstrap(res)
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Wipe all data and reseed",
	Long: `Drop every table and view, recreate the schema and seed it again.

CAUTION:

  This permanently deletes all workouts, records and routines. There is no undo.
  Pass --yes to confirm.`,
	Annotations: map[string]string{annotationManualBootstrap: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetYes {
			return errors.New("reset deletes all data; pass --yes to confirm")
		}
		if err := lift.boot.Reset(cmd.Context()); err != nil {
			return fmt.Errorf("failed to clear first-launch flag: %w", err)
		}
		res, err := lift.boot.Initialize(cmd.Context())
		if err != nil {
			return err
		}
		printBootstrap(res)
		return nil
	},
}

func printBootstrap(res *bootstrap.Result) {
	if !res.Seeded {
		color.Yellow("Already initialized")
		fmt.Printf("  Install: %s\n", res.InstallID)
		return
	}

	r := res.Report
	color.Green("✓ Initialized lift")
	fmt.Printf("  Install:   %s\n", res.InstallID)
	fmt.Printf("  Exercises: %d (%d muscle groups, %d muscles, %d equipment)\n",
		r.Exercises, r.MuscleGroups, r.Muscles, r.Equipment)
	fmt.Printf("  Routines:  %d\n", r.Routines)
	fmt.Printf("  Splits:    %d\n", r.Splits)
	for _, skip := range r.Skipped {
		color.Yellow("  ⚠ skipped %s", skip)
	}
}

func init() {
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "confirm wiping all data")
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(resetCmd)
}
