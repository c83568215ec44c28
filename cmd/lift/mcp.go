// ABOUTME: CLI command for starting the MCP server.
// ABOUTME: Runs a stdio MCP server over the active user's workout data.
package main

import (
	"github.com/harperreed/lift/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server communicates via stdin/stdout and works on the active user's data.
Edits made through it go through the same reconciliation as 'lift workout update'.

DESKTOP CONFIGURATION:

  {
    "mcpServers": {
      "lift": {
        "command": "lift",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  list_history     List recent workouts
  get_workout      Get a workout with exercises and sets
  record_workout   Record a finished workout
  update_workout   Edit notes, sets or exercises of a workout
  delete_workout   Delete a workout
  workout_stats    Counts, frequency, soreness and top exercise
  max_history      Estimated 1RM records and trend for an exercise

AVAILABLE RESOURCES:

  lift://recent     Recent workouts
  lift://routines   Routines and splits
  lift://summary    Workout counts and top exercise`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(lift.db, lift.rec, lift.userID)
		if err != nil {
			return err
		}
		lift.logger.Info("mcp server starting", "user", lift.userID)
		return server.Serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
