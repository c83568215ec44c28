// ABOUTME: CLI commands for browsing workout history.
// ABOUTME: Reads through the state service cache, refreshed for each run.
package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/lift/internal/models"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"h"},
	Short:   "Browse workout history",
}

var historyListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List recent workouts",
	Long: `List recent workouts, most recent first.

OUTPUT FORMAT:

  Each line shows: ID  START  ROUTINE  EXERCISES  SETS  VOLUME

EXAMPLES:

  lift history list          # Last 20 workouts
  lift history list -n 50    # Last 50 workouts`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := lift.state.RefreshHistory(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}

		history := lift.state.History()
		if len(history) == 0 {
			fmt.Println("No workouts found.")
			return nil
		}
		if historyLimit > 0 && len(history) > historyLimit {
			history = history[:historyLimit]
		}

		faint := color.New(color.Faint)
		for _, h := range history {
			sets, volume := totals(&h)
			title := h.Routine.Title
			if title == "" {
				title = "Workout"
			}
			fmt.Printf("%s %s %s %2d exercises %3d sets %8.0f\n",
				faint.Sprintf("%5d", h.ID),
				faint.Sprint(h.StartTime.Local().Format("2006-01-02 15:04")),
				padRight(truncate(title, 16), 16),
				len(h.Routine.Exercises),
				sets,
				volume)
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a workout with its exercises and sets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := lift.state.RefreshHistory(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}
		h, ok := lift.state.Session(id)
		if !ok {
			return fmt.Errorf("workout not found: %d", id)
		}
		printHistory(h)
		return nil
	},
}

func printHistory(h *models.History) {
	faint := color.New(color.Faint)
	title := h.Routine.Title
	if title == "" {
		title = "Workout"
	}

	color.New(color.Bold).Printf("%s #%d\n", title, h.ID)
	fmt.Printf("  Started: %s\n", h.StartTime.Local().Format("2006-01-02 15:04"))
	if h.EndTime != nil {
		fmt.Printf("  Ended:   %s (%s)\n", h.EndTime.Local().Format("2006-01-02 15:04"), h.EndTime.Sub(h.StartTime).Round(time.Minute))
	}
	if h.Notes != nil && *h.Notes != "" {
		fmt.Printf("  Notes:   %s\n", *h.Notes)
	}

	for i, e := range h.Routine.Exercises {
		fmt.Printf("\n  %d. %s %s\n", i+1, e.Title, faint.Sprintf("(%s)", e.Equipment))
		for _, s := range e.Sets {
			rest := ""
			if s.RestTime != nil {
				rest = faint.Sprintf("  rest %ds", *s.RestTime)
			}
			fmt.Printf("     %d) %6g x %-3d %s%s\n", s.Order, s.Weight, s.Reps,
				faint.Sprintf("1RM %.1f", s.EstimatedOneRM), rest)
		}
	}
}

func totals(h *models.History) (sets int, volume float64) {
	for _, e := range h.Routine.Exercises {
		sets += len(e.Sets)
		for _, s := range e.Sets {
			volume += s.Weight * float64(s.Reps)
		}
	}
	return sets, volume
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid workout id: %s", s)
	}
	return id, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func init() {
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "max number of results")
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}
