// ABOUTME: CLI commands for browsing routines and splits.
// ABOUTME: Favorites are toggled here and announced on the event bus.
package main

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/lift/internal/events"
	"github.com/harperreed/lift/internal/models"
	"github.com/harperreed/lift/internal/storage"
	"github.com/spf13/cobra"
)

var routinesVerbose bool

var routinesCmd = &cobra.Command{
	Use:     "routines",
	Aliases: []string{"r"},
	Short:   "List routines and splits",
	Long: `List routines with their last prescribed sets, and splits with their days.

Favorites are marked with ★ and the active split with ●.

EXAMPLES:

  lift routines          # Routine titles and exercise counts
  lift routines -v       # Include every exercise and set
  lift routines favorite Push
  lift routines complete     # Log a finished pass through the active split`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := lift.state.RefreshRoutines(ctx); err != nil {
			return fmt.Errorf("failed to load routines: %w", err)
		}
		favorites, err := lift.db.FavoriteRoutineIDs(ctx, lift.userID)
		if err != nil {
			return fmt.Errorf("failed to load favorites: %w", err)
		}
		splits, err := lift.db.GetSplitData(ctx, lift.userID)
		if err != nil {
			return fmt.Errorf("failed to load splits: %w", err)
		}

		printRoutines(lift.state.Routines(), favorites)
		printSplits(splits)
		return nil
	},
}

var routinesFavoriteCmd = &cobra.Command{
	Use:   "favorite <title>",
	Short: "Toggle a routine as favorite",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := lift.db.RoutineIDByTitle(ctx, lift.userID, args[0])
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("routine not found: %s", args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to look up routine: %w", err)
		}

		favorites, err := lift.db.FavoriteRoutineIDs(ctx, lift.userID)
		if err != nil {
			return fmt.Errorf("failed to load favorites: %w", err)
		}
		if slices.Contains(favorites, id) {
			if err := lift.db.RemoveFavorite(ctx, lift.userID, id); err != nil {
				return err
			}
			color.Yellow("☆ %s removed from favorites", args[0])
		} else {
			if err := lift.db.AddFavorite(ctx, lift.userID, id); err != nil {
				return err
			}
			color.Green("★ %s added to favorites", args[0])
		}
		lift.bus.Publish(events.RoutinesRefreshed, lift.userID, 0)
		return nil
	},
}

var routinesCompleteCmd = &cobra.Command{
	Use:   "complete [split]",
	Short: "Log a finished pass through a split",
	Long: `Log one completed cycle of a split. Without a name the active split is used.

EXAMPLES:

  lift routines complete                 # Active split
  lift routines complete "Upper/Lower"`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		splits, err := lift.db.GetSplitData(ctx, lift.userID)
		if err != nil {
			return fmt.Errorf("failed to load splits: %w", err)
		}

		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		split, ok := findSplit(splits, name)
		if !ok {
			if name == "" {
				return errors.New("no active split; pass a split name")
			}
			return fmt.Errorf("split not found: %s", name)
		}

		if _, err := lift.db.RecordSplitCompletion(ctx, lift.userID, split.ID); err != nil {
			return fmt.Errorf("failed to record completion: %w", err)
		}
		n, err := lift.db.SplitCompletionCount(ctx, split.ID)
		if err != nil {
			return fmt.Errorf("failed to count completions: %w", err)
		}
		color.Green("✓ %s cycle completed (%d total)", split.Name, n)
		return nil
	},
}

// findSplit returns the split with the given name, or the active split when
// name is empty.
func findSplit(splits []models.Split, name string) (models.Split, bool) {
	for _, s := range splits {
		if (name == "" && s.IsActive) || (name != "" && strings.EqualFold(s.Name, name)) {
			return s, true
		}
	}
	return models.Split{}, false
}

func printRoutines(routines []models.HistoryRoutine, favorites []int64) {
	faint := color.New(color.Faint)
	if len(routines) == 0 {
		fmt.Println("No routines found.")
		return
	}

	color.New(color.Bold).Println("Routines")
	for _, r := range routines {
		mark := " "
		if slices.Contains(favorites, r.ID) {
			mark = color.YellowString("★")
		}
		fmt.Printf("  %s %s %s\n", mark, padRight(truncate(r.Title, 24), 24),
			faint.Sprintf("%d exercises", len(r.Exercises)))
		if !routinesVerbose {
			continue
		}
		for _, e := range r.Exercises {
			sets := ""
			for i, s := range e.Sets {
				if i > 0 {
					sets += ", "
				}
				sets += fmt.Sprintf("%gx%d", s.Weight, s.Reps)
			}
			fmt.Printf("      %s %s %s\n", e.Title, faint.Sprintf("(%s)", e.Equipment), sets)
		}
	}
}

func printSplits(splits []models.Split) {
	if len(splits) == 0 {
		return
	}
	faint := color.New(color.Faint)

	color.New(color.Bold).Println("\nSplits")
	for _, s := range splits {
		mark := " "
		if s.IsActive {
			mark = color.GreenString("●")
		}
		fmt.Printf("  %s %s\n", mark, s.Name)
		for _, d := range s.Days {
			title := d.RoutineTitle
			if d.IsRest() {
				title = faint.Sprint(models.RestDay)
			}
			fmt.Printf("      Day %d: %s\n", d.SplitOrder, title)
		}
	}
}

func init() {
	routinesCmd.Flags().BoolVarP(&routinesVerbose, "verbose", "v", false, "show exercises and sets")
	routinesCmd.AddCommand(routinesFavoriteCmd)
	routinesCmd.AddCommand(routinesCompleteCmd)
	rootCmd.AddCommand(routinesCmd)
}
