// ABOUTME: CLI command for workout statistics and strength progress.
// ABOUTME: Reads the derived views and records a soreness snapshot on each run.
package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/lift/internal/storage"
	"github.com/spf13/cobra"
)

var (
	statsExercise  string
	statsEquipment string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show workout statistics",
	Long: `Show workout counts, favorite routines, split cycles and muscle soreness.

With --exercise, show the estimated 1RM record history, its trend and per-session
progress for one exercise instead.

EXAMPLES:

  lift stats
  lift stats --exercise "Bench Press"
  lift stats --exercise "Pull Up" --equipment Bodyweight`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if statsExercise != "" {
			return exerciseStats(cmd.Context(), statsExercise, statsEquipment)
		}
		return overallStats(cmd.Context())
	},
}

func overallStats(ctx context.Context) error {
	now := time.Now()
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	counts, err := lift.db.WorkoutCounts(ctx, lift.userID, now)
	if err != nil {
		return fmt.Errorf("failed to count workouts: %w", err)
	}
	bold.Println("Workouts")
	fmt.Printf("  This week:  %d\n", counts.Week)
	fmt.Printf("  This month: %d\n", counts.Month)
	fmt.Printf("  This year:  %d\n", counts.Year)
	fmt.Printf("  Total:      %d\n", counts.Total)

	top, err := lift.db.TopExercise(ctx, lift.userID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return fmt.Errorf("failed to load top exercise: %w", err)
	default:
		fmt.Printf("  Top exercise: %s %s\n", top.Title, faint.Sprintf("(%s, %d sets)", top.Equipment, top.SetCount))
	}

	favorites, err := lift.db.FavoriteRoutines(ctx, lift.userID, 5)
	if err != nil {
		return fmt.Errorf("failed to load favorite routines: %w", err)
	}
	if len(favorites) > 0 {
		bold.Println("\nMost used routines")
		for _, f := range favorites {
			fmt.Printf("  %s %3d %s\n", padRight(truncate(f.RoutineTitle, 20), 20), f.UsageCount,
				faint.Sprintf("last %s", f.LastUsed))
		}
	}

	splits, err := lift.db.GetSplitData(ctx, lift.userID)
	if err != nil {
		return fmt.Errorf("failed to load splits: %w", err)
	}
	cycles, err := lift.db.SplitCycleLengths(ctx, lift.userID)
	if err != nil {
		return fmt.Errorf("failed to load split cycles: %w", err)
	}
	if len(cycles) > 0 {
		names := make(map[int64]string, len(splits))
		for _, s := range splits {
			names[s.ID] = s.Name
		}
		bold.Println("\nSplits")
		for _, c := range cycles {
			done, err := lift.db.SplitCompletionCount(ctx, c.SplitID)
			if err != nil {
				return fmt.Errorf("failed to count split completions: %w", err)
			}
			fmt.Printf("  %s %d-day cycle %s\n", padRight(truncate(names[c.SplitID], 20), 20), c.CycleDays,
				faint.Sprintf("(%d completed)", done))
		}
	}

	soreness, err := lift.db.UpdateMuscleSoreness(ctx, lift.userID, now)
	if err != nil {
		return fmt.Errorf("failed to compute soreness: %w", err)
	}
	if len(soreness) > 0 {
		bold.Println("\nMuscle soreness")
		for _, s := range soreness {
			fmt.Printf("  %s %6.1f\n", padRight(s.MuscleGroup, 20), s.Score)
		}
	}
	return nil
}

func exerciseStats(ctx context.Context, title, equipment string) error {
	if equipment == "" {
		equipment = "Barbell"
	}
	exerciseID, err := lift.db.ExerciseIDByTitleAndEquipment(ctx, title, equipment)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("exercise not found: %s (%s)", title, equipment)
	}
	if err != nil {
		return fmt.Errorf("failed to look up exercise: %w", err)
	}

	bold := color.New(color.Bold)
	faint := color.New(color.Faint)
	bold.Printf("%s %s\n", title, faint.Sprintf("(%s)", equipment))

	records, err := lift.db.MaxHistory(ctx, lift.userID, exerciseID)
	if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("  No records yet.")
	} else {
		fmt.Println("\n  Estimated 1RM records")
		for _, r := range records {
			fmt.Printf("    %s %7.1f\n", faint.Sprint(r.CalculationDate.Local().Format("2006-01-02")), r.OneRepMax)
		}
		trend := storage.OneRepMaxTrend(records)
		if trend.Points > 1 {
			color.Cyan("    Trend: %+.2f per week", trend.SlopePerDay*7)
		}
	}

	progress, err := lift.db.StrengthProgress(ctx, lift.userID, exerciseID)
	if err != nil {
		return fmt.Errorf("failed to load progress: %w", err)
	}
	if len(progress) > 0 {
		fmt.Println("\n  Sessions")
		for _, p := range progress {
			fmt.Printf("    %s #%-4d top %6g  reps %3d  volume %8.0f  1RM %6.1f\n",
				faint.Sprint(sessionDate(p.StartTime)), p.SessionID, p.TopWeight, p.MaxReps, p.TotalVolume, p.EstimatedOneRM)
		}
	}
	return nil
}

// sessionDate trims a stored timestamp to its date.
func sessionDate(s string) string {
	if len(s) >= 10 {
		return s[:10]
	}
	return s
}

func init() {
	statsCmd.Flags().StringVarP(&statsExercise, "exercise", "e", "", "exercise title for progress stats")
	statsCmd.Flags().StringVar(&statsEquipment, "equipment", "", "equipment of the exercise (default Barbell)")
	rootCmd.AddCommand(statsCmd)
}
