// ABOUTME: CLI commands for recording, editing and deleting workouts.
// ABOUTME: Every write goes through the session reconciler.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/lift/internal/models"
	"github.com/harperreed/lift/internal/storage"
	"github.com/harperreed/lift/internal/workout"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	recordRoutine string
	recordFile    string
	recordNotes   string
	recordAt      string
	recordEnd     string

	updateNotes     string
	updateEdits     []string
	updateAddSets   []string
	updateRemoves   []string
	updateDrops     []int
	updateNoRoutine bool
)

var workoutCmd = &cobra.Command{
	Use:     "workout",
	Aliases: []string{"w"},
	Short:   "Record, edit and delete workouts",
	Long: `Record finished workouts and edit or delete past ones.

COMMANDS:

  record   Log a workout from a routine or a YAML file
  update   Edit notes, sets or the exercise list of a workout
  delete   Delete a workout with all its exercises and sets

Editing only set weights or reps keeps the workout's exercise rows and does not
touch personal records. Adding or dropping exercises rewrites the workout and
re-evaluates records for every exercise in it.`,
}

var workoutRecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a finished workout",
	Long: `Record a finished workout.

SOURCES:

  --routine <title>   Use a saved routine's prescribed sets as performed
  --file <path>       Read exercises from YAML; combines with --routine

FILE FORMAT:

  routine: Push
  start: "2025-03-10 17:00"
  end: "2025-03-10 18:05"
  notes: felt strong
  exercises:
    - title: Bench Press
      equipment: Barbell
      sets: ["135x10", "145x8", "155x6"]
      rest: 90

EXAMPLES:

  lift workout record --routine Push
  lift workout record --file today.yaml
  lift workout record --routine Legs --at "2025-03-10 07:00" --notes "early"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if recordRoutine == "" && recordFile == "" {
			return errors.New("nothing to record; pass --routine or --file")
		}
		ctx := cmd.Context()

		h := models.NewHistory(lift.userID)
		if recordRoutine != "" {
			if err := applyRoutine(ctx, h, recordRoutine); err != nil {
				return err
			}
		}
		if recordFile != "" {
			data, err := os.ReadFile(recordFile)
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			if err := applyWorkoutFile(ctx, h, data); err != nil {
				return err
			}
		}
		if err := applyTimes(h, recordAt, recordEnd); err != nil {
			return err
		}
		if recordNotes != "" {
			h.WithNotes(recordNotes)
		}
		if len(h.Routine.Exercises) == 0 {
			return errors.New("workout has no exercises")
		}

		out, err := lift.rec.RecordSession(ctx, h)
		if err != nil {
			return fmt.Errorf("failed to record workout: %w", err)
		}

		color.Green("✓ Recorded workout #%d", out.SessionID)
		fmt.Printf("  %d exercises, %d sets\n", out.ExercisesWritten, out.SetsWritten)
		printRecords(h, out)
		return nil
	},
}

var workoutUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Edit a workout",
	Long: `Edit a workout. Positions are 1-based as shown by 'lift history show'.

EDITS:

  --notes <text>            Replace the notes
  --edit E:S:field=value    Set weight or reps of set S of exercise E
  --add-set E:WEIGHTxREPS   Append a set to exercise E
  --remove-set E:S          Remove set S of exercise E
  --drop E                  Remove exercise E from the workout
  --no-routine              Detach the workout from its routine

EXAMPLES:

  lift workout update 12 --edit 1:2:weight=145
  lift workout update 12 --add-set 2:225x5 --notes "added a back-off set"
  lift workout update 12 --drop 3`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		existing, err := loadWorkout(ctx, id)
		if err != nil {
			return err
		}

		proposed := existing.Clone()
		if cmd.Flags().Changed("notes") {
			proposed.WithNotes(updateNotes)
		}
		if updateNoRoutine {
			proposed.WithRoutine(models.NoRoutine, "")
		}
		if err := applyEdits(proposed, updateEdits, updateAddSets, updateRemoves, updateDrops); err != nil {
			return err
		}

		out, err := lift.rec.Reconcile(ctx, existing, proposed)
		if err != nil {
			return fmt.Errorf("failed to update workout: %w", err)
		}

		color.Green("✓ Updated workout #%d (%s)", id, out.State)
		if out.SetsWritten > 0 {
			fmt.Printf("  %d sets written\n", out.SetsWritten)
		}
		for _, exerciseID := range out.Skipped {
			color.Yellow("  ⚠ exercise %d is not stored in this workout; skipped", exerciseID)
		}
		printRecords(proposed, out)
		return nil
	},
}

var workoutDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete a workout",
	Long: `Delete a workout with all its exercises and sets.

Personal records already written are kept.

CAUTION:

  This permanently deletes the workout. There is no undo.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		// First, get the workout to show what we're deleting
		h, err := loadWorkout(cmd.Context(), id)
		if err != nil {
			return err
		}

		if err := lift.rec.DeleteSession(cmd.Context(), id); err != nil {
			return fmt.Errorf("failed to delete workout: %w", err)
		}

		sets, _ := totals(h)
		color.Yellow("✗ Deleted workout #%d", id)
		fmt.Printf("  %s %d exercises, %d sets\n",
			color.New(color.Faint).Sprint(h.StartTime.Local().Format("2006-01-02 15:04")),
			len(h.Routine.Exercises), sets)
		return nil
	},
}

func loadWorkout(ctx context.Context, id int64) (*models.History, error) {
	h, err := lift.db.GetHistory(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("workout not found: %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load workout: %w", err)
	}
	return h, nil
}

func applyRoutine(ctx context.Context, h *models.History, title string) error {
	routines, err := lift.db.GetRoutineData(ctx, lift.userID)
	if err != nil {
		return fmt.Errorf("failed to load routines: %w", err)
	}
	for _, r := range routines {
		if strings.EqualFold(r.Title, title) {
			h.WithRoutine(r.ID, r.Title)
			for _, e := range r.Exercises {
				e.Sets = slices.Clone(e.Sets)
				h.AddExercise(e)
			}
			return nil
		}
	}
	return fmt.Errorf("routine not found: %s", title)
}

type workoutFile struct {
	Routine   string                `yaml:"routine"`
	Start     string                `yaml:"start"`
	End       string                `yaml:"end"`
	Notes     string                `yaml:"notes"`
	Exercises []workoutFileExercise `yaml:"exercises"`
}

type workoutFileExercise struct {
	Title     string   `yaml:"title"`
	Equipment string   `yaml:"equipment"`
	Sets      []string `yaml:"sets"`
	Rest      *int     `yaml:"rest"`
}

func applyWorkoutFile(ctx context.Context, h *models.History, data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f workoutFile
	if err := dec.Decode(&f); err != nil {
		return fmt.Errorf("failed to parse workout file: %w", err)
	}

	if f.Routine != "" && h.Routine.ID == models.NoRoutine {
		if err := applyRoutine(ctx, h, f.Routine); err != nil {
			return err
		}
	}
	if len(f.Exercises) > 0 {
		h.Routine.Exercises = nil
	}
	for _, fe := range f.Exercises {
		equipment := fe.Equipment
		if equipment == "" {
			equipment = "Barbell"
		}
		exerciseID, err := lift.db.ExerciseIDByTitleAndEquipment(ctx, fe.Title, equipment)
		if err != nil {
			return fmt.Errorf("unknown exercise %q with %s: %w", fe.Title, equipment, err)
		}
		ex := h.AddExercise(models.HistoryExercise{ExerciseID: exerciseID, Title: fe.Title, Equipment: equipment})
		for _, raw := range fe.Sets {
			weight, reps, err := parseSet(raw)
			if err != nil {
				return err
			}
			ex.AddSet(weight, reps)
			ex.Sets[len(ex.Sets)-1].RestTime = fe.Rest
		}
	}
	if f.Notes != "" {
		h.WithNotes(f.Notes)
	}
	return applyTimes(h, f.Start, f.End)
}

func applyTimes(h *models.History, start, end string) error {
	if start != "" {
		t, err := parseTime(start)
		if err != nil {
			return fmt.Errorf("invalid start time %q: %w", start, err)
		}
		h.StartTime = t
	}
	if end != "" {
		t, err := parseTime(end)
		if err != nil {
			return fmt.Errorf("invalid end time %q: %w", end, err)
		}
		if t.Before(h.StartTime) {
			return errors.New("end time is before start time")
		}
		h.WithEndTime(t)
	}
	return nil
}

// applyEdits applies set edits, added sets, removed sets and dropped exercises,
// in that order. Positions are 1-based.
func applyEdits(h *models.History, edits, adds, removes []string, drops []int) error {
	exercise := func(pos int) (*models.HistoryExercise, error) {
		if pos < 1 || pos > len(h.Routine.Exercises) {
			return nil, fmt.Errorf("no exercise at position %d", pos)
		}
		return &h.Routine.Exercises[pos-1], nil
	}

	for _, raw := range edits {
		e, s, field, value, err := parseEdit(raw)
		if err != nil {
			return err
		}
		ex, err := exercise(e)
		if err != nil {
			return err
		}
		if err := ex.UpdateSet(s-1, field, value); err != nil {
			return err
		}
	}
	for _, raw := range adds {
		pos, rest, ok := strings.Cut(raw, ":")
		if !ok {
			return fmt.Errorf("invalid --add-set %q (use E:WEIGHTxREPS)", raw)
		}
		e, err := strconv.Atoi(pos)
		if err != nil {
			return fmt.Errorf("invalid exercise position in %q", raw)
		}
		weight, reps, err := parseSet(rest)
		if err != nil {
			return err
		}
		ex, err := exercise(e)
		if err != nil {
			return err
		}
		ex.AddSet(weight, reps)
	}
	for _, raw := range removes {
		var e, s int
		if _, err := fmt.Sscanf(raw, "%d:%d", &e, &s); err != nil {
			return fmt.Errorf("invalid --remove-set %q (use E:S)", raw)
		}
		ex, err := exercise(e)
		if err != nil {
			return err
		}
		if err := ex.RemoveSet(s - 1); err != nil {
			return err
		}
	}

	drops = slices.Clone(drops)
	slices.Sort(drops)
	drops = slices.Compact(drops)
	for i := len(drops) - 1; i >= 0; i-- {
		if _, err := exercise(drops[i]); err != nil {
			return err
		}
		h.Routine.Exercises = slices.Delete(h.Routine.Exercises, drops[i]-1, drops[i])
	}
	return nil
}

// parseEdit parses E:S:field=value.
func parseEdit(raw string) (exercise, set int, field models.SetField, value float64, err error) {
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) != 3 {
		return 0, 0, 0, 0, fmt.Errorf("invalid --edit %q (use E:S:field=value)", raw)
	}
	name, val, ok := strings.Cut(parts[2], "=")
	if !ok {
		return 0, 0, 0, 0, fmt.Errorf("invalid --edit %q (use E:S:field=value)", raw)
	}
	if exercise, err = strconv.Atoi(parts[0]); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("invalid exercise position in %q", raw)
	}
	if set, err = strconv.Atoi(parts[1]); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("invalid set position in %q", raw)
	}
	if field, err = models.ParseSetField(name); err != nil {
		return 0, 0, 0, 0, err
	}
	if value, err = strconv.ParseFloat(val, 64); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("invalid value in %q", raw)
	}
	return exercise, set, field, value, nil
}

// parseSet parses WEIGHTxREPS, e.g. 135x10 or 0x20 for bodyweight.
func parseSet(raw string) (float64, int, error) {
	w, r, ok := strings.Cut(strings.ToLower(strings.TrimSpace(raw)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid set %q (use WEIGHTxREPS)", raw)
	}
	weight, err := strconv.ParseFloat(strings.TrimSpace(w), 64)
	if err != nil || weight < 0 {
		return 0, 0, fmt.Errorf("invalid weight in set %q", raw)
	}
	reps, err := strconv.Atoi(strings.TrimSpace(r))
	if err != nil || reps < 0 {
		return 0, 0, fmt.Errorf("invalid reps in set %q", raw)
	}
	return weight, reps, nil
}

func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02 15:04",
		"2006-01-02T15:04",
		"2006-01-02",
		time.RFC3339,
	}
	for _, f := range formats {
		if t, err := time.ParseInLocation(f, s, time.Local); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.New("unrecognized time format")
}

func printRecords(h *models.History, out *workout.Outcome) {
	titles := make(map[int64]string, len(h.Routine.Exercises))
	for _, e := range h.Routine.Exercises {
		titles[e.ExerciseID] = e.Title
	}
	for _, r := range out.Records {
		title := titles[r.ExerciseID]
		if title == "" {
			title = fmt.Sprintf("exercise %d", r.ExerciseID)
		}
		if r.Previous > 0 {
			color.Cyan("  ★ New best %s: %.1f (was %.1f)", title, r.OneRepMax, r.Previous)
		} else {
			color.Cyan("  ★ First record %s: %.1f", title, r.OneRepMax)
		}
	}
}

func init() {
	workoutRecordCmd.Flags().StringVarP(&recordRoutine, "routine", "r", "", "routine title to record as performed")
	workoutRecordCmd.Flags().StringVarP(&recordFile, "file", "f", "", "YAML workout file")
	workoutRecordCmd.Flags().StringVar(&recordNotes, "notes", "", "notes for the workout")
	workoutRecordCmd.Flags().StringVar(&recordAt, "at", "", "start time (YYYY-MM-DD HH:MM)")
	workoutRecordCmd.Flags().StringVar(&recordEnd, "end", "", "end time (YYYY-MM-DD HH:MM)")

	workoutUpdateCmd.Flags().StringVar(&updateNotes, "notes", "", "replacement notes")
	workoutUpdateCmd.Flags().StringArrayVar(&updateEdits, "edit", nil, "set edit E:S:field=value")
	workoutUpdateCmd.Flags().StringArrayVar(&updateAddSets, "add-set", nil, "append a set E:WEIGHTxREPS")
	workoutUpdateCmd.Flags().StringArrayVar(&updateRemoves, "remove-set", nil, "remove set E:S")
	workoutUpdateCmd.Flags().IntSliceVar(&updateDrops, "drop", nil, "remove the exercise at position E")
	workoutUpdateCmd.Flags().BoolVar(&updateNoRoutine, "no-routine", false, "detach the workout from its routine")

	workoutCmd.AddCommand(workoutRecordCmd)
	workoutCmd.AddCommand(workoutUpdateCmd)
	workoutCmd.AddCommand(workoutDeleteCmd)
	rootCmd.AddCommand(workoutCmd)
}
