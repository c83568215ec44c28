// ABOUTME: Tests for view-backed queries, the 1RM ledger and trend fitting.
// ABOUTME: Uses fixed clocks so calendar windows and soreness decay are deterministic.
package storage

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/harperreed/lift/internal/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestWorkoutFrequency(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	ctx := context.Background()

	day1 := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	insertSession(t, db, f.userID, f.benchID, day1, [2]float64{100, 5})
	insertSession(t, db, f.userID, f.squatID, day1.Add(8*time.Hour), [2]float64{100, 5})
	insertSession(t, db, f.userID, f.benchID, day1.AddDate(0, 0, 2), [2]float64{100, 5})

	freq, err := db.WorkoutFrequency(ctx, f.userID, day1)
	if err != nil {
		t.Fatalf("WorkoutFrequency failed: %v", err)
	}
	if len(freq) != 2 {
		t.Fatalf("len(freq) = %d, want 2", len(freq))
	}
	if freq[0].WorkoutDate != "2025-03-01" || freq[0].SessionCount != 2 {
		t.Errorf("freq[0] = %+v", freq[0])
	}
	if freq[1].WorkoutDate != "2025-03-03" || freq[1].SessionCount != 1 {
		t.Errorf("freq[1] = %+v", freq[1])
	}

	later, err := db.WorkoutFrequency(ctx, f.userID, day1.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("WorkoutFrequency failed: %v", err)
	}
	if len(later) != 1 {
		t.Errorf("len(later) = %d, want 1", len(later))
	}
}

func TestMuscleGroupFocus(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	ctx := context.Background()

	sessionID := insertSession(t, db, f.userID, f.benchID, time.Now(), [2]float64{100, 5})

	focus, err := db.MuscleGroupFocus(ctx, sessionID)
	if err != nil {
		t.Fatalf("MuscleGroupFocus failed: %v", err)
	}
	if len(focus) != 1 || focus[0].MuscleGroup != "Chest" || !almostEqual(focus[0].IntensityScore, 1.0) {
		t.Errorf("focus = %+v", focus)
	}
}

func TestStrengthProgressAndTopExercise(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	insertSession(t, db, f.userID, f.benchID, base, [2]float64{135, 10}, [2]float64{145, 8})
	insertSession(t, db, f.userID, f.benchID, base.AddDate(0, 0, 7), [2]float64{155, 5})
	insertSession(t, db, f.userID, f.squatID, base.AddDate(0, 0, 1), [2]float64{225, 5})

	progress, err := db.StrengthProgress(ctx, f.userID, f.benchID)
	if err != nil {
		t.Fatalf("StrengthProgress failed: %v", err)
	}
	if len(progress) != 2 {
		t.Fatalf("len(progress) = %d, want 2", len(progress))
	}
	first := progress[0]
	if first.TopWeight != 145 || first.MaxReps != 10 || !almostEqual(first.TotalVolume, 135*10+145*8) {
		t.Errorf("first = %+v", first)
	}
	// Best set is 145x8, not the heavier-volume 135x10.
	want1RM := 145 * (1 + 8.0/30)
	if !almostEqual(first.EstimatedOneRM, want1RM) {
		t.Errorf("first 1RM = %v, want %v", first.EstimatedOneRM, want1RM)
	}

	top, err := db.TopExercise(ctx, f.userID)
	if err != nil {
		t.Fatalf("TopExercise failed: %v", err)
	}
	if top.ExerciseID != f.benchID || top.SetCount != 3 || top.Equipment != "Barbell" {
		t.Errorf("top = %+v", top)
	}

	if _, err := db.TopExercise(ctx, f.userID+100); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFavoriteRoutinesRanksByUsage(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	ctx := context.Background()

	push, _ := db.InsertRoutine(ctx, "Push", f.userID)
	legs, _ := db.InsertRoutine(ctx, "Legs", f.userID)
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, r := range []int64{push, legs, legs, push, legs} {
		rid := r
		s := &models.WorkoutSession{UserID: f.userID, RoutineID: &rid, StartTime: base.AddDate(0, 0, i)}
		if _, err := db.InsertWorkoutSession(ctx, s); err != nil {
			t.Fatalf("InsertWorkoutSession failed: %v", err)
		}
	}

	favs, err := db.FavoriteRoutines(ctx, f.userID, 0)
	if err != nil {
		t.Fatalf("FavoriteRoutines failed: %v", err)
	}
	if len(favs) != 2 {
		t.Fatalf("len(favs) = %d, want 2", len(favs))
	}
	if favs[0].RoutineTitle != "Legs" || favs[0].UsageCount != 3 {
		t.Errorf("favs[0] = %+v", favs[0])
	}
	if favs[1].RoutineTitle != "Push" || favs[1].UsageCount != 2 {
		t.Errorf("favs[1] = %+v", favs[1])
	}

	limited, err := db.FavoriteRoutines(ctx, f.userID, 1)
	if err != nil || len(limited) != 1 {
		t.Errorf("limited = %v, %v", limited, err)
	}
}

func TestWorkoutCounts(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	ctx := context.Background()

	// Wednesday; the week starts on Sunday 2025-03-09.
	now := time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)
	for _, start := range []time.Time{
		time.Date(2025, 3, 11, 10, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 31, 10, 0, 0, 0, time.UTC),
	} {
		insertSession(t, db, f.userID, f.benchID, start, [2]float64{100, 5})
	}

	c, err := db.WorkoutCounts(ctx, f.userID, now)
	if err != nil {
		t.Fatalf("WorkoutCounts failed: %v", err)
	}
	want := WorkoutCounts{Total: 4, Week: 1, Month: 2, Year: 3}
	if *c != want {
		t.Errorf("counts = %+v, want %+v", *c, want)
	}
}

func TestMuscleGroupSorenessDecays(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	ctx := context.Background()

	now := time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)
	// Two bench sets one day ago: load 2 x intensity 1.0 on Chest.
	insertSession(t, db, f.userID, f.benchID, now.Add(-24*time.Hour), [2]float64{100, 5}, [2]float64{100, 5})
	// Outside the window.
	insertSession(t, db, f.userID, f.squatID, now.Add(-96*time.Hour), [2]float64{200, 5})

	soreness, err := db.MuscleGroupSoreness(ctx, f.userID, now)
	if err != nil {
		t.Fatalf("MuscleGroupSoreness failed: %v", err)
	}
	if len(soreness) != 1 {
		t.Fatalf("len(soreness) = %d, want 1: %+v", len(soreness), soreness)
	}
	if soreness[0].MuscleGroup != "Chest" || !almostEqual(soreness[0].Score, 2*(1-1.0/3)) {
		t.Errorf("soreness = %+v, want Chest %.4f", soreness[0], 2*(1-1.0/3))
	}

	if _, err := db.UpdateMuscleSoreness(ctx, f.userID, now); err != nil {
		t.Fatalf("UpdateMuscleSoreness failed: %v", err)
	}
	// Later snapshot is lower; the recorded maximum must not drop.
	if _, err := db.UpdateMuscleSoreness(ctx, f.userID, now.Add(24*time.Hour)); err != nil {
		t.Fatalf("UpdateMuscleSoreness failed: %v", err)
	}
	maxScore, err := db.MaxMuscleSoreness(ctx, f.userID, f.chestID)
	if err != nil {
		t.Fatalf("MaxMuscleSoreness failed: %v", err)
	}
	if !almostEqual(maxScore, 2*(1-1.0/3)) {
		t.Errorf("max soreness = %v, want %v", maxScore, 2*(1-1.0/3))
	}
	n, err := db.CountRows(ctx, "MuscleSorenessHistory")
	if err != nil || n != 2 {
		t.Errorf("soreness history rows = %d, %v; want 2", n, err)
	}
	if _, err := db.MaxMuscleSoreness(ctx, f.userID, f.legsID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMaxHistoryLedger(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	ctx := context.Background()

	best, err := db.PreviousMaxOneRepMax(ctx, f.userID, f.benchID)
	if err != nil {
		t.Fatalf("PreviousMaxOneRepMax failed: %v", err)
	}
	if best != 0 {
		t.Errorf("best with no history = %v, want 0", best)
	}

	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, v := range []float64{180, 190, 200} {
		if _, err := db.InsertMaxHistory(ctx, f.userID, f.benchID, v, day.AddDate(0, 0, i*10)); err != nil {
			t.Fatalf("InsertMaxHistory failed: %v", err)
		}
	}

	best, err = db.PreviousMaxOneRepMax(ctx, f.userID, f.benchID)
	if err != nil || best != 200 {
		t.Errorf("best = %v, %v; want 200", best, err)
	}

	entries, err := db.MaxHistory(ctx, f.userID, f.benchID)
	if err != nil {
		t.Fatalf("MaxHistory failed: %v", err)
	}
	if len(entries) != 3 || !entries[0].CalculationDate.Equal(day) {
		t.Errorf("entries = %+v", entries)
	}

	trend := OneRepMaxTrend(entries)
	if trend.Points != 3 || !almostEqual(trend.SlopePerDay, 1.0) || !almostEqual(trend.Intercept, 180) {
		t.Errorf("trend = %+v, want slope 1/day from 180", trend)
	}
}

func TestOneRepMaxTrendDegenerate(t *testing.T) {
	if tr := OneRepMaxTrend(nil); tr.Points != 0 || tr.SlopePerDay != 0 {
		t.Errorf("empty trend = %+v", tr)
	}

	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	single := []models.MaxHistoryEntry{{OneRepMax: 150, CalculationDate: day}}
	if tr := OneRepMaxTrend(single); tr.Intercept != 150 || tr.SlopePerDay != 0 {
		t.Errorf("single trend = %+v", tr)
	}

	sameDay := []models.MaxHistoryEntry{
		{OneRepMax: 150, CalculationDate: day},
		{OneRepMax: 160, CalculationDate: day},
	}
	if tr := OneRepMaxTrend(sameDay); !almostEqual(tr.Intercept, 155) || tr.SlopePerDay != 0 {
		t.Errorf("same day trend = %+v", tr)
	}
}
