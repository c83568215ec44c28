// ABOUTME: Tests for the SQLite storage layer's row operations.
// ABOUTME: Verifies reference lookups, sessions, routines, splits and transactions.
package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/lift/internal/models"
)

// fixture holds ids created by seedFixture.
type fixture struct {
	userID    int64
	chestID   int64
	legsID    int64
	pecID     int64
	quadID    int64
	barbellID int64
	bodyID    int64
	benchID   int64
	squatID   int64
	pushupID  int64
}

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "lift.db")
	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func seedFixture(t *testing.T, db *DB) fixture {
	t.Helper()
	ctx := context.Background()
	var f fixture
	var err error

	must := func(id int64, err error) int64 {
		t.Helper()
		if err != nil {
			t.Fatalf("fixture insert failed: %v", err)
		}
		return id
	}

	f.userID, err = db.InsertUser(ctx, &models.User{Username: "lifter", Name: "Test Lifter", Password: "x"})
	if err != nil {
		t.Fatalf("InsertUser failed: %v", err)
	}
	f.chestID = must(db.InsertMuscleGroup(ctx, "Chest"))
	f.legsID = must(db.InsertMuscleGroup(ctx, "Legs"))
	f.pecID = must(db.InsertMuscle(ctx, "Pectoralis Major", f.chestID))
	f.quadID = must(db.InsertMuscle(ctx, "Quadriceps", f.legsID))
	f.barbellID = must(db.InsertEquipment(ctx, "Barbell"))
	f.bodyID = must(db.InsertEquipment(ctx, models.EquipmentBodyweight))
	f.benchID = must(db.InsertExercise(ctx, "Bench Press", f.barbellID, f.chestID))
	f.squatID = must(db.InsertExercise(ctx, "Squat", f.barbellID, f.legsID))
	f.pushupID = must(db.InsertExercise(ctx, "Push Up", f.bodyID, f.chestID))
	must(db.InsertExerciseMuscle(ctx, f.benchID, f.pecID, 1.0))
	must(db.InsertExerciseMuscle(ctx, f.squatID, f.quadID, 1.0))
	must(db.InsertExerciseMuscle(ctx, f.pushupID, f.pecID, 0.5))
	return f
}

// insertSession writes a session with one exercise and the given (weight, reps) sets.
func insertSession(t *testing.T, db *DB, userID, exerciseID int64, start time.Time, sets ...[2]float64) int64 {
	t.Helper()
	ctx := context.Background()

	s := &models.WorkoutSession{UserID: userID, StartTime: start}
	sessionID, err := db.InsertWorkoutSession(ctx, s)
	if err != nil {
		t.Fatalf("InsertWorkoutSession failed: %v", err)
	}
	seID, err := db.InsertSessionExercise(ctx, sessionID, exerciseID)
	if err != nil {
		t.Fatalf("InsertSessionExercise failed: %v", err)
	}
	for i, set := range sets {
		_, err := db.InsertSessionSet(ctx, &models.SessionSet{
			SessionExerciseID: seID,
			SetOrder:          i + 1,
			Weight:            set[0],
			Reps:              int(set[1]),
			EstimatedOneRM:    set[0] * (1 + set[1]/30),
			Completed:         true,
		})
		if err != nil {
			t.Fatalf("InsertSessionSet failed: %v", err)
		}
	}
	return sessionID
}

func TestOpenCreatesSchema(t *testing.T) {
	db := setupTestDB(t)

	objects, err := db.SchemaObjects(context.Background())
	if err != nil {
		t.Fatalf("SchemaObjects failed: %v", err)
	}
	for _, table := range BaseTables {
		if objects[table] != "table" {
			t.Errorf("missing table %s", table)
		}
	}
	for _, view := range Views {
		if objects[view] != "view" {
			t.Errorf("missing view %s", view)
		}
	}
}

func TestNameLookups(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	ctx := context.Background()

	groups, err := db.MuscleGroupIDs(ctx)
	if err != nil {
		t.Fatalf("MuscleGroupIDs failed: %v", err)
	}
	if groups["Chest"] != f.chestID || groups["Legs"] != f.legsID {
		t.Errorf("groups = %v", groups)
	}

	equipment, err := db.EquipmentIDs(ctx)
	if err != nil {
		t.Fatalf("EquipmentIDs failed: %v", err)
	}
	if equipment["Barbell"] != f.barbellID {
		t.Errorf("equipment = %v", equipment)
	}

	id, err := db.ExerciseIDByTitleAndEquipment(ctx, "Bench Press", "Barbell")
	if err != nil {
		t.Fatalf("ExerciseIDByTitleAndEquipment failed: %v", err)
	}
	if id != f.benchID {
		t.Errorf("id = %d, want %d", id, f.benchID)
	}

	_, err = db.ExerciseIDByTitleAndEquipment(ctx, "Bench Press", "Dumbbell")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListExercises(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)

	exercises, err := db.ListExercises(context.Background())
	if err != nil {
		t.Fatalf("ListExercises failed: %v", err)
	}
	if len(exercises) != 3 {
		t.Fatalf("len(exercises) = %d, want 3", len(exercises))
	}
	// Sorted by title
	if exercises[0].Title != "Bench Press" || exercises[0].Equipment != "Barbell" || exercises[0].MuscleGroup != "Chest" {
		t.Errorf("first exercise = %+v", exercises[0])
	}

	ex, err := db.GetExercise(context.Background(), f.pushupID)
	if err != nil {
		t.Fatalf("GetExercise failed: %v", err)
	}
	if ex.Equipment != models.EquipmentBodyweight {
		t.Errorf("equipment = %q, want Bodyweight", ex.Equipment)
	}
	if _, err := db.GetExercise(context.Background(), 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUserAndProfile(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	u := &models.User{Username: "sam", Name: "Sam", Email: "sam@example.com", Password: "secret"}
	id, err := db.InsertUser(ctx, u)
	if err != nil {
		t.Fatalf("InsertUser failed: %v", err)
	}

	got, err := db.GetUser(ctx, id)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if got.Username != "sam" || got.Email != "sam@example.com" {
		t.Errorf("user = %+v", got)
	}

	first, err := db.FirstUserID(ctx)
	if err != nil || first != id {
		t.Errorf("FirstUserID = %d, %v; want %d", first, err, id)
	}

	weight, err := db.ProfileWeight(ctx, id)
	if err != nil || weight != "" {
		t.Errorf("ProfileWeight without profile = %q, %v", weight, err)
	}

	stats := &models.UserProfileStats{UserID: id, Weight: "180 lbs", Height: "5'11\""}
	if err := db.UpsertProfileStats(ctx, stats); err != nil {
		t.Fatalf("UpsertProfileStats failed: %v", err)
	}
	stats.Weight = "185 lbs"
	if err := db.UpsertProfileStats(ctx, stats); err != nil {
		t.Fatalf("UpsertProfileStats update failed: %v", err)
	}

	weight, err = db.ProfileWeight(ctx, id)
	if err != nil || weight != "185 lbs" {
		t.Errorf("ProfileWeight = %q, %v; want 185 lbs", weight, err)
	}
	n, err := db.CountRows(ctx, "UserProfileStats")
	if err != nil || n != 1 {
		t.Errorf("profile rows = %d, %v; want 1", n, err)
	}
}

func TestSessionLifecycle(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	ctx := context.Background()

	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	sessionID := insertSession(t, db, f.userID, f.benchID, start, [2]float64{135, 10}, [2]float64{145, 8})

	s, err := db.GetWorkoutSession(ctx, sessionID)
	if err != nil {
		t.Fatalf("GetWorkoutSession failed: %v", err)
	}
	if !s.StartTime.Equal(start) {
		t.Errorf("StartTime = %v, want %v", s.StartTime, start)
	}
	if s.RoutineID != nil || s.EndTime != nil || s.Notes != nil {
		t.Errorf("expected nil optional fields, got %+v", s)
	}

	end := start.Add(time.Hour)
	notes := "felt strong"
	s.EndTime = &end
	s.Notes = &notes
	if err := db.UpdateWorkoutSession(ctx, s); err != nil {
		t.Fatalf("UpdateWorkoutSession failed: %v", err)
	}

	s, err = db.GetWorkoutSession(ctx, sessionID)
	if err != nil {
		t.Fatalf("GetWorkoutSession failed: %v", err)
	}
	if s.EndTime == nil || !s.EndTime.Equal(end) {
		t.Errorf("EndTime = %v, want %v", s.EndTime, end)
	}
	if s.Notes == nil || *s.Notes != notes {
		t.Errorf("Notes = %v, want %q", s.Notes, notes)
	}

	seRows, err := db.SessionExercises(ctx, sessionID)
	if err != nil {
		t.Fatalf("SessionExercises failed: %v", err)
	}
	if len(seRows) != 1 || seRows[0].ExerciseID != f.benchID || seRows[0].SessionID != sessionID {
		t.Fatalf("SessionExercises = %+v, want one bench row", seRows)
	}
	seID := seRows[0].ID

	if err := db.ClearSessionSets(ctx, seID); err != nil {
		t.Fatalf("ClearSessionSets failed: %v", err)
	}
	exercises, sets, err := db.CountSessionRows(ctx, sessionID)
	if err != nil {
		t.Fatalf("CountSessionRows failed: %v", err)
	}
	if exercises != 1 || sets != 0 {
		t.Errorf("rows = %d exercises, %d sets; want 1, 0", exercises, sets)
	}

	if err := db.ClearSessionExercises(ctx, sessionID); err != nil {
		t.Fatalf("ClearSessionExercises failed: %v", err)
	}
	if err := db.DeleteWorkoutSession(ctx, sessionID); err != nil {
		t.Fatalf("DeleteWorkoutSession failed: %v", err)
	}
	if _, err := db.GetWorkoutSession(ctx, sessionID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := db.DeleteWorkoutSession(ctx, sessionID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestUpdateMissingSession(t *testing.T) {
	db := setupTestDB(t)

	err := db.UpdateWorkoutSession(context.Background(), &models.WorkoutSession{ID: 42, StartTime: time.Now()})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetHistoryAssemblesNestedRows(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	ctx := context.Background()

	routineID, err := db.InsertRoutine(ctx, "Push", f.userID)
	if err != nil {
		t.Fatalf("InsertRoutine failed: %v", err)
	}
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	s := &models.WorkoutSession{UserID: f.userID, RoutineID: &routineID, StartTime: start}
	sessionID, err := db.InsertWorkoutSession(ctx, s)
	if err != nil {
		t.Fatalf("InsertWorkoutSession failed: %v", err)
	}

	rest := 90
	for _, exerciseID := range []int64{f.benchID, f.pushupID} {
		seID, err := db.InsertSessionExercise(ctx, sessionID, exerciseID)
		if err != nil {
			t.Fatalf("InsertSessionExercise failed: %v", err)
		}
		for order := 1; order <= 2; order++ {
			if _, err := db.InsertSessionSet(ctx, &models.SessionSet{
				SessionExerciseID: seID, SetOrder: order, Weight: 100, Reps: 5,
				EstimatedOneRM: 116.67, Completed: true, RestTime: &rest,
			}); err != nil {
				t.Fatalf("InsertSessionSet failed: %v", err)
			}
		}
	}
	// A session exercise with no sets still appears.
	if _, err := db.InsertSessionExercise(ctx, sessionID, f.squatID); err != nil {
		t.Fatalf("InsertSessionExercise failed: %v", err)
	}

	h, err := db.GetHistory(ctx, sessionID)
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	if h.Routine.ID != routineID || h.Routine.Title != "Push" {
		t.Errorf("routine = %d %q, want %d Push", h.Routine.ID, h.Routine.Title, routineID)
	}
	if len(h.Routine.Exercises) != 3 {
		t.Fatalf("len(exercises) = %d, want 3", len(h.Routine.Exercises))
	}

	bench := h.Routine.Exercises[0]
	if bench.ExerciseID != f.benchID || bench.Title != "Bench Press" || bench.Equipment != "Barbell" {
		t.Errorf("first exercise = %+v", bench)
	}
	if bench.SessionExerciseID == 0 {
		t.Error("expected session exercise id to be loaded")
	}
	if len(bench.Sets) != 2 || bench.Sets[0].Order != 1 || bench.Sets[1].Order != 2 {
		t.Errorf("bench sets = %+v", bench.Sets)
	}
	if bench.Sets[0].RestTime == nil || *bench.Sets[0].RestTime != 90 {
		t.Errorf("rest time = %v, want 90", bench.Sets[0].RestTime)
	}
	if h.Routine.Exercises[1].Equipment != models.EquipmentBodyweight {
		t.Errorf("second exercise equipment = %q", h.Routine.Exercises[1].Equipment)
	}
	if len(h.Routine.Exercises[2].Sets) != 0 {
		t.Errorf("squat sets = %+v, want none", h.Routine.Exercises[2].Sets)
	}

	if _, err := db.GetHistory(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListHistoryOrderAndLimit(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	older := insertSession(t, db, f.userID, f.benchID, base, [2]float64{100, 5})
	newer := insertSession(t, db, f.userID, f.squatID, base.Add(48*time.Hour), [2]float64{200, 5})
	// An empty workout
	empty, err := db.InsertWorkoutSession(ctx, &models.WorkoutSession{UserID: f.userID, StartTime: base.Add(24 * time.Hour)})
	if err != nil {
		t.Fatalf("InsertWorkoutSession failed: %v", err)
	}

	history, err := db.ListHistory(ctx, f.userID, 0)
	if err != nil {
		t.Fatalf("ListHistory failed: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("len(history) = %d, want 3", len(history))
	}
	wantOrder := []int64{newer, empty, older}
	for i, id := range wantOrder {
		if history[i].ID != id {
			t.Errorf("history[%d].ID = %d, want %d", i, history[i].ID, id)
		}
	}
	if history[1].Routine.ID != models.NoRoutine || len(history[1].Routine.Exercises) != 0 {
		t.Errorf("empty workout = %+v", history[1].Routine)
	}
	if history[0].Routine.Exercises[0].Sets[0].Weight != 200 {
		t.Errorf("newest session weight = %v, want 200", history[0].Routine.Exercises[0].Sets[0].Weight)
	}

	limited, err := db.ListHistory(ctx, f.userID, 1)
	if err != nil {
		t.Fatalf("ListHistory with limit failed: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != newer {
		t.Errorf("limited = %+v", limited)
	}

	none, err := db.ListHistory(ctx, f.userID+100, 0)
	if err != nil || len(none) != 0 {
		t.Errorf("ListHistory for unknown user = %v, %v", none, err)
	}
}

func TestRoutineData(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	ctx := context.Background()

	push, err := db.InsertRoutine(ctx, "Push", f.userID)
	if err != nil {
		t.Fatalf("InsertRoutine failed: %v", err)
	}
	reID, err := db.InsertRoutineExercise(ctx, push, f.benchID)
	if err != nil {
		t.Fatalf("InsertRoutineExercise failed: %v", err)
	}
	for i, w := range []float64{135, 155, 175} {
		if _, err := db.InsertExerciseSet(ctx, reID, i+1, w, 8); err != nil {
			t.Fatalf("InsertExerciseSet failed: %v", err)
		}
	}
	if _, err := db.InsertRoutine(ctx, "Empty", f.userID); err != nil {
		t.Fatalf("InsertRoutine failed: %v", err)
	}

	routines, err := db.GetRoutineData(ctx, f.userID)
	if err != nil {
		t.Fatalf("GetRoutineData failed: %v", err)
	}
	if len(routines) != 2 {
		t.Fatalf("len(routines) = %d, want 2", len(routines))
	}
	if routines[0].Title != "Push" || len(routines[0].Exercises) != 1 {
		t.Fatalf("push routine = %+v", routines[0])
	}
	sets := routines[0].Exercises[0].Sets
	if len(sets) != 3 || sets[2].Weight != 175 {
		t.Errorf("sets = %+v", sets)
	}
	if routines[0].Exercises[0].SessionExerciseID != 0 {
		t.Error("routine exercises must not carry a session exercise id")
	}
	if routines[1].Title != "Empty" || len(routines[1].Exercises) != 0 {
		t.Errorf("empty routine = %+v", routines[1])
	}

	id, err := db.RoutineIDByTitle(ctx, f.userID, "Push")
	if err != nil || id != push {
		t.Errorf("RoutineIDByTitle = %d, %v; want %d", id, err, push)
	}

	if err := db.AddFavorite(ctx, f.userID, push); err != nil {
		t.Fatalf("AddFavorite failed: %v", err)
	}
	if err := db.AddFavorite(ctx, f.userID, push); err != nil {
		t.Fatalf("AddFavorite twice failed: %v", err)
	}
	favs, err := db.FavoriteRoutineIDs(ctx, f.userID)
	if err != nil || len(favs) != 1 {
		t.Errorf("favorites = %v, %v", favs, err)
	}

	if err := db.DeleteRoutine(ctx, push); err != nil {
		t.Fatalf("DeleteRoutine failed: %v", err)
	}
	for _, table := range []string{"RoutineExercises", "ExerciseSets", "RoutineFavorites"} {
		n, err := db.CountRows(ctx, table)
		if err != nil || n != 0 {
			t.Errorf("%s rows = %d, %v; want 0", table, n, err)
		}
	}
	if err := db.DeleteRoutine(ctx, push); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSplits(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	ctx := context.Background()

	push, _ := db.InsertRoutine(ctx, "Push", f.userID)
	legs, _ := db.InsertRoutine(ctx, "Legs", f.userID)

	weekly, err := db.InsertSplit(ctx, "Weekly", f.userID, false)
	if err != nil {
		t.Fatalf("InsertSplit failed: %v", err)
	}
	other, err := db.InsertSplit(ctx, "Other", f.userID, true)
	if err != nil {
		t.Fatalf("InsertSplit failed: %v", err)
	}
	days := []*int64{&push, nil, &legs}
	for i, r := range days {
		if _, err := db.InsertSplitRoutine(ctx, weekly, i+1, r); err != nil {
			t.Fatalf("InsertSplitRoutine failed: %v", err)
		}
	}

	if err := db.SetActiveSplit(ctx, f.userID, weekly); err != nil {
		t.Fatalf("SetActiveSplit failed: %v", err)
	}

	splits, err := db.GetSplitData(ctx, f.userID)
	if err != nil {
		t.Fatalf("GetSplitData failed: %v", err)
	}
	if len(splits) != 2 {
		t.Fatalf("len(splits) = %d, want 2", len(splits))
	}
	if !splits[0].IsActive || splits[1].IsActive {
		t.Errorf("active flags = %v, %v; want true, false", splits[0].IsActive, splits[1].IsActive)
	}
	if len(splits[0].Days) != 3 {
		t.Fatalf("len(days) = %d, want 3", len(splits[0].Days))
	}
	if !splits[0].Days[1].IsRest() || splits[0].Days[1].RoutineTitle != models.RestDay {
		t.Errorf("day 2 = %+v, want rest", splits[0].Days[1])
	}
	if splits[0].Days[2].RoutineTitle != "Legs" {
		t.Errorf("day 3 = %+v, want Legs", splits[0].Days[2])
	}

	lengths, err := db.SplitCycleLengths(ctx, f.userID)
	if err != nil {
		t.Fatalf("SplitCycleLengths failed: %v", err)
	}
	if len(lengths) != 1 || lengths[0].SplitID != weekly || lengths[0].CycleDays != 3 {
		t.Errorf("lengths = %+v", lengths)
	}

	if _, err := db.RecordSplitCompletion(ctx, f.userID, weekly); err != nil {
		t.Fatalf("RecordSplitCompletion failed: %v", err)
	}
	n, err := db.SplitCompletionCount(ctx, weekly)
	if err != nil || n != 1 {
		t.Errorf("completions = %d, %v; want 1", n, err)
	}
	if err := db.SetActiveSplit(ctx, f.userID, other+100); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestInTxRollsBack(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := db.InTx(ctx, func(tx *DB) error {
		if _, err := tx.InsertMuscleGroup(ctx, "Chest"); err != nil {
			return err
		}
		// Nested calls share the outer transaction.
		return tx.InTx(ctx, func(inner *DB) error {
			if _, err := inner.InsertMuscleGroup(ctx, "Back"); err != nil {
				return err
			}
			return boom
		})
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	n, err := db.CountRows(ctx, "MuscleGroups")
	if err != nil {
		t.Fatalf("CountRows failed: %v", err)
	}
	if n != 0 {
		t.Errorf("MuscleGroups rows = %d, want 0 after rollback", n)
	}

	err = db.InTx(ctx, func(tx *DB) error {
		_, err := tx.InsertMuscleGroup(ctx, "Chest")
		return err
	})
	if err != nil {
		t.Fatalf("InTx failed: %v", err)
	}
	if n, _ := db.CountRows(ctx, "MuscleGroups"); n != 1 {
		t.Errorf("MuscleGroups rows = %d, want 1 after commit", n)
	}
}

func TestCountRowsRejectsUnknownTable(t *testing.T) {
	db := setupTestDB(t)

	if _, err := db.CountRows(context.Background(), "sqlite_master; DROP TABLE Users"); err == nil {
		t.Error("expected error for unknown table")
	}
}
