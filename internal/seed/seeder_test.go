// ABOUTME: Tests for dataset loading and the seeding pass.
// ABOUTME: Asserts on exactly which records were skipped and why.
package seed

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/harperreed/lift/internal/logging"
	"github.com/harperreed/lift/internal/models"
	"github.com/harperreed/lift/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func openDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "lift.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestDefaultDataset(t *testing.T) {
	ds, err := DefaultDataset()
	require.NoError(t, err)

	assert.Equal(t, "lifter", ds.User.Username)
	assert.Equal(t, "180 lbs", ds.User.Stats.Weight)
	assert.NotEmpty(t, ds.MuscleGroups)
	assert.NotEmpty(t, ds.Muscles)
	assert.Contains(t, ds.Equipment, models.EquipmentBodyweight)
	assert.NotEmpty(t, ds.Exercises)
	assert.Len(t, ds.Routines, 5)
	require.Len(t, ds.Splits, 2)
	assert.True(t, ds.Splits[0].Active)
	assert.Len(t, ds.Splits[0].Days, 7)
}

func TestSeeder_RunDefaultDataset(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	ds, err := DefaultDataset()
	require.NoError(t, err)

	report, err := NewSeeder(db, ds, logging.Discard()).Run(ctx)
	require.NoError(t, err)

	assert.Empty(t, report.Skipped, "default dataset must resolve fully")
	assert.Equal(t, len(ds.MuscleGroups), report.MuscleGroups)
	assert.Equal(t, len(ds.Muscles), report.Muscles)
	assert.Equal(t, len(ds.Exercises), report.Exercises)
	assert.Equal(t, len(ds.Routines), report.Routines)

	n, err := db.CountRows(ctx, "Exercises")
	require.NoError(t, err)
	assert.Equal(t, len(ds.Exercises), n)

	weight, err := db.ProfileWeight(ctx, report.UserID)
	require.NoError(t, err)
	assert.Equal(t, "180 lbs", weight)

	routines, err := db.GetRoutineData(ctx, report.UserID)
	require.NoError(t, err)
	require.Len(t, routines, 5)
	assert.Equal(t, "Push", routines[0].Title)
	require.NotEmpty(t, routines[0].Exercises)
	assert.Equal(t, "Bench Press", routines[0].Exercises[0].Title)
	assert.Len(t, routines[0].Exercises[0].Sets, 3)

	splits, err := db.GetSplitData(ctx, report.UserID)
	require.NoError(t, err)
	require.Len(t, splits, 2)
	assert.True(t, splits[0].IsActive)
	require.Len(t, splits[0].Days, 7)
	assert.True(t, splits[0].Days[3].IsRest())
	assert.Equal(t, "Legs", splits[0].Days[2].RoutineTitle)
}

func TestSeeder_CollectsSkips(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()

	ds := &Dataset{
		MuscleGroups: []string{"Chest"},
		Muscles: []MuscleRecord{
			{Name: "Pectoralis Major", MuscleGroup: "Chest"},
			{Name: "Tibialis", MuscleGroup: "Shins"},
		},
		Equipment: []string{"Barbell"},
		Exercises: []ExerciseRecord{
			{
				Title: "Bench Press", Equipment: "Barbell", MuscleGroup: "Chest",
				Muscles: []ExerciseMuscleRef{
					{Name: "Pectoralis Major", Intensity: 1},
					{Name: "Serratus", Intensity: 0.2},
					{Name: "Pectoralis Major", Intensity: -0.5},
				},
			},
			{Title: "Cable Fly", Equipment: "Cable", MuscleGroup: "Chest"},
		},
		User: UserRecord{Username: "u", Name: "U", Password: "p"},
		Routines: []RoutineRecord{{
			Title: "Push",
			Exercises: []RoutineExerciseRecord{
				{Title: "Bench Press", Equipment: "Barbell", Sets: []SetRecord{{Weight: 100, Reps: 5}, {Weight: 110, Reps: 3}}},
				{Title: "Bench Press", Equipment: "Dumbbell"},
			},
		}},
		Splits: []SplitRecord{{Name: "PPL", Days: []string{"Push", "Pull", models.RestDay}}},
	}

	report, err := NewSeeder(db, ds, logging.Discard()).Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, []Skip{
		{Kind: KindMuscle, Name: "Tibialis", Reason: `muscle group "Shins" not found`},
		{Kind: KindExercise, Name: "Cable Fly", Reason: `equipment "Cable" not found`},
		{Kind: KindExerciseMuscle, Name: "Serratus", Parent: "Bench Press", Reason: "muscle not found"},
		{Kind: KindExerciseMuscle, Name: "Pectoralis Major", Parent: "Bench Press", Reason: "negative intensity -0.5"},
		{Kind: KindRoutineExercise, Name: "Bench Press (Dumbbell)", Parent: "Push", Reason: "exercise not found"},
		{Kind: KindSplitDay, Name: "Pull", Parent: "PPL", Reason: "routine for day 2 not found"},
	}, report.Skipped)

	assert.Equal(t, 1, report.Muscles)
	assert.Equal(t, 1, report.Exercises)
	assert.Equal(t, 1, report.ExerciseMuscles)

	routines, err := db.GetRoutineData(ctx, report.UserID)
	require.NoError(t, err)
	require.Len(t, routines, 1)
	require.Len(t, routines[0].Exercises, 1)
	sets := routines[0].Exercises[0].Sets
	require.Len(t, sets, 2)
	assert.Equal(t, 1, sets[0].Order, "missing order defaults to position")
	assert.Equal(t, 2, sets[1].Order)

	splits, err := db.GetSplitData(ctx, report.UserID)
	require.NoError(t, err)
	require.Len(t, splits, 1)
	require.Len(t, splits[0].Days, 2)
	assert.Equal(t, 1, splits[0].Days[0].SplitOrder)
	assert.Equal(t, 3, splits[0].Days[1].SplitOrder)
	assert.True(t, splits[0].Days[1].IsRest())

	assert.Equal(t, `muscle "Tibialis": muscle group "Shins" not found`, report.Skipped[0].String())
	assert.Equal(t, `exercise_muscle "Serratus" in "Bench Press": muscle not found`, report.Skipped[2].String())
}

func TestSeeder_StorageErrorAborts(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	require.NoError(t, db.DropSchema(ctx))

	ds, err := DefaultDataset()
	require.NoError(t, err)

	_, err = NewSeeder(db, ds, logging.Discard()).Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seed user")
}

func TestLoadDataset_Merges(t *testing.T) {
	fsys := fstest.MapFS{
		"a.yaml": {Data: []byte("muscle_groups: [Chest]\nequipment: [Barbell]\n")},
		"b.yaml": {Data: []byte("muscle_groups: [Back]\nuser:\n  username: sam\n  name: Sam\n  password: x\n")},
	}

	ds, err := LoadDataset(fsys, "a.yaml", "b.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"Chest", "Back"}, ds.MuscleGroups)
	assert.Equal(t, []string{"Barbell"}, ds.Equipment)
	assert.Equal(t, "sam", ds.User.Username)

	_, err = LoadDataset(fsys, "missing.yaml")
	assert.Error(t, err)
}

func TestParseDataset_RejectsUnknownKeys(t *testing.T) {
	_, err := ParseDataset([]byte("muscle_grups: [Chest]\n"))
	assert.Error(t, err)

	ds, err := ParseDataset(nil)
	require.NoError(t, err)
	assert.Empty(t, ds.MuscleGroups)
}
