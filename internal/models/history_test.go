// ABOUTME: Tests for History builders, set editing and structural equality.
// ABOUTME: Equality must be explicit and order-sensitive, never serialization based.
package models

import (
	"testing"
	"time"
)

func benchHistory() *History {
	h := NewHistory(1).WithRoutine(3, "Push")
	ex := h.AddExercise(HistoryExercise{ExerciseID: 1, Title: "Bench Press", Equipment: "Barbell"})
	ex.AddSet(135, 10)
	ex.AddSet(145, 8)
	return h
}

func TestNewHistory(t *testing.T) {
	h := NewHistory(7)
	if h.UserID != 7 {
		t.Errorf("UserID = %d, want 7", h.UserID)
	}
	if h.StartTime.IsZero() {
		t.Error("expected StartTime to be set")
	}
	if h.Routine.ID != NoRoutine {
		t.Errorf("Routine.ID = %d, want NoRoutine", h.Routine.ID)
	}
}

func TestHistoryBuilders(t *testing.T) {
	end := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	h := NewHistory(1).WithRoutine(2, "Legs").WithNotes("heavy").WithEndTime(end)

	if h.Routine.ID != 2 || h.Routine.Title != "Legs" {
		t.Errorf("routine = %+v, want id 2 Legs", h.Routine)
	}
	if h.Notes == nil || *h.Notes != "heavy" {
		t.Error("expected notes to be heavy")
	}
	if h.EndTime == nil || !h.EndTime.Equal(end) {
		t.Error("expected end time to be set")
	}
}

func TestAddSetNumbersOrder(t *testing.T) {
	h := benchHistory()
	sets := h.Routine.Exercises[0].Sets
	if len(sets) != 2 {
		t.Fatalf("len(sets) = %d, want 2", len(sets))
	}
	if sets[0].Order != 1 || sets[1].Order != 2 {
		t.Errorf("orders = %d,%d, want 1,2", sets[0].Order, sets[1].Order)
	}
}

func TestRemoveSetRenumbers(t *testing.T) {
	h := benchHistory()
	ex := &h.Routine.Exercises[0]
	ex.AddSet(155, 5)

	if err := ex.RemoveSet(0); err != nil {
		t.Fatalf("RemoveSet failed: %v", err)
	}
	if len(ex.Sets) != 2 {
		t.Fatalf("len(sets) = %d, want 2", len(ex.Sets))
	}
	for i, s := range ex.Sets {
		if s.Order != i+1 {
			t.Errorf("set %d order = %d, want %d", i, s.Order, i+1)
		}
	}
	if err := ex.RemoveSet(5); err == nil {
		t.Error("expected error for out of range index")
	}
}

func TestUpdateSet(t *testing.T) {
	tests := []struct {
		name    string
		index   int
		field   SetField
		value   float64
		wantErr bool
		check   func(HistorySet) bool
	}{
		{
			name:  "weight",
			field: SetFieldWeight,
			value: 140,
			check: func(s HistorySet) bool { return s.Weight == 140 },
		},
		{
			name:  "reps rounded",
			field: SetFieldReps,
			value: 7.6,
			check: func(s HistorySet) bool { return s.Reps == 8 },
		},
		{
			name:    "negative value",
			field:   SetFieldWeight,
			value:   -5,
			wantErr: true,
		},
		{
			name:    "index out of range",
			index:   9,
			field:   SetFieldReps,
			value:   5,
			wantErr: true,
		},
		{
			name:    "unknown field",
			field:   SetField(42),
			value:   5,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := benchHistory()
			ex := &h.Routine.Exercises[0]
			err := ex.UpdateSet(tt.index, tt.field, tt.value)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("UpdateSet failed: %v", err)
			}
			if !tt.check(ex.Sets[tt.index]) {
				t.Errorf("set after update = %+v", ex.Sets[tt.index])
			}
		})
	}
}

func TestParseSetField(t *testing.T) {
	if f, err := ParseSetField("weight"); err != nil || f != SetFieldWeight {
		t.Errorf("ParseSetField(weight) = %v, %v", f, err)
	}
	if f, err := ParseSetField("reps"); err != nil || f != SetFieldReps {
		t.Errorf("ParseSetField(reps) = %v, %v", f, err)
	}
	if _, err := ParseSetField("tempo"); err == nil {
		t.Error("expected error for unknown field")
	}
	if SetFieldReps.String() != "reps" {
		t.Errorf("String() = %q, want reps", SetFieldReps.String())
	}
}

func TestCloneDoesNotAlias(t *testing.T) {
	h := benchHistory().WithNotes("a")
	c := h.Clone()

	c.Routine.Exercises[0].Sets[0].Weight = 999
	*c.Notes = "b"

	if h.Routine.Exercises[0].Sets[0].Weight == 999 {
		t.Error("clone shares set storage with original")
	}
	if *h.Notes != "a" {
		t.Error("clone shares notes with original")
	}
	if !RoutinesEqual(h.Routine, benchHistory().Routine) {
		t.Error("original routine was modified")
	}
}

func TestExerciseListsEqual(t *testing.T) {
	base := benchHistory().Routine.Exercises

	t.Run("identical", func(t *testing.T) {
		other := benchHistory().Routine.Exercises
		if !ExerciseListsEqual(base, other) {
			t.Error("expected equal lists")
		}
	})

	t.Run("ignores row ids and computed values", func(t *testing.T) {
		other := benchHistory().Routine.Exercises
		other[0].SessionExerciseID = 44
		other[0].Sets[0].ID = 99
		other[0].Sets[0].EstimatedOneRM = 180
		if !ExerciseListsEqual(base, other) {
			t.Error("expected equal lists")
		}
	})

	t.Run("weight change", func(t *testing.T) {
		other := benchHistory().Routine.Exercises
		other[0].Sets[1].Weight = 150
		if ExerciseListsEqual(base, other) {
			t.Error("expected unequal lists")
		}
	})

	t.Run("extra set", func(t *testing.T) {
		other := benchHistory().Routine.Exercises
		other[0].AddSet(100, 12)
		if ExerciseListsEqual(base, other) {
			t.Error("expected unequal lists")
		}
	})

	t.Run("rest time", func(t *testing.T) {
		other := benchHistory().Routine.Exercises
		rest := 90
		other[0].Sets[0].RestTime = &rest
		if ExerciseListsEqual(base, other) {
			t.Error("expected unequal lists")
		}
	})

	t.Run("order sensitive", func(t *testing.T) {
		a := []HistoryExercise{{ExerciseID: 1}, {ExerciseID: 2}}
		b := []HistoryExercise{{ExerciseID: 2}, {ExerciseID: 1}}
		if ExerciseListsEqual(a, b) {
			t.Error("expected reordered lists to be unequal")
		}
	})
}

func TestSameExerciseIdentities(t *testing.T) {
	a := benchHistory().Routine.Exercises
	b := benchHistory().Routine.Exercises
	b[0].Sets[0].Weight = 200

	if !SameExerciseIdentities(a, b) {
		t.Error("set changes must not affect identity comparison")
	}

	b = append(b, HistoryExercise{ExerciseID: 5})
	if SameExerciseIdentities(a, b) {
		t.Error("expected added exercise to change identities")
	}

	c := []HistoryExercise{{ExerciseID: 2, Sets: a[0].Sets}}
	if SameExerciseIdentities(a, c) {
		t.Error("expected different exercise id to change identities")
	}
}

func TestRoutinesEqual(t *testing.T) {
	a := benchHistory().Routine
	b := benchHistory().Routine
	if !RoutinesEqual(a, b) {
		t.Error("expected equal routines")
	}

	b.Title = "Push Day"
	if RoutinesEqual(a, b) {
		t.Error("expected title change to be detected")
	}

	b = benchHistory().Routine
	b.ID = NoRoutine
	if RoutinesEqual(a, b) {
		t.Error("expected routine id change to be detected")
	}
}
