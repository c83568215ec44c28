// ABOUTME: In-memory workout history as edited by callers before reconciliation.
// ABOUTME: Provides builders, set editing and explicit structural equality.
package models

import (
	"fmt"
	"math"
	"time"
)

// NoRoutine is the routine id sentinel for a workout not started from a routine.
const NoRoutine int64 = 0

// History is a workout session together with everything performed in it.
type History struct {
	ID        int64          `json:"id"`
	UserID    int64          `json:"user_id"`
	Routine   HistoryRoutine `json:"routine"`
	StartTime time.Time      `json:"start_time"`
	EndTime   *time.Time     `json:"end_time,omitempty"`
	Notes     *string        `json:"notes,omitempty"`
}

// HistoryRoutine is the routine a workout was performed from, with the exercises
// actually performed. ID is NoRoutine for an empty workout.
type HistoryRoutine struct {
	ID        int64             `json:"id"`
	Title     string            `json:"title"`
	Exercises []HistoryExercise `json:"exercises"`
}

// HistoryExercise is one performed exercise. SessionExerciseID is the persisted
// row id when loaded from storage and zero for new entries.
type HistoryExercise struct {
	SessionExerciseID int64        `json:"session_exercise_id,omitempty"`
	ExerciseID        int64        `json:"exercise_id"`
	Title             string       `json:"title"`
	Equipment         string       `json:"equipment"`
	MuscleGroup       string       `json:"muscle_group,omitempty"`
	Sets              []HistorySet `json:"sets"`
}

// HistorySet is one performed set.
type HistorySet struct {
	ID             int64   `json:"id,omitempty"`
	Order          int     `json:"order"`
	Weight         float64 `json:"weight"`
	Reps           int     `json:"reps"`
	RestTime       *int    `json:"rest_time,omitempty"`
	EstimatedOneRM float64 `json:"estimated_1rm,omitempty"`
}

// NewHistory creates a History for a user starting now.
func NewHistory(userID int64) *History {
	return &History{
		UserID:    userID,
		StartTime: time.Now().UTC().Truncate(time.Second),
	}
}

// WithRoutine sets the originating routine.
func (h *History) WithRoutine(id int64, title string) *History {
	h.Routine.ID = id
	h.Routine.Title = title
	return h
}

// WithNotes sets notes on the workout.
func (h *History) WithNotes(notes string) *History {
	h.Notes = &notes
	return h
}

// WithEndTime sets the end timestamp.
func (h *History) WithEndTime(t time.Time) *History {
	h.EndTime = &t
	return h
}

// AddExercise appends an exercise and returns it for set building.
func (h *History) AddExercise(e HistoryExercise) *HistoryExercise {
	h.Routine.Exercises = append(h.Routine.Exercises, e)
	return &h.Routine.Exercises[len(h.Routine.Exercises)-1]
}

// Clone returns a deep copy so edits never alias the original.
func (h *History) Clone() *History {
	c := *h
	if h.EndTime != nil {
		t := *h.EndTime
		c.EndTime = &t
	}
	if h.Notes != nil {
		n := *h.Notes
		c.Notes = &n
	}
	c.Routine.Exercises = make([]HistoryExercise, len(h.Routine.Exercises))
	for i, e := range h.Routine.Exercises {
		e.Sets = append([]HistorySet(nil), e.Sets...)
		for j, s := range e.Sets {
			if s.RestTime != nil {
				r := *s.RestTime
				e.Sets[j].RestTime = &r
			}
		}
		c.Routine.Exercises[i] = e
	}
	return &c
}

// SetField selects which numeric field of a set an edit applies to.
type SetField int

const (
	SetFieldWeight SetField = iota
	SetFieldReps
)

func (f SetField) String() string {
	switch f {
	case SetFieldWeight:
		return "weight"
	case SetFieldReps:
		return "reps"
	default:
		return fmt.Sprintf("SetField(%d)", int(f))
	}
}

// ParseSetField maps "weight" or "reps" to a SetField.
func ParseSetField(s string) (SetField, error) {
	switch s {
	case "weight":
		return SetFieldWeight, nil
	case "reps":
		return SetFieldReps, nil
	default:
		return 0, fmt.Errorf("unknown set field: %q", s)
	}
}

// UpdateSet applies a single field edit to the set at index i.
// Reps are rounded to the nearest whole number.
func (e *HistoryExercise) UpdateSet(i int, field SetField, value float64) error {
	if i < 0 || i >= len(e.Sets) {
		return fmt.Errorf("set index %d out of range for %q", i, e.Title)
	}
	if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("invalid %s value: %v", field, value)
	}
	switch field {
	case SetFieldWeight:
		e.Sets[i].Weight = value
	case SetFieldReps:
		e.Sets[i].Reps = int(math.Round(value))
	default:
		return fmt.Errorf("unknown set field: %v", field)
	}
	return nil
}

// AddSet appends a set with the next order number.
func (e *HistoryExercise) AddSet(weight float64, reps int) {
	e.Sets = append(e.Sets, HistorySet{Order: len(e.Sets) + 1, Weight: weight, Reps: reps})
}

// RemoveSet deletes the set at index i and renumbers the rest.
func (e *HistoryExercise) RemoveSet(i int) error {
	if i < 0 || i >= len(e.Sets) {
		return fmt.Errorf("set index %d out of range for %q", i, e.Title)
	}
	e.Sets = append(e.Sets[:i], e.Sets[i+1:]...)
	for j := range e.Sets {
		e.Sets[j].Order = j + 1
	}
	return nil
}

// RoutinesEqual compares two routines field by field: id, title and the full
// exercise list as defined by ExerciseListsEqual.
func RoutinesEqual(a, b HistoryRoutine) bool {
	return a.ID == b.ID && a.Title == b.Title && ExerciseListsEqual(a.Exercises, b.Exercises)
}

// ExerciseListsEqual is order-sensitive. Two lists are equal when they have the
// same length and, position by position, the same exercise identity, title,
// equipment and set contents. Session row ids, set ids and computed 1RM values
// are ignored.
func ExerciseListsEqual(a, b []HistoryExercise) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ExerciseID != b[i].ExerciseID ||
			a[i].Title != b[i].Title ||
			a[i].Equipment != b[i].Equipment {
			return false
		}
		if !setsEqual(a[i].Sets, b[i].Sets) {
			return false
		}
	}
	return true
}

// SameExerciseIdentities reports whether both lists name the same exercises in
// the same order, regardless of set contents.
func SameExerciseIdentities(a, b []HistoryExercise) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ExerciseID != b[i].ExerciseID {
			return false
		}
	}
	return true
}

func setsEqual(a, b []HistorySet) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Order != b[i].Order || a[i].Weight != b[i].Weight || a[i].Reps != b[i].Reps {
			return false
		}
		if !intPtrEqual(a[i].RestTime, b[i].RestTime) {
			return false
		}
	}
	return true
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
