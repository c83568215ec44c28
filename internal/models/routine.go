// ABOUTME: Routine and split models owned by a user.
// ABOUTME: Routines carry the last known set prescription; splits cycle routines by day.
package models

import "time"

// RestDay is the split day value that means no routine is assigned.
const RestDay = "Rest"

// Routine is a named workout template.
type Routine struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	UserID int64  `json:"user_id"`
}

// RoutineExercise places an exercise in a routine.
type RoutineExercise struct {
	ID         int64 `json:"id"`
	RoutineID  int64 `json:"routine_id"`
	ExerciseID int64 `json:"exercise_id"`
}

// ExerciseSet is one prescribed set of a routine exercise.
type ExerciseSet struct {
	ID                int64     `json:"id"`
	RoutineExerciseID int64     `json:"routine_exercise_id"`
	SetOrder          int       `json:"set_order"`
	Weight            float64   `json:"weight"`
	Reps              int       `json:"reps"`
	Date              time.Time `json:"date"`
}

// Split is an ordered cycle of routines.
type Split struct {
	ID       int64          `json:"id"`
	Name     string         `json:"name"`
	UserID   int64          `json:"user_id"`
	IsActive bool           `json:"is_active"`
	Days     []SplitRoutine `json:"days,omitempty"`
}

// SplitRoutine assigns a routine to one day of a split. A nil RoutineID is a rest day.
type SplitRoutine struct {
	ID           int64  `db:"id" json:"id"`
	SplitID      int64  `db:"split_id" json:"split_id"`
	SplitOrder   int    `db:"split_order" json:"day"`
	RoutineID    *int64 `db:"routine_id" json:"routine_id,omitempty"`
	RoutineTitle string `db:"routine_title" json:"routine"`
}

// IsRest reports whether the day has no routine.
func (d SplitRoutine) IsRest() bool {
	return d.RoutineID == nil
}

// SplitCompletion records one full pass through a split.
type SplitCompletion struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	SplitID         int64     `json:"split_id"`
	CompletionDate  time.Time `json:"completion_date"`
	CompletedCycles int       `json:"completed_cycles"`
}
