// ABOUTME: Persisted workout session rows and the max-history ledger.
// ABOUTME: Sessions own ordered exercises which own ordered sets.
package models

import "time"

// WorkoutSession is one real workout instance.
type WorkoutSession struct {
	ID        int64
	UserID    int64
	RoutineID *int64
	StartTime time.Time
	EndTime   *time.Time
	Notes     *string
}

// SessionExercise is an exercise performed in a session.
type SessionExercise struct {
	ID         int64
	SessionID  int64
	ExerciseID int64
}

// SessionSet is one performed set.
type SessionSet struct {
	ID                int64
	SessionExerciseID int64
	SetOrder          int
	Weight            float64
	Reps              int
	EstimatedOneRM    float64
	Completed         bool
	RestTime          *int
}

// MaxHistoryEntry is one row of the append-only personal record ledger.
type MaxHistoryEntry struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	ExerciseID      int64     `json:"exercise_id"`
	OneRepMax       float64   `json:"one_rep_max"`
	CalculationDate time.Time `json:"calculation_date"`
}
