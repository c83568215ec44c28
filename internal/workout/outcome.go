// ABOUTME: Result of a reconcile call: which level of the session was rewritten.
// ABOUTME: Lists new personal records and exercises skipped on the set-only path.
package workout

import "fmt"

// State names what a reconcile rewrote beyond the session row. Metadata is
// always written; Unchanged means it was written with identical values.
type State int

const (
	Unchanged State = iota
	MetadataDirty
	ExercisesDirty
	SetsDirty
)

func (s State) String() string {
	switch s {
	case Unchanged:
		return "unchanged"
	case MetadataDirty:
		return "metadata"
	case ExercisesDirty:
		return "exercises"
	case SetsDirty:
		return "sets"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Record is a max-history row appended during a reconcile.
type Record struct {
	ExerciseID int64   `json:"exercise_id"`
	Previous   float64 `json:"previous"`
	OneRepMax  float64 `json:"one_rep_max"`
}

// Outcome reports what a reconcile wrote. Skipped holds exercise ids that had
// no stored row on the set-only path.
type Outcome struct {
	SessionID        int64    `json:"session_id"`
	State            State    `json:"state"`
	ExercisesWritten int      `json:"exercises_written"`
	SetsWritten      int      `json:"sets_written"`
	Records          []Record `json:"records,omitempty"`
	Skipped          []int64  `json:"skipped,omitempty"`
}

// MarshalText lets State render by name in JSON and logs.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
