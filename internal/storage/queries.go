// ABOUTME: Read-side queries over the derived views and session tables.
// ABOUTME: Results are scanned into tagged structs with blockloop/scan.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/blockloop/scan"
)

// SorenessWindow is how long a session keeps contributing to muscle soreness.
const SorenessWindow = 72 * time.Hour

// WorkoutFrequency is one row of the WorkoutFrequency view.
type WorkoutFrequency struct {
	UserID       int64  `db:"user_id" json:"user_id"`
	WorkoutDate  string `db:"workout_date" json:"workout_date"`
	SessionCount int    `db:"session_count" json:"session_count"`
}

// MuscleGroupFocus is one row of the MuscleGroupFocus view.
type MuscleGroupFocus struct {
	SessionID      int64   `db:"session_id" json:"session_id"`
	MuscleGroup    string  `db:"muscle_group" json:"muscle_group"`
	IntensityScore float64 `db:"intensity_score" json:"intensity_score"`
}

// FavoriteRoutine is one row of the FavoriteRoutines view.
type FavoriteRoutine struct {
	UserID       int64  `db:"user_id" json:"user_id"`
	RoutineID    int64  `db:"routine_id" json:"routine_id"`
	RoutineTitle string `db:"routine_title" json:"routine_title"`
	UsageCount   int    `db:"usage_count" json:"usage_count"`
	LastUsed     string `db:"last_used" json:"last_used"`
}

// StrengthProgress is one row of the StrengthProgress view.
type StrengthProgress struct {
	SessionID      int64   `db:"session_id" json:"session_id"`
	ExerciseID     int64   `db:"exercise_id" json:"exercise_id"`
	StartTime      string  `db:"start_time" json:"start_time"`
	TopWeight      float64 `db:"top_weight" json:"top_weight"`
	TotalVolume    float64 `db:"total_volume" json:"total_volume"`
	MaxReps        int     `db:"max_reps" json:"max_reps"`
	EstimatedOneRM float64 `db:"estimated_1rm" json:"estimated_1rm"`
}

// MuscleSoreness is the decayed training load on one muscle group.
type MuscleSoreness struct {
	MuscleGroupID int64   `db:"muscle_group_id" json:"muscle_group_id"`
	MuscleGroup   string  `db:"muscle_group" json:"muscle_group"`
	Score         float64 `db:"soreness_score" json:"soreness_score"`
}

// WorkoutCounts summarizes how many sessions a user logged per calendar window.
type WorkoutCounts struct {
	Total int `json:"total"`
	Week  int `json:"week"`
	Month int `json:"month"`
	Year  int `json:"year"`
}

// TopExercise is the exercise a user has logged the most sets of.
type TopExercise struct {
	ExerciseID int64  `db:"exercise_id" json:"exercise_id"`
	Title      string `db:"title" json:"title"`
	Equipment  string `db:"equipment" json:"equipment"`
	SetCount   int    `db:"set_count" json:"set_count"`
}

// WorkoutFrequency returns per-day session counts for a user since a date.
func (d *DB) WorkoutFrequency(ctx context.Context, userID int64, since time.Time) ([]WorkoutFrequency, error) {
	rows, err := d.q.QueryContext(ctx, `
		SELECT user_id, workout_date, session_count
		FROM WorkoutFrequency
		WHERE user_id = ? AND workout_date >= ?
		ORDER BY workout_date
	`, userID, since.UTC().Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("workout frequency: %w", err)
	}
	defer rows.Close()

	var out []WorkoutFrequency
	if err := scan.Rows(&out, rows); err != nil {
		return nil, fmt.Errorf("scan workout frequency: %w", err)
	}
	return out, nil
}

// MuscleGroupFocus returns the muscle group intensity breakdown of one session.
func (d *DB) MuscleGroupFocus(ctx context.Context, sessionID int64) ([]MuscleGroupFocus, error) {
	rows, err := d.q.QueryContext(ctx, `
		SELECT session_id, muscle_group, intensity_score
		FROM MuscleGroupFocus
		WHERE session_id = ?
		ORDER BY intensity_score DESC, muscle_group
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("muscle group focus: %w", err)
	}
	defer rows.Close()

	var out []MuscleGroupFocus
	if err := scan.Rows(&out, rows); err != nil {
		return nil, fmt.Errorf("scan muscle group focus: %w", err)
	}
	return out, nil
}

// FavoriteRoutines returns a user's routines ranked by how often sessions used them.
func (d *DB) FavoriteRoutines(ctx context.Context, userID int64, limit int) ([]FavoriteRoutine, error) {
	query := `
		SELECT user_id, routine_id, routine_title, usage_count, last_used
		FROM FavoriteRoutines
		WHERE user_id = ?
		ORDER BY usage_count DESC, last_used DESC
	`
	args := []any{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := d.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("favorite routines: %w", err)
	}
	defer rows.Close()

	var out []FavoriteRoutine
	if err := scan.Rows(&out, rows); err != nil {
		return nil, fmt.Errorf("scan favorite routines: %w", err)
	}
	return out, nil
}

// StrengthProgress returns per-session aggregates for one exercise, oldest first.
func (d *DB) StrengthProgress(ctx context.Context, userID, exerciseID int64) ([]StrengthProgress, error) {
	rows, err := d.q.QueryContext(ctx, `
		SELECT sp.session_id, sp.exercise_id, ws.start_time,
			COALESCE(sp.top_weight, 0) AS top_weight,
			COALESCE(sp.total_volume, 0) AS total_volume,
			COALESCE(sp.max_reps, 0) AS max_reps,
			COALESCE(sp.estimated_1rm, 0) AS estimated_1rm
		FROM StrengthProgress sp
		JOIN WorkoutSessions ws ON ws.id = sp.session_id
		WHERE ws.user_id = ? AND sp.exercise_id = ?
		ORDER BY ws.start_time, sp.session_id
	`, userID, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("strength progress: %w", err)
	}
	defer rows.Close()

	var out []StrengthProgress
	if err := scan.Rows(&out, rows); err != nil {
		return nil, fmt.Errorf("scan strength progress: %w", err)
	}
	return out, nil
}

// MuscleGroupSoreness returns the current soreness per muscle group. Each
// session's load decays linearly to zero over SorenessWindow.
func (d *DB) MuscleGroupSoreness(ctx context.Context, userID int64, now time.Time) ([]MuscleSoreness, error) {
	nowStr := formatTime(now)
	windowDays := SorenessWindow.Hours() / 24
	rows, err := d.q.QueryContext(ctx, `
		SELECT muscle_group_id, muscle_group,
			SUM(load * (1 - (julianday(?) - julianday(start_time)) / ?)) AS soreness_score
		FROM MuscleGroupSoreness
		WHERE user_id = ?
			AND julianday(start_time) <= julianday(?)
			AND julianday(?) - julianday(start_time) < ?
		GROUP BY muscle_group_id, muscle_group
		ORDER BY soreness_score DESC, muscle_group
	`, nowStr, windowDays, userID, nowStr, nowStr, windowDays)
	if err != nil {
		return nil, fmt.Errorf("muscle group soreness: %w", err)
	}
	defer rows.Close()

	var out []MuscleSoreness
	if err := scan.Rows(&out, rows); err != nil {
		return nil, fmt.Errorf("scan muscle group soreness: %w", err)
	}
	return out, nil
}

// UpdateMuscleSoreness snapshots current soreness into MuscleSorenessHistory and
// raises each group's recorded maximum in UserMuscleMaxSoreness.
func (d *DB) UpdateMuscleSoreness(ctx context.Context, userID int64, now time.Time) ([]MuscleSoreness, error) {
	current, err := d.MuscleGroupSoreness(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	err = d.InTx(ctx, func(tx *DB) error {
		for _, s := range current {
			if _, err := tx.q.ExecContext(ctx, `
				INSERT INTO MuscleSorenessHistory (user_id, muscle_group_id, soreness_score, recorded_at)
				VALUES (?, ?, ?, ?)
			`, userID, s.MuscleGroupID, s.Score, formatTime(now)); err != nil {
				return fmt.Errorf("record soreness history: %w", err)
			}
			if _, err := tx.q.ExecContext(ctx, `
				INSERT INTO UserMuscleMaxSoreness (user_id, muscle_group_id, max_soreness)
				VALUES (?, ?, ?)
				ON CONFLICT(user_id, muscle_group_id) DO UPDATE SET
					max_soreness = MAX(max_soreness, excluded.max_soreness)
			`, userID, s.MuscleGroupID, s.Score); err != nil {
				return fmt.Errorf("raise max soreness: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return current, nil
}

// MaxMuscleSoreness returns the highest soreness ever recorded for a muscle group.
func (d *DB) MaxMuscleSoreness(ctx context.Context, userID, muscleGroupID int64) (float64, error) {
	var v float64
	err := d.q.QueryRowContext(ctx, `
		SELECT max_soreness FROM UserMuscleMaxSoreness
		WHERE user_id = ? AND muscle_group_id = ?
	`, userID, muscleGroupID).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("max muscle soreness: %w", err)
	}
	return v, nil
}

// WorkoutCounts counts a user's sessions in total and in the calendar week
// (starting Sunday), month and year containing now.
func (d *DB) WorkoutCounts(ctx context.Context, userID int64, now time.Time) (*WorkoutCounts, error) {
	now = now.UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	weekStart := day.AddDate(0, 0, -int(day.Weekday()))
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)

	var c WorkoutCounts
	err := d.q.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN julianday(start_time) >= julianday(?) THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN julianday(start_time) >= julianday(?) THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN julianday(start_time) >= julianday(?) THEN 1 ELSE 0 END), 0)
		FROM WorkoutSessions
		WHERE user_id = ?
	`, formatTime(weekStart), formatTime(monthStart), formatTime(yearStart), userID,
	).Scan(&c.Total, &c.Week, &c.Month, &c.Year)
	if err != nil {
		return nil, fmt.Errorf("workout counts: %w", err)
	}
	return &c, nil
}

// TopExercise returns the exercise with the most logged sets for a user.
// Returns ErrNotFound when the user has logged nothing.
func (d *DB) TopExercise(ctx context.Context, userID int64) (*TopExercise, error) {
	rows, err := d.q.QueryContext(ctx, `
		SELECT e.id AS exercise_id, e.title, COALESCE(eq.name, '') AS equipment, COUNT(ss.id) AS set_count
		FROM WorkoutSessions ws
		JOIN SessionExercises se ON se.session_id = ws.id
		JOIN SessionSets ss ON ss.session_exercise_id = se.id
		JOIN Exercises e ON se.exercise_id = e.id
		LEFT JOIN Equipment eq ON e.equipment_id = eq.id
		WHERE ws.user_id = ?
		GROUP BY e.id
		ORDER BY set_count DESC, e.id
		LIMIT 1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("top exercise: %w", err)
	}
	defer rows.Close()

	var top TopExercise
	if err := scan.Row(&top, rows); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan top exercise: %w", err)
	}
	return &top, nil
}
