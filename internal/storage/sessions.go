// ABOUTME: Workout session row operations used by the session reconciler.
// ABOUTME: Sessions own exercises which own sets; deletes run children first.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/harperreed/lift/internal/models"
)

// InsertWorkoutSession stores a new session row and sets its id.
func (d *DB) InsertWorkoutSession(ctx context.Context, s *models.WorkoutSession) (int64, error) {
	id, err := d.insert(ctx, `
		INSERT INTO WorkoutSessions (user_id, routine_id, start_time, end_time, notes)
		VALUES (?, ?, ?, ?, ?)
	`, s.UserID, nullInt64(s.RoutineID), formatTime(s.StartTime), formatTimePtr(s.EndTime), s.Notes)
	if err != nil {
		return 0, fmt.Errorf("insert workout session: %w", err)
	}
	s.ID = id
	return id, nil
}

// UpdateWorkoutSession overwrites the metadata of an existing session.
func (d *DB) UpdateWorkoutSession(ctx context.Context, s *models.WorkoutSession) error {
	res, err := d.q.ExecContext(ctx, `
		UPDATE WorkoutSessions
		SET user_id = ?, routine_id = ?, start_time = ?, end_time = ?, notes = ?
		WHERE id = ?
	`, s.UserID, nullInt64(s.RoutineID), formatTime(s.StartTime), formatTimePtr(s.EndTime), s.Notes, s.ID)
	if err != nil {
		return fmt.Errorf("update workout session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update workout session %d: %w", s.ID, ErrNotFound)
	}
	return nil
}

// GetWorkoutSession returns the session row without exercises.
func (d *DB) GetWorkoutSession(ctx context.Context, id int64) (*models.WorkoutSession, error) {
	var s models.WorkoutSession
	var userID, routineID sql.NullInt64
	var start string
	var end, notes sql.NullString
	err := d.q.QueryRowContext(ctx, `
		SELECT id, user_id, routine_id, start_time, end_time, notes
		FROM WorkoutSessions WHERE id = ?
	`, id).Scan(&s.ID, &userID, &routineID, &start, &end, &notes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get workout session: %w", err)
	}
	s.UserID = userID.Int64
	if routineID.Valid {
		s.RoutineID = &routineID.Int64
	}
	if s.StartTime, err = parseTime(start); err != nil {
		return nil, fmt.Errorf("parse start_time: %w", err)
	}
	if end.Valid && end.String != "" {
		t, err := parseTime(end.String)
		if err != nil {
			return nil, fmt.Errorf("parse end_time: %w", err)
		}
		s.EndTime = &t
	}
	if notes.Valid {
		s.Notes = &notes.String
	}
	return &s, nil
}

// InsertSessionExercise adds an exercise to a session.
func (d *DB) InsertSessionExercise(ctx context.Context, sessionID, exerciseID int64) (int64, error) {
	id, err := d.insert(ctx,
		`INSERT INTO SessionExercises (session_id, exercise_id) VALUES (?, ?)`, sessionID, exerciseID)
	if err != nil {
		return 0, fmt.Errorf("insert session exercise: %w", err)
	}
	return id, nil
}

// SessionExerciseIDs returns the session exercise row ids of a session in insertion order.
func (d *DB) SessionExerciseIDs(ctx context.Context, sessionID int64) ([]int64, error) {
	rows, err := d.q.QueryContext(ctx,
		`SELECT id FROM SessionExercises WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list session exercises: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session exercise: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SessionExercises returns the session exercise rows of a session in insertion order.
func (d *DB) SessionExercises(ctx context.Context, sessionID int64) ([]models.SessionExercise, error) {
	rows, err := d.q.QueryContext(ctx,
		`SELECT id, session_id, exercise_id FROM SessionExercises WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list session exercises: %w", err)
	}
	defer rows.Close()

	var out []models.SessionExercise
	for rows.Next() {
		var se models.SessionExercise
		if err := rows.Scan(&se.ID, &se.SessionID, &se.ExerciseID); err != nil {
			return nil, fmt.Errorf("scan session exercise: %w", err)
		}
		out = append(out, se)
	}
	return out, rows.Err()
}

// InsertSessionSet stores one performed set.
func (d *DB) InsertSessionSet(ctx context.Context, s *models.SessionSet) (int64, error) {
	var rest any
	if s.RestTime != nil {
		rest = *s.RestTime
	}
	id, err := d.insert(ctx, `
		INSERT INTO SessionSets (session_exercise_id, set_order, weight, reps, estimated_1rm, completed, rest_time)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, s.SessionExerciseID, s.SetOrder, s.Weight, s.Reps, s.EstimatedOneRM, s.Completed, rest)
	if err != nil {
		return 0, fmt.Errorf("insert session set: %w", err)
	}
	s.ID = id
	return id, nil
}

// ClearSessionSets deletes the sets of one session exercise.
func (d *DB) ClearSessionSets(ctx context.Context, sessionExerciseID int64) error {
	if _, err := d.q.ExecContext(ctx,
		`DELETE FROM SessionSets WHERE session_exercise_id = ?`, sessionExerciseID); err != nil {
		return fmt.Errorf("clear session sets: %w", err)
	}
	return nil
}

// ClearSessionSetsByWorkout deletes every set of every exercise in a session.
func (d *DB) ClearSessionSetsByWorkout(ctx context.Context, sessionID int64) error {
	if _, err := d.q.ExecContext(ctx, `
		DELETE FROM SessionSets
		WHERE session_exercise_id IN (SELECT id FROM SessionExercises WHERE session_id = ?)
	`, sessionID); err != nil {
		return fmt.Errorf("clear session sets for workout: %w", err)
	}
	return nil
}

// ClearSessionExercises deletes the exercise rows of a session. Their sets must
// already be gone.
func (d *DB) ClearSessionExercises(ctx context.Context, sessionID int64) error {
	if _, err := d.q.ExecContext(ctx,
		`DELETE FROM SessionExercises WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("clear session exercises: %w", err)
	}
	return nil
}

// DeleteWorkoutSession deletes the session row itself. Returns ErrNotFound if
// no row was removed.
func (d *DB) DeleteWorkoutSession(ctx context.Context, sessionID int64) error {
	res, err := d.q.ExecContext(ctx, `DELETE FROM WorkoutSessions WHERE id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("delete workout session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountSessionRows returns the number of exercise and set rows belonging to a session.
func (d *DB) CountSessionRows(ctx context.Context, sessionID int64) (exercises, sets int, err error) {
	err = d.q.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM SessionExercises WHERE session_id = ?),
			(SELECT COUNT(*) FROM SessionSets ss
				JOIN SessionExercises se ON ss.session_exercise_id = se.id
				WHERE se.session_id = ?)
	`, sessionID, sessionID).Scan(&exercises, &sets)
	if err != nil {
		return 0, 0, fmt.Errorf("count session rows: %w", err)
	}
	return exercises, sets, nil
}
