// ABOUTME: Assembles persisted sessions into nested History values.
// ABOUTME: History is the read model the reconciler diffs edits against.
package storage

import (
	"context"
	"fmt"

	"github.com/blockloop/scan"
	"github.com/harperreed/lift/internal/models"
)

const sessionExerciseRowsQuery = `
	SELECT
		ws.id AS parent_id,
		COALESCE(r.title, '') AS parent_title,
		COALESCE(se.id, 0) AS link_id,
		COALESCE(e.id, 0) AS exercise_id,
		COALESCE(e.title, '') AS title,
		COALESCE(eq.name, '') AS equipment,
		COALESCE(mg.name, '') AS muscle_group,
		ss.id AS set_id,
		ss.set_order,
		ss.weight,
		ss.reps,
		ss.rest_time,
		ss.estimated_1rm
	FROM WorkoutSessions ws
	LEFT JOIN Routines r ON ws.routine_id = r.id
	LEFT JOIN SessionExercises se ON se.session_id = ws.id
	LEFT JOIN Exercises e ON se.exercise_id = e.id
	LEFT JOIN Equipment eq ON e.equipment_id = eq.id
	LEFT JOIN MuscleGroups mg ON e.muscle_group_id = mg.id
	LEFT JOIN SessionSets ss ON ss.session_exercise_id = se.id
`

// GetHistory loads one session with its exercises and sets.
func (d *DB) GetHistory(ctx context.Context, sessionID int64) (*models.History, error) {
	session, err := d.GetWorkoutSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	byID, err := d.sessionExercises(ctx, sessionExerciseRowsQuery+`
		WHERE ws.id = ?
		ORDER BY ws.id, se.id, ss.set_order
	`, sessionID)
	if err != nil {
		return nil, err
	}
	h := historyFromSession(session, byID)
	return &h, nil
}

// ListHistory returns a user's sessions, most recent first. A limit of zero
// or less returns every session.
func (d *DB) ListHistory(ctx context.Context, userID int64, limit int) ([]models.History, error) {
	sessions, err := d.listSessions(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, nil
	}

	byID, err := d.sessionExercises(ctx, sessionExerciseRowsQuery+`
		WHERE ws.user_id = ?
		ORDER BY ws.id, se.id, ss.set_order
	`, userID)
	if err != nil {
		return nil, err
	}

	out := make([]models.History, 0, len(sessions))
	for i := range sessions {
		out = append(out, historyFromSession(&sessions[i], byID))
	}
	return out, nil
}

type sessionExerciseData struct {
	exercises    []models.HistoryExercise
	routineTitle string
}

func (d *DB) sessionExercises(ctx context.Context, query string, args ...any) (map[int64]sessionExerciseData, error) {
	rows, err := d.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load session exercises: %w", err)
	}
	defer rows.Close()

	var flat []exerciseSetRow
	if err := scan.Rows(&flat, rows); err != nil {
		return nil, fmt.Errorf("scan session exercises: %w", err)
	}

	byParent, order, titles := assembleExercises(flat)
	out := make(map[int64]sessionExerciseData, len(order))
	for _, id := range order {
		out[id] = sessionExerciseData{exercises: byParent[id], routineTitle: titles[id]}
	}
	return out, nil
}

func (d *DB) listSessions(ctx context.Context, userID int64, limit int) ([]models.WorkoutSession, error) {
	query := `SELECT id FROM WorkoutSessions WHERE user_id = ? ORDER BY start_time DESC, id DESC`
	args := []any{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	sessions := make([]models.WorkoutSession, 0, len(ids))
	for _, id := range ids {
		s, err := d.GetWorkoutSession(ctx, id)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, nil
}

func historyFromSession(s *models.WorkoutSession, data map[int64]sessionExerciseData) models.History {
	h := models.History{
		ID:        s.ID,
		UserID:    s.UserID,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Notes:     s.Notes,
	}
	if s.RoutineID != nil {
		h.Routine.ID = *s.RoutineID
	}
	if d, ok := data[s.ID]; ok {
		h.Routine.Title = d.routineTitle
		h.Routine.Exercises = d.exercises
	}
	return h
}
