// ABOUTME: Routine templates: routines, their exercises, prescribed sets and favorites.
// ABOUTME: Routine data is loaded flat and assembled into nested HistoryRoutine values.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/blockloop/scan"
	"github.com/harperreed/lift/internal/models"
)

// InsertRoutine stores a routine owned by a user.
func (d *DB) InsertRoutine(ctx context.Context, title string, userID int64) (int64, error) {
	id, err := d.insert(ctx, `INSERT INTO Routines (title, user_id) VALUES (?, ?)`, title, userID)
	if err != nil {
		return 0, fmt.Errorf("insert routine %q: %w", title, err)
	}
	return id, nil
}

// InsertRoutineExercise places an exercise in a routine.
func (d *DB) InsertRoutineExercise(ctx context.Context, routineID, exerciseID int64) (int64, error) {
	id, err := d.insert(ctx,
		`INSERT INTO RoutineExercises (routine_id, exercise_id) VALUES (?, ?)`, routineID, exerciseID)
	if err != nil {
		return 0, fmt.Errorf("insert routine exercise: %w", err)
	}
	return id, nil
}

// InsertExerciseSet stores one prescribed set of a routine exercise.
func (d *DB) InsertExerciseSet(ctx context.Context, routineExerciseID int64, order int, weight float64, reps int) (int64, error) {
	id, err := d.insert(ctx, `
		INSERT INTO ExerciseSets (routine_exercise_id, set_order, weight, reps, date)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, routineExerciseID, order, weight, reps)
	if err != nil {
		return 0, fmt.Errorf("insert exercise set: %w", err)
	}
	return id, nil
}

// RoutineIDByTitle resolves a user's routine by title.
func (d *DB) RoutineIDByTitle(ctx context.Context, userID int64, title string) (int64, error) {
	var id int64
	err := d.q.QueryRowContext(ctx,
		`SELECT id FROM Routines WHERE user_id = ? AND title = ? ORDER BY id LIMIT 1`, userID, title,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("lookup routine %q: %w", title, err)
	}
	return id, nil
}

// ListRoutines returns a user's routines without exercises.
func (d *DB) ListRoutines(ctx context.Context, userID int64) ([]models.Routine, error) {
	rows, err := d.q.QueryContext(ctx,
		`SELECT id, title, user_id FROM Routines WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list routines: %w", err)
	}
	defer rows.Close()

	var routines []models.Routine
	for rows.Next() {
		var r models.Routine
		if err := rows.Scan(&r.ID, &r.Title, &r.UserID); err != nil {
			return nil, fmt.Errorf("scan routine: %w", err)
		}
		routines = append(routines, r)
	}
	return routines, rows.Err()
}

// exerciseSetRow is one flattened (container, exercise, set) join row. The
// container is a routine or a session depending on the query.
type exerciseSetRow struct {
	ParentID    int64    `db:"parent_id"`
	ParentTitle string   `db:"parent_title"`
	LinkID      int64    `db:"link_id"`
	ExerciseID  int64    `db:"exercise_id"`
	Title       string   `db:"title"`
	Equipment   string   `db:"equipment"`
	MuscleGroup string   `db:"muscle_group"`
	SetID       *int64   `db:"set_id"`
	SetOrder    *int64   `db:"set_order"`
	Weight      *float64 `db:"weight"`
	Reps        *int64   `db:"reps"`
	RestTime    *int64   `db:"rest_time"`
	OneRM       *float64 `db:"estimated_1rm"`
}

// assembleExercises groups flattened rows, already ordered by parent, link and
// set order, into exercises keyed by parent id. Parent order is returned
// separately so callers keep the query's ordering.
func assembleExercises(rows []exerciseSetRow) (map[int64][]models.HistoryExercise, []int64, map[int64]string) {
	byParent := make(map[int64][]models.HistoryExercise)
	titles := make(map[int64]string)
	var order []int64
	lastLink := make(map[int64]int64)

	for _, r := range rows {
		if _, seen := titles[r.ParentID]; !seen {
			titles[r.ParentID] = r.ParentTitle
			order = append(order, r.ParentID)
		}
		if r.LinkID == 0 {
			continue
		}
		exercises := byParent[r.ParentID]
		if lastLink[r.ParentID] != r.LinkID {
			exercises = append(exercises, models.HistoryExercise{
				SessionExerciseID: r.LinkID,
				ExerciseID:        r.ExerciseID,
				Title:             r.Title,
				Equipment:         r.Equipment,
				MuscleGroup:       r.MuscleGroup,
			})
			lastLink[r.ParentID] = r.LinkID
		}
		if r.SetID != nil {
			ex := &exercises[len(exercises)-1]
			set := models.HistorySet{
				ID:             *r.SetID,
				Order:          int(deref(r.SetOrder)),
				Weight:         deref(r.Weight),
				Reps:           int(deref(r.Reps)),
				EstimatedOneRM: deref(r.OneRM),
			}
			if r.RestTime != nil {
				rt := int(*r.RestTime)
				set.RestTime = &rt
			}
			ex.Sets = append(ex.Sets, set)
		}
		byParent[r.ParentID] = exercises
	}
	return byParent, order, titles
}

func deref[T int64 | float64](v *T) T {
	if v == nil {
		return 0
	}
	return *v
}

// GetRoutineData returns a user's routines with their exercises and prescribed
// sets, shaped like a workout so a session can be started from one directly.
func (d *DB) GetRoutineData(ctx context.Context, userID int64) ([]models.HistoryRoutine, error) {
	rows, err := d.q.QueryContext(ctx, `
		SELECT
			r.id AS parent_id,
			r.title AS parent_title,
			COALESCE(re.id, 0) AS link_id,
			COALESCE(e.id, 0) AS exercise_id,
			COALESCE(e.title, '') AS title,
			COALESCE(eq.name, '') AS equipment,
			COALESCE(mg.name, '') AS muscle_group,
			es.id AS set_id,
			es.set_order,
			es.weight,
			es.reps,
			NULL AS rest_time,
			NULL AS estimated_1rm
		FROM Routines r
		LEFT JOIN RoutineExercises re ON re.routine_id = r.id
		LEFT JOIN Exercises e ON re.exercise_id = e.id
		LEFT JOIN Equipment eq ON e.equipment_id = eq.id
		LEFT JOIN MuscleGroups mg ON e.muscle_group_id = mg.id
		LEFT JOIN ExerciseSets es ON es.routine_exercise_id = re.id
		WHERE r.user_id = ?
		ORDER BY r.id, re.id, es.set_order
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("get routine data: %w", err)
	}
	defer rows.Close()

	var flat []exerciseSetRow
	if err := scan.Rows(&flat, rows); err != nil {
		return nil, fmt.Errorf("scan routine data: %w", err)
	}

	byRoutine, order, titles := assembleExercises(flat)
	routines := make([]models.HistoryRoutine, 0, len(order))
	for _, id := range order {
		exercises := byRoutine[id]
		for i := range exercises {
			// Routine exercise link ids are not session exercise ids.
			exercises[i].SessionExerciseID = 0
		}
		routines = append(routines, models.HistoryRoutine{ID: id, Title: titles[id], Exercises: exercises})
	}
	return routines, nil
}

// DeleteRoutine removes a routine with its prescribed sets, exercise links and
// favorites. Split days and sessions that referenced it keep their rows with a
// NULL routine.
func (d *DB) DeleteRoutine(ctx context.Context, routineID int64) error {
	return d.InTx(ctx, func(tx *DB) error {
		stmts := []string{
			`DELETE FROM ExerciseSets WHERE routine_exercise_id IN (SELECT id FROM RoutineExercises WHERE routine_id = ?)`,
			`DELETE FROM RoutineExercises WHERE routine_id = ?`,
			`DELETE FROM RoutineFavorites WHERE routine_id = ?`,
			`UPDATE SplitRoutines SET routine_id = NULL WHERE routine_id = ?`,
			`UPDATE WorkoutSessions SET routine_id = NULL WHERE routine_id = ?`,
		}
		for _, stmt := range stmts {
			if _, err := tx.q.ExecContext(ctx, stmt, routineID); err != nil {
				return fmt.Errorf("delete routine: %w", err)
			}
		}
		res, err := tx.q.ExecContext(ctx, `DELETE FROM Routines WHERE id = ?`, routineID)
		if err != nil {
			return fmt.Errorf("delete routine: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// AddFavorite marks a routine as a favorite. Adding twice is a no-op.
func (d *DB) AddFavorite(ctx context.Context, userID, routineID int64) error {
	_, err := d.q.ExecContext(ctx,
		`INSERT OR IGNORE INTO RoutineFavorites (user_id, routine_id) VALUES (?, ?)`, userID, routineID)
	if err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

// RemoveFavorite unmarks a favorite routine.
func (d *DB) RemoveFavorite(ctx context.Context, userID, routineID int64) error {
	_, err := d.q.ExecContext(ctx,
		`DELETE FROM RoutineFavorites WHERE user_id = ? AND routine_id = ?`, userID, routineID)
	if err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}

// FavoriteRoutineIDs returns the ids of a user's favorite routines.
func (d *DB) FavoriteRoutineIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := d.q.QueryContext(ctx,
		`SELECT routine_id FROM RoutineFavorites WHERE user_id = ? ORDER BY routine_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
