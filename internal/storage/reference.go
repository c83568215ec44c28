// ABOUTME: Reference taxonomy CRUD: muscle groups, muscles, equipment and exercises.
// ABOUTME: Name lookups resolve seed records, which are keyed by name only.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/blockloop/scan"
	"github.com/harperreed/lift/internal/models"
)

// InsertMuscleGroup stores a muscle group and returns its id.
func (d *DB) InsertMuscleGroup(ctx context.Context, name string) (int64, error) {
	id, err := d.insert(ctx, `INSERT INTO MuscleGroups (name) VALUES (?)`, name)
	if err != nil {
		return 0, fmt.Errorf("insert muscle group %q: %w", name, err)
	}
	return id, nil
}

// InsertMuscle stores a muscle under a muscle group.
func (d *DB) InsertMuscle(ctx context.Context, name string, muscleGroupID int64) (int64, error) {
	id, err := d.insert(ctx, `INSERT INTO Muscles (name, muscle_group_id) VALUES (?, ?)`, name, muscleGroupID)
	if err != nil {
		return 0, fmt.Errorf("insert muscle %q: %w", name, err)
	}
	return id, nil
}

// InsertEquipment stores a piece of equipment.
func (d *DB) InsertEquipment(ctx context.Context, name string) (int64, error) {
	id, err := d.insert(ctx, `INSERT INTO Equipment (name) VALUES (?)`, name)
	if err != nil {
		return 0, fmt.Errorf("insert equipment %q: %w", name, err)
	}
	return id, nil
}

// InsertExercise stores an exercise with its equipment and primary muscle group.
func (d *DB) InsertExercise(ctx context.Context, title string, equipmentID, muscleGroupID int64) (int64, error) {
	id, err := d.insert(ctx,
		`INSERT INTO Exercises (title, equipment_id, muscle_group_id) VALUES (?, ?, ?)`,
		title, equipmentID, muscleGroupID)
	if err != nil {
		return 0, fmt.Errorf("insert exercise %q: %w", title, err)
	}
	return id, nil
}

// InsertExerciseMuscle links an exercise to a muscle with an activation intensity.
func (d *DB) InsertExerciseMuscle(ctx context.Context, exerciseID, muscleID int64, intensity float64) (int64, error) {
	id, err := d.insert(ctx,
		`INSERT INTO ExerciseMuscles (exercise_id, muscle_id, intensity) VALUES (?, ?, ?)`,
		exerciseID, muscleID, intensity)
	if err != nil {
		return 0, fmt.Errorf("insert exercise muscle: %w", err)
	}
	return id, nil
}

// MuscleGroupIDs returns muscle group ids keyed by name.
func (d *DB) MuscleGroupIDs(ctx context.Context) (map[string]int64, error) {
	return d.nameIndex(ctx, `SELECT name, id FROM MuscleGroups`)
}

// MuscleIDs returns muscle ids keyed by name.
func (d *DB) MuscleIDs(ctx context.Context) (map[string]int64, error) {
	return d.nameIndex(ctx, `SELECT name, id FROM Muscles`)
}

// EquipmentIDs returns equipment ids keyed by name.
func (d *DB) EquipmentIDs(ctx context.Context) (map[string]int64, error) {
	return d.nameIndex(ctx, `SELECT name, id FROM Equipment`)
}

// nameIndex builds a name to id map. Later duplicates win, matching a
// last-write lookup over an unindexed name column.
func (d *DB) nameIndex(ctx context.Context, query string) (map[string]int64, error) {
	rows, err := d.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load name index: %w", err)
	}
	defer rows.Close()

	index := make(map[string]int64)
	for rows.Next() {
		var name string
		var id int64
		if err := rows.Scan(&name, &id); err != nil {
			return nil, fmt.Errorf("scan name index: %w", err)
		}
		index[name] = id
	}
	return index, rows.Err()
}

// ExerciseIDByTitleAndEquipment resolves an exercise by its title and equipment
// name. Returns ErrNotFound when no such exercise exists.
func (d *DB) ExerciseIDByTitleAndEquipment(ctx context.Context, title, equipment string) (int64, error) {
	var id int64
	err := d.q.QueryRowContext(ctx, `
		SELECT e.id
		FROM Exercises e
		JOIN Equipment eq ON e.equipment_id = eq.id
		WHERE e.title = ? AND eq.name = ?
		ORDER BY e.id
		LIMIT 1
	`, title, equipment).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("lookup exercise %q (%s): %w", title, equipment, err)
	}
	return id, nil
}

// ListExercises returns every exercise with its equipment and muscle group names.
func (d *DB) ListExercises(ctx context.Context) ([]models.Exercise, error) {
	rows, err := d.q.QueryContext(ctx, `
		SELECT e.id, e.title,
			COALESCE(e.equipment_id, 0) AS equipment_id,
			COALESCE(e.muscle_group_id, 0) AS muscle_group_id,
			COALESCE(eq.name, '') AS equipment,
			COALESCE(mg.name, '') AS muscle_group
		FROM Exercises e
		LEFT JOIN Equipment eq ON e.equipment_id = eq.id
		LEFT JOIN MuscleGroups mg ON e.muscle_group_id = mg.id
		ORDER BY e.title, eq.name
	`)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	defer rows.Close()

	var exercises []models.Exercise
	if err := scan.Rows(&exercises, rows); err != nil {
		return nil, fmt.Errorf("scan exercises: %w", err)
	}
	return exercises, nil
}

// GetExercise returns one exercise by id.
func (d *DB) GetExercise(ctx context.Context, id int64) (*models.Exercise, error) {
	rows, err := d.q.QueryContext(ctx, `
		SELECT e.id, e.title,
			COALESCE(e.equipment_id, 0) AS equipment_id,
			COALESCE(e.muscle_group_id, 0) AS muscle_group_id,
			COALESCE(eq.name, '') AS equipment,
			COALESCE(mg.name, '') AS muscle_group
		FROM Exercises e
		LEFT JOIN Equipment eq ON e.equipment_id = eq.id
		LEFT JOIN MuscleGroups mg ON e.muscle_group_id = mg.id
		WHERE e.id = ?
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get exercise: %w", err)
	}
	defer rows.Close()

	var ex models.Exercise
	if err := scan.Row(&ex, rows); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan exercise: %w", err)
	}
	return &ex, nil
}

// CountRows returns the number of rows in a base table. The table name must be
// one of BaseTables.
func (d *DB) CountRows(ctx context.Context, table string) (int, error) {
	known := false
	for _, t := range BaseTables {
		if t == table {
			known = true
			break
		}
	}
	if !known {
		return 0, fmt.Errorf("count rows: unknown table %q", table)
	}
	var n int
	if err := d.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rows in %s: %w", table, err)
	}
	return n, nil
}
