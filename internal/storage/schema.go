// ABOUTME: SQLite schema definition, creation and teardown.
// ABOUTME: Base tables in foreign-key order plus read-only derived views.
package storage

import (
	"context"
	"fmt"
)

// BaseTables lists every base table in foreign-key declaration order.
var BaseTables = []string{
	"MuscleGroups",
	"Muscles",
	"Equipment",
	"Exercises",
	"ExerciseMuscles",
	"Users",
	"UserProfileStats",
	"Routines",
	"RoutineFavorites",
	"RoutineExercises",
	"ExerciseSets",
	"Splits",
	"SplitRoutines",
	"SplitCompletions",
	"WorkoutSessions",
	"SessionExercises",
	"SessionSets",
	"ExerciseMaxHistory",
	"UserMuscleMaxSoreness",
	"MuscleSorenessHistory",
}

// Views lists the derived views. They are recomputed from base tables and never written.
var Views = []string{
	"WorkoutFrequency",
	"MuscleGroupFocus",
	"FavoriteRoutines",
	"StrengthProgress",
	"SplitCycleLengths",
	"MuscleGroupSoreness",
}

const generalTables = `
CREATE TABLE IF NOT EXISTS MuscleGroups (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS Muscles (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	muscle_group_id INTEGER,
	FOREIGN KEY (muscle_group_id) REFERENCES MuscleGroups(id)
);

CREATE TABLE IF NOT EXISTS Equipment (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS Exercises (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	equipment_id INTEGER,
	muscle_group_id INTEGER,
	FOREIGN KEY (equipment_id) REFERENCES Equipment(id),
	FOREIGN KEY (muscle_group_id) REFERENCES MuscleGroups(id)
);

CREATE TABLE IF NOT EXISTS ExerciseMuscles (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	exercise_id INTEGER,
	muscle_id INTEGER,
	intensity REAL NOT NULL,
	FOREIGN KEY (exercise_id) REFERENCES Exercises(id),
	FOREIGN KEY (muscle_id) REFERENCES Muscles(id)
);
`

const userTables = `
CREATE TABLE IF NOT EXISTS Users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL,
	name TEXT NOT NULL,
	email TEXT,
	password TEXT NOT NULL,
	createdAt DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS UserProfileStats (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	height TEXT,
	weight TEXT,
	bodyFat TEXT,
	favoriteExercise TEXT,
	memberSince TEXT,
	goals TEXT,
	FOREIGN KEY (user_id) REFERENCES Users(id),
	UNIQUE(user_id)
);

CREATE TABLE IF NOT EXISTS Routines (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	user_id INTEGER,
	FOREIGN KEY (user_id) REFERENCES Users(id)
);

CREATE TABLE IF NOT EXISTS RoutineFavorites (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER,
	routine_id INTEGER,
	UNIQUE(user_id, routine_id),
	FOREIGN KEY (user_id) REFERENCES Users(id),
	FOREIGN KEY (routine_id) REFERENCES Routines(id)
);

CREATE TABLE IF NOT EXISTS RoutineExercises (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	routine_id INTEGER,
	exercise_id INTEGER,
	FOREIGN KEY (routine_id) REFERENCES Routines(id),
	FOREIGN KEY (exercise_id) REFERENCES Exercises(id)
);

CREATE TABLE IF NOT EXISTS ExerciseSets (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	routine_exercise_id INTEGER,
	set_order INTEGER NOT NULL,
	weight REAL NOT NULL,
	reps INTEGER NOT NULL,
	date DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (routine_exercise_id) REFERENCES RoutineExercises(id)
);

CREATE TABLE IF NOT EXISTS Splits (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	user_id INTEGER,
	is_active INTEGER DEFAULT 0,
	FOREIGN KEY (user_id) REFERENCES Users(id)
);

CREATE TABLE IF NOT EXISTS SplitRoutines (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	split_id INTEGER,
	split_order INTEGER NOT NULL,
	routine_id INTEGER,
	FOREIGN KEY (split_id) REFERENCES Splits(id),
	FOREIGN KEY (routine_id) REFERENCES Routines(id)
);

CREATE TABLE IF NOT EXISTS SplitCompletions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	split_id INTEGER NOT NULL,
	completion_date DATETIME DEFAULT CURRENT_TIMESTAMP,
	completed_cycles INTEGER DEFAULT 1,
	FOREIGN KEY (user_id) REFERENCES Users(id),
	FOREIGN KEY (split_id) REFERENCES Splits(id)
);
`

const workoutTables = `
CREATE TABLE IF NOT EXISTS WorkoutSessions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER,
	routine_id INTEGER,
	start_time DATETIME NOT NULL,
	end_time TEXT,
	notes TEXT,
	FOREIGN KEY (user_id) REFERENCES Users(id),
	FOREIGN KEY (routine_id) REFERENCES Routines(id)
);

CREATE TABLE IF NOT EXISTS SessionExercises (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id INTEGER,
	exercise_id INTEGER,
	FOREIGN KEY (session_id) REFERENCES WorkoutSessions(id),
	FOREIGN KEY (exercise_id) REFERENCES Exercises(id)
);

CREATE TABLE IF NOT EXISTS SessionSets (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_exercise_id INTEGER,
	set_order INTEGER NOT NULL,
	weight REAL NOT NULL,
	reps INTEGER NOT NULL,
	estimated_1rm REAL,
	completed BOOLEAN DEFAULT 1,
	rest_time INTEGER,
	FOREIGN KEY (session_exercise_id) REFERENCES SessionExercises(id)
);

CREATE TABLE IF NOT EXISTS ExerciseMaxHistory (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	exercise_id INTEGER NOT NULL,
	one_rep_max REAL NOT NULL,
	calculation_date DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (user_id) REFERENCES Users(id),
	FOREIGN KEY (exercise_id) REFERENCES Exercises(id)
);

CREATE TABLE IF NOT EXISTS UserMuscleMaxSoreness (
	user_id INTEGER NOT NULL,
	muscle_group_id INTEGER NOT NULL,
	max_soreness REAL NOT NULL,
	PRIMARY KEY (user_id, muscle_group_id),
	FOREIGN KEY (user_id) REFERENCES Users(id),
	FOREIGN KEY (muscle_group_id) REFERENCES MuscleGroups(id)
);

CREATE TABLE IF NOT EXISTS MuscleSorenessHistory (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	muscle_group_id INTEGER NOT NULL,
	soreness_score REAL NOT NULL,
	recorded_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (user_id) REFERENCES Users(id),
	FOREIGN KEY (muscle_group_id) REFERENCES MuscleGroups(id)
);

CREATE INDEX IF NOT EXISTS idx_sessions_user_start ON WorkoutSessions(user_id, start_time DESC);
CREATE INDEX IF NOT EXISTS idx_session_exercises_session ON SessionExercises(session_id);
CREATE INDEX IF NOT EXISTS idx_session_sets_exercise ON SessionSets(session_exercise_id);
CREATE INDEX IF NOT EXISTS idx_max_history_user_exercise ON ExerciseMaxHistory(user_id, exercise_id);
`

const dataViews = `
CREATE VIEW IF NOT EXISTS WorkoutFrequency AS
SELECT
	user_id,
	DATE(start_time) AS workout_date,
	COUNT(*) AS session_count
FROM WorkoutSessions
GROUP BY user_id, DATE(start_time);

CREATE VIEW IF NOT EXISTS MuscleGroupFocus AS
SELECT
	se.session_id,
	mg.name AS muscle_group,
	COUNT(*) * em.intensity AS intensity_score
FROM SessionExercises se
JOIN Exercises e ON se.exercise_id = e.id
JOIN ExerciseMuscles em ON em.exercise_id = e.id
JOIN Muscles m ON em.muscle_id = m.id
JOIN MuscleGroups mg ON m.muscle_group_id = mg.id
GROUP BY se.session_id, mg.name;

CREATE VIEW IF NOT EXISTS FavoriteRoutines AS
SELECT
	ws.user_id,
	r.id AS routine_id,
	r.title AS routine_title,
	COUNT(*) AS usage_count,
	MAX(ws.start_time) AS last_used
FROM WorkoutSessions ws
JOIN Routines r ON ws.routine_id = r.id
GROUP BY ws.user_id, r.id
ORDER BY usage_count DESC;

CREATE VIEW IF NOT EXISTS StrengthProgress AS
SELECT
	se.session_id,
	se.exercise_id,
	MAX(ss.weight) AS top_weight,
	SUM(ss.weight * ss.reps) AS total_volume,
	MAX(ss.reps) AS max_reps,
	MAX(ss.estimated_1rm) AS estimated_1rm
FROM SessionExercises se
JOIN SessionSets ss ON se.id = ss.session_exercise_id
GROUP BY se.session_id, se.exercise_id;

CREATE VIEW IF NOT EXISTS SplitCycleLengths AS
SELECT
	split_id,
	MAX(split_order) AS cycle_days
FROM SplitRoutines
GROUP BY split_id;

CREATE VIEW IF NOT EXISTS MuscleGroupSoreness AS
SELECT
	ws.user_id,
	ws.id AS session_id,
	ws.start_time,
	mg.id AS muscle_group_id,
	mg.name AS muscle_group,
	SUM(em.intensity * sc.set_count) AS load
FROM WorkoutSessions ws
JOIN SessionExercises se ON se.session_id = ws.id
JOIN (
	SELECT session_exercise_id, COUNT(*) AS set_count
	FROM SessionSets
	GROUP BY session_exercise_id
) sc ON sc.session_exercise_id = se.id
JOIN ExerciseMuscles em ON em.exercise_id = se.exercise_id
JOIN Muscles m ON em.muscle_id = m.id
JOIN MuscleGroups mg ON m.muscle_group_id = mg.id
GROUP BY ws.id, mg.id;
`

// CreateSchema creates all base tables and views that do not exist yet.
// Calling it on an existing schema is a no-op.
func (d *DB) CreateSchema(ctx context.Context) error {
	steps := []struct {
		name string
		sql  string
	}{
		{"general tables", generalTables},
		{"user tables", userTables},
		{"workout tables", workoutTables},
		{"data views", dataViews},
	}
	for _, step := range steps {
		if _, err := d.q.ExecContext(ctx, step.sql); err != nil {
			return fmt.Errorf("create schema: %s: %w", step.name, err)
		}
	}
	return nil
}

// DropSchema removes all views and base tables, children before parents.
// Missing objects are ignored.
func (d *DB) DropSchema(ctx context.Context) error {
	for _, v := range Views {
		if _, err := d.q.ExecContext(ctx, "DROP VIEW IF EXISTS "+v); err != nil {
			return fmt.Errorf("drop schema: view %s: %w", v, err)
		}
	}
	for i := len(BaseTables) - 1; i >= 0; i-- {
		if _, err := d.q.ExecContext(ctx, "DROP TABLE IF EXISTS "+BaseTables[i]); err != nil {
			return fmt.Errorf("drop schema: table %s: %w", BaseTables[i], err)
		}
	}
	return nil
}

// SchemaObjects returns the names of all tables and views, keyed by name with
// their type, excluding SQLite internals.
func (d *DB) SchemaObjects(ctx context.Context) (map[string]string, error) {
	rows, err := d.q.QueryContext(ctx,
		`SELECT name, type FROM sqlite_master WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%'`)
	if err != nil {
		return nil, fmt.Errorf("list schema objects: %w", err)
	}
	defer rows.Close()

	objects := make(map[string]string)
	for rows.Next() {
		var name, typ string
		if err := rows.Scan(&name, &typ); err != nil {
			return nil, fmt.Errorf("scan schema object: %w", err)
		}
		objects[name] = typ
	}
	return objects, rows.Err()
}
