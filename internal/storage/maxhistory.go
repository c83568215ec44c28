// ABOUTME: Append-only estimated one-rep-max ledger per user and exercise.
// ABOUTME: Rows are only ever inserted; the current best is the column maximum.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/lift/internal/models"
)

// PreviousMaxOneRepMax returns the best recorded estimated 1RM for a user and
// exercise, or 0 when nothing has been recorded.
func (d *DB) PreviousMaxOneRepMax(ctx context.Context, userID, exerciseID int64) (float64, error) {
	var best float64
	err := d.q.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(one_rep_max), 0)
		FROM ExerciseMaxHistory
		WHERE user_id = ? AND exercise_id = ?
	`, userID, exerciseID).Scan(&best)
	if err != nil {
		return 0, fmt.Errorf("previous max 1rm: %w", err)
	}
	return best, nil
}

// InsertMaxHistory appends a ledger row.
func (d *DB) InsertMaxHistory(ctx context.Context, userID, exerciseID int64, oneRepMax float64, at time.Time) (int64, error) {
	id, err := d.insert(ctx, `
		INSERT INTO ExerciseMaxHistory (user_id, exercise_id, one_rep_max, calculation_date)
		VALUES (?, ?, ?, ?)
	`, userID, exerciseID, oneRepMax, formatTime(at))
	if err != nil {
		return 0, fmt.Errorf("insert max history: %w", err)
	}
	return id, nil
}

// MaxHistory returns the ledger for a user and exercise, oldest first.
func (d *DB) MaxHistory(ctx context.Context, userID, exerciseID int64) ([]models.MaxHistoryEntry, error) {
	rows, err := d.q.QueryContext(ctx, `
		SELECT id, user_id, exercise_id, one_rep_max, calculation_date
		FROM ExerciseMaxHistory
		WHERE user_id = ? AND exercise_id = ?
		ORDER BY id
	`, userID, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("max history: %w", err)
	}
	defer rows.Close()

	var entries []models.MaxHistoryEntry
	for rows.Next() {
		var e models.MaxHistoryEntry
		var date string
		if err := rows.Scan(&e.ID, &e.UserID, &e.ExerciseID, &e.OneRepMax, &date); err != nil {
			return nil, fmt.Errorf("scan max history: %w", err)
		}
		if e.CalculationDate, err = parseTime(date); err != nil {
			return nil, fmt.Errorf("parse calculation_date: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountMaxHistory returns the number of ledger rows for a user and exercise.
func (d *DB) CountMaxHistory(ctx context.Context, userID, exerciseID int64) (int, error) {
	var n int
	err := d.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ExerciseMaxHistory WHERE user_id = ? AND exercise_id = ?`,
		userID, exerciseID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count max history: %w", err)
	}
	return n, nil
}
