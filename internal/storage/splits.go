// ABOUTME: Split storage: ordered routine cycles, active split and completions.
// ABOUTME: A split day with a NULL routine is a rest day.
package storage

import (
	"context"
	"fmt"

	"github.com/blockloop/scan"
	"github.com/harperreed/lift/internal/models"
)

// InsertSplit stores a split owned by a user.
func (d *DB) InsertSplit(ctx context.Context, name string, userID int64, active bool) (int64, error) {
	id, err := d.insert(ctx,
		`INSERT INTO Splits (name, user_id, is_active) VALUES (?, ?, ?)`, name, userID, active)
	if err != nil {
		return 0, fmt.Errorf("insert split %q: %w", name, err)
	}
	return id, nil
}

// InsertSplitRoutine assigns a routine (nil for rest) to one day of a split.
func (d *DB) InsertSplitRoutine(ctx context.Context, splitID int64, order int, routineID *int64) (int64, error) {
	id, err := d.insert(ctx,
		`INSERT INTO SplitRoutines (split_id, split_order, routine_id) VALUES (?, ?, ?)`,
		splitID, order, nullInt64(routineID))
	if err != nil {
		return 0, fmt.Errorf("insert split routine: %w", err)
	}
	return id, nil
}

// SetActiveSplit makes one split the user's only active split.
func (d *DB) SetActiveSplit(ctx context.Context, userID, splitID int64) error {
	return d.InTx(ctx, func(tx *DB) error {
		if _, err := tx.q.ExecContext(ctx,
			`UPDATE Splits SET is_active = 0 WHERE user_id = ?`, userID); err != nil {
			return fmt.Errorf("clear active split: %w", err)
		}
		res, err := tx.q.ExecContext(ctx,
			`UPDATE Splits SET is_active = 1 WHERE id = ? AND user_id = ?`, splitID, userID)
		if err != nil {
			return fmt.Errorf("set active split: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// RecordSplitCompletion logs one full pass through a split.
func (d *DB) RecordSplitCompletion(ctx context.Context, userID, splitID int64) (int64, error) {
	id, err := d.insert(ctx, `
		INSERT INTO SplitCompletions (user_id, split_id, completion_date, completed_cycles)
		VALUES (?, ?, CURRENT_TIMESTAMP, 1)
	`, userID, splitID)
	if err != nil {
		return 0, fmt.Errorf("record split completion: %w", err)
	}
	return id, nil
}

// SplitCompletionCount returns the number of completed cycles of a split.
func (d *DB) SplitCompletionCount(ctx context.Context, splitID int64) (int, error) {
	var n int
	err := d.q.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(completed_cycles), 0) FROM SplitCompletions WHERE split_id = ?`, splitID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count split completions: %w", err)
	}
	return n, nil
}

// GetSplitData returns a user's splits with their days in order.
func (d *DB) GetSplitData(ctx context.Context, userID int64) ([]models.Split, error) {
	rows, err := d.q.QueryContext(ctx,
		`SELECT id, name, user_id, is_active FROM Splits WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list splits: %w", err)
	}
	var splits []models.Split
	for rows.Next() {
		var s models.Split
		if err := rows.Scan(&s.ID, &s.Name, &s.UserID, &s.IsActive); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan split: %w", err)
		}
		splits = append(splits, s)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("list splits: %w", err)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list splits: %w", err)
	}

	for i := range splits {
		days, err := d.splitDays(ctx, splits[i].ID)
		if err != nil {
			return nil, err
		}
		splits[i].Days = days
	}
	return splits, nil
}

func (d *DB) splitDays(ctx context.Context, splitID int64) ([]models.SplitRoutine, error) {
	rows, err := d.q.QueryContext(ctx, `
		SELECT sr.id, sr.split_id, sr.split_order, sr.routine_id,
			COALESCE(r.title, ?) AS routine_title
		FROM SplitRoutines sr
		LEFT JOIN Routines r ON sr.routine_id = r.id
		WHERE sr.split_id = ?
		ORDER BY sr.split_order
	`, models.RestDay, splitID)
	if err != nil {
		return nil, fmt.Errorf("list split days: %w", err)
	}
	defer rows.Close()

	var days []models.SplitRoutine
	if err := scan.Rows(&days, rows); err != nil {
		return nil, fmt.Errorf("scan split days: %w", err)
	}
	return days, nil
}

// SplitCycleLength is one row of the SplitCycleLengths view.
type SplitCycleLength struct {
	SplitID   int64 `db:"split_id" json:"split_id"`
	CycleDays int   `db:"cycle_days" json:"cycle_days"`
}

// SplitCycleLengths returns the cycle length in days of each of a user's splits.
func (d *DB) SplitCycleLengths(ctx context.Context, userID int64) ([]SplitCycleLength, error) {
	rows, err := d.q.QueryContext(ctx, `
		SELECT scl.split_id, scl.cycle_days
		FROM SplitCycleLengths scl
		JOIN Splits s ON s.id = scl.split_id
		WHERE s.user_id = ?
		ORDER BY scl.split_id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("split cycle lengths: %w", err)
	}
	defer rows.Close()

	var out []SplitCycleLength
	if err := scan.Rows(&out, rows); err != nil {
		return nil, fmt.Errorf("scan split cycle lengths: %w", err)
	}
	return out, nil
}
