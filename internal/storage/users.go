// ABOUTME: User and profile statistics storage.
// ABOUTME: Bodyweight for 1RM substitution is read from the free-text profile weight.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/lift/internal/models"
)

// InsertUser stores a user and returns its id.
func (d *DB) InsertUser(ctx context.Context, u *models.User) (int64, error) {
	createdAt := u.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	id, err := d.insert(ctx,
		`INSERT INTO Users (username, name, email, password, createdAt) VALUES (?, ?, ?, ?, ?)`,
		u.Username, u.Name, u.Email, u.Password, formatTime(createdAt))
	if err != nil {
		return 0, fmt.Errorf("insert user %q: %w", u.Username, err)
	}
	u.ID = id
	u.CreatedAt = createdAt.UTC().Truncate(time.Second)
	return id, nil
}

// GetUser returns a user by id.
func (d *DB) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	var email sql.NullString
	var createdAt string
	err := d.q.QueryRowContext(ctx,
		`SELECT id, username, name, email, password, createdAt FROM Users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Username, &u.Name, &email, &u.Password, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.Email = email.String
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse user createdAt: %w", err)
	}
	return &u, nil
}

// FirstUserID returns the lowest user id, which is the seeded default user.
func (d *DB) FirstUserID(ctx context.Context) (int64, error) {
	var id int64
	err := d.q.QueryRowContext(ctx, `SELECT id FROM Users ORDER BY id LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("first user: %w", err)
	}
	return id, nil
}

// UpsertProfileStats stores the profile stats for a user, replacing any previous row.
func (d *DB) UpsertProfileStats(ctx context.Context, s *models.UserProfileStats) error {
	_, err := d.q.ExecContext(ctx, `
		INSERT INTO UserProfileStats (user_id, height, weight, bodyFat, favoriteExercise, memberSince, goals)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			height = excluded.height,
			weight = excluded.weight,
			bodyFat = excluded.bodyFat,
			favoriteExercise = excluded.favoriteExercise,
			memberSince = excluded.memberSince,
			goals = excluded.goals
	`, s.UserID, s.Height, s.Weight, s.BodyFat, s.FavoriteExercise, s.MemberSince, s.Goals)
	if err != nil {
		return fmt.Errorf("upsert profile stats: %w", err)
	}
	return nil
}

// GetProfileStats returns the profile stats for a user.
func (d *DB) GetProfileStats(ctx context.Context, userID int64) (*models.UserProfileStats, error) {
	var height, weight, bodyFat, favorite, since, goals sql.NullString
	err := d.q.QueryRowContext(ctx, `
		SELECT height, weight, bodyFat, favoriteExercise, memberSince, goals
		FROM UserProfileStats WHERE user_id = ?
	`, userID).Scan(&height, &weight, &bodyFat, &favorite, &since, &goals)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile stats: %w", err)
	}
	return &models.UserProfileStats{
		UserID:           userID,
		Height:           height.String,
		Weight:           weight.String,
		BodyFat:          bodyFat.String,
		FavoriteExercise: favorite.String,
		MemberSince:      since.String,
		Goals:            goals.String,
	}, nil
}

// ProfileWeight returns the raw profile weight text for a user, or "" when the
// user has no profile.
func (d *DB) ProfileWeight(ctx context.Context, userID int64) (string, error) {
	stats, err := d.GetProfileStats(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return stats.Weight, nil
}
