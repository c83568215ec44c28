// ABOUTME: Repository interface for workout data reads.
// ABOUTME: Defines the contract the state service and assistant surfaces read through.
package storage

import (
	"context"
	"time"

	"github.com/harperreed/lift/internal/models"
)

// Repository defines the read interface for workout data.
// This interface allows swapping implementations (e.g., for testing).
type Repository interface {
	// History operations
	ListHistory(ctx context.Context, userID int64, limit int) ([]models.History, error)
	GetHistory(ctx context.Context, sessionID int64) (*models.History, error)

	// Routine operations
	GetRoutineData(ctx context.Context, userID int64) ([]models.HistoryRoutine, error)
	GetSplitData(ctx context.Context, userID int64) ([]models.Split, error)
	ListExercises(ctx context.Context) ([]models.Exercise, error)

	// Statistics
	WorkoutFrequency(ctx context.Context, userID int64, since time.Time) ([]WorkoutFrequency, error)
	WorkoutCounts(ctx context.Context, userID int64, now time.Time) (*WorkoutCounts, error)
	TopExercise(ctx context.Context, userID int64) (*TopExercise, error)
	MaxHistory(ctx context.Context, userID, exerciseID int64) ([]models.MaxHistoryEntry, error)
	MuscleGroupSoreness(ctx context.Context, userID int64, now time.Time) ([]MuscleSoreness, error)

	// Export
	GetAllData(ctx context.Context, userID int64) (*ExportData, error)

	// Lifecycle
	Close() error
}

var _ Repository = (*DB)(nil)
