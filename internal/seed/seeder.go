// ABOUTME: Writes a Dataset into an empty schema, resolving names to ids.
// ABOUTME: Unresolvable references are skipped and reported; storage errors abort.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/harperreed/lift/internal/models"
	"github.com/harperreed/lift/internal/storage"
)

// Kind classifies a skipped seed record.
type Kind string

const (
	KindMuscle          Kind = "muscle"
	KindExercise        Kind = "exercise"
	KindExerciseMuscle  Kind = "exercise_muscle"
	KindRoutineExercise Kind = "routine_exercise"
	KindSplitDay        Kind = "split_day"
)

// Skip describes one seed record that could not be resolved.
type Skip struct {
	Kind   Kind   `json:"kind"`
	Name   string `json:"name"`
	Parent string `json:"parent,omitempty"`
	Reason string `json:"reason"`
}

func (s Skip) String() string {
	if s.Parent != "" {
		return fmt.Sprintf("%s %q in %q: %s", s.Kind, s.Name, s.Parent, s.Reason)
	}
	return fmt.Sprintf("%s %q: %s", s.Kind, s.Name, s.Reason)
}

// Report summarizes a seeding pass.
type Report struct {
	UserID          int64  `json:"user_id"`
	MuscleGroups    int    `json:"muscle_groups"`
	Muscles         int    `json:"muscles"`
	Equipment       int    `json:"equipment"`
	Exercises       int    `json:"exercises"`
	ExerciseMuscles int    `json:"exercise_muscles"`
	Routines        int    `json:"routines"`
	Splits          int    `json:"splits"`
	Skipped         []Skip `json:"skipped,omitempty"`
}

// Seeder writes a dataset through a storage handle.
type Seeder struct {
	db     *storage.DB
	data   *Dataset
	logger *log.Logger
}

// NewSeeder creates a seeder. A nil logger uses the package default.
func NewSeeder(db *storage.DB, data *Dataset, logger *log.Logger) *Seeder {
	if logger == nil {
		logger = log.Default()
	}
	return &Seeder{db: db, data: data, logger: logger}
}

// Run seeds everything in one transaction: the default user and profile,
// muscle groups, muscles, equipment, exercises, exercise muscle links, sample
// routines with sets, and sample splits.
func (s *Seeder) Run(ctx context.Context) (*Report, error) {
	report := &Report{}
	err := s.db.InTx(ctx, func(tx *storage.DB) error {
		steps := []struct {
			name string
			fn   func(context.Context, *storage.DB, *Report) error
		}{
			{"user", s.seedUser},
			{"muscle groups", s.seedMuscleGroups},
			{"muscles", s.seedMuscles},
			{"equipment", s.seedEquipment},
			{"exercises", s.seedExercises},
			{"exercise muscles", s.seedExerciseMuscles},
			{"routines", s.seedRoutines},
			{"splits", s.seedSplits},
		}
		for _, step := range steps {
			if err := step.fn(ctx, tx, report); err != nil {
				return fmt.Errorf("seed %s: %w", step.name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, skip := range report.Skipped {
		s.logger.Warn("seed record skipped", "kind", skip.Kind, "name", skip.Name, "parent", skip.Parent, "reason", skip.Reason)
	}
	s.logger.Info("seeded reference data",
		"muscle_groups", report.MuscleGroups,
		"exercises", report.Exercises,
		"routines", report.Routines,
		"skipped", len(report.Skipped))
	return report, nil
}

func (r *Report) skip(kind Kind, name, parent, reason string) {
	r.Skipped = append(r.Skipped, Skip{Kind: kind, Name: name, Parent: parent, Reason: reason})
}

func (s *Seeder) seedUser(ctx context.Context, tx *storage.DB, r *Report) error {
	u := s.data.User
	id, err := tx.InsertUser(ctx, &models.User{
		Username: u.Username,
		Name:     u.Name,
		Email:    u.Email,
		Password: u.Password,
	})
	if err != nil {
		return err
	}
	stats := u.Stats
	stats.UserID = id
	if err := tx.UpsertProfileStats(ctx, &stats); err != nil {
		return err
	}
	r.UserID = id
	return nil
}

func (s *Seeder) seedMuscleGroups(ctx context.Context, tx *storage.DB, r *Report) error {
	for _, name := range s.data.MuscleGroups {
		if _, err := tx.InsertMuscleGroup(ctx, name); err != nil {
			return err
		}
		r.MuscleGroups++
	}
	return nil
}

func (s *Seeder) seedMuscles(ctx context.Context, tx *storage.DB, r *Report) error {
	groups, err := tx.MuscleGroupIDs(ctx)
	if err != nil {
		return err
	}
	for _, m := range s.data.Muscles {
		groupID, ok := groups[m.MuscleGroup]
		if !ok {
			r.skip(KindMuscle, m.Name, "", fmt.Sprintf("muscle group %q not found", m.MuscleGroup))
			continue
		}
		if _, err := tx.InsertMuscle(ctx, m.Name, groupID); err != nil {
			return err
		}
		r.Muscles++
	}
	return nil
}

func (s *Seeder) seedEquipment(ctx context.Context, tx *storage.DB, r *Report) error {
	for _, name := range s.data.Equipment {
		if _, err := tx.InsertEquipment(ctx, name); err != nil {
			return err
		}
		r.Equipment++
	}
	return nil
}

func (s *Seeder) seedExercises(ctx context.Context, tx *storage.DB, r *Report) error {
	groups, err := tx.MuscleGroupIDs(ctx)
	if err != nil {
		return err
	}
	equipment, err := tx.EquipmentIDs(ctx)
	if err != nil {
		return err
	}

	for _, ex := range s.data.Exercises {
		groupID, groupOK := groups[ex.MuscleGroup]
		equipmentID, equipmentOK := equipment[ex.Equipment]
		if !groupOK {
			r.skip(KindExercise, ex.Title, "", fmt.Sprintf("muscle group %q not found", ex.MuscleGroup))
		}
		if !equipmentOK {
			r.skip(KindExercise, ex.Title, "", fmt.Sprintf("equipment %q not found", ex.Equipment))
		}
		if !groupOK || !equipmentOK {
			continue
		}

		if _, err := tx.InsertExercise(ctx, ex.Title, equipmentID, groupID); err != nil {
			return err
		}
		r.Exercises++
	}
	return nil
}

// seedExerciseMuscles links exercises to the muscles they work. Links of an
// exercise that was itself skipped are dropped without a second report.
func (s *Seeder) seedExerciseMuscles(ctx context.Context, tx *storage.DB, r *Report) error {
	muscles, err := tx.MuscleIDs(ctx)
	if err != nil {
		return err
	}

	for _, ex := range s.data.Exercises {
		if len(ex.Muscles) == 0 {
			continue
		}
		exerciseID, err := tx.ExerciseIDByTitleAndEquipment(ctx, ex.Title, ex.Equipment)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}

		for _, m := range ex.Muscles {
			muscleID, ok := muscles[m.Name]
			if !ok {
				r.skip(KindExerciseMuscle, m.Name, ex.Title, "muscle not found")
				continue
			}
			if m.Intensity < 0 {
				r.skip(KindExerciseMuscle, m.Name, ex.Title, fmt.Sprintf("negative intensity %g", m.Intensity))
				continue
			}
			if _, err := tx.InsertExerciseMuscle(ctx, exerciseID, muscleID, m.Intensity); err != nil {
				return err
			}
			r.ExerciseMuscles++
		}
	}
	return nil
}

func (s *Seeder) seedRoutines(ctx context.Context, tx *storage.DB, r *Report) error {
	for _, routine := range s.data.Routines {
		routineID, err := tx.InsertRoutine(ctx, routine.Title, r.UserID)
		if err != nil {
			return err
		}
		r.Routines++

		for _, ex := range routine.Exercises {
			exerciseID, err := tx.ExerciseIDByTitleAndEquipment(ctx, ex.Title, ex.Equipment)
			if errors.Is(err, storage.ErrNotFound) {
				r.skip(KindRoutineExercise, fmt.Sprintf("%s (%s)", ex.Title, ex.Equipment), routine.Title, "exercise not found")
				continue
			}
			if err != nil {
				return err
			}

			reID, err := tx.InsertRoutineExercise(ctx, routineID, exerciseID)
			if err != nil {
				return err
			}
			for i, set := range ex.Sets {
				order := set.Order
				if order == 0 {
					order = i + 1
				}
				if _, err := tx.InsertExerciseSet(ctx, reID, order, set.Weight, set.Reps); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (s *Seeder) seedSplits(ctx context.Context, tx *storage.DB, r *Report) error {
	for _, split := range s.data.Splits {
		splitID, err := tx.InsertSplit(ctx, split.Name, r.UserID, split.Active)
		if err != nil {
			return err
		}
		r.Splits++

		for i, day := range split.Days {
			var routineID *int64
			if day != models.RestDay {
				id, err := tx.RoutineIDByTitle(ctx, r.UserID, day)
				if errors.Is(err, storage.ErrNotFound) {
					r.skip(KindSplitDay, day, split.Name, fmt.Sprintf("routine for day %d not found", i+1))
					continue
				}
				if err != nil {
					return err
				}
				routineID = &id
			}
			if _, err := tx.InsertSplitRoutine(ctx, splitID, i+1, routineID); err != nil {
				return err
			}
		}
	}
	return nil
}
