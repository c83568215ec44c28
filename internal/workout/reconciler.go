// ABOUTME: Applies an edited workout to its persisted session rows.
// ABOUTME: Chooses between metadata-only, set-only and full exercise replacement.
package workout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/lift/internal/events"
	"github.com/harperreed/lift/internal/models"
	"github.com/harperreed/lift/internal/storage"
	"github.com/harperreed/lift/internal/strength"
)

// Options tune a Reconciler.
type Options struct {
	// DefaultBodyweight is used when the user's profile has no parsable weight.
	// Zero means strength.DefaultBodyweight.
	DefaultBodyweight float64
	// Now stamps max-history rows for sessions without an end time.
	Now func() time.Time
}

// Reconciler writes History edits back to storage.
type Reconciler struct {
	db         *storage.DB
	events     events.Publisher
	logger     *log.Logger
	bodyweight float64
	now        func() time.Time
}

// NewReconciler creates a Reconciler. A nil publisher drops refresh events and
// a nil logger uses the package default.
func NewReconciler(db *storage.DB, pub events.Publisher, logger *log.Logger, opts Options) *Reconciler {
	if pub == nil {
		pub = events.Nop{}
	}
	if logger == nil {
		logger = log.Default()
	}
	if opts.DefaultBodyweight <= 0 {
		opts.DefaultBodyweight = strength.DefaultBodyweight
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Reconciler{
		db:         db,
		events:     pub,
		logger:     logger,
		bodyweight: opts.DefaultBodyweight,
		now:        opts.Now,
	}
}

// Reconcile brings the rows of existing's session in line with proposed.
//
// Metadata is always rewritten. If the routine, including its exercise list, is
// equal by value nothing else happens. If the exercise identities differ, every
// exercise and set row of the session is replaced and max-history is evaluated
// per exercise. Otherwise only the set rows of each exercise are replaced and
// max-history is left alone. Everything runs in one transaction.
func (r *Reconciler) Reconcile(ctx context.Context, existing, proposed *models.History) (*Outcome, error) {
	if existing == nil || proposed == nil {
		return nil, errors.New("reconcile: nil history")
	}
	if existing.ID == 0 {
		return nil, errors.New("reconcile: existing session has no id")
	}
	if proposed.ID != 0 && proposed.ID != existing.ID {
		return nil, fmt.Errorf("reconcile: proposed session %d does not match existing %d", proposed.ID, existing.ID)
	}

	userID := proposed.UserID
	if userID == 0 {
		userID = existing.UserID
	}
	out := &Outcome{SessionID: existing.ID, State: Unchanged}
	if metadataChanged(existing, proposed) {
		out.State = MetadataDirty
	}

	err := r.db.InTx(ctx, func(tx *storage.DB) error {
		if err := tx.UpdateWorkoutSession(ctx, sessionRow(existing.ID, userID, proposed)); err != nil {
			return err
		}

		if models.RoutinesEqual(existing.Routine, proposed.Routine) {
			return nil
		}

		bodyweight, err := r.userBodyweight(ctx, tx, userID)
		if err != nil {
			return err
		}

		if !models.SameExerciseIdentities(existing.Routine.Exercises, proposed.Routine.Exercises) {
			out.State = ExercisesDirty
			if err := tx.ClearSessionSetsByWorkout(ctx, existing.ID); err != nil {
				return err
			}
			if err := tx.ClearSessionExercises(ctx, existing.ID); err != nil {
				return err
			}
			return r.insertExercises(ctx, tx, existing.ID, userID, proposed, bodyweight, out)
		}

		// Same exercises: keep the session exercise rows, replace their sets.
		out.State = SetsDirty
		return r.replaceSets(ctx, tx, existing.ID, proposed.Routine.Exercises, bodyweight, out)
	})
	if err != nil {
		r.logger.Error("reconcile failed", "session_id", existing.ID, "err", err)
		return nil, fmt.Errorf("reconcile session %d: %w", existing.ID, err)
	}

	r.events.Publish(events.HistoryRefreshed, userID, existing.ID)
	r.logger.Debug("reconciled session",
		"session_id", existing.ID,
		"state", out.State,
		"sets", out.SetsWritten,
		"records", len(out.Records))
	return out, nil
}

// ReconcileByID loads the stored session proposed.ID and reconciles against it.
func (r *Reconciler) ReconcileByID(ctx context.Context, proposed *models.History) (*Outcome, error) {
	if proposed == nil || proposed.ID == 0 {
		return nil, errors.New("reconcile: proposed session has no id")
	}
	existing, err := r.db.GetHistory(ctx, proposed.ID)
	if err != nil {
		return nil, fmt.Errorf("load session %d: %w", proposed.ID, err)
	}
	return r.Reconcile(ctx, existing, proposed)
}

// RecordSession stores a newly finished workout. Exercises, sets and
// max-history are written the same way as a full exercise replacement.
// proposed.ID is set on success.
func (r *Reconciler) RecordSession(ctx context.Context, proposed *models.History) (*Outcome, error) {
	if proposed == nil {
		return nil, errors.New("record session: nil history")
	}
	if proposed.UserID == 0 {
		return nil, errors.New("record session: missing user id")
	}

	out := &Outcome{State: ExercisesDirty}
	err := r.db.InTx(ctx, func(tx *storage.DB) error {
		id, err := tx.InsertWorkoutSession(ctx, sessionRow(0, proposed.UserID, proposed))
		if err != nil {
			return err
		}
		out.SessionID = id

		bodyweight, err := r.userBodyweight(ctx, tx, proposed.UserID)
		if err != nil {
			return err
		}
		return r.insertExercises(ctx, tx, id, proposed.UserID, proposed, bodyweight, out)
	})
	if err != nil {
		r.logger.Error("record session failed", "user_id", proposed.UserID, "err", err)
		return nil, fmt.Errorf("record session: %w", err)
	}

	proposed.ID = out.SessionID
	r.events.Publish(events.HistoryRefreshed, proposed.UserID, out.SessionID)
	r.logger.Info("recorded session", "session_id", out.SessionID, "exercises", out.ExercisesWritten, "records", len(out.Records))
	return out, nil
}

// DeleteSession removes a session's sets, then its exercises, then the session
// row, in one transaction. Returns storage.ErrNotFound for an unknown id.
func (r *Reconciler) DeleteSession(ctx context.Context, sessionID int64) error {
	var userID int64
	err := r.db.InTx(ctx, func(tx *storage.DB) error {
		session, err := tx.GetWorkoutSession(ctx, sessionID)
		if err != nil {
			return err
		}
		userID = session.UserID

		if err := tx.ClearSessionSetsByWorkout(ctx, sessionID); err != nil {
			return err
		}
		if err := tx.ClearSessionExercises(ctx, sessionID); err != nil {
			return err
		}
		return tx.DeleteWorkoutSession(ctx, sessionID)
	})
	if err != nil {
		return fmt.Errorf("delete session %d: %w", sessionID, err)
	}

	r.events.Publish(events.HistoryRefreshed, userID, sessionID)
	r.logger.Info("deleted session", "session_id", sessionID)
	return nil
}

// insertExercises writes every proposed exercise with its sets and appends a
// max-history row for each exercise whose best set beats the recorded best.
func (r *Reconciler) insertExercises(ctx context.Context, tx *storage.DB, sessionID, userID int64, proposed *models.History, bodyweight float64, out *Outcome) error {
	at := r.now().UTC()
	if proposed.EndTime != nil {
		at = *proposed.EndTime
	}

	for _, e := range proposed.Routine.Exercises {
		seID, err := tx.InsertSessionExercise(ctx, sessionID, e.ExerciseID)
		if err != nil {
			return err
		}
		out.ExercisesWritten++

		equipment, err := r.equipmentOf(ctx, tx, e)
		if err != nil {
			return err
		}
		best, err := r.insertSets(ctx, tx, seID, equipment, e.Sets, bodyweight, out)
		if err != nil {
			return err
		}

		previous, err := tx.PreviousMaxOneRepMax(ctx, userID, e.ExerciseID)
		if err != nil {
			return err
		}
		if best > previous {
			if _, err := tx.InsertMaxHistory(ctx, userID, e.ExerciseID, best, at); err != nil {
				return err
			}
			out.Records = append(out.Records, Record{ExerciseID: e.ExerciseID, Previous: previous, OneRepMax: best})
		}
	}
	return nil
}

// replaceSets clears and rewrites the sets of each exercise in place. An
// exercise with no stored row is logged and skipped.
func (r *Reconciler) replaceSets(ctx context.Context, tx *storage.DB, sessionID int64, exercises []models.HistoryExercise, bodyweight float64, out *Outcome) error {
	stored, err := tx.SessionExercises(ctx, sessionID)
	if err != nil {
		return err
	}
	used := make(map[int64]bool, len(stored))

	for i, e := range exercises {
		seID, ok := matchSessionExercise(stored, used, i, e)
		if !ok {
			r.logger.Warn("session exercise not found, skipping set update",
				"session_id", sessionID, "exercise_id", e.ExerciseID, "title", e.Title)
			out.Skipped = append(out.Skipped, e.ExerciseID)
			continue
		}
		used[seID] = true

		if err := tx.ClearSessionSets(ctx, seID); err != nil {
			return err
		}
		equipment, err := r.equipmentOf(ctx, tx, e)
		if err != nil {
			return err
		}
		if _, err := r.insertSets(ctx, tx, seID, equipment, e.Sets, bodyweight, out); err != nil {
			return err
		}
	}
	return nil
}

// matchSessionExercise picks the stored row for the exercise at position i. The
// row id carried by a loaded exercise wins, then the row at the same position,
// then the first unclaimed row of the same exercise. A row is never matched twice,
// so an exercise performed twice in one session keeps two distinct rows.
func matchSessionExercise(stored []models.SessionExercise, used map[int64]bool, i int, e models.HistoryExercise) (int64, bool) {
	if e.SessionExerciseID != 0 {
		for _, se := range stored {
			if se.ID == e.SessionExerciseID && se.ExerciseID == e.ExerciseID && !used[se.ID] {
				return se.ID, true
			}
		}
	}
	if i < len(stored) && stored[i].ExerciseID == e.ExerciseID && !used[stored[i].ID] {
		return stored[i].ID, true
	}
	for _, se := range stored {
		if se.ExerciseID == e.ExerciseID && !used[se.ID] {
			return se.ID, true
		}
	}
	return 0, false
}

// insertSets writes sets in list order and returns the best estimated 1RM.
func (r *Reconciler) insertSets(ctx context.Context, tx *storage.DB, seID int64, equipment string, sets []models.HistorySet, bodyweight float64, out *Outcome) (float64, error) {
	var best float64
	for i, s := range sets {
		oneRM := strength.SetOneRepMax(equipment, s.Weight, s.Reps, bodyweight)
		row := &models.SessionSet{
			SessionExerciseID: seID,
			SetOrder:          i + 1,
			Weight:            s.Weight,
			Reps:              s.Reps,
			EstimatedOneRM:    oneRM,
			Completed:         true,
			RestTime:          s.RestTime,
		}
		if _, err := tx.InsertSessionSet(ctx, row); err != nil {
			return 0, err
		}
		out.SetsWritten++
		if oneRM > best {
			best = oneRM
		}
	}
	return best, nil
}

// equipmentOf returns the exercise's equipment name, reading the exercise row
// when the caller left it blank.
func (r *Reconciler) equipmentOf(ctx context.Context, tx *storage.DB, e models.HistoryExercise) (string, error) {
	if e.Equipment != "" {
		return e.Equipment, nil
	}
	ex, err := tx.GetExercise(ctx, e.ExerciseID)
	if errors.Is(err, storage.ErrNotFound) {
		return "", fmt.Errorf("exercise %d: %w", e.ExerciseID, err)
	}
	if err != nil {
		return "", err
	}
	return ex.Equipment, nil
}

func (r *Reconciler) userBodyweight(ctx context.Context, tx *storage.DB, userID int64) (float64, error) {
	weight, err := tx.ProfileWeight(ctx, userID)
	if err != nil {
		return 0, err
	}
	if bw := strength.ParseBodyweight(weight); bw > 0 {
		return bw, nil
	}
	return r.bodyweight, nil
}

func sessionRow(id, userID int64, h *models.History) *models.WorkoutSession {
	s := &models.WorkoutSession{
		ID:        id,
		UserID:    userID,
		StartTime: h.StartTime,
		EndTime:   h.EndTime,
		Notes:     h.Notes,
	}
	if h.Routine.ID != models.NoRoutine {
		routineID := h.Routine.ID
		s.RoutineID = &routineID
	}
	return s
}

func metadataChanged(a, b *models.History) bool {
	if b.UserID != 0 && a.UserID != b.UserID {
		return true
	}
	if a.Routine.ID != b.Routine.ID || !a.StartTime.Equal(b.StartTime) {
		return true
	}
	if (a.EndTime == nil) != (b.EndTime == nil) || (a.EndTime != nil && !a.EndTime.Equal(*b.EndTime)) {
		return true
	}
	if (a.Notes == nil) != (b.Notes == nil) || (a.Notes != nil && *a.Notes != *b.Notes) {
		return true
	}
	return false
}
