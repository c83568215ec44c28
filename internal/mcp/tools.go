// ABOUTME: MCP tool implementations for workout history.
// ABOUTME: Listing, viewing, editing, recording and deleting sessions plus strength stats.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/lift/internal/models"
	"github.com/harperreed/lift/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	// list_history
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_history",
		Description: "List recent workout sessions, most recent first",
	}, s.handleListHistory)

	// get_workout
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_workout",
		Description: "Get a workout session with its exercises and sets",
	}, s.handleGetWorkout)

	// update_workout
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "update_workout",
		Description: "Edit a workout's notes, exercise list or individual sets and save it",
	}, s.handleUpdateWorkout)

	// record_workout
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "record_workout",
		Description: "Record a finished workout session",
	}, s.handleRecordWorkout)

	// delete_workout
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_workout",
		Description: "Delete a workout session with all its exercises and sets",
	}, s.handleDeleteWorkout)

	// workout_stats
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "workout_stats",
		Description: "Workout counts, most trained exercise, recent frequency and muscle soreness",
	}, s.handleWorkoutStats)

	// max_history
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "max_history",
		Description: "Estimated one-rep-max records for an exercise with the trend per day",
	}, s.handleMaxHistory)
}

// Tool input/output types

type listHistoryInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type historySummary struct {
	ID        int64   `json:"id"`
	Routine   string  `json:"routine,omitempty"`
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time,omitempty"`
	Exercises int     `json:"exercises"`
	Sets      int     `json:"sets"`
	Volume    float64 `json:"volume"`
	Notes     string  `json:"notes,omitempty"`
}

type workoutIDInput struct {
	ID int64 `json:"id" jsonschema:"Workout session ID"`
}

type setInput struct {
	Weight   float64 `json:"weight" jsonschema:"Weight lifted; 0 for bodyweight"`
	Reps     int     `json:"reps" jsonschema:"Repetitions"`
	RestTime *int    `json:"rest_time,omitempty" jsonschema:"Rest after the set in seconds"`
}

type exerciseInput struct {
	ExerciseID int64      `json:"exercise_id" jsonschema:"Exercise ID"`
	Sets       []setInput `json:"sets" jsonschema:"Sets in the order performed"`
}

type setEditInput struct {
	Exercise int     `json:"exercise" jsonschema:"Zero-based exercise position in the workout"`
	Set      int     `json:"set" jsonschema:"Zero-based set position within the exercise"`
	Field    string  `json:"field" jsonschema:"Field to change: weight or reps"`
	Value    float64 `json:"value" jsonschema:"New value"`
}

type updateWorkoutInput struct {
	ID        int64           `json:"id" jsonschema:"Workout session ID"`
	Notes     *string         `json:"notes,omitempty" jsonschema:"Replacement notes"`
	Exercises []exerciseInput `json:"exercises,omitempty" jsonschema:"Replacement exercise list"`
	Edits     []setEditInput  `json:"edits,omitempty" jsonschema:"Single set edits applied after any replacement"`
}

type recordWorkoutInput struct {
	RoutineID int64           `json:"routine_id,omitempty" jsonschema:"Routine the workout followed"`
	StartTime string          `json:"start_time,omitempty" jsonschema:"Start timestamp (ISO 8601), defaults to now"`
	EndTime   string          `json:"end_time,omitempty" jsonschema:"End timestamp (ISO 8601)"`
	Notes     string          `json:"notes,omitempty" jsonschema:"Workout notes"`
	Exercises []exerciseInput `json:"exercises" jsonschema:"Exercises performed"`
}

type recordOutput struct {
	ExerciseID int64   `json:"exercise_id"`
	Previous   float64 `json:"previous"`
	OneRepMax  float64 `json:"one_rep_max"`
}

type reconcileOutput struct {
	SessionID   int64          `json:"session_id"`
	State       string         `json:"state"`
	SetsWritten int            `json:"sets_written"`
	Records     []recordOutput `json:"records,omitempty"`
	Skipped     []int64        `json:"skipped,omitempty"`
	Message     string         `json:"message"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

type statsInput struct{}

type maxHistoryInput struct {
	ExerciseID int64 `json:"exercise_id" jsonschema:"Exercise ID"`
}

// Tool handlers

func (s *Server) handleListHistory(ctx context.Context, req *mcp.CallToolRequest, input listHistoryInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	history, err := s.repo.ListHistory(ctx, s.userID, input.Limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list history: %w", err)
	}

	if len(history) == 0 {
		return nil, map[string]interface{}{"message": "No workouts found."}, nil
	}

	summaries := make([]historySummary, 0, len(history))
	for i := range history {
		summaries = append(summaries, summarize(&history[i]))
	}
	return nil, summaries, nil
}

func summarize(h *models.History) historySummary {
	out := historySummary{
		ID:        h.ID,
		Routine:   h.Routine.Title,
		StartTime: h.StartTime.Format(time.RFC3339),
		Exercises: len(h.Routine.Exercises),
	}
	if h.EndTime != nil {
		out.EndTime = h.EndTime.Format(time.RFC3339)
	}
	if h.Notes != nil {
		out.Notes = *h.Notes
	}
	for _, e := range h.Routine.Exercises {
		out.Sets += len(e.Sets)
		for _, set := range e.Sets {
			out.Volume += set.Weight * float64(set.Reps)
		}
	}
	return out
}

func (s *Server) handleGetWorkout(ctx context.Context, req *mcp.CallToolRequest, input workoutIDInput) (*mcp.CallToolResult, any, error) {
	h, err := s.repo.GetHistory(ctx, input.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("workout not found: %d", input.ID)
	}

	return nil, h, nil
}

func (s *Server) handleUpdateWorkout(ctx context.Context, req *mcp.CallToolRequest, input updateWorkoutInput) (*mcp.CallToolResult, reconcileOutput, error) {
	existing, err := s.repo.GetHistory(ctx, input.ID)
	if err != nil {
		return nil, reconcileOutput{}, fmt.Errorf("workout not found: %d", input.ID)
	}

	proposed := existing.Clone()
	if input.Notes != nil {
		proposed.WithNotes(*input.Notes)
	}
	if input.Exercises != nil {
		proposed.Routine.Exercises = toExercises(input.Exercises, existing.Routine.Exercises)
	}
	for _, edit := range input.Edits {
		if edit.Exercise < 0 || edit.Exercise >= len(proposed.Routine.Exercises) {
			return nil, reconcileOutput{}, fmt.Errorf("exercise index %d out of range", edit.Exercise)
		}
		field, err := models.ParseSetField(edit.Field)
		if err != nil {
			return nil, reconcileOutput{}, err
		}
		if err := proposed.Routine.Exercises[edit.Exercise].UpdateSet(edit.Set, field, edit.Value); err != nil {
			return nil, reconcileOutput{}, err
		}
	}

	out, err := s.rec.Reconcile(ctx, existing, proposed)
	if err != nil {
		return nil, reconcileOutput{}, fmt.Errorf("failed to update workout: %w", err)
	}

	result := reconcileOutput{
		SessionID:   out.SessionID,
		State:       out.State.String(),
		SetsWritten: out.SetsWritten,
		Skipped:     out.Skipped,
		Message:     fmt.Sprintf("Updated workout %d (%s)", out.SessionID, out.State),
	}
	for _, r := range out.Records {
		result.Records = append(result.Records, recordOutput(r))
	}
	return nil, result, nil
}

// toExercises converts tool input to history exercises, carrying the title and
// equipment of exercises already in the workout.
func toExercises(in []exerciseInput, known []models.HistoryExercise) []models.HistoryExercise {
	names := make(map[int64]models.HistoryExercise, len(known))
	for _, e := range known {
		names[e.ExerciseID] = e
	}

	out := make([]models.HistoryExercise, 0, len(in))
	for _, e := range in {
		ex := models.HistoryExercise{ExerciseID: e.ExerciseID}
		if k, ok := names[e.ExerciseID]; ok {
			ex.Title = k.Title
			ex.Equipment = k.Equipment
			ex.MuscleGroup = k.MuscleGroup
		}
		for _, set := range e.Sets {
			ex.AddSet(set.Weight, set.Reps)
			ex.Sets[len(ex.Sets)-1].RestTime = set.RestTime
		}
		out = append(out, ex)
	}
	return out
}

func (s *Server) handleRecordWorkout(ctx context.Context, req *mcp.CallToolRequest, input recordWorkoutInput) (*mcp.CallToolResult, reconcileOutput, error) {
	if len(input.Exercises) == 0 {
		return nil, reconcileOutput{}, errors.New("a workout needs at least one exercise")
	}

	h := models.NewHistory(s.userID)
	h.StartTime = s.now().UTC().Truncate(time.Second)
	if input.StartTime != "" {
		t, err := parseTimestamp(input.StartTime)
		if err != nil {
			return nil, reconcileOutput{}, err
		}
		h.StartTime = t
	}
	if input.EndTime != "" {
		t, err := parseTimestamp(input.EndTime)
		if err != nil {
			return nil, reconcileOutput{}, err
		}
		h.WithEndTime(t)
	}
	if input.Notes != "" {
		h.WithNotes(input.Notes)
	}
	h.Routine.ID = input.RoutineID
	h.Routine.Exercises = toExercises(input.Exercises, nil)

	out, err := s.rec.RecordSession(ctx, h)
	if err != nil {
		return nil, reconcileOutput{}, fmt.Errorf("failed to record workout: %w", err)
	}

	result := reconcileOutput{
		SessionID:   out.SessionID,
		State:       out.State.String(),
		SetsWritten: out.SetsWritten,
		Message:     fmt.Sprintf("Recorded workout %d with %d sets", out.SessionID, out.SetsWritten),
	}
	for _, r := range out.Records {
		result.Records = append(result.Records, recordOutput(r))
	}
	return nil, result, nil
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t, err = time.ParseInLocation("2006-01-02 15:04", s, time.UTC)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp: %s", s)
	}
	return t.UTC(), nil
}

func (s *Server) handleDeleteWorkout(ctx context.Context, req *mcp.CallToolRequest, input workoutIDInput) (*mcp.CallToolResult, simpleOutput, error) {
	if err := s.rec.DeleteSession(ctx, input.ID); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete workout: %w", err)
	}

	return nil, simpleOutput{
		Message: fmt.Sprintf("Deleted workout: %d", input.ID),
	}, nil
}

func (s *Server) handleWorkoutStats(ctx context.Context, req *mcp.CallToolRequest, input statsInput) (*mcp.CallToolResult, any, error) {
	now := s.now()
	counts, err := s.repo.WorkoutCounts(ctx, s.userID, now)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to count workouts: %w", err)
	}
	frequency, err := s.repo.WorkoutFrequency(ctx, s.userID, now.AddDate(0, 0, -30))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load frequency: %w", err)
	}
	soreness, err := s.repo.MuscleGroupSoreness(ctx, s.userID, now)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load soreness: %w", err)
	}

	results := map[string]interface{}{
		"counts":    counts,
		"frequency": frequency,
		"soreness":  soreness,
	}
	top, err := s.repo.TopExercise(ctx, s.userID)
	switch {
	case err == nil:
		results["top_exercise"] = top
	case !errors.Is(err, storage.ErrNotFound):
		return nil, nil, fmt.Errorf("failed to load top exercise: %w", err)
	}

	return nil, results, nil
}

func (s *Server) handleMaxHistory(ctx context.Context, req *mcp.CallToolRequest, input maxHistoryInput) (*mcp.CallToolResult, any, error) {
	entries, err := s.repo.MaxHistory(ctx, s.userID, input.ExerciseID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load max history: %w", err)
	}
	if len(entries) == 0 {
		return nil, map[string]interface{}{"message": "No records for this exercise."}, nil
	}

	trend := storage.OneRepMaxTrend(entries)
	return nil, map[string]interface{}{
		"exercise_id": input.ExerciseID,
		"records":     entries,
		"best":        entries[len(entries)-1].OneRepMax,
		"trend":       trend,
	}, nil
}
