// ABOUTME: Export functionality for workout data.
// ABOUTME: Supports JSON, YAML, and Markdown export formats.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/lift/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportData represents the full export format for one user's workout data.
type ExportData struct {
	Version    string                   `json:"version" yaml:"version"`
	ExportedAt time.Time                `json:"exported_at" yaml:"exported_at"`
	Tool       string                   `json:"tool" yaml:"tool"`
	UserID     int64                    `json:"user_id" yaml:"user_id"`
	Profile    *models.UserProfileStats `json:"profile,omitempty" yaml:"profile,omitempty"`
	Routines   []models.HistoryRoutine  `json:"routines" yaml:"routines"`
	Splits     []models.Split           `json:"splits" yaml:"splits"`
	History    []models.History         `json:"history" yaml:"history"`
	MaxHistory []models.MaxHistoryEntry `json:"max_history" yaml:"max_history"`
}

// GetAllData retrieves all data of a user for export.
func (d *DB) GetAllData(ctx context.Context, userID int64) (*ExportData, error) {
	data := &ExportData{
		Version:    "1.0",
		ExportedAt: time.Now(),
		Tool:       "lift",
		UserID:     userID,
	}

	profile, err := d.GetProfileStats(ctx, userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	data.Profile = profile

	if data.Routines, err = d.GetRoutineData(ctx, userID); err != nil {
		return nil, fmt.Errorf("list routines: %w", err)
	}
	if data.Splits, err = d.GetSplitData(ctx, userID); err != nil {
		return nil, fmt.Errorf("list splits: %w", err)
	}
	if data.History, err = d.ListHistory(ctx, userID, 0); err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	exerciseIDs := make(map[int64]bool)
	for _, h := range data.History {
		for _, e := range h.Routine.Exercises {
			exerciseIDs[e.ExerciseID] = true
		}
	}
	ids := make([]int64, 0, len(exerciseIDs))
	for id := range exerciseIDs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		entries, err := d.MaxHistory(ctx, userID, id)
		if err != nil {
			return nil, fmt.Errorf("list max history: %w", err)
		}
		data.MaxHistory = append(data.MaxHistory, entries...)
	}

	return data, nil
}

// ExportJSON exports all data of a user as JSON.
func (d *DB) ExportJSON(ctx context.Context, userID int64) ([]byte, error) {
	data, err := d.GetAllData(ctx, userID)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ExportYAML exports all data of a user as YAML, with sessions flattened to
// readable set lines.
func (d *DB) ExportYAML(ctx context.Context, userID int64) ([]byte, error) {
	data, err := d.GetAllData(ctx, userID)
	if err != nil {
		return nil, err
	}

	yamlData := struct {
		Version    string                   `yaml:"version"`
		ExportedAt string                   `yaml:"exported_at"`
		Tool       string                   `yaml:"tool"`
		Profile    *models.UserProfileStats `yaml:"profile,omitempty"`
		Routines   []yamlRoutine            `yaml:"routines"`
		Sessions   []yamlSession            `yaml:"sessions"`
		Records    map[string][]yamlRecord  `yaml:"records,omitempty"`
	}{
		Version:    data.Version,
		ExportedAt: data.ExportedAt.Format(time.RFC3339),
		Tool:       data.Tool,
		Profile:    data.Profile,
		Routines:   make([]yamlRoutine, 0, len(data.Routines)),
		Sessions:   make([]yamlSession, 0, len(data.History)),
		Records:    make(map[string][]yamlRecord),
	}

	for _, r := range data.Routines {
		yamlData.Routines = append(yamlData.Routines, yamlRoutine{
			Title:     r.Title,
			Exercises: toYAMLExercises(r.Exercises),
		})
	}

	titles := make(map[int64]string)
	for _, h := range data.History {
		ys := yamlSession{
			ID:        h.ID,
			Routine:   h.Routine.Title,
			StartedAt: h.StartTime.Format(time.RFC3339),
			Exercises: toYAMLExercises(h.Routine.Exercises),
		}
		if h.EndTime != nil {
			ys.EndedAt = h.EndTime.Format(time.RFC3339)
		}
		if h.Notes != nil {
			ys.Notes = *h.Notes
		}
		for _, e := range h.Routine.Exercises {
			titles[e.ExerciseID] = exerciseLabel(e)
		}
		yamlData.Sessions = append(yamlData.Sessions, ys)
	}

	// Group records by exercise
	for _, m := range data.MaxHistory {
		label := titles[m.ExerciseID]
		if label == "" {
			label = fmt.Sprintf("exercise %d", m.ExerciseID)
		}
		yamlData.Records[label] = append(yamlData.Records[label], yamlRecord{
			OneRepMax: m.OneRepMax,
			Date:      m.CalculationDate.Format(time.RFC3339),
		})
	}

	return yaml.Marshal(yamlData)
}

type yamlRoutine struct {
	Title     string         `yaml:"title"`
	Exercises []yamlExercise `yaml:"exercises,omitempty"`
}

type yamlSession struct {
	ID        int64          `yaml:"id"`
	Routine   string         `yaml:"routine,omitempty"`
	StartedAt string         `yaml:"started_at"`
	EndedAt   string         `yaml:"ended_at,omitempty"`
	Notes     string         `yaml:"notes,omitempty"`
	Exercises []yamlExercise `yaml:"exercises,omitempty"`
}

type yamlExercise struct {
	Name string   `yaml:"name"`
	Sets []string `yaml:"sets,omitempty"`
}

type yamlRecord struct {
	OneRepMax float64 `yaml:"one_rep_max"`
	Date      string  `yaml:"date"`
}

func toYAMLExercises(exercises []models.HistoryExercise) []yamlExercise {
	out := make([]yamlExercise, 0, len(exercises))
	for _, e := range exercises {
		ye := yamlExercise{Name: exerciseLabel(e)}
		for _, s := range e.Sets {
			ye.Sets = append(ye.Sets, formatSet(s))
		}
		out = append(out, ye)
	}
	return out
}

func exerciseLabel(e models.HistoryExercise) string {
	if e.Equipment == "" {
		return e.Title
	}
	return fmt.Sprintf("%s (%s)", e.Title, e.Equipment)
}

func formatSet(s models.HistorySet) string {
	return fmt.Sprintf("%g x %d", s.Weight, s.Reps)
}

// ExportMarkdown exports a user's sessions as Markdown, optionally only those
// started at or after since.
func (d *DB) ExportMarkdown(ctx context.Context, userID int64, since *time.Time) (string, error) {
	history, err := d.ListHistory(ctx, userID, 0)
	if err != nil {
		return "", err
	}

	// Filter by since date if provided
	if since != nil {
		var filtered []models.History
		for _, h := range history {
			if !h.StartTime.Before(*since) {
				filtered = append(filtered, h)
			}
		}
		history = filtered
	}

	var sb strings.Builder
	now := time.Now()

	sb.WriteString(fmt.Sprintf("# Workout Export - %s\n\n", now.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	if len(history) == 0 {
		sb.WriteString("No workouts recorded.\n")
		return sb.String(), nil
	}

	for _, h := range history {
		title := h.Routine.Title
		if title == "" {
			title = "Workout"
		}
		sb.WriteString(fmt.Sprintf("## %s - %s\n\n", h.StartTime.Format("2006-01-02 15:04"), title))
		if h.Notes != nil && *h.Notes != "" {
			sb.WriteString(fmt.Sprintf("%s\n\n", *h.Notes))
		}
		sb.WriteString("| Exercise | Set | Weight | Reps | Est. 1RM |\n")
		sb.WriteString("|----------|-----|--------|------|----------|\n")
		for _, e := range h.Routine.Exercises {
			for _, s := range e.Sets {
				sb.WriteString(fmt.Sprintf("| %s | %d | %g | %d | %.1f |\n",
					exerciseLabel(e), s.Order, s.Weight, s.Reps, s.EstimatedOneRM))
			}
		}
		sb.WriteString("\n")
	}

	return sb.String(), nil
}
