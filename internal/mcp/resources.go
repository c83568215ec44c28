// ABOUTME: MCP resource implementations for the workout log.
// ABOUTME: Provides lift://recent, lift://routines, and lift://summary resources.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/lift/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerResources() {
	// lift://recent - Last 10 sessions with exercises and sets
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "lift://recent",
		Name:        "Recent Workouts",
		Description: "Last 10 workout sessions with exercises and sets",
		MIMEType:    "application/json",
	}, s.handleRecentResource)

	// lift://routines - Routines and splits
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "lift://routines",
		Name:        "Routines and Splits",
		Description: "Saved routines with prescribed sets and the user's splits",
		MIMEType:    "application/json",
	}, s.handleRoutinesResource)

	// lift://summary - Counts, top exercise and soreness
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "lift://summary",
		Name:        "Training Summary",
		Description: "Workout counts, most trained exercise and current muscle soreness",
		MIMEType:    "application/json",
	}, s.handleSummaryResource)
}

// Resource handlers

func (s *Server) handleRecentResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	history, err := s.repo.ListHistory(ctx, s.userID, 10)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	return jsonResource("lift://recent", map[string]interface{}{
		"workouts": history,
		"count":    len(history),
	})
}

func (s *Server) handleRoutinesResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	routines, err := s.repo.GetRoutineData(ctx, s.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load routines: %w", err)
	}
	splits, err := s.repo.GetSplitData(ctx, s.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load splits: %w", err)
	}

	return jsonResource("lift://routines", map[string]interface{}{
		"routines": routines,
		"splits":   splits,
	})
}

func (s *Server) handleSummaryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	now := s.now()
	counts, err := s.repo.WorkoutCounts(ctx, s.userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to count workouts: %w", err)
	}
	soreness, err := s.repo.MuscleGroupSoreness(ctx, s.userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load soreness: %w", err)
	}

	result := map[string]interface{}{
		"generated_at": now.Format(time.RFC3339),
		"counts":       counts,
		"soreness":     soreness,
	}
	top, err := s.repo.TopExercise(ctx, s.userID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to load top exercise: %w", err)
	}
	if top != nil {
		result["top_exercise"] = top
	}

	return jsonResource("lift://summary", result)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
