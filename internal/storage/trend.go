// ABOUTME: Least-squares trend over the estimated 1RM ledger.
// ABOUTME: Uses gonum's linear regression with time measured in days.
package storage

import (
	"github.com/harperreed/lift/internal/models"
	"gonum.org/v1/gonum/stat"
)

// Trend is a fitted line through a 1RM series.
type Trend struct {
	// SlopePerDay is the change in estimated 1RM per day.
	SlopePerDay float64 `json:"slope_per_day"`
	Intercept   float64 `json:"intercept"`
	Points      int     `json:"points"`
}

// OneRepMaxTrend fits a line through max-history entries. Fewer than two
// points, or points that all share one date, yield a zero slope.
func OneRepMaxTrend(entries []models.MaxHistoryEntry) Trend {
	t := Trend{Points: len(entries)}
	if len(entries) == 0 {
		return t
	}
	if len(entries) == 1 {
		t.Intercept = entries[0].OneRepMax
		return t
	}

	origin := entries[0].CalculationDate
	xs := make([]float64, len(entries))
	ys := make([]float64, len(entries))
	distinct := false
	for i, e := range entries {
		xs[i] = e.CalculationDate.Sub(origin).Hours() / 24
		ys[i] = e.OneRepMax
		if xs[i] != xs[0] {
			distinct = true
		}
	}
	if !distinct {
		t.Intercept = stat.Mean(ys, nil)
		return t
	}

	t.Intercept, t.SlopePerDay = stat.LinearRegression(xs, ys, nil, false)
	return t
}
