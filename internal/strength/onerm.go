// ABOUTME: Estimated one-rep-max calculation and the bodyweight substitution policy.
// ABOUTME: The estimator is pure; callers apply EffectiveLift before calling it.
package strength

import (
	"regexp"
	"strconv"

	"github.com/harperreed/lift/internal/models"
)

// DefaultBodyweight is used when the user's bodyweight is not recorded.
const DefaultBodyweight = 150.0

// EstimateOneRepMax returns the Epley estimate weight * (1 + reps/30).
// It is monotonically increasing in weight for fixed reps and in reps for fixed weight.
func EstimateOneRepMax(weight float64, reps int) float64 {
	return weight * (1 + float64(reps)/30)
}

// EffectiveLift returns the weight and reps to feed EstimateOneRepMax.
// Bodyweight exercises and sets without a positive weight are estimated as a
// single rep at the lifter's bodyweight, falling back to DefaultBodyweight.
func EffectiveLift(equipment string, weight float64, reps int, bodyweight float64) (float64, int) {
	if equipment == models.EquipmentBodyweight || weight <= 0 {
		if bodyweight <= 0 {
			bodyweight = DefaultBodyweight
		}
		return bodyweight, 1
	}
	return weight, reps
}

// SetOneRepMax applies EffectiveLift and EstimateOneRepMax to one set.
func SetOneRepMax(equipment string, weight float64, reps int, bodyweight float64) float64 {
	w, r := EffectiveLift(equipment, weight, reps, bodyweight)
	return EstimateOneRepMax(w, r)
}

var leadingNumber = regexp.MustCompile(`^\s*([0-9]+(?:\.[0-9]+)?)`)

// ParseBodyweight extracts the numeric part of a profile weight such as "180 lbs".
// It returns 0 when no number is present.
func ParseBodyweight(s string) float64 {
	m := leadingNumber.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return v
}
