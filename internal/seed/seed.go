// ABOUTME: Converts endurance-test results into starting prescription weights.
// ABOUTME: Applies the 30-rep strength formula and the catalog doubling rule.
package seed

import (
	"math"

	"github.com/elliot226/1hp-troubleshooter-sub000/internal/catalog"
	"github.com/elliot226/1hp-troubleshooter-sub000/internal/models"
)

// ReferenceReps is the rep count at which the formula yields its base weight.
const ReferenceReps = 30

// Results maps endurance-test ids to reps-to-failure.
type Results map[string]int

// Weight is floor(4 * sqrt(reps/30)), doubled for flagged exercises, never below 1.
func Weight(reps int, doubled bool) float64 {
	if reps < 0 {
		reps = 0
	}
	w := math.Floor(4 * math.Sqrt(float64(reps)/ReferenceReps))
	if doubled {
		w *= 2
	}
	return math.Max(w, 1)
}

// ResolveReps picks the reps-to-failure for an exercise. Exercises mapped to
// two tests use the lower of the recorded results. ok is false when none of
// the exercise's tests has a result.
func ResolveReps(ex *catalog.Exercise, results Results) (reps int, ok bool) {
	for _, id := range ex.EnduranceTests {
		r, found := results[id]
		if !found {
			continue
		}
		if !ok || r < reps {
			reps, ok = r, true
		}
	}
	return reps, ok
}

// Prescription builds the initial prescription for an exercise. Without a
// usable endurance result the catalog default weight is used.
func Prescription(ex *catalog.Exercise, userID string, results Results) (p *models.Prescription, fromTest bool) {
	p = ex.DefaultPrescription(userID)
	reps, ok := ResolveReps(ex, results)
	if !ok {
		return p, false
	}

	w := Weight(reps, ex.DoubleWeight)
	p.CurrentWeight = w
	p.InitialWeight = w
	p.ScalingHistory[0].Weight = w
	return p, true
}
