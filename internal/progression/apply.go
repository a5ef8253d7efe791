// ABOUTME: Applies a scaling decision to a prescription.
// ABOUTME: Resets completion counters and appends scaling events.
package progression

import (
	"time"

	"github.com/elliot226/1hp-troubleshooter-sub000/internal/models"
)

// clamp enforces the prescription floors: weight >= 1, reps >= 5/10 and min <= max.
func (t Target) clamp() Target {
	t.Weight = max(t.Weight, MinWeight)
	t.RepMin = max(t.RepMin, HalveFloorMin)
	t.RepMax = max(t.RepMax, HalveFloorMax, t.RepMin)
	return t
}

// Apply records an evaluation on the prescription. The consecutive
// completion counter is always reset; with a non-nil adjustment the new
// target is written and a scaling event dated now is appended and returned.
// RecentlyScaled is left as-is when adj is nil.
func Apply(p *models.Prescription, adj *Adjustment, now time.Time) *models.ScalingEvent {
	p.ConsecCompletions = 0
	p.ScalingEligible = false
	p.UpdatedAt = now

	if adj == nil {
		return nil
	}

	t := adj.Target.clamp()
	p.CurrentWeight = t.Weight
	p.TargetRepMin = t.RepMin
	p.TargetRepMax = t.RepMax

	ev := models.NewScalingEvent(now, adj.Kind, t.Weight, t.RepMin, t.RepMax)
	p.ScalingHistory = append(p.ScalingHistory, ev)

	day := models.CalendarDay(now)
	p.LastScaledDate = &day
	p.RecentlyScaled = true
	return &p.ScalingHistory[len(p.ScalingHistory)-1]
}

// Evaluate summarizes the prescription's recent completions, decides and
// applies. evaluated is false when there was nothing to evaluate, in which
// case the prescription is left untouched.
func Evaluate(p *models.Prescription, index *float64, now time.Time) (ev *models.ScalingEvent, evaluated bool) {
	return EvaluateReported(p, index, 0, now)
}

// EvaluateReported is Evaluate with a just-reported pain level counted as the
// window's peak pain when higher, even if its session is older than the window.
func EvaluateReported(p *models.Prescription, index *float64, reportedPain int, now time.Time) (ev *models.ScalingEvent, evaluated bool) {
	w, ok := Summarize(p.TrackingInstances)
	if !ok {
		return nil, false
	}
	w.MaxPain = max(w.MaxPain, reportedPain)
	return Apply(p, Decide(TargetOf(p), w, index), now), true
}
