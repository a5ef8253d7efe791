// ABOUTME: Scaling rules mapping a completion window to a new target.
// ABOUTME: Tracking-only rules and irritability-band rules live here.
package progression

import (
	"github.com/elliot226/1hp-troubleshooter-sub000/internal/irritability"
	"github.com/elliot226/1hp-troubleshooter-sub000/internal/models"
)

// Thresholds and step sizes of the scaling rules.
const (
	HighPain            = 7
	WeightStep          = 2.0
	MinWeight           = 1.0
	WeightIncreaseReps  = 45
	MildWeightIncrease  = 50
	ResetRepMin         = 15
	ResetRepMax         = 20
	DecreaseFloorMin    = 10
	DecreaseFloorMax    = 15
	HalveFloorMin       = 5
	HalveFloorMax       = 10
	irritablePainCutoff = 5
)

// Target is the weight and rep range a rule produces.
type Target struct {
	Weight float64
	RepMin int
	RepMax int
}

// TargetOf reads the current target of a prescription.
func TargetOf(p *models.Prescription) Target {
	return Target{Weight: p.CurrentWeight, RepMin: p.TargetRepMin, RepMax: p.TargetRepMax}
}

// Adjustment is a scaling decision. A nil *Adjustment means no event.
type Adjustment struct {
	Kind   models.EventKind
	Target Target
}

// Decide picks the scaling adjustment for a window. With a nil index the
// tracking-only rules apply; otherwise the irritability band rules do.
func Decide(cur Target, w Window, index *float64) *Adjustment {
	if index == nil {
		return decideTrackingOnly(cur, w)
	}
	return decideByBand(cur, w, irritability.BandFor(*index))
}

// decideTrackingOnly applies the first matching rule.
func decideTrackingOnly(cur Target, w Window) *Adjustment {
	inBand := float64(cur.RepMin) <= w.AvgReps && w.AvgReps <= float64(cur.RepMax)

	switch {
	case w.MaxPain >= HighPain:
		t := cur
		t.Weight = lowerWeight(cur.Weight)
		t.RepMin, t.RepMax = lowerReps(cur, 5)
		return &Adjustment{Kind: models.EventEmergencyWeightDecrease, Target: t}

	case w.AvgReps >= WeightIncreaseReps:
		return weightIncrease(cur, models.EventWeightIncrease)

	case inBand && w.MaxPain <= 2:
		return repIncrease(cur, 5, models.EventRepIncreaseLowPain)

	case inBand && w.MaxPain >= 5:
		// 5-6 here; 7+ was handled above
		t := cur
		t.RepMin, t.RepMax = lowerReps(cur, 5)
		return &Adjustment{Kind: models.EventRepDecreaseModeratePain, Target: t}

	case inBand:
		// pain 3-4 is neutral
		return nil

	case w.AvgReps < float64(cur.RepMin) && w.MaxPain == 0:
		t := cur
		t.RepMin, t.RepMax = lowerReps(cur, 2)
		return &Adjustment{Kind: models.EventRepSlightDecreaseFatigue, Target: t}
	}
	return nil
}

func decideByBand(cur Target, w Window, band irritability.Band) *Adjustment {
	switch band {
	case irritability.BandNormal:
		if w.AvgReps >= WeightIncreaseReps {
			return weightIncrease(cur, models.EventWeightIncreaseNormal)
		}
		if w.AvgReps >= float64(cur.RepMax) {
			return repIncrease(cur, 5, models.EventRepIncreaseNormal)
		}

	case irritability.BandMildModerate:
		if w.AvgReps >= MildWeightIncrease {
			return weightIncrease(cur, models.EventWeightIncreaseMildModerate)
		}
		if w.AvgReps >= float64(cur.RepMax) {
			return repIncrease(cur, 3, models.EventRepIncreaseMildModerate)
		}

	case irritability.BandModerate:
		if w.MaxPain >= irritablePainCutoff {
			t := cur
			t.RepMin, t.RepMax = lowerReps(cur, 10)
			return &Adjustment{Kind: models.EventRepDecreaseModerate, Target: t}
		}

	case irritability.BandModerateSevere:
		t := cur
		var kind models.EventKind
		if w.MaxPain >= irritablePainCutoff {
			t.Weight = lowerWeight(cur.Weight)
			kind = models.EventWeightDecreaseModSevere
		}
		// reps come down on every evaluation in this band, pain or not
		t.RepMin, t.RepMax = lowerReps(cur, 5)
		if kind == "" {
			kind = models.EventRepDecreaseModSevere
		}
		return &Adjustment{Kind: kind, Target: t}

	case irritability.BandSevere:
		t := cur
		t.RepMin = max(cur.RepMin/2, HalveFloorMin)
		t.RepMax = max(cur.RepMax/2, HalveFloorMax)
		return &Adjustment{Kind: models.EventRepHalveSevere, Target: t}
	}
	return nil
}

func weightIncrease(cur Target, kind models.EventKind) *Adjustment {
	return &Adjustment{Kind: kind, Target: Target{
		Weight: cur.Weight + WeightStep,
		RepMin: ResetRepMin,
		RepMax: ResetRepMax,
	}}
}

func repIncrease(cur Target, step int, kind models.EventKind) *Adjustment {
	t := cur
	t.RepMin += step
	t.RepMax += step
	return &Adjustment{Kind: kind, Target: t}
}

func lowerWeight(w float64) float64 {
	return max(w-WeightStep, MinWeight)
}

func lowerReps(cur Target, step int) (int, int) {
	return max(cur.RepMin-step, DecreaseFloorMin), max(cur.RepMax-step, DecreaseFloorMax)
}
