// ABOUTME: Irritability index derived from a load-management survey.
// ABOUTME: Worst activity score plus rest pain, clamped to [0, 30], and the bands it maps to.
package irritability

import (
	"strings"

	"github.com/elliot226/1hp-troubleshooter-sub000/internal/models"
)

// MaxIndex is the upper bound of the irritability index.
const MaxIndex = 30.0

// ActivityScore is painLevel × (recoveryTime / (timeToAggravation + 1)).
// The +1 keeps an immediate aggravation (0 minutes) finite.
func ActivityScore(a models.Activity) float64 {
	tta := a.TimeToAggravation
	if tta < 0 {
		tta = 0
	}
	return a.PainLevel * (a.RecoveryTime / (tta + 1))
}

// qualifies reports whether an activity counts toward the index: it must be
// named and have a positive pain and recovery profile.
func qualifies(a models.Activity) bool {
	return strings.TrimSpace(a.Name) != "" && a.PainLevel > 0 && a.RecoveryTime > 0
}

// Calculate returns the irritability index for a survey, or nil when no
// survey was collected. The worst activity dominates; scores are not averaged.
func Calculate(s *models.LoadManagementSurvey) *float64 {
	if s == nil {
		return nil
	}

	worst := 0.0
	for _, a := range s.Activities() {
		if !qualifies(a) {
			continue
		}
		if score := ActivityScore(a); score > worst {
			worst = score
		}
	}

	index := worst
	if s.PainAtRest && s.PainLevelAtRest > 0 {
		index += s.PainLevelAtRest
	}

	switch {
	case index < 0:
		index = 0
	case index > MaxIndex:
		index = MaxIndex
	}
	return &index
}

// Band is a severity bucket of the irritability index.
type Band int

const (
	BandNormal         Band = iota // < 5
	BandMildModerate               // 5 to < 10
	BandModerate                   // 10 to < 15
	BandModerateSevere             // 15 to < 20
	BandSevere                     // >= 20
)

// BandFor maps an index to its band.
func BandFor(index float64) Band {
	switch {
	case index < 5:
		return BandNormal
	case index < 10:
		return BandMildModerate
	case index < 15:
		return BandModerate
	case index < 20:
		return BandModerateSevere
	default:
		return BandSevere
	}
}

func (b Band) String() string {
	switch b {
	case BandNormal:
		return "normal"
	case BandMildModerate:
		return "mild-moderate"
	case BandModerate:
		return "moderate"
	case BandModerateSevere:
		return "moderate-severe"
	case BandSevere:
		return "severe"
	default:
		return "unknown"
	}
}
