// ABOUTME: ScalingEvent model and EventKind enum.
// ABOUTME: Scaling events form the append-only history of prescription changes.
package models

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// EventKind tags the rule that produced a scaling event.
type EventKind string

const (
	EventInitial EventKind = "INITIAL"

	// Tracking-only rules
	EventEmergencyWeightDecrease  EventKind = "EMERGENCY_WEIGHT_DECREASE_HIGH_PAIN"
	EventWeightIncrease           EventKind = "WEIGHT_INCREASE"
	EventRepIncreaseLowPain       EventKind = "REP_INCREASE_LOW_PAIN"
	EventRepDecreaseModeratePain  EventKind = "REP_DECREASE_MODERATE_PAIN"
	EventRepSlightDecreaseFatigue EventKind = "REP_SLIGHT_DECREASE_FATIGUE"

	// Irritability-aware rules
	EventWeightIncreaseNormal       EventKind = "WEIGHT_INCREASE_NORMAL"
	EventRepIncreaseNormal          EventKind = "REP_INCREASE_NORMAL"
	EventWeightIncreaseMildModerate EventKind = "WEIGHT_INCREASE_MILD_MODERATE"
	EventRepIncreaseMildModerate    EventKind = "REP_INCREASE_MILD_MODERATE"
	EventRepDecreaseModerate        EventKind = "REP_DECREASE_MODERATE"
	EventWeightDecreaseModSevere    EventKind = "WEIGHT_DECREASE_MOD_SEVERE"
	EventRepDecreaseModSevere       EventKind = "REP_DECREASE_MOD_SEVERE"
	EventRepHalveSevere             EventKind = "REP_HALVE_SEVERE"
)

// ScalingEvent records one adjustment of weight and rep range.
type ScalingEvent struct {
	ID          string    `json:"id" yaml:"id"`
	Date        time.Time `json:"date" yaml:"date"`
	Event       EventKind `json:"event" yaml:"event"`
	Weight      float64   `json:"weight" yaml:"weight"`
	RepRangeMin int       `json:"rep_range_min" yaml:"rep_range_min"`
	RepRangeMax int       `json:"rep_range_max" yaml:"rep_range_max"`
}

// NewScalingEvent creates an event dated on the calendar day of at.
func NewScalingEvent(at time.Time, kind EventKind, weight float64, repMin, repMax int) ScalingEvent {
	return ScalingEvent{
		ID:          ulid.Make().String(),
		Date:        CalendarDay(at),
		Event:       kind,
		Weight:      weight,
		RepRangeMin: repMin,
		RepRangeMax: repMax,
	}
}
