// ABOUTME: Prescription aggregate: current weight, rep range, tracking and scaling history.
// ABOUTME: One prescription exists per user per catalog exercise.
package models

import (
	"time"

	"github.com/google/uuid"
)

// WeightUnit tags the load of a prescription.
type WeightUnit string

const (
	UnitPounds    WeightUnit = "lbs"
	UnitKilograms WeightUnit = "kg"
	// UnitLevel is a proxy resistance level for non-weight exercises (band strength, putty).
	UnitLevel WeightUnit = "level"
)

// EligibilityThreshold is the number of consecutive completions that makes a
// prescription eligible for evaluation.
const EligibilityThreshold = 6

// Default rep range when the catalog does not override it.
const (
	DefaultRepMin = 15
	DefaultRepMax = 20
)

// Prescription is the mutable per-exercise target assigned to a user.
type Prescription struct {
	ID                uuid.UUID          `json:"id" yaml:"id"`
	UserID            string             `json:"user_id" yaml:"user_id"`
	ExerciseID        string             `json:"exercise_id" yaml:"exercise_id"`
	CurrentWeight     float64            `json:"current_weight" yaml:"current_weight"`
	InitialWeight     float64            `json:"initial_weight" yaml:"initial_weight"`
	Unit              WeightUnit         `json:"unit" yaml:"unit"`
	TargetRepMin      int                `json:"target_rep_min" yaml:"target_rep_min"`
	TargetRepMax      int                `json:"target_rep_max" yaml:"target_rep_max"`
	TrackingInstances []TrackingInstance `json:"tracking_instances" yaml:"tracking_instances"`
	ConsecCompletions int                `json:"consec_completions" yaml:"consec_completions"`
	ScalingEligible   bool               `json:"scaling_eligible" yaml:"scaling_eligible"`
	ScalingHistory    []ScalingEvent     `json:"scaling_history" yaml:"scaling_history"`
	LastScaledDate    *time.Time         `json:"last_scaled_date,omitempty" yaml:"last_scaled_date,omitempty"`
	RecentlyScaled    bool               `json:"recently_scaled,omitempty" yaml:"recently_scaled,omitempty"`
	CreatedAt         time.Time          `json:"created_at" yaml:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at" yaml:"updated_at"`
}

// NewPrescription creates a prescription seeded at weight with a single INITIAL event.
func NewPrescription(userID, exerciseID string, weight float64, unit WeightUnit, repMin, repMax int) *Prescription {
	now := time.Now()
	return &Prescription{
		ID:                uuid.New(),
		UserID:            userID,
		ExerciseID:        exerciseID,
		CurrentWeight:     weight,
		InitialWeight:     weight,
		Unit:              unit,
		TargetRepMin:      repMin,
		TargetRepMax:      repMax,
		TrackingInstances: []TrackingInstance{},
		ScalingHistory:    []ScalingEvent{NewScalingEvent(now, EventInitial, weight, repMin, repMax)},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// UpsertInstance replaces the instance for the same (date, time of day) in
// place, or appends it. Returns true when an existing instance was replaced.
func (p *Prescription) UpsertInstance(ti TrackingInstance) bool {
	for i := range p.TrackingInstances {
		if p.TrackingInstances[i].SameSession(&ti) {
			p.TrackingInstances[i] = ti
			return true
		}
	}
	p.TrackingInstances = append(p.TrackingInstances, ti)
	return false
}

// FindInstance returns the instance logged for a session, if any.
func (p *Prescription) FindInstance(date time.Time, tod TimeOfDay) *TrackingInstance {
	day := CalendarDay(date)
	for i := range p.TrackingInstances {
		ti := &p.TrackingInstances[i]
		if ti.TimeOfDay == tod && ti.Date.Equal(day) {
			return ti
		}
	}
	return nil
}

// LatestEvent returns the most recent scaling event, or nil for an empty history.
func (p *Prescription) LatestEvent() *ScalingEvent {
	if len(p.ScalingHistory) == 0 {
		return nil
	}
	return &p.ScalingHistory[len(p.ScalingHistory)-1]
}

// Clone returns a deep copy so callers can mutate without aliasing stored slices.
func (p *Prescription) Clone() *Prescription {
	c := *p
	c.TrackingInstances = make([]TrackingInstance, len(p.TrackingInstances))
	copy(c.TrackingInstances, p.TrackingInstances)
	c.ScalingHistory = make([]ScalingEvent, len(p.ScalingHistory))
	copy(c.ScalingHistory, p.ScalingHistory)
	if p.LastScaledDate != nil {
		t := *p.LastScaledDate
		c.LastScaledDate = &t
	}
	return &c
}

// PrescriptionStats summarizes a prescription for display.
type PrescriptionStats struct {
	ExerciseID        string    `json:"exercise_id"`
	LoggedSessions    int       `json:"logged_sessions"`
	CompletedSessions int       `json:"completed_sessions"`
	CompletionRate    float64   `json:"completion_rate"`
	ProgressPercent   float64   `json:"progress_percent"`
	ScalingEvents     int       `json:"scaling_events"`
	LatestEvent       EventKind `json:"latest_event,omitempty"`
}

// Stats computes display statistics. ProgressPercent is relative to InitialWeight.
func (p *Prescription) Stats() PrescriptionStats {
	s := PrescriptionStats{
		ExerciseID:     p.ExerciseID,
		LoggedSessions: len(p.TrackingInstances),
		ScalingEvents:  len(p.ScalingHistory),
	}
	for _, ti := range p.TrackingInstances {
		if ti.Completed {
			s.CompletedSessions++
		}
	}
	if s.LoggedSessions > 0 {
		s.CompletionRate = float64(s.CompletedSessions) / float64(s.LoggedSessions)
	}
	if p.InitialWeight > 0 {
		s.ProgressPercent = (p.CurrentWeight - p.InitialWeight) / p.InitialWeight * 100
	}
	if e := p.LatestEvent(); e != nil {
		s.LatestEvent = e.Event
	}
	return s
}
