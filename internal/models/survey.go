// ABOUTME: Load-management survey and Program models.
// ABOUTME: Surveys feed the irritability index; Program tracks program start and reassessment dates.
package models

import (
	"time"

	"github.com/google/uuid"
)

// ReassessmentInterval is the time between load-management surveys.
const ReassessmentInterval = 7 * 24 * time.Hour

// Activity is a work or hobby activity reported in a survey.
// RecoveryTime and TimeToAggravation are in minutes.
type Activity struct {
	Name              string  `json:"name" yaml:"name"`
	PainLevel         float64 `json:"pain_level" yaml:"pain_level"`
	RecoveryTime      float64 `json:"recovery_time" yaml:"recovery_time"`
	TimeToAggravation float64 `json:"time_to_aggravation" yaml:"time_to_aggravation"`
}

// LoadManagementSurvey is a user's answers to the load-management survey.
type LoadManagementSurvey struct {
	ID                uuid.UUID  `json:"id" yaml:"id"`
	UserID            string     `json:"user_id" yaml:"user_id"`
	PainAtRest        bool       `json:"pain_at_rest" yaml:"pain_at_rest"`
	PainLevelAtRest   float64    `json:"pain_level_at_rest" yaml:"pain_level_at_rest"`
	WorkActivities    []Activity `json:"work_activities" yaml:"work_activities"`
	HobbyActivities   []Activity `json:"hobby_activities" yaml:"hobby_activities"`
	IrritabilityIndex *float64   `json:"irritability_index,omitempty" yaml:"irritability_index,omitempty"`
	RecordedAt        time.Time  `json:"recorded_at" yaml:"recorded_at"`
}

// NewLoadManagementSurvey creates an empty survey for a user.
func NewLoadManagementSurvey(userID string) *LoadManagementSurvey {
	return &LoadManagementSurvey{
		ID:         uuid.New(),
		UserID:     userID,
		RecordedAt: time.Now(),
	}
}

// WithRestPain records pain at rest at the given level.
func (s *LoadManagementSurvey) WithRestPain(level float64) *LoadManagementSurvey {
	s.PainAtRest = true
	s.PainLevelAtRest = level
	return s
}

// WithWorkActivity appends a work activity.
func (s *LoadManagementSurvey) WithWorkActivity(a Activity) *LoadManagementSurvey {
	s.WorkActivities = append(s.WorkActivities, a)
	return s
}

// WithHobbyActivity appends a hobby activity.
func (s *LoadManagementSurvey) WithHobbyActivity(a Activity) *LoadManagementSurvey {
	s.HobbyActivities = append(s.HobbyActivities, a)
	return s
}

// Activities returns work and hobby activities together.
func (s *LoadManagementSurvey) Activities() []Activity {
	all := make([]Activity, 0, len(s.WorkActivities)+len(s.HobbyActivities))
	all = append(all, s.WorkActivities...)
	return append(all, s.HobbyActivities...)
}

// Program is the per-user record stamped by seeding and surveys.
type Program struct {
	UserID             string     `json:"user_id" yaml:"user_id"`
	StartedAt          time.Time  `json:"started_at" yaml:"started_at"`
	NextReassessmentAt time.Time  `json:"next_reassessment_at" yaml:"next_reassessment_at"`
	LastSurveyAt       *time.Time `json:"last_survey_at,omitempty" yaml:"last_survey_at,omitempty"`
}

// NewProgram starts a program at the given time with the first reassessment a week out.
func NewProgram(userID string, startedAt time.Time) *Program {
	return &Program{
		UserID:             userID,
		StartedAt:          startedAt,
		NextReassessmentAt: startedAt.Add(ReassessmentInterval),
	}
}

// ReassessmentDue reports whether a new survey is due at now.
func (p *Program) ReassessmentDue(now time.Time) bool {
	return !now.Before(p.NextReassessmentAt)
}
