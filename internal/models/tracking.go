// ABOUTME: TrackingInstance model and TimeOfDay session enum.
// ABOUTME: One instance per (date, time-of-day) records a logged exercise session.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TimeOfDay identifies one of the two daily exercise sessions.
type TimeOfDay string

const (
	TimeOfDayAM TimeOfDay = "AM"
	TimeOfDayPM TimeOfDay = "PM"
)

// DateLayout is the calendar-day format used for tracking dates.
const DateLayout = "2006-01-02"

// ParseTimeOfDay parses "AM" or "PM" (case-insensitive).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	switch TimeOfDay(strings.ToUpper(strings.TrimSpace(s))) {
	case TimeOfDayAM:
		return TimeOfDayAM, nil
	case TimeOfDayPM:
		return TimeOfDayPM, nil
	default:
		return "", fmt.Errorf("invalid time of day %q: want AM or PM", s)
	}
}

// CalendarDay strips the time component, keeping the wall-clock date of t.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// TrackingInstance is a single logged session for a prescription.
// RepsPerformed and PainLevel are nil when the session was not completed.
type TrackingInstance struct {
	ID            uuid.UUID `json:"id" yaml:"id"`
	Date          time.Time `json:"date" yaml:"date"`
	TimeOfDay     TimeOfDay `json:"time_of_day" yaml:"time_of_day"`
	Completed     bool      `json:"completed" yaml:"completed"`
	RepsPerformed *int      `json:"reps_performed,omitempty" yaml:"reps_performed,omitempty"`
	PainLevel     *int      `json:"pain_level,omitempty" yaml:"pain_level,omitempty"`
	Weight        float64   `json:"weight" yaml:"weight"`
	LoggedAt      time.Time `json:"logged_at" yaml:"logged_at"`
}

// NewTrackingInstance creates a not-completed instance for the given session.
func NewTrackingInstance(date time.Time, tod TimeOfDay, weight float64) *TrackingInstance {
	return &TrackingInstance{
		ID:        uuid.New(),
		Date:      CalendarDay(date),
		TimeOfDay: tod,
		Weight:    weight,
		LoggedAt:  time.Now(),
	}
}

// WithCompletion marks the instance completed with the given reps and pain.
func (ti *TrackingInstance) WithCompletion(reps, pain int) *TrackingInstance {
	ti.Completed = true
	ti.RepsPerformed = &reps
	ti.PainLevel = &pain
	return ti
}

// SameSession reports whether both instances cover the same date and time of day.
func (ti *TrackingInstance) SameSession(other *TrackingInstance) bool {
	return ti.TimeOfDay == other.TimeOfDay && ti.Date.Equal(other.Date)
}

// Reps returns the performed reps, treating nil as 0.
func (ti *TrackingInstance) Reps() int {
	if ti.RepsPerformed == nil {
		return 0
	}
	return *ti.RepsPerformed
}

// Pain returns the pain level, treating nil as 0.
func (ti *TrackingInstance) Pain() int {
	if ti.PainLevel == nil {
		return 0
	}
	return *ti.PainLevel
}
