// ABOUTME: Coerces loosely typed tracking input into bounded integers.
// ABOUTME: Unparseable values become 0 rather than errors.
package engine

import (
	"strings"

	"github.com/spf13/cast"
)

const (
	minPain = 0
	maxPain = 10
)

// TrackingData is one session report as it arrives from a form, CLI flag or
// tool call. Reps and pain may be numbers or numeric strings.
type TrackingData struct {
	TimeOfDay     string `json:"time_of_day"`
	Completed     bool   `json:"completed"`
	RepsPerformed any    `json:"reps_performed,omitempty"`
	PainLevel     any    `json:"pain_level,omitempty"`
}

// toInt converts v to an int, truncating fractions. Anything unparseable is 0.
func toInt(v any) int {
	if s, ok := v.(string); ok {
		v = strings.TrimSpace(s)
	}
	if n, err := cast.ToIntE(v); err == nil {
		return n
	}
	if f, err := cast.ToFloat64E(v); err == nil {
		return int(f)
	}
	return 0
}

func normalizeReps(v any) int {
	return max(toInt(v), 0)
}

func normalizePain(v any) int {
	return min(max(toInt(v), minPain), maxPain)
}
