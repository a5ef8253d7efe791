// ABOUTME: Tests for seed weight calculation and endurance result resolution.
// ABOUTME: Uses the embedded default catalog.
package seed

import (
	"testing"

	"github.com/elliot226/1hp-troubleshooter-sub000/internal/catalog"
	"github.com/elliot226/1hp-troubleshooter-sub000/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeight(t *testing.T) {
	tests := []struct {
		reps    int
		doubled bool
		want    float64
	}{
		{30, false, 4},
		{120, false, 8},
		{60, false, 5}, // 4*sqrt(2) = 5.65
		{30, true, 8},
		{0, false, 1},
		{1, false, 1},
		{-10, false, 1},
		{0, true, 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Weight(tt.reps, tt.doubled), "reps=%d doubled=%v", tt.reps, tt.doubled)
	}
}

func TestResolveRepsUsesLowerOfTwoTests(t *testing.T) {
	ex, err := catalog.Default().Get("forearm_rotation")
	require.NoError(t, err)

	reps, ok := ResolveReps(ex, Results{"forearm_pronation_test": 40, "forearm_supination_test": 25})
	require.True(t, ok)
	assert.Equal(t, 25, reps)

	reps, ok = ResolveReps(ex, Results{"forearm_supination_test": 33})
	require.True(t, ok)
	assert.Equal(t, 33, reps)

	_, ok = ResolveReps(ex, Results{"grip_test": 50})
	assert.False(t, ok)
}

func TestPrescriptionFromTest(t *testing.T) {
	ex, err := catalog.Default().Get("wrist_flexion")
	require.NoError(t, err)

	p, fromTest := Prescription(ex, "u1", Results{"wrist_flexion_test": 120})
	require.True(t, fromTest)

	assert.Equal(t, 8.0, p.CurrentWeight)
	assert.Equal(t, 8.0, p.InitialWeight)
	assert.Equal(t, 15, p.TargetRepMin)
	assert.Equal(t, 20, p.TargetRepMax)
	require.Len(t, p.ScalingHistory, 1)
	assert.Equal(t, models.EventInitial, p.ScalingHistory[0].Event)
	assert.Equal(t, 8.0, p.ScalingHistory[0].Weight)
}

func TestPrescriptionDoubledExercise(t *testing.T) {
	ex, err := catalog.Default().Get("biceps_curl")
	require.NoError(t, err)
	require.True(t, ex.DoubleWeight)
	require.NotEmpty(t, ex.EnduranceTests)

	p, fromTest := Prescription(ex, "u1", Results{ex.EnduranceTests[0]: 30})
	require.True(t, fromTest)
	assert.Equal(t, 8.0, p.CurrentWeight)
}

func TestPrescriptionFallsBackToCatalogDefault(t *testing.T) {
	ex, err := catalog.Default().Get("finger_extension")
	require.NoError(t, err)

	p, fromTest := Prescription(ex, "u1", nil)
	assert.False(t, fromTest)
	assert.Equal(t, ex.DefaultWeight, p.CurrentWeight)
	assert.Equal(t, 20, p.TargetRepMin)
	assert.Equal(t, 25, p.TargetRepMax)
	assert.Equal(t, models.UnitLevel, p.Unit)
}
