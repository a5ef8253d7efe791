// ABOUTME: Tests for catalog loading, validation and default prescriptions.
// ABOUTME: Uses inline YAML fixtures for parse error cases.
package catalog

import (
	"errors"
	"testing"

	"github.com/elliot226/1hp-troubleshooter-sub000/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogLoads(t *testing.T) {
	c := Default()

	require.NotEmpty(t, c.Exercises)
	assert.Len(t, c.IDs(), len(c.Exercises))

	rot, err := c.Get("forearm_rotation")
	require.NoError(t, err)
	assert.Len(t, rot.EnduranceTests, 2, "forearm rotation maps to two tests")

	curl, err := c.Get("biceps_curl")
	require.NoError(t, err)
	assert.True(t, curl.DoubleWeight)
}

func TestGetUnknownExercise(t *testing.T) {
	_, err := Default().Get("nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownExercise))
}

func TestRepRangeOverride(t *testing.T) {
	c := Default()

	fe, err := c.Get("finger_extension")
	require.NoError(t, err)
	lo, hi := fe.RepRange()
	assert.Equal(t, 20, lo)
	assert.Equal(t, 25, hi)

	wf, err := c.Get("wrist_flexion")
	require.NoError(t, err)
	lo, hi = wf.RepRange()
	assert.Equal(t, models.DefaultRepMin, lo)
	assert.Equal(t, models.DefaultRepMax, hi)
}

func TestDefaultPrescription(t *testing.T) {
	e, err := Default().Get("grip_squeeze")
	require.NoError(t, err)

	p := e.DefaultPrescription("u1")
	assert.Equal(t, "grip_squeeze", p.ExerciseID)
	assert.Equal(t, models.UnitLevel, p.Unit)
	assert.GreaterOrEqual(t, p.CurrentWeight, 1.0)
	require.Len(t, p.ScalingHistory, 1)
	assert.Equal(t, models.EventInitial, p.ScalingHistory[0].Event)
}

func TestParseRejectsUnknownTest(t *testing.T) {
	data := []byte(`
endurance_tests:
  - id: a
exercises:
  - id: x
    endurance_tests: [b]
`)
	_, err := Parse(data)
	assert.ErrorContains(t, err, "unknown test")
}

func TestParseRejectsDuplicateExercise(t *testing.T) {
	data := []byte(`
exercises:
  - id: x
  - id: x
`)
	_, err := Parse(data)
	assert.ErrorContains(t, err, "duplicate exercise")
}
