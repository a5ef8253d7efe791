// ABOUTME: Tests for irritability index calculation and band mapping.
// ABOUTME: Covers qualifying activities, rest pain and clamping.
package irritability

import (
	"testing"

	"github.com/elliot226/1hp-troubleshooter-sub000/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateNilSurvey(t *testing.T) {
	assert.Nil(t, Calculate(nil))
}

func TestCalculateLiteralFormula(t *testing.T) {
	s := models.NewLoadManagementSurvey("u1").
		WithRestPain(3).
		WithWorkActivity(models.Activity{Name: "typing", PainLevel: 5, RecoveryTime: 30, TimeToAggravation: 9})

	got := Calculate(s)
	require.NotNil(t, got)
	assert.InDelta(t, 18.0, *got, 1e-9)
}

func TestCalculateWorstActivityDominates(t *testing.T) {
	s := models.NewLoadManagementSurvey("u1").
		WithWorkActivity(models.Activity{Name: "typing", PainLevel: 2, RecoveryTime: 10, TimeToAggravation: 9}).   // 2
		WithHobbyActivity(models.Activity{Name: "climbing", PainLevel: 4, RecoveryTime: 20, TimeToAggravation: 7}) // 10

	got := Calculate(s)
	require.NotNil(t, got)
	assert.InDelta(t, 10.0, *got, 1e-9)
}

func TestCalculateRestPainIgnoredWhenDenied(t *testing.T) {
	s := models.NewLoadManagementSurvey("u1")
	s.PainLevelAtRest = 6 // stale value from a previous answer

	got := Calculate(s)
	require.NotNil(t, got)
	assert.Equal(t, 0.0, *got)
}

func TestCalculateNoQualifyingActivities(t *testing.T) {
	s := models.NewLoadManagementSurvey("u1").
		WithRestPain(4).
		WithWorkActivity(models.Activity{Name: "  ", PainLevel: 9, RecoveryTime: 60, TimeToAggravation: 0}).
		WithHobbyActivity(models.Activity{Name: "guitar", PainLevel: 0, RecoveryTime: 60, TimeToAggravation: 0})

	got := Calculate(s)
	require.NotNil(t, got)
	assert.Equal(t, 4.0, *got)
}

func TestCalculateClampsToMax(t *testing.T) {
	s := models.NewLoadManagementSurvey("u1").
		WithRestPain(8).
		WithWorkActivity(models.Activity{Name: "mousing", PainLevel: 9, RecoveryTime: 120, TimeToAggravation: 0})

	got := Calculate(s)
	require.NotNil(t, got)
	assert.Equal(t, MaxIndex, *got)
}

func TestActivityScoreZeroAggravationTime(t *testing.T) {
	score := ActivityScore(models.Activity{Name: "x", PainLevel: 3, RecoveryTime: 5, TimeToAggravation: 0})
	assert.Equal(t, 15.0, score)
}

func TestBandFor(t *testing.T) {
	tests := []struct {
		index float64
		want  Band
	}{
		{0, BandNormal},
		{4.99, BandNormal},
		{5, BandMildModerate},
		{9.5, BandMildModerate},
		{10, BandModerate},
		{14.9, BandModerate},
		{15, BandModerateSevere},
		{19.99, BandModerateSevere},
		{20, BandSevere},
		{30, BandSevere},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, BandFor(tt.index), "index %v", tt.index)
	}
}
