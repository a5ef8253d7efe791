// ABOUTME: Tests for the engine: tracking, evaluation, seeding and surveys.
// ABOUTME: Runs against a temp-dir SQLite repository with a fixed clock.
package engine_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/elliot226/1hp-troubleshooter-sub000/internal/catalog"
	"github.com/elliot226/1hp-troubleshooter-sub000/internal/engine"
	"github.com/elliot226/1hp-troubleshooter-sub000/internal/models"
	"github.com/elliot226/1hp-troubleshooter-sub000/internal/storage"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const user = "u1"

var clock = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func openRepo(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "rehab.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newEngine(t *testing.T, repo storage.Repository, opts ...engine.Option) *engine.Engine {
	t.Helper()
	base := []engine.Option{
		engine.WithLogger(quietLogger()),
		engine.WithClock(func() time.Time { return clock }),
	}
	return engine.New(repo, catalog.Default(), append(base, opts...)...)
}

func day(n int) time.Time {
	return clock.AddDate(0, 0, n)
}

func done(reps, pain any) engine.TrackingData {
	return engine.TrackingData{TimeOfDay: "AM", Completed: true, RepsPerformed: reps, PainLevel: pain}
}

func TestRecordTrackingUpsertKeepsLastCall(t *testing.T) {
	e := newEngine(t, openRepo(t))
	ctx := context.Background()

	_, err := e.RecordTracking(ctx, user, "wrist_flexion", done(12, 1), day(0))
	require.NoError(t, err)
	_, err = e.RecordTracking(ctx, user, "wrist_flexion", engine.TrackingData{TimeOfDay: "pm"}, day(0))
	require.NoError(t, err)
	p, err := e.RecordTracking(ctx, user, "wrist_flexion", done("17", "2"), day(0))
	require.NoError(t, err)

	require.Len(t, p.TrackingInstances, 2)
	am := p.FindInstance(day(0), models.TimeOfDayAM)
	require.NotNil(t, am)
	assert.Equal(t, 17, am.Reps())
	assert.Equal(t, 2, am.Pain())

	pm := p.FindInstance(day(0), models.TimeOfDayPM)
	require.NotNil(t, pm)
	assert.False(t, pm.Completed)
	assert.Nil(t, pm.RepsPerformed)
	assert.Nil(t, pm.PainLevel)
}

func TestRecordTrackingCreatesDefaultPrescription(t *testing.T) {
	e := newEngine(t, openRepo(t))

	p, err := e.RecordTracking(context.Background(), user, "finger_extension", done(22, 0), time.Time{})
	require.NoError(t, err)

	assert.Equal(t, models.UnitLevel, p.Unit)
	assert.Equal(t, 20, p.TargetRepMin)
	assert.Equal(t, 25, p.TargetRepMax)
	assert.Equal(t, 1, p.ConsecCompletions)
	require.Len(t, p.TrackingInstances, 1)
	assert.True(t, p.TrackingInstances[0].Date.Equal(models.CalendarDay(clock)), "zero date means today")
}

func TestRecordTrackingValidation(t *testing.T) {
	e := newEngine(t, openRepo(t))
	ctx := context.Background()

	_, err := e.RecordTracking(ctx, user, "wrist_flexion", engine.TrackingData{TimeOfDay: "noon"}, day(0))
	assert.ErrorIs(t, err, engine.ErrInvalidTimeOfDay)

	_, err = e.RecordTracking(ctx, user, "juggling", done(10, 0), day(0))
	assert.ErrorIs(t, err, engine.ErrUnknownExercise)

	_, err = e.RecordTracking(ctx, "", "wrist_flexion", done(10, 0), day(0))
	assert.ErrorIs(t, err, engine.ErrMissingUser)
}

func TestRecordTrackingSkippedSessionKeepsCounter(t *testing.T) {
	e := newEngine(t, openRepo(t))
	ctx := context.Background()

	_, err := e.RecordTracking(ctx, user, "wrist_flexion", done(18, 3), day(0))
	require.NoError(t, err)
	p, err := e.RecordTracking(ctx, user, "wrist_flexion", engine.TrackingData{TimeOfDay: "PM"}, day(0))
	require.NoError(t, err)

	assert.Equal(t, 1, p.ConsecCompletions)
	assert.False(t, p.ScalingEligible)
}

func TestEmergencyOverride(t *testing.T) {
	for _, weight := range []float64{6, 2, 1} {
		t.Run(fmt.Sprintf("weight %v", weight), func(t *testing.T) {
			repo := openRepo(t)
			ctx := context.Background()
			p := models.NewPrescription(user, "wrist_flexion", weight, models.UnitPounds, 15, 20)
			require.NoError(t, repo.SavePrescription(ctx, p))

			// A stored severe index must not mask the high-pain rule.
			s := models.NewLoadManagementSurvey(user)
			severe := 25.0
			s.IrritabilityIndex = &severe
			require.NoError(t, repo.SaveSurvey(ctx, s))

			e := newEngine(t, repo)
			got, err := e.RecordTracking(ctx, user, "wrist_flexion", done(15, 8), day(0))
			require.NoError(t, err)

			ev := got.LatestEvent()
			require.NotNil(t, ev)
			assert.Equal(t, models.EventEmergencyWeightDecrease, ev.Event)
			assert.Equal(t, max(1, weight-2), got.CurrentWeight)
			assert.Zero(t, got.ConsecCompletions)
			assert.False(t, got.ScalingEligible)
			assert.True(t, got.RecentlyScaled)
		})
	}
}

func TestEmergencyOverrideBackdatedSession(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()
	p := models.NewPrescription(user, "wrist_flexion", 6, models.UnitPounds, 15, 20)
	for n := 1; n <= 6; n++ {
		p.UpsertInstance(*models.NewTrackingInstance(day(-n), models.TimeOfDayAM, 6).WithCompletion(17, 3))
	}
	require.NoError(t, repo.SavePrescription(ctx, p))

	e := newEngine(t, repo)
	// Six newer completions push this session out of the evaluation window.
	got, err := e.RecordTracking(ctx, user, "wrist_flexion", done(15, 8), day(-7))
	require.NoError(t, err)

	ev := got.LatestEvent()
	require.NotNil(t, ev)
	assert.Equal(t, models.EventEmergencyWeightDecrease, ev.Event)
	assert.Equal(t, 4.0, got.CurrentWeight)
	assert.Len(t, got.TrackingInstances, 7)
}

func TestSixthCompletionTriggersEvaluation(t *testing.T) {
	e := newEngine(t, openRepo(t))
	ctx := context.Background()

	var p *models.Prescription
	var err error
	for i := 0; i < 5; i++ {
		p, err = e.RecordTracking(ctx, user, "wrist_flexion", done(18, 1), day(i))
		require.NoError(t, err)
	}
	assert.Equal(t, 5, p.ConsecCompletions)
	assert.Len(t, p.ScalingHistory, 1)

	p, err = e.RecordTracking(ctx, user, "wrist_flexion", done(18, 1), day(5))
	require.NoError(t, err)

	ev := p.LatestEvent()
	require.NotNil(t, ev)
	assert.Equal(t, models.EventRepIncreaseLowPain, ev.Event)
	assert.Equal(t, 20, p.TargetRepMin)
	assert.Equal(t, 25, p.TargetRepMax)
	assert.Zero(t, p.ConsecCompletions)
	assert.False(t, p.ScalingEligible)
}

func TestEvaluateResetsCountersWithoutEvent(t *testing.T) {
	repo := openRepo(t)
	e := newEngine(t, repo)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := e.RecordTracking(ctx, user, "wrist_flexion", done(17, 3), day(i))
		require.NoError(t, err)
	}

	p, err := e.EvaluateProgression(ctx, user, "wrist_flexion", nil)
	require.NoError(t, err)
	assert.Zero(t, p.ConsecCompletions)
	assert.False(t, p.ScalingEligible)
	assert.Len(t, p.ScalingHistory, 1, "neutral pain produces no event")

	stored, err := repo.GetPrescription(ctx, user, "wrist_flexion")
	require.NoError(t, err)
	assert.Zero(t, stored.ConsecCompletions)
}

func TestEvaluateEmptyHistoryIsNoop(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()

	p := models.NewPrescription(user, "wrist_flexion", 4, models.UnitPounds, 15, 20)
	p.UpsertInstance(*models.NewTrackingInstance(day(0), models.TimeOfDayAM, 4))
	p.ConsecCompletions = 4
	require.NoError(t, repo.SavePrescription(ctx, p))

	e := newEngine(t, repo)
	got, err := e.EvaluateProgression(ctx, user, "wrist_flexion", nil)
	require.NoError(t, err)
	assert.Equal(t, 4, got.ConsecCompletions)
	assert.Equal(t, p.UpdatedAt.UnixNano(), got.UpdatedAt.UnixNano())

	// Never initialized: a catalog default comes back and nothing is written.
	got, err = e.EvaluateProgression(ctx, user, "grip_squeeze", nil)
	require.NoError(t, err)
	assert.Equal(t, "grip_squeeze", got.ExerciseID)
	_, err = repo.GetPrescription(ctx, user, "grip_squeeze")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestEvaluateUsesIndexSource(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := NewMockIndexSource(ctrl)
	severe := 22.0
	src.EXPECT().LatestIrritabilityIndex(gomock.Any(), user).Return(&severe, nil)

	repo := openRepo(t)
	ctx := context.Background()
	p := models.NewPrescription(user, "wrist_flexion", 4, models.UnitPounds, 15, 20)
	p.UpsertInstance(*models.NewTrackingInstance(day(0), models.TimeOfDayAM, 4).WithCompletion(40, 0))
	require.NoError(t, repo.SavePrescription(ctx, p))

	e := newEngine(t, repo, engine.WithIndexSource(src))
	got, err := e.EvaluateProgression(ctx, user, "wrist_flexion", nil)
	require.NoError(t, err)

	assert.Equal(t, models.EventRepHalveSevere, got.LatestEvent().Event)
	assert.Equal(t, 7, got.TargetRepMin)
	assert.Equal(t, 10, got.TargetRepMax)
}

func TestEvaluateExplicitIndexSkipsLookup(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := NewMockIndexSource(ctrl)
	src.EXPECT().LatestIrritabilityIndex(gomock.Any(), gomock.Any()).Times(0)

	repo := openRepo(t)
	ctx := context.Background()
	p := models.NewPrescription(user, "wrist_flexion", 4, models.UnitPounds, 15, 20)
	p.UpsertInstance(*models.NewTrackingInstance(day(0), models.TimeOfDayAM, 4).WithCompletion(46, 9))
	require.NoError(t, repo.SavePrescription(ctx, p))

	normal := 1.0
	e := newEngine(t, repo, engine.WithIndexSource(src))
	got, err := e.EvaluateProgression(ctx, user, "wrist_flexion", &normal)
	require.NoError(t, err)

	assert.Equal(t, models.EventWeightIncreaseNormal, got.LatestEvent().Event)
	assert.Equal(t, 6.0, got.CurrentWeight)
}

func TestEvaluateIndexLookupFailureDegrades(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := NewMockIndexSource(ctrl)
	src.EXPECT().LatestIrritabilityIndex(gomock.Any(), user).Return(nil, errors.New("storage offline"))

	repo := openRepo(t)
	ctx := context.Background()
	p := models.NewPrescription(user, "wrist_flexion", 4, models.UnitPounds, 15, 20)
	p.UpsertInstance(*models.NewTrackingInstance(day(0), models.TimeOfDayAM, 4).WithCompletion(45, 0))
	require.NoError(t, repo.SavePrescription(ctx, p))

	e := newEngine(t, repo, engine.WithIndexSource(src))
	got, err := e.EvaluateProgression(ctx, user, "wrist_flexion", nil)
	require.NoError(t, err)

	assert.Equal(t, models.EventWeightIncrease, got.LatestEvent().Event, "tracking-only rules apply")
	assert.Equal(t, 6.0, got.CurrentWeight)
}

func TestGetPrescriptionDefault(t *testing.T) {
	repo := openRepo(t)
	e := newEngine(t, repo)
	ctx := context.Background()

	p, err := e.GetPrescription(ctx, user, "biceps_curl")
	require.NoError(t, err)
	assert.Equal(t, 4.0, p.CurrentWeight)
	require.Len(t, p.ScalingHistory, 1)
	assert.Equal(t, models.EventInitial, p.ScalingHistory[0].Event)

	list, err := e.ListPrescriptions(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, list, "defaults are not persisted")

	_, err = e.GetPrescription(ctx, user, "juggling")
	assert.ErrorIs(t, err, engine.ErrUnknownExercise)
}

func TestInitializePrescription(t *testing.T) {
	e := newEngine(t, openRepo(t))
	ctx := context.Background()

	p, err := e.InitializePrescription(ctx, user, "wrist_flexion", map[string]int{"wrist_flexion_test": 120})
	require.NoError(t, err)
	assert.Equal(t, 8.0, p.CurrentWeight)
	assert.Equal(t, 8.0, p.InitialWeight)
	require.Len(t, p.ScalingHistory, 1)
	assert.Equal(t, models.CalendarDay(clock), p.ScalingHistory[0].Date)

	again, err := e.InitializePrescription(ctx, user, "wrist_flexion", map[string]int{"wrist_flexion_test": 30})
	require.NoError(t, err)
	assert.Equal(t, p.ID, again.ID, "existing prescription is kept")
	assert.Equal(t, 8.0, again.CurrentWeight)
}

func TestInitializeAllPrescriptions(t *testing.T) {
	repo := openRepo(t)
	e := newEngine(t, repo, engine.WithSeedConcurrency(3))
	ctx := context.Background()

	results := map[string]int{
		"wrist_flexion_test":      30,
		"wrist_extension_test":    120,
		"forearm_pronation_test":  120,
		"forearm_supination_test": 30,
	}
	report, err := e.InitializeAllPrescriptions(ctx, user, results)
	require.NoError(t, err)
	assert.True(t, report.Complete())
	assert.Len(t, report.Seeded, len(catalog.Default().IDs()))
	assert.Empty(t, report.Skipped)

	require.NotNil(t, report.Program)
	assert.True(t, report.Program.StartedAt.Equal(clock))
	assert.True(t, report.Program.NextReassessmentAt.Equal(clock.Add(models.ReassessmentInterval)))

	rotation, err := repo.GetPrescription(ctx, user, "forearm_rotation")
	require.NoError(t, err)
	assert.Equal(t, 4.0, rotation.CurrentWeight, "lower of two tests")

	reverse, err := repo.GetPrescription(ctx, user, "reverse_curl")
	require.NoError(t, err)
	assert.Equal(t, 16.0, reverse.CurrentWeight, "doubled")

	report, err = e.InitializeAllPrescriptions(ctx, user, results)
	require.NoError(t, err)
	assert.Empty(t, report.Seeded)
	assert.Len(t, report.Skipped, len(catalog.Default().IDs()))
}

// flakyRepo fails the first write for selected exercises.
type flakyRepo struct {
	storage.Repository
	failing map[string]bool
}

func (r *flakyRepo) UpdatePrescription(ctx context.Context, userID, exerciseID string, fallback *models.Prescription, fn storage.UpdateFunc) (*models.Prescription, error) {
	if r.failing[exerciseID] {
		return nil, errors.New("disk full")
	}
	return r.Repository.UpdatePrescription(ctx, userID, exerciseID, fallback, fn)
}

func TestInitializeAllPartialFailureCanBeRetried(t *testing.T) {
	db := openRepo(t)
	repo := &flakyRepo{Repository: db, failing: map[string]bool{"grip_squeeze": true, "biceps_curl": true}}
	e := newEngine(t, repo)
	ctx := context.Background()

	report, err := e.InitializeAllPrescriptions(ctx, user, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "grip_squeeze")
	assert.Contains(t, err.Error(), "biceps_curl")
	assert.Equal(t, []string{"biceps_curl", "grip_squeeze"}, report.Failed)
	assert.False(t, report.Complete())
	assert.Nil(t, report.Program)

	_, err = db.GetProgram(ctx, user)
	assert.ErrorIs(t, err, storage.ErrNotFound, "program is only stamped on full success")

	repo.failing = nil
	report, err = e.InitializeAllPrescriptions(ctx, user, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"biceps_curl", "grip_squeeze"}, report.Seeded)
	assert.Len(t, report.Skipped, len(catalog.Default().IDs())-2)
}

func TestSubmitSurvey(t *testing.T) {
	repo := openRepo(t)
	e := newEngine(t, repo)
	ctx := context.Background()

	_, err := e.Program(ctx, user)
	assert.ErrorIs(t, err, engine.ErrProgramNotStarted)

	s := models.NewLoadManagementSurvey(user).
		WithRestPain(3).
		WithWorkActivity(models.Activity{Name: "typing", PainLevel: 5, RecoveryTime: 30, TimeToAggravation: 9})
	s.RecordedAt = clock

	res, err := e.SubmitSurvey(ctx, s)
	require.NoError(t, err)
	require.NotNil(t, res.Index)
	assert.Equal(t, 18.0, *res.Index)
	assert.Equal(t, "moderate-severe", res.Band)
	assert.True(t, res.Program.NextReassessmentAt.Equal(clock.Add(models.ReassessmentInterval)))

	index, err := repo.LatestIrritabilityIndex(ctx, user)
	require.NoError(t, err)
	require.NotNil(t, index)
	assert.Equal(t, 18.0, *index)

	status, err := e.Program(ctx, user)
	require.NoError(t, err)
	assert.False(t, status.ReassessmentDue)
}

func TestCalculateIrritabilityIndexNil(t *testing.T) {
	e := newEngine(t, openRepo(t))
	assert.Nil(t, e.CalculateIrritabilityIndex(nil))
}

func TestStats(t *testing.T) {
	e := newEngine(t, openRepo(t))
	ctx := context.Background()

	_, err := e.RecordTracking(ctx, user, "wrist_flexion", done(18, 3), day(0))
	require.NoError(t, err)
	_, err = e.RecordTracking(ctx, user, "wrist_flexion", engine.TrackingData{TimeOfDay: "PM"}, day(0))
	require.NoError(t, err)

	stats, err := e.Stats(ctx, user)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, 2, stats[0].LoggedSessions)
	assert.Equal(t, 1, stats[0].CompletedSessions)
	assert.InDelta(t, 0.5, stats[0].CompletionRate, 1e-9)
}
