// ABOUTME: Engine orchestrates tracking, progression, seeding and surveys.
// ABOUTME: All prescription mutations go through one atomic repository update.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/elliot226/1hp-troubleshooter-sub000/internal/catalog"
	"github.com/elliot226/1hp-troubleshooter-sub000/internal/irritability"
	"github.com/elliot226/1hp-troubleshooter-sub000/internal/models"
	"github.com/elliot226/1hp-troubleshooter-sub000/internal/progression"
	"github.com/elliot226/1hp-troubleshooter-sub000/internal/storage"
	"github.com/sirupsen/logrus"
)

// DefaultSeedConcurrency bounds the bulk seeding fan-out.
const DefaultSeedConcurrency = 4

// Engine is the prescription progression engine.
type Engine struct {
	repo      storage.Repository
	catalog   *catalog.Catalog
	index     IndexSource
	log       logrus.FieldLogger
	now       func() time.Time
	seedLimit int
}

// Option configures an Engine.
type Option func(*Engine)

// WithIndexSource overrides where irritability indexes are looked up.
func WithIndexSource(src IndexSource) Option {
	return func(e *Engine) { e.index = src }
}

// WithLogger sets the engine logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(e *Engine) { e.log = log }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithSeedConcurrency bounds how many exercises are seeded at once.
func WithSeedConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.seedLimit = n
		}
	}
}

// New creates an engine over repo and cat. The repository is also the
// default IndexSource.
func New(repo storage.Repository, cat *catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{
		repo:      repo,
		catalog:   cat,
		index:     repo,
		log:       logrus.StandardLogger(),
		now:       time.Now,
		seedLimit: DefaultSeedConcurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the exercise catalog the engine serves.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// RecordTracking logs one session for an exercise and runs an evaluation
// when the session reports high pain or the prescription becomes eligible.
// A zero date means today.
func (e *Engine) RecordTracking(ctx context.Context, userID, exerciseID string, data TrackingData, date time.Time) (*models.Prescription, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	ex, err := e.catalog.Get(exerciseID)
	if err != nil {
		return nil, err
	}
	tod, err := models.ParseTimeOfDay(data.TimeOfDay)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, data.TimeOfDay)
	}

	now := e.now()
	if date.IsZero() {
		date = now
	}

	var reps, pain int
	if data.Completed {
		reps = normalizeReps(data.RepsPerformed)
		pain = normalizePain(data.PainLevel)
	}

	p, err := e.repo.UpdatePrescription(ctx, userID, exerciseID, e.fallback(ex, userID),
		func(p *models.Prescription) error {
			ti := models.NewTrackingInstance(date, tod, p.CurrentWeight)
			ti.LoggedAt = now
			if data.Completed {
				ti.WithCompletion(reps, pain)
				p.ConsecCompletions++
			}
			p.UpsertInstance(*ti)
			p.ScalingEligible = p.ConsecCompletions >= models.EligibilityThreshold
			p.UpdatedAt = now
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("record tracking: %w", err)
	}

	log := e.log.WithFields(logrus.Fields{
		"user":        userID,
		"exercise":    exerciseID,
		"session":     tod,
		"completed":   data.Completed,
		"consecutive": p.ConsecCompletions,
	})

	switch {
	case data.Completed && pain >= progression.HighPain:
		log.WithField("pain", pain).Warn("high pain reported, evaluating immediately")
		// The emergency path skips the index and counts this session's pain
		// even when it is dated behind the evaluation window.
		return e.evaluate(ctx, ex, userID, nil, false, pain)
	case p.ScalingEligible:
		log.Debug("scaling threshold reached")
		return e.EvaluateProgression(ctx, userID, exerciseID, nil)
	}

	log.Debug("tracking recorded")
	return p, nil
}

// EvaluateProgression evaluates the recent completions of an exercise and
// applies any scaling event. A nil index is looked up from the IndexSource;
// lookup failures fall back to tracking-only rules.
func (e *Engine) EvaluateProgression(ctx context.Context, userID, exerciseID string, index *float64) (*models.Prescription, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	ex, err := e.catalog.Get(exerciseID)
	if err != nil {
		return nil, err
	}
	return e.evaluate(ctx, ex, userID, index, index == nil, 0)
}

// evaluate runs one evaluation. reportedPain is folded into the window's peak pain.
func (e *Engine) evaluate(ctx context.Context, ex *catalog.Exercise, userID string, index *float64, lookup bool, reportedPain int) (*models.Prescription, error) {
	if lookup {
		index = e.lookupIndex(ctx, userID)
	}

	now := e.now()
	var event *models.ScalingEvent

	p, err := e.repo.UpdatePrescription(ctx, userID, ex.ID, e.fallback(ex, userID),
		func(p *models.Prescription) error {
			ev, evaluated := progression.EvaluateReported(p, index, reportedPain, now)
			if !evaluated {
				return storage.ErrNoChange
			}
			if ev != nil {
				copied := *ev
				event = &copied
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("evaluate progression: %w", err)
	}

	fields := logrus.Fields{"user": userID, "exercise": ex.ID}
	if index != nil {
		fields["irritability"] = *index
		fields["band"] = irritability.BandFor(*index).String()
	}
	if event != nil {
		fields["event"] = event.Event
		fields["weight"] = event.Weight
		fields["reps"] = fmt.Sprintf("%d-%d", event.RepRangeMin, event.RepRangeMax)
		e.log.WithFields(fields).Info("prescription scaled")
	} else {
		e.log.WithFields(fields).Debug("evaluation produced no scaling event")
	}
	return p, nil
}

// lookupIndex fetches the latest irritability index, treating any failure as absent.
func (e *Engine) lookupIndex(ctx context.Context, userID string) *float64 {
	if e.index == nil {
		return nil
	}
	index, err := e.index.LatestIrritabilityIndex(ctx, userID)
	if err != nil {
		e.log.WithError(err).WithField("user", userID).
			Warn("irritability index unavailable, using tracking-only rules")
		return nil
	}
	return index
}

// GetPrescription returns the stored prescription, or an unsaved catalog
// default when the exercise was never initialized.
func (e *Engine) GetPrescription(ctx context.Context, userID, exerciseID string) (*models.Prescription, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	ex, err := e.catalog.Get(exerciseID)
	if err != nil {
		return nil, err
	}

	p, err := e.repo.GetPrescription(ctx, userID, exerciseID)
	if errors.Is(err, storage.ErrNotFound) {
		return e.fallback(ex, userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get prescription: %w", err)
	}
	return p, nil
}

// ListPrescriptions returns every stored prescription for a user.
func (e *Engine) ListPrescriptions(ctx context.Context, userID string) ([]*models.Prescription, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	list, err := e.repo.ListPrescriptions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list prescriptions: %w", err)
	}
	return list, nil
}

// Stats returns display statistics for each stored prescription.
func (e *Engine) Stats(ctx context.Context, userID string) ([]models.PrescriptionStats, error) {
	list, err := e.ListPrescriptions(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats := make([]models.PrescriptionStats, 0, len(list))
	for _, p := range list {
		stats = append(stats, p.Stats())
	}
	return stats, nil
}

// fallback synthesizes the catalog default prescription stamped with the engine clock.
func (e *Engine) fallback(ex *catalog.Exercise, userID string) *models.Prescription {
	p := ex.DefaultPrescription(userID)
	now := e.now()
	p.CreatedAt = now
	p.UpdatedAt = now
	for i := range p.ScalingHistory {
		p.ScalingHistory[i].Date = models.CalendarDay(now)
	}
	return p
}
