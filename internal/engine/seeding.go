// ABOUTME: Prescription initialization from endurance-test results.
// ABOUTME: Bulk seeding fans out per exercise and reports partial failures.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/elliot226/1hp-troubleshooter-sub000/internal/catalog"
	"github.com/elliot226/1hp-troubleshooter-sub000/internal/models"
	"github.com/elliot226/1hp-troubleshooter-sub000/internal/seed"
	"github.com/elliot226/1hp-troubleshooter-sub000/internal/storage"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// SeedReport lists the outcome of a bulk initialization per exercise id.
// Failed exercises can be retried; seeded ones are skipped on the next run.
type SeedReport struct {
	Seeded  []string        `json:"seeded"`
	Skipped []string        `json:"skipped"`
	Failed  []string        `json:"failed"`
	Program *models.Program `json:"program,omitempty"`
}

// Complete reports whether every exercise is now initialized.
func (r *SeedReport) Complete() bool {
	return len(r.Failed) == 0
}

// InitializePrescription seeds one exercise from endurance results. An
// existing prescription is returned unchanged.
func (e *Engine) InitializePrescription(ctx context.Context, userID, exerciseID string, results seed.Results) (*models.Prescription, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	ex, err := e.catalog.Get(exerciseID)
	if err != nil {
		return nil, err
	}
	p, _, err := e.initialize(ctx, ex, userID, results)
	return p, err
}

func (e *Engine) initialize(ctx context.Context, ex *catalog.Exercise, userID string, results seed.Results) (*models.Prescription, bool, error) {
	fresh, fromTest := seed.Prescription(ex, userID, results)
	now := e.now()
	fresh.CreatedAt = now
	fresh.UpdatedAt = now
	fresh.ScalingHistory[0].Date = models.CalendarDay(now)

	created := false
	p, err := e.repo.UpdatePrescription(ctx, userID, ex.ID, fresh, func(p *models.Prescription) error {
		if p.ID != fresh.ID {
			return storage.ErrNoChange
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("initialize %s: %w", ex.ID, err)
	}

	if created {
		e.log.WithFields(logrus.Fields{
			"user":      userID,
			"exercise":  ex.ID,
			"weight":    p.CurrentWeight,
			"from_test": fromTest,
		}).Info("prescription initialized")
	}
	return p, created, nil
}

// InitializeAllPrescriptions seeds every catalog exercise concurrently. On
// full success the user's program is stamped with its start time (first run
// only) and the next reassessment date. The returned error combines every
// per-exercise failure; the report is always returned.
func (e *Engine) InitializeAllPrescriptions(ctx context.Context, userID string, results seed.Results) (*SeedReport, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}

	var (
		mu     sync.Mutex
		report = &SeedReport{Seeded: []string{}, Skipped: []string{}, Failed: []string{}}
		errs   error
	)

	var g errgroup.Group
	g.SetLimit(e.seedLimit)
	for _, ex := range e.catalog.All() {
		ex := ex
		g.Go(func() error {
			_, created, err := e.initialize(ctx, &ex, userID, results)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				report.Failed = append(report.Failed, ex.ID)
				errs = multierr.Append(errs, err)
			case created:
				report.Seeded = append(report.Seeded, ex.ID)
			default:
				report.Skipped = append(report.Skipped, ex.ID)
			}
			// Failures are collected, not propagated, so every exercise is attempted.
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(report.Seeded)
	sort.Strings(report.Skipped)
	sort.Strings(report.Failed)

	log := e.log.WithFields(logrus.Fields{
		"user":    userID,
		"seeded":  len(report.Seeded),
		"skipped": len(report.Skipped),
		"failed":  len(report.Failed),
	})
	if errs != nil {
		log.WithError(errs).Warn("bulk initialization incomplete")
		return report, errs
	}

	prog, err := e.stampProgram(ctx, userID)
	if err != nil {
		return report, err
	}
	report.Program = prog
	log.Info("all prescriptions initialized")
	return report, nil
}

// stampProgram records the program start (if unset) and schedules the next reassessment.
func (e *Engine) stampProgram(ctx context.Context, userID string) (*models.Program, error) {
	now := e.now()
	prog, err := e.repo.GetProgram(ctx, userID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		prog = models.NewProgram(userID, now)
	case err != nil:
		return nil, fmt.Errorf("get program: %w", err)
	default:
		prog.NextReassessmentAt = now.Add(models.ReassessmentInterval)
	}

	if err := e.repo.SaveProgram(ctx, prog); err != nil {
		return nil, fmt.Errorf("save program: %w", err)
	}
	return prog, nil
}
