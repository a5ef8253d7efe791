// ABOUTME: Load-management survey submission and program status.
// ABOUTME: Submitting a survey caches its irritability index and reschedules reassessment.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/elliot226/1hp-troubleshooter-sub000/internal/irritability"
	"github.com/elliot226/1hp-troubleshooter-sub000/internal/models"
	"github.com/elliot226/1hp-troubleshooter-sub000/internal/storage"
	"github.com/sirupsen/logrus"
)

// SurveyResult is the outcome of a survey submission.
type SurveyResult struct {
	Survey  *models.LoadManagementSurvey `json:"survey"`
	Index   *float64                     `json:"irritability_index"`
	Band    string                       `json:"band,omitempty"`
	Program *models.Program              `json:"program"`
}

// ProgramStatus is a user's program record with its reassessment state.
type ProgramStatus struct {
	Program         *models.Program `json:"program"`
	ReassessmentDue bool            `json:"reassessment_due"`
}

// CalculateIrritabilityIndex computes the index for a survey. A nil survey yields nil.
func (e *Engine) CalculateIrritabilityIndex(s *models.LoadManagementSurvey) *float64 {
	return irritability.Calculate(s)
}

// SubmitSurvey stores a survey with its computed index and pushes the user's
// next reassessment a week past the survey.
func (e *Engine) SubmitSurvey(ctx context.Context, s *models.LoadManagementSurvey) (*SurveyResult, error) {
	if s == nil || s.UserID == "" {
		return nil, ErrMissingUser
	}
	if s.RecordedAt.IsZero() {
		s.RecordedAt = e.now()
	}

	s.IrritabilityIndex = irritability.Calculate(s)
	if err := e.repo.SaveSurvey(ctx, s); err != nil {
		return nil, fmt.Errorf("save survey: %w", err)
	}

	prog, err := e.repo.GetProgram(ctx, s.UserID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		prog = models.NewProgram(s.UserID, s.RecordedAt)
	case err != nil:
		return nil, fmt.Errorf("get program: %w", err)
	}
	recorded := s.RecordedAt
	prog.LastSurveyAt = &recorded
	prog.NextReassessmentAt = recorded.Add(models.ReassessmentInterval)
	if err := e.repo.SaveProgram(ctx, prog); err != nil {
		return nil, fmt.Errorf("save program: %w", err)
	}

	result := &SurveyResult{Survey: s, Index: s.IrritabilityIndex, Program: prog}
	fields := logrus.Fields{"user": s.UserID}
	if s.IrritabilityIndex != nil {
		band := irritability.BandFor(*s.IrritabilityIndex)
		result.Band = band.String()
		fields["irritability"] = *s.IrritabilityIndex
		fields["band"] = result.Band
	}
	e.log.WithFields(fields).Info("survey submitted")
	return result, nil
}

// Program returns the user's program and whether a reassessment survey is due.
func (e *Engine) Program(ctx context.Context, userID string) (*ProgramStatus, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	prog, err := e.repo.GetProgram(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrProgramNotStarted
	}
	if err != nil {
		return nil, fmt.Errorf("get program: %w", err)
	}

	return &ProgramStatus{
		Program:         prog,
		ReassessmentDue: prog.ReassessmentDue(e.now()),
	}, nil
}
