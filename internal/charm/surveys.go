// ABOUTME: Survey and program operations for Charm KV storage.
// ABOUTME: Surveys are keyed by user and id; the latest is found by RecordedAt.
package charm

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/elliot226/1hp-troubleshooter-sub000/internal/models"
	"github.com/elliot226/1hp-troubleshooter-sub000/internal/storage"
)

// SaveSurvey stores a survey.
func (c *Client) SaveSurvey(ctx context.Context, s *models.LoadManagementSurvey) error {
	data, err := marshalJSON(s)
	if err != nil {
		return fmt.Errorf("marshal survey: %w", err)
	}
	return c.set(key(SurveyPrefix, s.UserID, s.ID.String()), data)
}

// LatestSurvey returns the user's most recently recorded survey.
func (c *Client) LatestSurvey(ctx context.Context, userID string) (*models.LoadManagementSurvey, error) {
	surveys, err := c.listSurveys(key(SurveyPrefix, userID, ""))
	if err != nil {
		return nil, err
	}
	if len(surveys) == 0 {
		return nil, storage.ErrNotFound
	}
	return surveys[len(surveys)-1], nil
}

// LatestIrritabilityIndex returns the index from the user's latest survey,
// or nil when there is none.
func (c *Client) LatestIrritabilityIndex(ctx context.Context, userID string) (*float64, error) {
	s, err := c.LatestSurvey(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.IrritabilityIndex, nil
}

// listSurveys returns surveys under prefix, oldest first.
func (c *Client) listSurveys(prefix string) ([]*models.LoadManagementSurvey, error) {
	allData, err := c.listByPrefix(prefix)
	if err != nil {
		return nil, fmt.Errorf("list surveys: %w", err)
	}

	var surveys []*models.LoadManagementSurvey
	for _, data := range allData {
		s, err := unmarshalJSON[models.LoadManagementSurvey](data)
		if err != nil {
			continue
		}
		surveys = append(surveys, s)
	}

	sort.Slice(surveys, func(i, j int) bool {
		return surveys[i].RecordedAt.Before(surveys[j].RecordedAt)
	})
	return surveys, nil
}

// GetProgram returns the user's program record.
func (c *Client) GetProgram(ctx context.Context, userID string) (*models.Program, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := c.get(key(ProgramPrefix, userID))
	if err != nil {
		return nil, err
	}
	p, err := unmarshalJSON[models.Program](data)
	if err != nil {
		return nil, fmt.Errorf("unmarshal program: %w", err)
	}
	return p, nil
}

// SaveProgram creates or replaces the user's program record.
func (c *Client) SaveProgram(ctx context.Context, p *models.Program) error {
	data, err := marshalJSON(p)
	if err != nil {
		return fmt.Errorf("marshal program: %w", err)
	}
	return c.set(key(ProgramPrefix, p.UserID), data)
}

func (c *Client) listPrograms() ([]*models.Program, error) {
	allData, err := c.listByPrefix(ProgramPrefix)
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}

	var programs []*models.Program
	for _, data := range allData {
		p, err := unmarshalJSON[models.Program](data)
		if err != nil {
			continue
		}
		programs = append(programs, p)
	}
	sort.Slice(programs, func(i, j int) bool { return programs[i].UserID < programs[j].UserID })
	return programs, nil
}
