// ABOUTME: Load-management survey and program storage for SQLite.
// ABOUTME: Surveys are stored as JSON payloads with the computed index alongside.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/elliot226/1hp-troubleshooter-sub000/internal/models"
)

// SaveSurvey stores a survey, replacing any survey with the same id.
func (d *DB) SaveSurvey(ctx context.Context, s *models.LoadManagementSurvey) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal survey: %w", err)
	}

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO surveys (id, user_id, recorded_at, irritability_index, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			recorded_at = excluded.recorded_at,
			irritability_index = excluded.irritability_index,
			payload = excluded.payload
	`,
		s.ID.String(),
		s.UserID,
		s.RecordedAt.UTC().Format(timestampLayout),
		s.IrritabilityIndex,
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("save survey: %w", err)
	}
	return nil
}

// LatestSurvey returns the user's most recently recorded survey.
func (d *DB) LatestSurvey(ctx context.Context, userID string) (*models.LoadManagementSurvey, error) {
	var payload string
	err := d.db.QueryRowContext(ctx, `
		SELECT payload FROM surveys
		WHERE user_id = ?
		ORDER BY recorded_at DESC
		LIMIT 1
	`, userID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest survey: %w", err)
	}

	var s models.LoadManagementSurvey
	if err := json.Unmarshal([]byte(payload), &s); err != nil {
		return nil, fmt.Errorf("unmarshal survey: %w", err)
	}
	return &s, nil
}

// LatestIrritabilityIndex returns the index stored with the user's latest
// survey, or nil when there is no survey or it had no index.
func (d *DB) LatestIrritabilityIndex(ctx context.Context, userID string) (*float64, error) {
	var index sql.NullFloat64
	err := d.db.QueryRowContext(ctx, `
		SELECT irritability_index FROM surveys
		WHERE user_id = ?
		ORDER BY recorded_at DESC
		LIMIT 1
	`, userID).Scan(&index)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest irritability index: %w", err)
	}
	if !index.Valid {
		return nil, nil
	}
	return &index.Float64, nil
}

func (d *DB) listSurveys(ctx context.Context) ([]*models.LoadManagementSurvey, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT payload FROM surveys ORDER BY user_id, recorded_at`)
	if err != nil {
		return nil, fmt.Errorf("list surveys: %w", err)
	}
	defer rows.Close()

	var surveys []*models.LoadManagementSurvey
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan survey: %w", err)
		}
		var s models.LoadManagementSurvey
		if err := json.Unmarshal([]byte(payload), &s); err != nil {
			return nil, fmt.Errorf("unmarshal survey: %w", err)
		}
		surveys = append(surveys, &s)
	}
	return surveys, rows.Err()
}

// GetProgram returns the user's program record.
func (d *DB) GetProgram(ctx context.Context, userID string) (*models.Program, error) {
	return scanProgram(d.db.QueryRowContext(ctx, `
		SELECT user_id, started_at, next_reassessment_at, last_survey_at
		FROM programs WHERE user_id = ?
	`, userID))
}

// SaveProgram creates or replaces the user's program record.
func (d *DB) SaveProgram(ctx context.Context, p *models.Program) error {
	var lastSurvey *string
	if p.LastSurveyAt != nil {
		s := p.LastSurveyAt.UTC().Format(timestampLayout)
		lastSurvey = &s
	}

	_, err := d.db.ExecContext(ctx, `
		INSERT INTO programs (user_id, started_at, next_reassessment_at, last_survey_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			started_at = excluded.started_at,
			next_reassessment_at = excluded.next_reassessment_at,
			last_survey_at = excluded.last_survey_at
	`,
		p.UserID,
		p.StartedAt.UTC().Format(timestampLayout),
		p.NextReassessmentAt.UTC().Format(timestampLayout),
		lastSurvey,
	)
	if err != nil {
		return fmt.Errorf("save program: %w", err)
	}
	return nil
}

func (d *DB) listPrograms(ctx context.Context) ([]*models.Program, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT user_id, started_at, next_reassessment_at, last_survey_at
		FROM programs ORDER BY user_id
	`)
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	defer rows.Close()

	var programs []*models.Program
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return nil, err
		}
		programs = append(programs, p)
	}
	return programs, rows.Err()
}

func scanProgram(row rowScanner) (*models.Program, error) {
	var (
		p             models.Program
		started, next string
		lastSurvey    sql.NullString
	)
	err := row.Scan(&p.UserID, &started, &next, &lastSurvey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan program: %w", err)
	}

	if p.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	if p.NextReassessmentAt, err = time.Parse(time.RFC3339Nano, next); err != nil {
		return nil, fmt.Errorf("parse next_reassessment_at: %w", err)
	}
	if lastSurvey.Valid {
		t, err := time.Parse(time.RFC3339Nano, lastSurvey.String)
		if err != nil {
			return nil, fmt.Errorf("parse last_survey_at: %w", err)
		}
		p.LastSurveyAt = &t
	}
	return &p, nil
}
