// ABOUTME: Prescription CRUD operations for SQLite storage.
// ABOUTME: Tracking instances and scaling events live in child tables ordered by position.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/elliot226/1hp-troubleshooter-sub000/internal/models"
	"github.com/google/uuid"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const prescriptionColumns = `
	id, user_id, exercise_id, current_weight, initial_weight, unit,
	target_rep_min, target_rep_max, consec_completions, scaling_eligible,
	last_scaled_date, recently_scaled, created_at, updated_at`

// GetPrescription retrieves the prescription for a user's exercise.
func (d *DB) GetPrescription(ctx context.Context, userID, exerciseID string) (*models.Prescription, error) {
	return loadPrescription(ctx, d.db, userID, exerciseID)
}

// SavePrescription stores a prescription, replacing any existing record for
// the same user and exercise.
func (d *DB) SavePrescription(ctx context.Context, p *models.Prescription) error {
	return d.withTx(ctx, func(tx *sql.Tx) error {
		return writePrescription(ctx, tx, p)
	})
}

// UpdatePrescription performs an atomic read-modify-write of a prescription.
func (d *DB) UpdatePrescription(ctx context.Context, userID, exerciseID string, fallback *models.Prescription, fn UpdateFunc) (*models.Prescription, error) {
	var result *models.Prescription

	err := d.withTx(ctx, func(tx *sql.Tx) error {
		p, err := loadPrescription(ctx, tx, userID, exerciseID)
		switch {
		case errors.Is(err, ErrNotFound) && fallback != nil:
			p = fallback.Clone()
		case err != nil:
			return err
		}

		if err := fn(p); err != nil {
			if errors.Is(err, ErrNoChange) {
				result = p
				return nil
			}
			return err
		}

		if err := writePrescription(ctx, tx, p); err != nil {
			return err
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListPrescriptions returns all of a user's prescriptions ordered by exercise id.
func (d *DB) ListPrescriptions(ctx context.Context, userID string) ([]*models.Prescription, error) {
	query := `SELECT ` + prescriptionColumns + ` FROM prescriptions`
	var args []any
	if userID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY user_id, exercise_id`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list prescriptions: %w", err)
	}

	var list []*models.Prescription
	for rows.Next() {
		p, err := scanPrescription(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("list prescriptions: %w", err)
	}
	_ = rows.Close()

	// Children are loaded after the cursor is closed; the pool holds one connection.
	for _, p := range list {
		if err := loadChildren(ctx, d.db, p); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func loadPrescription(ctx context.Context, q querier, userID, exerciseID string) (*models.Prescription, error) {
	query := `SELECT ` + prescriptionColumns + ` FROM prescriptions WHERE user_id = ? AND exercise_id = ?`
	p, err := scanPrescription(q.QueryRowContext(ctx, query, userID, exerciseID))
	if err != nil {
		return nil, err
	}
	if err := loadChildren(ctx, q, p); err != nil {
		return nil, err
	}
	return p, nil
}

func writePrescription(ctx context.Context, q querier, p *models.Prescription) error {
	// Children cascade with the parent row.
	if _, err := q.ExecContext(ctx,
		`DELETE FROM prescriptions WHERE user_id = ? AND exercise_id = ?`,
		p.UserID, p.ExerciseID,
	); err != nil {
		return fmt.Errorf("replace prescription: %w", err)
	}

	var lastScaled *string
	if p.LastScaledDate != nil {
		s := p.LastScaledDate.Format(models.DateLayout)
		lastScaled = &s
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO prescriptions (`+prescriptionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.ID.String(),
		p.UserID,
		p.ExerciseID,
		p.CurrentWeight,
		p.InitialWeight,
		string(p.Unit),
		p.TargetRepMin,
		p.TargetRepMax,
		p.ConsecCompletions,
		p.ScalingEligible,
		lastScaled,
		p.RecentlyScaled,
		p.CreatedAt.Format(timestampLayout),
		p.UpdatedAt.Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("save prescription: %w", err)
	}

	for i, ti := range p.TrackingInstances {
		_, err := q.ExecContext(ctx, `
			INSERT INTO tracking_instances
				(id, prescription_id, position, date, time_of_day, completed, reps_performed, pain_level, weight, logged_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			ti.ID.String(),
			p.ID.String(),
			i,
			ti.Date.Format(models.DateLayout),
			string(ti.TimeOfDay),
			ti.Completed,
			ti.RepsPerformed,
			ti.PainLevel,
			ti.Weight,
			ti.LoggedAt.Format(timestampLayout),
		)
		if err != nil {
			return fmt.Errorf("save tracking instance: %w", err)
		}
	}

	for i, ev := range p.ScalingHistory {
		_, err := q.ExecContext(ctx, `
			INSERT INTO scaling_events
				(id, prescription_id, position, date, event, weight, rep_range_min, rep_range_max)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			ev.ID,
			p.ID.String(),
			i,
			ev.Date.Format(models.DateLayout),
			string(ev.Event),
			ev.Weight,
			ev.RepRangeMin,
			ev.RepRangeMax,
		)
		if err != nil {
			return fmt.Errorf("save scaling event: %w", err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPrescription(row rowScanner) (*models.Prescription, error) {
	var (
		p                    models.Prescription
		id, unit             string
		lastScaled           sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(
		&id, &p.UserID, &p.ExerciseID, &p.CurrentWeight, &p.InitialWeight, &unit,
		&p.TargetRepMin, &p.TargetRepMax, &p.ConsecCompletions, &p.ScalingEligible,
		&lastScaled, &p.RecentlyScaled, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan prescription: %w", err)
	}

	if p.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse prescription id: %w", err)
	}
	p.Unit = models.WeightUnit(unit)
	if lastScaled.Valid {
		t, err := time.Parse(models.DateLayout, lastScaled.String)
		if err != nil {
			return nil, fmt.Errorf("parse last scaled date: %w", err)
		}
		p.LastScaledDate = &t
	}
	if p.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if p.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	p.TrackingInstances = []models.TrackingInstance{}
	p.ScalingHistory = []models.ScalingEvent{}
	return &p, nil
}

func loadChildren(ctx context.Context, q querier, p *models.Prescription) error {
	instances, err := loadTrackingInstances(ctx, q, p.ID)
	if err != nil {
		return err
	}
	events, err := loadScalingEvents(ctx, q, p.ID)
	if err != nil {
		return err
	}
	p.TrackingInstances = instances
	p.ScalingHistory = events
	return nil
}

func loadTrackingInstances(ctx context.Context, q querier, prescriptionID uuid.UUID) ([]models.TrackingInstance, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, date, time_of_day, completed, reps_performed, pain_level, weight, logged_at
		FROM tracking_instances
		WHERE prescription_id = ?
		ORDER BY position
	`, prescriptionID.String())
	if err != nil {
		return nil, fmt.Errorf("list tracking instances: %w", err)
	}
	defer rows.Close()

	instances := []models.TrackingInstance{}
	for rows.Next() {
		var (
			ti            models.TrackingInstance
			id, date, tod string
			loggedAt      string
			reps, pain    sql.NullInt64
		)
		if err := rows.Scan(&id, &date, &tod, &ti.Completed, &reps, &pain, &ti.Weight, &loggedAt); err != nil {
			return nil, fmt.Errorf("scan tracking instance: %w", err)
		}
		if ti.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse tracking instance id: %w", err)
		}
		if ti.Date, err = time.Parse(models.DateLayout, date); err != nil {
			return nil, fmt.Errorf("parse tracking date: %w", err)
		}
		if ti.LoggedAt, err = time.Parse(time.RFC3339Nano, loggedAt); err != nil {
			return nil, fmt.Errorf("parse logged_at: %w", err)
		}
		ti.TimeOfDay = models.TimeOfDay(tod)
		ti.RepsPerformed = nullableInt(reps)
		ti.PainLevel = nullableInt(pain)
		instances = append(instances, ti)
	}
	return instances, rows.Err()
}

func loadScalingEvents(ctx context.Context, q querier, prescriptionID uuid.UUID) ([]models.ScalingEvent, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, date, event, weight, rep_range_min, rep_range_max
		FROM scaling_events
		WHERE prescription_id = ?
		ORDER BY position
	`, prescriptionID.String())
	if err != nil {
		return nil, fmt.Errorf("list scaling events: %w", err)
	}
	defer rows.Close()

	events := []models.ScalingEvent{}
	for rows.Next() {
		var (
			ev          models.ScalingEvent
			date, event string
		)
		if err := rows.Scan(&ev.ID, &date, &event, &ev.Weight, &ev.RepRangeMin, &ev.RepRangeMax); err != nil {
			return nil, fmt.Errorf("scan scaling event: %w", err)
		}
		if ev.Date, err = time.Parse(models.DateLayout, date); err != nil {
			return nil, fmt.Errorf("parse scaling date: %w", err)
		}
		ev.Event = models.EventKind(event)
		events = append(events, ev)
	}
	return events, rows.Err()
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
