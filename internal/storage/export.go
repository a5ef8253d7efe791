// ABOUTME: Export and import functionality for rehab data.
// ABOUTME: Supports full JSON round-trips and a condensed YAML summary.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elliot226/1hp-troubleshooter-sub000/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportVersion is the current export format version.
const ExportVersion = "1.0"

// ExportData represents the full export format for rehab data.
type ExportData struct {
	Version       string                         `json:"version" yaml:"version"`
	ExportedAt    time.Time                      `json:"exported_at" yaml:"exported_at"`
	Tool          string                         `json:"tool" yaml:"tool"`
	Prescriptions []*models.Prescription         `json:"prescriptions" yaml:"prescriptions"`
	Surveys       []*models.LoadManagementSurvey `json:"surveys" yaml:"surveys"`
	Programs      []*models.Program              `json:"programs" yaml:"programs"`
}

func newExportData() *ExportData {
	return &ExportData{
		Version:       ExportVersion,
		ExportedAt:    time.Now(),
		Tool:          "rehab",
		Prescriptions: []*models.Prescription{},
		Surveys:       []*models.LoadManagementSurvey{},
		Programs:      []*models.Program{},
	}
}

// GetAllData retrieves all data for export.
func (d *DB) GetAllData(ctx context.Context) (*ExportData, error) {
	data := newExportData()

	prescriptions, err := d.ListPrescriptions(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list prescriptions: %w", err)
	}
	surveys, err := d.listSurveys(ctx)
	if err != nil {
		return nil, err
	}
	programs, err := d.listPrograms(ctx)
	if err != nil {
		return nil, err
	}

	data.Prescriptions = append(data.Prescriptions, prescriptions...)
	data.Surveys = append(data.Surveys, surveys...)
	data.Programs = append(data.Programs, programs...)
	return data, nil
}

// ImportData imports data from an export file.
func (d *DB) ImportData(ctx context.Context, data *ExportData) error {
	return ImportRecords(ctx, d, data)
}

// ImportRecords writes every record of data through the repository's save methods.
func ImportRecords(ctx context.Context, repo Repository, data *ExportData) error {
	for _, p := range data.Prescriptions {
		if err := repo.SavePrescription(ctx, p); err != nil {
			return fmt.Errorf("import prescription %s/%s: %w", p.UserID, p.ExerciseID, err)
		}
	}
	for _, s := range data.Surveys {
		if err := repo.SaveSurvey(ctx, s); err != nil {
			return fmt.Errorf("import survey %s: %w", s.ID, err)
		}
	}
	for _, p := range data.Programs {
		if err := repo.SaveProgram(ctx, p); err != nil {
			return fmt.Errorf("import program %s: %w", p.UserID, err)
		}
	}
	return nil
}

// ExportJSON exports all data as JSON.
func ExportJSON(ctx context.Context, repo Repository) ([]byte, error) {
	data, err := repo.GetAllData(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ExportYAML exports a condensed summary as YAML, one entry per prescription
// grouped by user.
func ExportYAML(ctx context.Context, repo Repository) ([]byte, error) {
	data, err := repo.GetAllData(ctx)
	if err != nil {
		return nil, err
	}

	yamlData := struct {
		Version    string                        `yaml:"version"`
		ExportedAt string                        `yaml:"exported_at"`
		Tool       string                        `yaml:"tool"`
		Users      map[string][]yamlPrescription `yaml:"users"`
		Surveys    int                           `yaml:"surveys"`
	}{
		Version:    data.Version,
		ExportedAt: data.ExportedAt.Format(time.RFC3339),
		Tool:       data.Tool,
		Users:      make(map[string][]yamlPrescription),
		Surveys:    len(data.Surveys),
	}

	for _, p := range data.Prescriptions {
		stats := p.Stats()
		yp := yamlPrescription{
			Exercise:  p.ExerciseID,
			Weight:    p.CurrentWeight,
			Unit:      string(p.Unit),
			RepRange:  fmt.Sprintf("%d-%d", p.TargetRepMin, p.TargetRepMax),
			Sessions:  stats.LoggedSessions,
			Completed: stats.CompletedSessions,
		}
		if ev := p.LatestEvent(); ev != nil {
			yp.LastEvent = string(ev.Event)
			yp.LastEventDate = ev.Date.Format(models.DateLayout)
		}
		yamlData.Users[p.UserID] = append(yamlData.Users[p.UserID], yp)
	}

	return yaml.Marshal(yamlData)
}

type yamlPrescription struct {
	Exercise      string  `yaml:"exercise"`
	Weight        float64 `yaml:"weight"`
	Unit          string  `yaml:"unit"`
	RepRange      string  `yaml:"rep_range"`
	Sessions      int     `yaml:"sessions"`
	Completed     int     `yaml:"completed"`
	LastEvent     string  `yaml:"last_event,omitempty"`
	LastEventDate string  `yaml:"last_event_date,omitempty"`
}

// ImportJSON imports data from JSON bytes.
func ImportJSON(ctx context.Context, repo Repository, raw []byte) error {
	var data ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("unmarshal JSON: %w", err)
	}
	return repo.ImportData(ctx, &data)
}
