// ABOUTME: Export and import for Charm KV storage.
// ABOUTME: Produces the same ExportData shape as the SQLite backend.
package charm

import (
	"context"
	"time"

	"github.com/elliot226/1hp-troubleshooter-sub000/internal/models"
	"github.com/elliot226/1hp-troubleshooter-sub000/internal/storage"
)

// GetAllData retrieves all data for export.
func (c *Client) GetAllData(ctx context.Context) (*storage.ExportData, error) {
	prescriptions, err := c.ListPrescriptions(ctx, "")
	if err != nil {
		return nil, err
	}
	surveys, err := c.listSurveys(SurveyPrefix)
	if err != nil {
		return nil, err
	}
	programs, err := c.listPrograms()
	if err != nil {
		return nil, err
	}

	data := &storage.ExportData{
		Version:       storage.ExportVersion,
		ExportedAt:    time.Now(),
		Tool:          "rehab",
		Prescriptions: prescriptions,
		Surveys:       surveys,
		Programs:      programs,
	}
	if data.Surveys == nil {
		data.Surveys = []*models.LoadManagementSurvey{}
	}
	if data.Programs == nil {
		data.Programs = []*models.Program{}
	}
	return data, nil
}

// ImportData imports data from an export file.
func (c *Client) ImportData(ctx context.Context, data *storage.ExportData) error {
	return storage.ImportRecords(ctx, c, data)
}
