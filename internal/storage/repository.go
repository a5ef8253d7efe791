// ABOUTME: Repository interface for rehab data storage.
// ABOUTME: Defines the contract for prescriptions, surveys and program records.
package storage

import (
	"context"

	"github.com/elliot226/1hp-troubleshooter-sub000/internal/models"
)

// UpdateFunc mutates a prescription in place during UpdatePrescription.
// Returning ErrNoChange skips the write.
type UpdateFunc func(p *models.Prescription) error

// Repository defines the storage interface for rehab data.
// This interface allows swapping implementations (e.g., for testing).
type Repository interface {
	// Prescription operations
	GetPrescription(ctx context.Context, userID, exerciseID string) (*models.Prescription, error)
	SavePrescription(ctx context.Context, p *models.Prescription) error
	// UpdatePrescription runs fn against the stored prescription as one
	// atomic read-modify-write. When no record exists, fallback is inserted
	// after fn has run on it; a nil fallback yields ErrNotFound.
	UpdatePrescription(ctx context.Context, userID, exerciseID string, fallback *models.Prescription, fn UpdateFunc) (*models.Prescription, error)
	ListPrescriptions(ctx context.Context, userID string) ([]*models.Prescription, error)

	// Survey operations
	SaveSurvey(ctx context.Context, s *models.LoadManagementSurvey) error
	LatestSurvey(ctx context.Context, userID string) (*models.LoadManagementSurvey, error)
	LatestIrritabilityIndex(ctx context.Context, userID string) (*float64, error)

	// Program operations
	GetProgram(ctx context.Context, userID string) (*models.Program, error)
	SaveProgram(ctx context.Context, p *models.Program) error

	// Export/Import
	GetAllData(ctx context.Context) (*ExportData, error)
	ImportData(ctx context.Context, data *ExportData) error

	// Lifecycle
	Close() error
}
