// ABOUTME: Data migration between rehab storage backends.
// ABOUTME: Copies prescriptions, surveys, and program records from source to destination.

package storage

import (
	"context"
	"fmt"
	"os"
)

// MigrateSummary holds counts of migrated entities.
type MigrateSummary struct {
	Prescriptions     int
	TrackingInstances int
	ScalingEvents     int
	Surveys           int
	Programs          int
}

// MigrateData copies all data from src to dst storage. Records already in
// dst for the same user and exercise are replaced.
func MigrateData(ctx context.Context, src, dst Repository) (*MigrateSummary, error) {
	data, err := src.GetAllData(ctx)
	if err != nil {
		return nil, fmt.Errorf("read source data: %w", err)
	}

	if err := dst.ImportData(ctx, data); err != nil {
		return nil, fmt.Errorf("write destination data: %w", err)
	}

	summary := &MigrateSummary{
		Prescriptions: len(data.Prescriptions),
		Surveys:       len(data.Surveys),
		Programs:      len(data.Programs),
	}
	for _, p := range data.Prescriptions {
		summary.TrackingInstances += len(p.TrackingInstances)
		summary.ScalingEvents += len(p.ScalingHistory)
	}
	return summary, nil
}

// IsDirNonEmpty checks whether a directory exists and contains any files or subdirectories.
// Returns false if the directory does not exist or is empty.
func IsDirNonEmpty(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read directory %q: %w", path, err)
	}
	return len(entries) > 0, nil
}
