// ABOUTME: Prescription operations for Charm KV storage.
// ABOUTME: One JSON document per user and exercise under prescription:<user>:<exercise>.
package charm

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/elliot226/1hp-troubleshooter-sub000/internal/models"
	"github.com/elliot226/1hp-troubleshooter-sub000/internal/storage"
)

func prescriptionKey(userID, exerciseID string) string {
	return key(PrescriptionPrefix, userID, exerciseID)
}

// GetPrescription retrieves the prescription for a user's exercise.
func (c *Client) GetPrescription(ctx context.Context, userID, exerciseID string) (*models.Prescription, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadPrescription(userID, exerciseID)
}

// SavePrescription stores a prescription, replacing any existing document.
func (c *Client) SavePrescription(ctx context.Context, p *models.Prescription) error {
	data, err := marshalJSON(p)
	if err != nil {
		return fmt.Errorf("marshal prescription: %w", err)
	}
	return c.set(prescriptionKey(p.UserID, p.ExerciseID), data)
}

// UpdatePrescription holds the write lock across read, fn and write so
// concurrent updates in this process cannot interleave.
func (c *Client) UpdatePrescription(ctx context.Context, userID, exerciseID string, fallback *models.Prescription, fn storage.UpdateFunc) (*models.Prescription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, err := c.loadPrescription(userID, exerciseID)
	switch {
	case errors.Is(err, storage.ErrNotFound) && fallback != nil:
		p = fallback.Clone()
	case err != nil:
		return nil, err
	}

	if err := fn(p); err != nil {
		if errors.Is(err, storage.ErrNoChange) {
			return p, nil
		}
		return nil, err
	}

	data, err := marshalJSON(p)
	if err != nil {
		return nil, fmt.Errorf("marshal prescription: %w", err)
	}
	if err := c.put(prescriptionKey(userID, exerciseID), data); err != nil {
		return nil, fmt.Errorf("save prescription: %w", err)
	}
	return p, nil
}

// ListPrescriptions returns a user's prescriptions ordered by exercise id.
// An empty userID lists every user's prescriptions.
func (c *Client) ListPrescriptions(ctx context.Context, userID string) ([]*models.Prescription, error) {
	prefix := PrescriptionPrefix
	if userID != "" {
		prefix = key(PrescriptionPrefix, userID, "")
	}

	allData, err := c.listByPrefix(prefix)
	if err != nil {
		return nil, fmt.Errorf("list prescriptions: %w", err)
	}

	list := []*models.Prescription{}
	for _, data := range allData {
		p, err := unmarshalJSON[models.Prescription](data)
		if err != nil {
			continue // Skip invalid entries
		}
		list = append(list, p)
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].UserID != list[j].UserID {
			return list[i].UserID < list[j].UserID
		}
		return list[i].ExerciseID < list[j].ExerciseID
	})
	return list, nil
}

// loadPrescription reads and decodes a prescription. Callers hold mu.
func (c *Client) loadPrescription(userID, exerciseID string) (*models.Prescription, error) {
	data, err := c.get(prescriptionKey(userID, exerciseID))
	if err != nil {
		return nil, err
	}
	p, err := unmarshalJSON[models.Prescription](data)
	if err != nil {
		return nil, fmt.Errorf("unmarshal prescription: %w", err)
	}
	return p, nil
}
