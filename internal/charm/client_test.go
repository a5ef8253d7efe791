// ABOUTME: Unit tests for Charm-based rehab storage.
// ABOUTME: Uses an in-memory kvStore so no Charm server is needed.
package charm

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/elliot226/1hp-troubleshooter-sub000/internal/models"
	"github.com/elliot226/1hp-troubleshooter-sub000/internal/storage"
)

type memKV struct {
	mu       sync.Mutex
	data     map[string][]byte
	readOnly bool
	syncs    int
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string][]byte)}
}

func (m *memKV) Get(key []byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[string(key)]
	if !ok {
		return nil, badger.ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *memKV) Set(key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[string(key)] = append([]byte(nil), value...)
	return nil
}

func (m *memKV) Delete(key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, string(key))
	return nil
}

func (m *memKV) Keys() ([][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([][]byte, len(keys))
	for i, k := range keys {
		out[i] = []byte(k)
	}
	return out, nil
}

func (m *memKV) Sync() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncs++
	return nil
}

func (m *memKV) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string][]byte)
	return nil
}

func (m *memKV) IsReadOnly() bool { return m.readOnly }
func (m *memKV) Close() error     { return nil }

func setupTestClient(t *testing.T) (*Client, *memKV) {
	t.Helper()
	store := newMemKV()
	return newClient(store, DefaultHost, true), store
}

var testDay = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

func TestKeyFormats(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"Prescription", prescriptionKey("u1", "wrist_flexion"), "prescription:u1:wrist_flexion"},
		{"Survey", key(SurveyPrefix, "u1", "abc"), "survey:u1:abc"},
		{"Program", key(ProgramPrefix, "u1"), "program:u1"},
		{"Escaped user", key(SurveyPrefix, "a:b", "abc"), "survey:a%3Ab:abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, tt.got)
			}
		})
	}
}

func TestSaveAndGetPrescription(t *testing.T) {
	c, store := setupTestClient(t)
	ctx := context.Background()

	p := models.NewPrescription("u1", "wrist_flexion", 4, models.UnitPounds, 15, 20)
	p.UpsertInstance(*models.NewTrackingInstance(testDay, models.TimeOfDayAM, 4).WithCompletion(18, 2))
	if err := c.SavePrescription(ctx, p); err != nil {
		t.Fatalf("SavePrescription failed: %v", err)
	}
	if store.syncs != 1 {
		t.Errorf("Expected one sync after write, got %d", store.syncs)
	}

	got, err := c.GetPrescription(ctx, "u1", "wrist_flexion")
	if err != nil {
		t.Fatalf("GetPrescription failed: %v", err)
	}
	if got.ID != p.ID || len(got.TrackingInstances) != 1 || got.TrackingInstances[0].Reps() != 18 {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestGetPrescriptionNotFound(t *testing.T) {
	c, _ := setupTestClient(t)

	_, err := c.GetPrescription(context.Background(), "u1", "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected storage.ErrNotFound, got %v", err)
	}
}

func TestUpdatePrescription(t *testing.T) {
	c, _ := setupTestClient(t)
	ctx := context.Background()

	if _, err := c.UpdatePrescription(ctx, "u1", "grip_squeeze", nil, func(*models.Prescription) error { return nil }); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound without fallback, got %v", err)
	}

	fallback := models.NewPrescription("u1", "grip_squeeze", 1, models.UnitLevel, 15, 20)
	got, err := c.UpdatePrescription(ctx, "u1", "grip_squeeze", fallback, func(p *models.Prescription) error {
		p.ConsecCompletions = 3
		return nil
	})
	if err != nil {
		t.Fatalf("UpdatePrescription failed: %v", err)
	}
	if got.ConsecCompletions != 3 {
		t.Errorf("Expected counter 3, got %d", got.ConsecCompletions)
	}

	_, err = c.UpdatePrescription(ctx, "u1", "grip_squeeze", nil, func(p *models.Prescription) error {
		p.ConsecCompletions = 99
		return storage.ErrNoChange
	})
	if err != nil {
		t.Fatalf("UpdatePrescription with ErrNoChange failed: %v", err)
	}

	stored, _ := c.GetPrescription(ctx, "u1", "grip_squeeze")
	if stored.ConsecCompletions != 3 {
		t.Errorf("ErrNoChange should skip the write, got %d", stored.ConsecCompletions)
	}
}

func TestUpdatePrescriptionConcurrent(t *testing.T) {
	c, _ := setupTestClient(t)
	c.SetAutoSync(false)
	ctx := context.Background()

	fallback := models.NewPrescription("u1", "wrist_flexion", 4, models.UnitPounds, 15, 20)
	const writers = 25
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.UpdatePrescription(ctx, "u1", "wrist_flexion", fallback, func(p *models.Prescription) error {
				p.ConsecCompletions++
				return nil
			})
		}()
	}
	wg.Wait()

	got, err := c.GetPrescription(ctx, "u1", "wrist_flexion")
	if err != nil {
		t.Fatalf("GetPrescription failed: %v", err)
	}
	if got.ConsecCompletions != writers {
		t.Errorf("Expected %d increments, got %d", writers, got.ConsecCompletions)
	}
}

func TestReadOnlyRejectsWrites(t *testing.T) {
	c, store := setupTestClient(t)
	store.readOnly = true

	err := c.SavePrescription(context.Background(), models.NewPrescription("u1", "x", 1, models.UnitPounds, 15, 20))
	if !errors.Is(err, errReadOnly) {
		t.Errorf("Expected read-only error, got %v", err)
	}
	if err := c.Sync(); err != nil {
		t.Errorf("Sync in read-only mode should be a no-op, got %v", err)
	}
}

func TestListPrescriptionsScopedByUser(t *testing.T) {
	c, _ := setupTestClient(t)
	ctx := context.Background()

	for _, p := range []*models.Prescription{
		models.NewPrescription("u1", "wrist_flexion", 4, models.UnitPounds, 15, 20),
		models.NewPrescription("u1", "biceps_curl", 8, models.UnitPounds, 15, 20),
		models.NewPrescription("u10", "wrist_flexion", 4, models.UnitPounds, 15, 20),
	} {
		if err := c.SavePrescription(ctx, p); err != nil {
			t.Fatalf("SavePrescription failed: %v", err)
		}
	}

	list, err := c.ListPrescriptions(ctx, "u1")
	if err != nil {
		t.Fatalf("ListPrescriptions failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected 2 prescriptions for u1, got %d", len(list))
	}
	if list[0].ExerciseID != "biceps_curl" {
		t.Errorf("Expected sorted by exercise, got %s first", list[0].ExerciseID)
	}

	all, _ := c.ListPrescriptions(ctx, "")
	if len(all) != 3 {
		t.Errorf("Expected 3 prescriptions total, got %d", len(all))
	}
}

func TestUserWithColonDoesNotLeakIntoPrefix(t *testing.T) {
	c, _ := setupTestClient(t)
	ctx := context.Background()

	for _, p := range []*models.Prescription{
		models.NewPrescription("a", "wrist_flexion", 4, models.UnitPounds, 15, 20),
		models.NewPrescription("a:b", "biceps_curl", 8, models.UnitPounds, 15, 20),
	} {
		if err := c.SavePrescription(ctx, p); err != nil {
			t.Fatalf("SavePrescription failed: %v", err)
		}
	}
	severe := 25.0
	s := models.NewLoadManagementSurvey("a:b")
	s.IrritabilityIndex = &severe
	if err := c.SaveSurvey(ctx, s); err != nil {
		t.Fatalf("SaveSurvey failed: %v", err)
	}

	list, err := c.ListPrescriptions(ctx, "a")
	if err != nil {
		t.Fatalf("ListPrescriptions failed: %v", err)
	}
	if len(list) != 1 || list[0].UserID != "a" {
		t.Errorf("Expected only user a's prescription, got %d", len(list))
	}

	if idx, err := c.LatestIrritabilityIndex(ctx, "a"); err != nil || idx != nil {
		t.Errorf("Expected no index for user a, got %v, %v", idx, err)
	}
	if _, err := c.LatestSurvey(ctx, "a"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for user a's survey, got %v", err)
	}

	idx, err := c.LatestIrritabilityIndex(ctx, "a:b")
	if err != nil || idx == nil || *idx != 25 {
		t.Errorf("Expected index 25 for a:b, got %v, %v", idx, err)
	}

	p, err := c.GetPrescription(ctx, "a:b", "biceps_curl")
	if err != nil || p.CurrentWeight != 8 {
		t.Errorf("Expected a:b biceps_curl at 8, got %v, %v", p, err)
	}
}

func TestSurveysAndProgram(t *testing.T) {
	c, _ := setupTestClient(t)
	ctx := context.Background()

	if idx, err := c.LatestIrritabilityIndex(ctx, "u1"); err != nil || idx != nil {
		t.Fatalf("Expected nil index without surveys, got %v, %v", idx, err)
	}

	old := models.NewLoadManagementSurvey("u1")
	old.RecordedAt = testDay
	v1 := 22.0
	old.IrritabilityIndex = &v1
	recent := models.NewLoadManagementSurvey("u1")
	recent.RecordedAt = testDay.AddDate(0, 0, 7)
	v2 := 6.0
	recent.IrritabilityIndex = &v2

	for _, s := range []*models.LoadManagementSurvey{recent, old} {
		if err := c.SaveSurvey(ctx, s); err != nil {
			t.Fatalf("SaveSurvey failed: %v", err)
		}
	}

	idx, err := c.LatestIrritabilityIndex(ctx, "u1")
	if err != nil || idx == nil || *idx != 6 {
		t.Errorf("Expected latest index 6, got %v, %v", idx, err)
	}

	if _, err := c.GetProgram(ctx, "u1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for program, got %v", err)
	}
	if err := c.SaveProgram(ctx, models.NewProgram("u1", testDay)); err != nil {
		t.Fatalf("SaveProgram failed: %v", err)
	}
	prog, err := c.GetProgram(ctx, "u1")
	if err != nil {
		t.Fatalf("GetProgram failed: %v", err)
	}
	if !prog.NextReassessmentAt.Equal(testDay.Add(models.ReassessmentInterval)) {
		t.Errorf("NextReassessmentAt mismatch: %v", prog.NextReassessmentAt)
	}
}

func TestMigrateBetweenCharmAndSQLite(t *testing.T) {
	c, _ := setupTestClient(t)
	ctx := context.Background()

	p := models.NewPrescription("u1", "wrist_flexion", 4, models.UnitPounds, 15, 20)
	p.UpsertInstance(*models.NewTrackingInstance(testDay, models.TimeOfDayPM, 4).WithCompletion(20, 0))
	if err := c.SavePrescription(ctx, p); err != nil {
		t.Fatalf("SavePrescription failed: %v", err)
	}
	if err := c.SaveProgram(ctx, models.NewProgram("u1", testDay)); err != nil {
		t.Fatalf("SaveProgram failed: %v", err)
	}

	db, err := storage.Open(filepath.Join(t.TempDir(), "rehab.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	summary, err := storage.MigrateData(ctx, c, db)
	if err != nil {
		t.Fatalf("MigrateData charm->sqlite failed: %v", err)
	}
	if summary.Prescriptions != 1 || summary.TrackingInstances != 1 || summary.Programs != 1 {
		t.Errorf("unexpected summary: %+v", summary)
	}

	back, _ := setupTestClient(t)
	if _, err := storage.MigrateData(ctx, db, back); err != nil {
		t.Fatalf("MigrateData sqlite->charm failed: %v", err)
	}
	got, err := back.GetPrescription(ctx, "u1", "wrist_flexion")
	if err != nil {
		t.Fatalf("GetPrescription after round trip failed: %v", err)
	}
	if got.ID != p.ID || got.TrackingInstances[0].Reps() != 20 {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestResetClearsLocalData(t *testing.T) {
	c, _ := setupTestClient(t)
	ctx := context.Background()

	if err := c.SavePrescription(ctx, models.NewPrescription("u1", "x", 1, models.UnitPounds, 15, 20)); err != nil {
		t.Fatalf("SavePrescription failed: %v", err)
	}
	if err := c.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	list, _ := c.ListPrescriptions(ctx, "")
	if len(list) != 0 {
		t.Errorf("Expected no data after reset, got %d", len(list))
	}
}
