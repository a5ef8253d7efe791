// ABOUTME: Static exercise catalog loaded from embedded YAML.
// ABOUTME: Maps exercise ids to default weight, unit, rep range and endurance tests.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"

	"github.com/elliot226/1hp-troubleshooter-sub000/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultYAML []byte

// ErrUnknownExercise is returned for ids that are not in the catalog.
var ErrUnknownExercise = errors.New("unknown exercise")

// EnduranceTest is a one-time reps-to-failure measurement.
type EnduranceTest struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// Exercise is a catalog entry.
type Exercise struct {
	ID             string            `yaml:"id" json:"id"`
	Name           string            `yaml:"name" json:"name"`
	Category       string            `yaml:"category" json:"category"`
	Unit           models.WeightUnit `yaml:"unit" json:"unit"`
	DefaultWeight  float64           `yaml:"default_weight" json:"default_weight"`
	EnduranceTests []string          `yaml:"endurance_tests" json:"endurance_tests"`
	RepMin         int               `yaml:"rep_min,omitempty" json:"rep_min,omitempty"`
	RepMax         int               `yaml:"rep_max,omitempty" json:"rep_max,omitempty"`
	DoubleWeight   bool              `yaml:"double_weight,omitempty" json:"double_weight,omitempty"`
	FreeTier       bool              `yaml:"free_tier,omitempty" json:"free_tier,omitempty"`
}

// RepRange returns the exercise's starting rep range, defaulting to 15-20.
func (e *Exercise) RepRange() (int, int) {
	lo, hi := e.RepMin, e.RepMax
	if lo <= 0 {
		lo = models.DefaultRepMin
	}
	if hi <= 0 {
		hi = models.DefaultRepMax
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// DefaultPrescription synthesizes an unpersisted prescription from catalog defaults.
func (e *Exercise) DefaultPrescription(userID string) *models.Prescription {
	lo, hi := e.RepRange()
	weight := e.DefaultWeight
	if weight < 1 {
		weight = 1
	}
	return models.NewPrescription(userID, e.ID, weight, e.Unit, lo, hi)
}

// Catalog is an immutable set of exercises.
type Catalog struct {
	Tests     []EnduranceTest `yaml:"endurance_tests"`
	Exercises []Exercise      `yaml:"exercises"`

	byID map[string]*Exercise
}

// Parse decodes a YAML catalog and validates references between exercises and tests.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	tests := make(map[string]bool, len(c.Tests))
	for _, t := range c.Tests {
		tests[t.ID] = true
	}

	c.byID = make(map[string]*Exercise, len(c.Exercises))
	for i := range c.Exercises {
		e := &c.Exercises[i]
		if e.ID == "" {
			return nil, fmt.Errorf("parse catalog: exercise %d has no id", i)
		}
		if _, dup := c.byID[e.ID]; dup {
			return nil, fmt.Errorf("parse catalog: duplicate exercise %q", e.ID)
		}
		for _, tid := range e.EnduranceTests {
			if !tests[tid] {
				return nil, fmt.Errorf("parse catalog: exercise %q references unknown test %q", e.ID, tid)
			}
		}
		if e.Unit == "" {
			e.Unit = models.UnitPounds
		}
		c.byID[e.ID] = e
	}
	return &c, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(defaultYAML)
	if err != nil {
		panic(err)
	}
	return c
}

// Get looks up an exercise by id.
func (c *Catalog) Get(id string) (*Exercise, error) {
	e, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownExercise, id)
	}
	return e, nil
}

// IDs returns all exercise ids in sorted order.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.byID))
	for id := range c.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// All returns the exercises in catalog order.
func (c *Catalog) All() []Exercise {
	out := make([]Exercise, len(c.Exercises))
	copy(out, c.Exercises)
	return out
}
