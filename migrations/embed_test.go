// ABOUTME: Tests for the embedded migration filesystem.
// ABOUTME: Checks the initial schema is present and carries goose directives.
package migrations

import (
	"strings"
	"testing"
)

func TestEmbeddedFSContainsInitialSchema(t *testing.T) {
	entries, err := FS.ReadDir(".")
	if err != nil {
		t.Fatalf("failed to read embedded FS: %v", err)
	}

	found := false
	for _, entry := range entries {
		if entry.Name() == "001_initial_schema.sql" {
			found = true
			break
		}
	}
	if !found {
		t.Error("001_initial_schema.sql not found in embedded FS")
	}
}

func TestInitialSchemaHasGooseDirectives(t *testing.T) {
	content, err := FS.ReadFile("001_initial_schema.sql")
	if err != nil {
		t.Fatalf("failed to read migration file: %v", err)
	}

	s := string(content)
	for _, want := range []string{"-- +goose Up", "-- +goose Down", "CREATE TABLE IF NOT EXISTS prescriptions"} {
		if !strings.Contains(s, want) {
			t.Errorf("migration missing %q", want)
		}
	}
}
