// ABOUTME: Sentinel errors shared by all storage backends.
// ABOUTME: Callers match them with errors.Is.
package storage

import "errors"

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNoChange is returned by an UpdateFunc to skip the write.
	ErrNoChange = errors.New("no change")
)
