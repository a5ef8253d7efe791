// ABOUTME: Sentinel errors returned by the engine.
// ABOUTME: Surfaces map them to CLI messages, MCP errors and HTTP problems.
package engine

import (
	"errors"

	"github.com/elliot226/1hp-troubleshooter-sub000/internal/catalog"
)

var (
	// ErrInvalidTimeOfDay is returned when a session is neither AM nor PM.
	ErrInvalidTimeOfDay = errors.New("invalid time of day")

	// ErrUnknownExercise is returned for exercise ids missing from the catalog.
	ErrUnknownExercise = catalog.ErrUnknownExercise

	// ErrProgramNotStarted is returned when a user has no program record yet.
	ErrProgramNotStarted = errors.New("program not started")

	// ErrMissingUser is returned when an operation is called without a user id.
	ErrMissingUser = errors.New("user id is required")
)
