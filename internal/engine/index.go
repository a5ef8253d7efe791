// ABOUTME: IndexSource abstracts where the latest irritability index comes from.
// ABOUTME: The storage repository satisfies it; tests substitute a mock.
package engine

import "context"

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=engine_test

// IndexSource looks up a user's most recent irritability index. A nil index
// with a nil error means the user has none.
type IndexSource interface {
	LatestIrritabilityIndex(ctx context.Context, userID string) (*float64, error)
}
