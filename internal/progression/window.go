// ABOUTME: Evaluation window over the most recent completed sessions.
// ABOUTME: Summarizes average reps and peak pain.

// Package progression holds the pure scaling decision and the function that
// applies a decision to a prescription. Nothing here touches storage.
package progression

import (
	"sort"

	"github.com/elliot226/1hp-troubleshooter-sub000/internal/models"
)

// WindowSize is the number of most recent completions an evaluation looks at.
const WindowSize = 6

// Window summarizes the completions being evaluated.
type Window struct {
	Size    int
	AvgReps float64
	MaxPain int
}

// RecentCompletions returns up to WindowSize completed instances, most recent
// first. On the same day the PM session counts as more recent than AM.
func RecentCompletions(instances []models.TrackingInstance) []models.TrackingInstance {
	var done []models.TrackingInstance
	for _, ti := range instances {
		if ti.Completed {
			done = append(done, ti)
		}
	}

	sort.SliceStable(done, func(i, j int) bool {
		a, b := done[i], done[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		return a.TimeOfDay == models.TimeOfDayPM && b.TimeOfDay == models.TimeOfDayAM
	})

	if len(done) > WindowSize {
		done = done[:WindowSize]
	}
	return done
}

// Summarize computes the evaluation window. ok is false when there are no
// completed instances to evaluate.
func Summarize(instances []models.TrackingInstance) (w Window, ok bool) {
	recent := RecentCompletions(instances)
	if len(recent) == 0 {
		return Window{}, false
	}

	total := 0
	for _, ti := range recent {
		total += ti.Reps()
		if p := ti.Pain(); p > w.MaxPain {
			w.MaxPain = p
		}
	}
	w.Size = len(recent)
	w.AvgReps = float64(total) / float64(len(recent))
	return w, true
}
