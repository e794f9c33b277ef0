package populate

import (
	"math/rand"
	"time"

	"decoyforge/internal/config"
)

// planTimestamps draws a synthetic modification time per entry from the
// bounded past window. Entries with an After reference get a time strictly
// later than their dependency so causally-related files read plausibly.
func planTimestamps(entries []Entry, window config.TimestampWindow, now time.Time) map[string]time.Time {
	minAge := window.MinAge.Std()
	maxAge := window.MaxAge.Std()
	if minAge <= 0 {
		minAge = 24 * time.Hour
	}
	if maxAge <= minAge {
		maxAge = minAge + 90*24*time.Hour
	}

	oldest := now.Add(-maxAge)
	newest := now.Add(-minAge)

	plan := make(map[string]time.Time, len(entries))
	for _, e := range entries {
		if e.After == "" {
			plan[e.Path] = randomBetween(oldest, newest)
			continue
		}
		// Validate guarantees the dependency was planned already.
		dep := plan[e.After]
		lower := dep.Add(time.Minute)
		if !lower.Before(newest) {
			// Dependency landed at the window's edge; nudge past it anyway.
			plan[e.Path] = lower
			continue
		}
		plan[e.Path] = randomBetween(lower, newest)
	}
	return plan
}

func randomBetween(a, b time.Time) time.Time {
	span := b.Sub(a)
	if span <= 0 {
		return a
	}
	return a.Add(time.Duration(rand.Int63n(int64(span))))
}
