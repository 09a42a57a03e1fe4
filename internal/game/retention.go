package game

import (
	"sync"

	"discord-economy-bot/internal/model"
)

// RetentionTracker counts consecutive losses per account across the chance
// games. It lives in process memory only: a restart resets every streak.
type RetentionTracker struct {
	mu      sync.Mutex
	streaks map[model.AccountKey]int
}

// NewRetentionTracker creates an empty tracker.
func NewRetentionTracker() *RetentionTracker {
	return &RetentionTracker{streaks: make(map[model.AccountKey]int)}
}

// Streak returns the current loss streak.
func (t *RetentionTracker) Streak(key model.AccountKey) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.streaks[key]
}

// Record applies a round outcome: a win resets the streak, a loss extends it.
// Returns the new streak.
func (t *RetentionTracker) Record(key model.AccountKey, won bool) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if won {
		delete(t.streaks, key)
		return 0
	}
	t.streaks[key]++
	return t.streaks[key]
}

// Len returns how many accounts currently have a non-zero streak.
func (t *RetentionTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.streaks)
}
