// Package util holds small helpers shared by long running loops.
package util

import "time"

// SkipThrottler allows at most one event per period and counts the events it drops.
type SkipThrottler struct {
	d       time.Duration
	last    time.Time
	skipped int
}

func NewSkipThrottler(d time.Duration) *SkipThrottler {
	return &SkipThrottler{d: d}
}

// Ok reports whether an event may proceed now.
func (tt *SkipThrottler) Ok() bool {
	now := time.Now()
	if !tt.last.IsZero() && now.Before(tt.last.Add(tt.d)) {
		tt.skipped++
		return false
	}
	tt.last = now
	return true
}

// Skipped returns the number of events dropped since the last call to Skipped.
func (tt *SkipThrottler) Skipped() int {
	n := tt.skipped
	tt.skipped = 0
	return n
}
