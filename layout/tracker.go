package layout

import "sync"

// Tracker remembers the last fingerprint per source and reports drift.
type Tracker struct {
	mu        sync.Mutex
	last      map[string]uint64
	threshold int
}

// NewTracker creates a Tracker. Distances above threshold count as drift.
func NewTracker(threshold int) *Tracker {
	return &Tracker{
		last:      make(map[string]uint64),
		threshold: threshold,
	}
}

// Observe records fp for key and returns the distance to the previous
// fingerprint. The first observation of a key never drifts.
func (t *Tracker) Observe(key string, fp uint64) (distance int, drifted bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev, seen := t.last[key]
	t.last[key] = fp
	if !seen {
		return 0, false
	}
	distance = Distance(prev, fp)
	return distance, distance > t.threshold
}
