package campaign

import "sync"

// ValidTransition reports whether a campaign may move from one status to
// another. Staying put is allowed. Unknown never counts as a regression.
func ValidTransition(from, to Status) bool {
	if from == StatusUnknown || to == StatusUnknown {
		return true
	}
	return to >= from
}

// Regression is a back-transition seen between two snapshots.
type Regression struct {
	ID   uint64
	From Status
	To   Status
}

// Tracker remembers the last observed status of every campaign.
type Tracker struct {
	mu   sync.Mutex
	seen map[uint64]Status
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{seen: make(map[uint64]Status)}
}

// Observe records a snapshot and returns the campaigns whose status moved
// backwards since the previous one. The snapshot's value always replaces
// the remembered one.
func (t *Tracker) Observe(list []Campaign) []Regression {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []Regression
	for _, c := range list {
		if prev, ok := t.seen[c.ID]; ok && !ValidTransition(prev, c.Status) {
			out = append(out, Regression{ID: c.ID, From: prev, To: c.Status})
		}
		t.seen[c.ID] = c.Status
	}
	return out
}
