package advisor

import "sync"

// Deduper guards "notify once per new trade" against a live stream of trade-ID
// snapshots. The first snapshot only primes the tracked set and emits nothing:
// the initial load of pre-existing trades is not news. Every later snapshot
// yields exactly the IDs that were not in the previous snapshot, then replaces
// the tracked set wholesale so closed trades drop out instead of lingering.
//
// Snapshots must be applied strictly in arrival order; the mutex serializes
// callers so each set-difference runs against the immediately prior state.
type Deduper struct {
	mu       sync.Mutex
	primed   bool
	previous map[string]struct{}
}

// NewDeduper returns a Deduper that has seen no snapshot yet.
func NewDeduper() *Deduper {
	return &Deduper{previous: make(map[string]struct{})}
}

// ProcessSnapshot ingests the current full set of active trade IDs and returns
// the newly-appeared ones, in incoming order. The first call always returns
// nil.
func (d *Deduper) ProcessSnapshot(ids []string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	incoming := make(map[string]struct{}, len(ids))
	var added []string
	for _, id := range ids {
		if _, dup := incoming[id]; dup {
			continue
		}
		incoming[id] = struct{}{}
		if _, seen := d.previous[id]; !seen {
			added = append(added, id)
		}
	}

	d.previous = incoming

	if !d.primed {
		d.primed = true
		return nil
	}
	return added
}
