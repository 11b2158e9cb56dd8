// Package session tracks observability state about sync group peers
// that never participates in merge or suppression: last-heard-from wall
// clock time per known NodeID, exposed alongside Logic.StateString for a
// human operator. Grounded on table/measurements.go's cornelk/hashmap
// atomic-table pattern.
package session

import (
	"sync"
	"time"

	"github.com/cornelk/hashmap"

	"github.com/nishsab/ndn-svs/vv"
)

// Liveness records the last time each known NodeID was heard from. The
// last-seen values live in a lock-free hashmap for the hot Touch/
// LastSeen path; a small mutex-guarded key set supports Snapshot, which
// is only ever called from an operator-facing status path, not the sync
// hot path.
type Liveness struct {
	table *hashmap.HashMap

	keysMu sync.Mutex
	keys   map[string]struct{}
}

// NewLiveness returns an empty Liveness table.
func NewLiveness() *Liveness {
	return &Liveness{
		table: &hashmap.HashMap{},
		keys:  make(map[string]struct{}),
	}
}

// Touch records that nid was heard from at t.
func (l *Liveness) Touch(nid vv.NodeID, t time.Time) {
	key := string(nid)
	l.table.Set(key, t)
	l.trackKey(key)
}

func (l *Liveness) trackKey(key string) {
	l.keysMu.Lock()
	l.keys[key] = struct{}{}
	l.keysMu.Unlock()
}

// LastSeen returns the last recorded time for nid and whether any record
// exists.
func (l *Liveness) LastSeen(nid vv.NodeID) (time.Time, bool) {
	value, ok := l.table.GetStringKey(string(nid))
	if !ok {
		return time.Time{}, false
	}
	t, ok := value.(time.Time)
	return t, ok
}

// Seed pre-populates the table with a zero-value liveness record for
// every roster entry, so an operator can distinguish "expected but
// never heard from" (present, zero time) from "not part of this group"
// (absent), without waiting for the first sync packet.
func (l *Liveness) Seed(nids []vv.NodeID) {
	for _, nid := range nids {
		key := string(nid)
		if _, exists := l.table.GetStringKey(key); !exists {
			l.table.Set(key, time.Time{})
		}
		l.trackKey(key)
	}
}

// Snapshot returns a copy of the current NodeID -> last-seen mapping,
// for use by an operator-facing status endpoint.
func (l *Liveness) Snapshot() map[string]time.Time {
	l.keysMu.Lock()
	keys := make([]string, 0, len(l.keys))
	for k := range l.keys {
		keys = append(keys, k)
	}
	l.keysMu.Unlock()

	out := make(map[string]time.Time, len(keys))
	for _, key := range keys {
		if value, ok := l.table.GetStringKey(key); ok {
			if t, ok := value.(time.Time); ok {
				out[key] = t
			}
		}
	}
	return out
}
