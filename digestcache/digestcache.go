// Package digestcache is additive housekeeping, not part of the
// convergence algorithm (merge is already idempotent, spec §8): a
// bounded, expiring set of recently-seen inbound sync-packet digests, so
// duplicate deliveries from transport-layer retransmission or multicast
// fan-out are dropped before they ever reach the merge step. Grounded on
// table/dead-nonce-list.go's hash-plus-expiration-queue shape.
package digestcache

import (
	"sync"
	"time"

	"github.com/cespare/xxhash"

	"github.com/nishsab/ndn-svs/internal/pqueue"
	"github.com/nishsab/ndn-svs/internal/xmath"
)

// defaultLifetime mirrors the dead-nonce-list's role: long enough to
// catch retransmissions within one suppression/retx cycle, short enough
// not to grow unbounded on a long-lived node.
const defaultLifetime = 30 * time.Second

// minLifetime floors a caller-supplied lifetime: anything shorter risks
// evicting a digest before a retransmitted duplicate can arrive.
const minLifetime = 1 * time.Second

// Cache deduplicates inbound sync packets by content digest. It is safe
// for concurrent use, though in this module it is only ever touched from
// the transport's single event-loop goroutine.
type Cache struct {
	mu       sync.Mutex
	lifetime time.Duration
	seen     map[uint64]bool
	expiry   pqueue.Queue[uint64, int64]

	maxEvictPerSweep int
}

// New returns an empty Cache with the default entry lifetime.
func New() *Cache {
	return NewWithLifetime(defaultLifetime)
}

// NewWithLifetime returns an empty Cache whose entries expire after d,
// or after minLifetime if d is shorter than that.
func NewWithLifetime(d time.Duration) *Cache {
	return &Cache{
		lifetime:         xmath.Max(d, minLifetime),
		seen:             make(map[uint64]bool),
		expiry:           pqueue.New[uint64, int64](),
		maxEvictPerSweep: 100,
	}
}

// SeenOrRecord hashes payload and reports whether it was already present
// in the cache. If not present, it is recorded with a fresh expiration.
// This mirrors DeadNonceList.Insert's "returns whether already present"
// contract.
func (c *Cache) SeenOrRecord(payload []byte) bool {
	digest := xxhash.Sum64(payload)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.evictExpiredLocked()

	if c.seen[digest] {
		return true
	}
	c.seen[digest] = true
	c.expiry.Push(digest, time.Now().Add(c.lifetime).UnixNano())
	return false
}

// Len reports the number of digests currently cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seen)
}

// EvictExpired removes expired entries, up to a bounded number per call
// so a burst of expirations cannot stall the caller.
func (c *Cache) EvictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evictExpiredLocked()
}

func (c *Cache) evictExpiredLocked() {
	now := time.Now().UnixNano()
	evicted := 0
	for c.expiry.Len() > 0 && c.expiry.PeekPriority() < now {
		digest := c.expiry.Pop()
		delete(c.seen, digest)
		evicted++
		if evicted >= c.maxEvictPerSweep {
			break
		}
	}
}
