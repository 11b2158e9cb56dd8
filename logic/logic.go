// Package logic implements the suppression-based gossip state machine
// (spec §4.4): it owns the local version vector, the retransmission
// timer, and the transient recorded/aggregate vector used during
// suppression, and it is the ~65% majority of this module's substance.
// Grounded on the timer/state-machine shape of
// std/schema/svs/sync.go's SvsNode and std/pkg/engine/sync/svs.go's
// SvSync, adapted from their channel/goroutine dispatch onto the single
// scheduler abstraction in package sched.
package logic

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/nishsab/ndn-svs/core"
	"github.com/nishsab/ndn-svs/digestcache"
	"github.com/nishsab/ndn-svs/internal/xmath"
	"github.com/nishsab/ndn-svs/merge"
	"github.com/nishsab/ndn-svs/sched"
	"github.com/nishsab/ndn-svs/security"
	"github.com/nishsab/ndn-svs/session"
	"github.com/nishsab/ndn-svs/transport"
	"github.com/nishsab/ndn-svs/vv"
)

// EncodingStrategy selects which VersionVector wire encoding builds an
// outbound sync packet (spec §4.4). A sixth "full, one packet" strategy
// (EncodeFull) is the default, per the design notes' guidance to model
// this as configuration rather than build-time selection.
type EncodingStrategy int

const (
	// EncodeFull sends the entire vector in one packet.
	EncodeFull EncodingStrategy = iota
	// EncodeChunkedFull splits the vector across as many packets as
	// needed so each stays within the wire size cap.
	EncodeChunkedFull
	// EncodeMostRecent sends only the most recently updated entries
	// that fit within the wire size cap, in one packet.
	EncodeMostRecent
	// EncodeMostRecentAndRandom sends the most-recent entries plus a
	// bounded number of uniformly sampled additional entries.
	EncodeMostRecentAndRandom
	// EncodeRandom sends a uniformly sampled subset in one packet.
	EncodeRandom
)

func (s EncodingStrategy) String() string {
	switch s {
	case EncodeFull:
		return "full"
	case EncodeChunkedFull:
		return "chunked-full"
	case EncodeMostRecent:
		return "most-recent"
	case EncodeMostRecentAndRandom:
		return "most-recent-and-random"
	case EncodeRandom:
		return "random"
	default:
		return "unknown"
	}
}

// chunked reports whether s ever emits a partial vector, which activates
// the "unknown vs. zero" comparison policy in package merge (spec §4.2).
func (s EncodingStrategy) chunked() bool {
	return s != EncodeFull
}

// UpdateCallback receives every "missing data" delta discovered by a
// merge, exactly once per merge that found something, and always with
// no lock held (spec §4.2, §5).
type UpdateCallback func(missing []merge.Missing)

const (
	defaultMaxWireSize       = 500
	defaultEntryOverhead     = 16
	defaultRandomK           = 1
	defaultRetxPeriod        = 30 * time.Second
	defaultSuppressionPeriod = 200 * time.Millisecond
	defaultPacketJitterMin   = 10 * time.Millisecond
	defaultPacketJitterMax   = 15 * time.Millisecond
	defaultInitialCap        = 100 * time.Millisecond
	jitterFraction           = 0.10
)

// Logic is the suppression-based sync state machine for one local node
// in one sync group. It is safe for concurrent use: UpdateSeqNo,
// GetSeqNo, SessionNames, and StateString may be called from any host
// thread. Inbound packets arrive on the transport's event-loop
// goroutine, while timer ticks run on the scheduler's own dispatch
// goroutine; the two are not the same goroutine and may run at the same
// time, with l.mu serializing their access to the vectors.
type Logic struct {
	transport  transport.Transport
	sched      sched.Scheduler
	syncPrefix transport.Name
	localID    vv.NodeID
	onUpdate   UpdateCallback
	security   security.Options

	maxWireSize   int
	entryOverhead int
	strategy      EncodingStrategy
	randomK       int
	retxPeriod    time.Duration
	suppression   time.Duration

	digest   *digestcache.Cache
	liveness *session.Liveness

	registered transport.RegisteredPrefix

	mu               sync.Mutex
	vv               *vv.VersionVector
	recordedVv       *vv.VersionVector
	nextSyncInterest int64
	retxHandle       sched.Handle
	rng              *rand.Rand
	closed           bool
}

// Option configures optional Logic behavior beyond the constructor's
// required arguments. The size cap, per-entry overhead, and timer
// periods are heuristics the spec calls out as tunable (spec §9).
type Option func(*Logic)

// WithMaxWireSize overrides the advisory per-packet size cap (default
// 500 bytes).
func WithMaxWireSize(n int) Option {
	return func(l *Logic) { l.maxWireSize = n }
}

// WithEntryOverhead overrides the advisory per-entry TLV overhead
// estimate used to decide when a packet is full (default 16 bytes).
func WithEntryOverhead(n int) Option {
	return func(l *Logic) { l.entryOverhead = n }
}

// WithEncodingStrategy selects one of the five configurable encoding
// strategies (default EncodeFull).
func WithEncodingStrategy(s EncodingStrategy) Option {
	return func(l *Logic) { l.strategy = s }
}

// WithRandomK sets k for EncodeMostRecentAndRandom (default 1).
func WithRandomK(k int) Option {
	return func(l *Logic) { l.randomK = k }
}

// WithRetxPeriod overrides the steady-state periodic retransmission
// period (default 30s, jittered ±10%).
func WithRetxPeriod(d time.Duration) Option {
	return func(l *Logic) { l.retxPeriod = d }
}

// WithSuppressionPeriod overrides the suppression interrupt-reply jitter
// window (default 200ms, jittered ±10%).
func WithSuppressionPeriod(d time.Duration) Option {
	return func(l *Logic) { l.suppression = d }
}

// WithDigestCache attaches a duplicate-delivery cache (spec §12
// supplement). Without one, every inbound packet is processed even if
// it is a retransmitted duplicate; merge's idempotence (spec §8) makes
// this safe but wasteful.
func WithDigestCache(c *digestcache.Cache) Option {
	return func(l *Logic) { l.digest = c }
}

// WithLiveness attaches a last-heard-from observability table (spec §12
// supplement). It never affects merge or suppression outcomes.
func WithLiveness(lv *session.Liveness) Option {
	return func(l *Logic) { l.liveness = lv }
}

// WithScheduler overrides the timer facility (default sched.NewEventLoop()).
// Tests use this to inject a deterministic fake.
func WithScheduler(s sched.Scheduler) Option {
	return func(l *Logic) { l.sched = s }
}

// New constructs a Logic instance: registers an inbound-sync listener on
// syncPrefix, seeds the local vector to {localID: 0}, and starts the
// initial retransmission timer eagerly-but-bounded at
// min(uniform(retxPeriod), 100ms) so a freshly attached node converges
// quickly without an unconditional send racing concurrent peer startup.
func New(t transport.Transport, syncPrefix transport.Name, localID vv.NodeID, onUpdate UpdateCallback, sec security.Options, opts ...Option) (*Logic, error) {
	if err := sec.Check(); err != nil {
		return nil, fmt.Errorf("logic: %w", err)
	}

	l := &Logic{
		transport:     t,
		syncPrefix:    syncPrefix,
		localID:       localID.Clone(),
		onUpdate:      onUpdate,
		security:      sec,
		maxWireSize:   defaultMaxWireSize,
		entryOverhead: defaultEntryOverhead,
		strategy:      EncodeFull,
		randomK:       defaultRandomK,
		retxPeriod:    defaultRetxPeriod,
		suppression:   defaultSuppressionPeriod,
		vv:            vv.New(),
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.sched == nil {
		l.sched = sched.NewEventLoop()
	}

	l.vv.Set(l.localID, 0)
	if l.liveness != nil {
		l.liveness.Touch(l.localID, time.Now())
	}

	registered, err := t.RegisterPrefix(syncPrefix, l.onInboundPacket, func(regErr error) {
		core.LogError("logic", fmt.Sprintf("registerPrefix failed for %s: %v", syncPrefix, regErr))
	})
	if err != nil {
		return nil, fmt.Errorf("%w: registerPrefix: %v", core.ErrTransport, err)
	}
	l.registered = registered

	l.mu.Lock()
	initial := xmath.Min(l.jitterLocked(l.retxPeriod), defaultInitialCap)
	l.scheduleRetxLocked(initial)
	l.mu.Unlock()

	return l, nil
}

// UpdateSeqNo atomically sets the local node's sequence number to seq if
// it is strictly greater than the current value, then, if changed,
// triggers an immediate sync emission and resets the periodic timer
// (spec §4.4's local publish trigger). It may be called from any thread.
func (l *Logic) UpdateSeqNo(seq vv.SeqNo) {
	l.mu.Lock()
	current := l.vv.Get(l.localID)
	if seq <= current {
		l.mu.Unlock()
		return
	}
	l.vv.Set(l.localID, seq)
	l.mu.Unlock()

	l.retxSyncInterest(true, 0)
}

// GetSeqNo returns the last known sequence number for nid, 0 if unknown.
func (l *Logic) GetSeqNo(nid vv.NodeID) vv.SeqNo {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.vv.Get(nid)
}

// SessionNames returns every NodeID currently known to the local vector,
// in canonical order.
func (l *Logic) SessionNames() []vv.NodeID {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.vv.Names()
}

// StateString renders the local vector as "nid:seq nid:seq ..." for
// operator observability.
func (l *Logic) StateString() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.vv.String()
}

// Close detaches the inbound listener and cancels the pending timer.
// Shutdown is cooperative: destroying Logic is the only way to stop it
// (spec §5).
func (l *Logic) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.sched.Cancel(l.retxHandle)
	l.mu.Unlock()

	if l.registered != nil {
		return l.registered.Close()
	}
	return nil
}
