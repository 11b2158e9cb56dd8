package logic

import (
	"fmt"
	"time"

	"github.com/nishsab/ndn-svs/core"
	"github.com/nishsab/ndn-svs/merge"
	"github.com/nishsab/ndn-svs/vv"
)

// jitterLocked draws a uniform value within ±jitterFraction of base.
// Must be called with l.mu held: it consumes the shared rng, and the
// spec's Random-number engine and distributions (§3) are logically part
// of the same locked state as the vectors they help decide about.
func (l *Logic) jitterLocked(base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	span := float64(base) * jitterFraction * 2
	offset := l.rng.Float64()*span - float64(base)*jitterFraction
	return base + time.Duration(offset)
}

// packetJitterLocked draws the small per-packet stagger (10-15ms) used
// to space out chunked-mode packets so they don't all leave in the same
// instant.
func (l *Logic) packetJitterLocked() time.Duration {
	span := defaultPacketJitterMax - defaultPacketJitterMin
	return defaultPacketJitterMin + time.Duration(l.rng.Float64()*float64(span))
}

// scheduleRetxLocked cancels any pending retransmission timer and
// schedules a new one after delay. Must be called with l.mu held.
func (l *Logic) scheduleRetxLocked(delay time.Duration) {
	l.sched.Cancel(l.retxHandle)
	l.nextSyncInterest = l.sched.Now() + delay.Microseconds()
	l.retxHandle = l.sched.Schedule(delay, func() {
		l.retxSyncInterest(true, 0)
	})
}

// retxSyncInterest is the single timer-tick entry point (spec §4.4): when
// send is true it decides whether to emit based on suppression state and
// exits suppression; it always reschedules. When send is false it only
// reschedules, per the inbound-handling steps that call it with
// send=false to defer without announcing.
func (l *Logic) retxSyncInterest(send bool, delay time.Duration) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}

	doSend := false
	if send {
		if l.recordedVv == nil || merge.LocalNewerThan(l.vv, l.recordedVv, l.strategy.chunked()) {
			doSend = true
		}
		l.recordedVv = nil
	}

	if delay == 0 {
		delay = l.jitterLocked(l.retxPeriod)
	}

	var chunks [][]byte
	if doSend {
		chunks = l.encodeVectorLocked()
	}

	l.scheduleRetxLocked(delay)
	l.mu.Unlock()

	if doSend {
		l.emitChunks(chunks)
	}
}

// enterSuppressionLocked records remote as the initial aggregate and
// pulls the next timer fire in to at most now+jitter, but never pushes
// it later than whatever was already scheduled (spec §4.4 step 6). Must
// be called with l.mu held.
func (l *Logic) enterSuppressionLocked(remote *vv.VersionVector) {
	l.recordedVv = remote.Clone()
	jitter := l.jitterLocked(l.suppression)
	candidate := l.sched.Now() + jitter.Microseconds()
	core.LogTrace("logic", fmt.Sprintf("suppression jitter=%s candidate=%d next=%d", jitter, candidate, l.nextSyncInterest))
	if candidate < l.nextSyncInterest {
		l.scheduleRetxLocked(jitter)
	}
}
