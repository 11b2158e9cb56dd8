package logic

import (
	"time"

	"github.com/nishsab/ndn-svs/core"
	"github.com/nishsab/ndn-svs/merge"
	"github.com/nishsab/ndn-svs/security"
	"github.com/nishsab/ndn-svs/transport"
	"github.com/nishsab/ndn-svs/vv"
)

// onInboundPacket is the transport's onInterest callback for the
// registered sync prefix: it runs the seven-step handling sequence from
// spec §4.4 (security check, decode, merge, suppression bookkeeping,
// timer update, callback delivery).
func (l *Logic) onInboundPacket(pkt transport.Packet) {
	vvIdx := len(pkt.Name) - 1
	if l.security.Mode == security.ModeNone {
		vvIdx = len(pkt.Name) - 2
	}
	if vvIdx < 0 || vvIdx >= len(pkt.Name) {
		core.LogDebug("logic", "dropping sync packet with malformed name")
		return
	}
	encoded := []byte(pkt.Name[vvIdx])

	l.security.VerifyAsync(encoded, pkt.Signature,
		func() { l.handleVerifiedVector(encoded) },
		func() { core.LogDebug("logic", security.ErrSignature.Error()) },
	)
}

// handleVerifiedVector runs steps 2-7 of the inbound handling sequence,
// once the security envelope (step 1) has already passed. It may run on
// the validator's own completion goroutine for ModeAsymmetric, per
// spec §4.5. The digest de-dup check runs here, after verification, so
// an attacker cannot suppress a legitimate packet by replaying its
// digest with a bad signature ahead of it.
func (l *Logic) handleVerifiedVector(encoded []byte) {
	if l.digest != nil && l.digest.SeenOrRecord(encoded) {
		return
	}

	remote, err := vv.Decode(encoded)
	if err != nil {
		core.LogDebug("logic", "dropping malformed sync vector: "+err.Error())
		return
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}

	now := time.Now()
	if l.liveness != nil {
		for _, e := range remote.Iterate() {
			l.liveness.Touch(e.NodeID, now)
		}
	}

	res := merge.Merge(l.vv, remote, l.strategy.chunked())

	if l.recordedVv != nil {
		// Already suppressed this round: fold in and take no further
		// action beyond the merge above (spec §4.4 step 4).
		foldMax(l.recordedVv, remote)
		l.mu.Unlock()
	} else if res.LocalIsAhead {
		l.enterSuppressionLocked(remote)
		l.mu.Unlock()
	} else {
		l.mu.Unlock()
		// Nothing to announce; push our next attempt out and let others
		// with the same news speak up first (spec §4.4 step 5).
		l.retxSyncInterest(false, 0)
	}

	if len(res.Missing) > 0 && l.onUpdate != nil {
		l.onUpdate(res.Missing)
	}
}

// foldMax merges remote into agg by pointwise maximum, without touching
// the caller's local vector.
func foldMax(agg, remote *vv.VersionVector) {
	for _, e := range remote.Iterate() {
		if e.Seq > agg.Get(e.NodeID) {
			agg.Set(e.NodeID, e.Seq)
		}
	}
}
