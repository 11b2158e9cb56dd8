package logic

import (
	"github.com/nishsab/ndn-svs/core"
	"github.com/nishsab/ndn-svs/security"
	"github.com/nishsab/ndn-svs/transport"
)

// nonePlaceholder is the literal trailing name component appended in
// lieu of a signature when security.ModeNone is configured (spec §4.4).
var nonePlaceholder = transport.Component("0")

// encodeVectorLocked returns the wire-encoded chunks for the currently
// configured strategy. Must be called with l.mu held.
func (l *Logic) encodeVectorLocked() [][]byte {
	switch l.strategy {
	case EncodeChunkedFull:
		return l.vv.EncodeChunkedWithOverhead(l.maxWireSize, l.entryOverhead)
	case EncodeMostRecent:
		return [][]byte{l.vv.EncodeMostRecentWithOverhead(l.maxWireSize, l.entryOverhead)}
	case EncodeMostRecentAndRandom:
		return [][]byte{l.vv.EncodeMostRecentAndRandomWithOverhead(l.maxWireSize, l.randomK, l.entryOverhead)}
	case EncodeRandom:
		return [][]byte{l.vv.EncodeRandomWithOverhead(l.maxWireSize, l.entryOverhead)}
	default:
		return [][]byte{l.vv.Encode()}
	}
}

// emitChunks signs and sends each encoded vector chunk as its own sync
// packet, staggering all but the first by a small per-packet jitter so a
// chunked sync doesn't leave in a single burst.
func (l *Logic) emitChunks(chunks [][]byte) {
	for i, chunk := range chunks {
		if i == 0 {
			l.signAndSend(chunk)
			continue
		}

		l.mu.Lock()
		delay := l.packetJitterLocked()
		l.mu.Unlock()

		chunk := chunk
		l.sched.Schedule(delay, func() {
			l.signAndSend(chunk)
		})
	}
}

// signAndSend builds and sends one sync packet carrying encodedVV.
func (l *Logic) signAndSend(encodedVV []byte) {
	pkt := transport.Packet{
		Name: l.syncPrefix.Append(transport.Component(encodedVV)),
	}

	switch l.security.Mode {
	case security.ModeNone:
		pkt.Name = pkt.Name.Append(nonePlaceholder)
	default:
		sig, err := l.security.Sign(encodedVV)
		if err != nil {
			core.LogError("logic", "failed to sign outbound sync packet: "+err.Error())
			return
		}
		pkt.Signature = sig
	}

	if err := l.transport.ExpressInterest(pkt, nil, nil, nil); err != nil {
		core.LogError("logic", "expressInterest failed: "+err.Error())
	}
}
