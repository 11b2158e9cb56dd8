// Package transport defines the external interface Logic consumes from
// the network layer (spec §6). The named-data network transport itself —
// packet expression, interest filters, name routing — is explicitly out
// of scope for this module (spec §1); this package only specifies the
// boundary, plus a small in-memory codec for the packets crossing it.
package transport

import (
	"bytes"

	"github.com/nishsab/ndn-svs/wire"
)

// Component is a single opaque name component.
type Component []byte

// Name is an ordered sequence of components, e.g. the sync group prefix
// or a fully-formed outbound sync packet name.
type Name []Component

// Append returns a new Name with extra components appended.
func (n Name) Append(comps ...Component) Name {
	out := make(Name, 0, len(n)+len(comps))
	out = append(out, n...)
	out = append(out, comps...)
	return out
}

// HasPrefix reports whether n starts with prefix, component-by-component.
func (n Name) HasPrefix(prefix Name) bool {
	if len(prefix) > len(n) {
		return false
	}
	for i, c := range prefix {
		if !bytes.Equal(c, n[i]) {
			return false
		}
	}
	return true
}

// String renders the name in URI-ish slash-separated form for logs.
func (n Name) String() string {
	var buf bytes.Buffer
	for _, c := range n {
		buf.WriteByte('/')
		buf.Write(c)
	}
	if len(n) == 0 {
		buf.WriteByte('/')
	}
	return buf.String()
}

// NameFromString splits a slash-separated path into a Name.
func NameFromString(s string) Name {
	trimmed := bytes.Trim([]byte(s), "/")
	if len(trimmed) == 0 {
		return Name{}
	}
	parts := bytes.Split(trimmed, []byte("/"))
	name := make(Name, len(parts))
	for i, p := range parts {
		name[i] = Component(p)
	}
	return name
}

// Packet is the unit exchanged across the transport boundary: a sync
// Interest (or, for the ack-mode variant this module does not implement,
// a Data reply) carrying a name and content, plus an optional signature
// produced by package security.
type Packet struct {
	Name      Name
	Content   []byte
	Signature []byte
}

// Encode serializes a Packet using this module's TLV primitives: a
// varint-length-prefixed component count, then each component, then
// length-prefixed content and signature.
func (p Packet) Encode() []byte {
	var buf bytes.Buffer
	buf.Write(wire.EncodeVarNum(uint64(len(p.Name))))
	for _, c := range p.Name {
		buf.Write(wire.EncodeVarNum(uint64(len(c))))
		buf.Write(c)
	}
	buf.Write(wire.EncodeVarNum(uint64(len(p.Content))))
	buf.Write(p.Content)
	buf.Write(wire.EncodeVarNum(uint64(len(p.Signature))))
	buf.Write(p.Signature)
	return buf.Bytes()
}

// DecodePacket parses a Packet produced by Encode.
func DecodePacket(data []byte) (Packet, error) {
	var pkt Packet
	pos := 0

	readVarNum := func() (uint64, error) {
		v, n, err := wire.DecodeVarNum(data[pos:])
		if err != nil {
			return 0, err
		}
		pos += n
		return v, nil
	}
	readBytes := func(n uint64) ([]byte, error) {
		if uint64(len(data)-pos) < n {
			return nil, wire.ErrBufferTooShort
		}
		b := data[pos : pos+int(n)]
		pos += int(n)
		return b, nil
	}

	compCount, err := readVarNum()
	if err != nil {
		return pkt, err
	}
	pkt.Name = make(Name, compCount)
	for i := range pkt.Name {
		l, err := readVarNum()
		if err != nil {
			return pkt, err
		}
		b, err := readBytes(l)
		if err != nil {
			return pkt, err
		}
		pkt.Name[i] = append(Component(nil), b...)
	}

	contentLen, err := readVarNum()
	if err != nil {
		return pkt, err
	}
	content, err := readBytes(contentLen)
	if err != nil {
		return pkt, err
	}
	pkt.Content = append([]byte(nil), content...)

	sigLen, err := readVarNum()
	if err != nil {
		return pkt, err
	}
	sig, err := readBytes(sigLen)
	if err != nil {
		return pkt, err
	}
	if sigLen > 0 {
		pkt.Signature = append([]byte(nil), sig...)
	}

	return pkt, nil
}

// RegisteredPrefix is a scoped handle to an active RegisterPrefix call.
// Closing it stops delivering interests under that prefix.
type RegisteredPrefix interface {
	Close() error
}

// Transport is the boundary Logic depends on. Implementations translate
// these calls into whatever the real network layer requires; the
// bundled wsloop package provides a WebSocket-loopback stand-in for
// tests and the demo command.
type Transport interface {
	// RegisterPrefix arranges for onInterest to be called for every
	// inbound packet whose name starts with prefix. onRegisterFail is
	// called if registration itself cannot be completed.
	RegisterPrefix(prefix Name, onInterest func(Packet), onRegisterFail func(error)) (RegisteredPrefix, error)

	// ExpressInterest sends pkt and arranges for at most one of onData,
	// onNack, or onTimeout to be called. Sync interests are
	// fire-and-forget: Logic passes nil callbacks for them.
	ExpressInterest(pkt Packet, onData func(Packet), onNack func(reason string), onTimeout func()) error

	// Put replies with a Data packet. Only the request/reply ("ack
	// mode") variant described in spec §9 uses this; the suppression
	// variant implemented by package logic never calls it.
	Put(pkt Packet) error

	// ProcessEvents runs the transport's event loop on the calling
	// goroutine until Shutdown is called. Every callback registered
	// above is invoked from this goroutine, giving Logic the
	// single-threaded execution model spec §5 requires.
	ProcessEvents() error

	// Shutdown stops the event loop and releases transport resources.
	Shutdown()
}
