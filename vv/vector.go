// Package vv implements the version-vector data type: an ordered mapping
// from NodeID to SeqNo, its recency-ordered auxiliary view, and its TLV
// wire encodings. It is a pure data structure — it does not lock itself;
// callers sharing a VersionVector across goroutines (logic.Logic does)
// must supply their own mutex, per the concurrency discipline in the
// design notes this module is built from.
package vv

import (
	"bytes"
	"fmt"
	"math/rand"
	"sort"

	"github.com/nishsab/ndn-svs/core"
	"github.com/nishsab/ndn-svs/wire"
)

// NodeID is an opaque, immutable byte string identifying a participant.
// Equality and ordering are lexicographic on the raw bytes; the core
// never interprets its structure.
type NodeID []byte

// String renders a NodeID for logs. It assumes the common case of a
// printable hierarchical name and falls back to hex for anything else.
func (n NodeID) String() string {
	for _, c := range n {
		if c < 0x20 || c > 0x7e {
			return fmt.Sprintf("%x", []byte(n))
		}
	}
	return string(n)
}

// Equal reports whether two NodeIDs are byte-identical.
func (n NodeID) Equal(o NodeID) bool { return bytes.Equal(n, o) }

// Clone returns an independent copy of the NodeID.
func (n NodeID) Clone() NodeID {
	c := make(NodeID, len(n))
	copy(c, n)
	return c
}

// SeqNo is a monotonically-increasing per-node sequence number. Zero
// means "no data known from this node".
type SeqNo uint64

// Entry is a single (NodeID, SeqNo) pair, as returned by Iterate.
type Entry struct {
	NodeID NodeID
	Seq    SeqNo
}

// TLV type codes for the VersionVector wire format. These are fixed
// across implementations of this protocol (spec §6): third-party/
// application-specific NDN TLV numbers in the 128-252 unassigned range.
const (
	TypeVersionVector      uint32 = 201
	TypeVersionVectorKey   uint32 = 202
	TypeVersionVectorValue uint32 = 203
)

// defaultEntryOverhead is the advisory per-entry byte overhead (TLV
// type/length framing on both the key and value blocks) used by the
// size-capped encoders to decide when to stop, per spec §4.1.
const defaultEntryOverhead = 16

// VersionVector is an ordered mapping from NodeID to SeqNo.
type VersionVector struct {
	entries map[string]SeqNo
	// recency holds keys (string(NodeID)) in the order each entry was
	// last passed to Set. Front = least recent, back = most
	// recent. Every key in entries appears exactly once here.
	recency []string
}

// New returns an empty VersionVector.
func New() *VersionVector {
	return &VersionVector{entries: make(map[string]SeqNo)}
}

// Get returns the sequence number known for nid, or 0 if absent.
func (v *VersionVector) Get(nid NodeID) SeqNo {
	return v.entries[string(nid)]
}

// Set inserts or updates nid's sequence number and moves it to the back
// of the recency list. The protocol never calls this with a lower value
// than the current one; a caller that does so has a bug upstream of this
// type, and Set panics via core.InvariantViolation rather than silently
// accepting regressed state.
func (v *VersionVector) Set(nid NodeID, seq SeqNo) {
	key := string(nid)
	if existing, ok := v.entries[key]; !ok {
		v.recency = append(v.recency, key)
	} else {
		if seq < existing {
			core.InvariantViolation("vv: sequence number for %s went from %d to %d", nid, existing, seq)
		}
		v.bumpRecency(key)
	}
	v.entries[key] = seq
}

func (v *VersionVector) bumpRecency(key string) {
	for i, k := range v.recency {
		if k == key {
			v.recency = append(v.recency[:i], v.recency[i+1:]...)
			break
		}
	}
	v.recency = append(v.recency, key)
}

// Len returns the number of known nodes.
func (v *VersionVector) Len() int { return len(v.entries) }

// Iterate returns all (NodeID, SeqNo) pairs in ascending NodeID order.
func (v *VersionVector) Iterate() []Entry {
	out := make([]Entry, 0, len(v.entries))
	for k, seq := range v.entries {
		out = append(out, Entry{NodeID: NodeID(k), Seq: seq})
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].NodeID, out[j].NodeID) < 0
	})
	return out
}

// Names returns all known NodeIDs, canonically ordered.
func (v *VersionVector) Names() []NodeID {
	entries := v.Iterate()
	names := make([]NodeID, len(entries))
	for i, e := range entries {
		names[i] = e.NodeID
	}
	return names
}

// Clone returns a deep, independent copy of v.
func (v *VersionVector) Clone() *VersionVector {
	c := &VersionVector{
		entries: make(map[string]SeqNo, len(v.entries)),
		recency: append([]string(nil), v.recency...),
	}
	for k, val := range v.entries {
		c.entries[k] = val
	}
	return c
}

// String renders a human-readable "nid:seq nid:seq ..." snapshot in
// canonical order, suitable for Logic.StateString.
func (v *VersionVector) String() string {
	var buf bytes.Buffer
	for i, e := range v.Iterate() {
		if i > 0 {
			buf.WriteByte(' ')
		}
		fmt.Fprintf(&buf, "%s:%d", e.NodeID, e.Seq)
	}
	return buf.String()
}

// mostRecentFirst returns entries starting from the back of the recency
// list (most recently updated first).
func (v *VersionVector) mostRecentFirst() []Entry {
	out := make([]Entry, 0, len(v.recency))
	for i := len(v.recency) - 1; i >= 0; i-- {
		key := v.recency[i]
		out = append(out, Entry{NodeID: NodeID(key), Seq: v.entries[key]})
	}
	return out
}

func entrySize(e Entry, overhead int) int {
	return len(e.NodeID) + overhead
}

// encodeEntries builds a well-formed VersionVector TLV block out of the
// given entries in ascending canonical order, regardless of the order
// they were selected in.
func encodeEntries(entries []Entry) []byte {
	sorted := append([]Entry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i].NodeID, sorted[j].NodeID) < 0
	})

	outer := wire.NewParentBlock(TypeVersionVector)
	for _, e := range sorted {
		outer.Append(wire.NewBlock(TypeVersionVectorKey, e.NodeID))
		outer.Append(wire.NewBlock(TypeVersionVectorValue, wire.EncodeNNI(uint64(e.Seq))))
	}
	return outer.Wire()
}

// Encode returns the full canonical encoding of v.
func (v *VersionVector) Encode() []byte {
	return encodeEntries(v.Iterate())
}

// fitEntries greedily selects a prefix of candidates that fits within
// maxBytes, using the advisory per-entry overhead estimate. The first
// candidate is always selected, even if it alone exceeds maxBytes.
func fitEntries(candidates []Entry, maxBytes, overhead int) []Entry {
	var selected []Entry
	used := 0
	for _, e := range candidates {
		sz := entrySize(e, overhead)
		if used+sz > maxBytes && len(selected) > 0 {
			break
		}
		selected = append(selected, e)
		used += sz
	}
	return selected
}

// EncodeChunked splits the canonical map into a sequence of TLV blocks,
// each at most maxBytes, such that their union covers every entry. Chunks
// are filled starting from the most recently updated entries, so an
// active subset of the group is likely to land in the first chunk.
func (v *VersionVector) EncodeChunked(maxBytes int) [][]byte {
	return v.EncodeChunkedWithOverhead(maxBytes, defaultEntryOverhead)
}

// EncodeChunkedWithOverhead is EncodeChunked with a caller-supplied
// per-entry overhead estimate, for callers that have measured a
// different framing cost than the default (spec §9's tunable heuristic).
func (v *VersionVector) EncodeChunkedWithOverhead(maxBytes, overhead int) [][]byte {
	remaining := v.mostRecentFirst()
	var chunks [][]byte
	for len(remaining) > 0 {
		chunk := fitEntries(remaining, maxBytes, overhead)
		if len(chunk) == 0 {
			// A single entry does not fit; emit it alone rather than loop forever.
			chunk = remaining[:1]
		}
		chunks = append(chunks, encodeEntries(chunk))
		remaining = remaining[len(chunk):]
	}
	if chunks == nil {
		chunks = [][]byte{encodeEntries(nil)}
	}
	return chunks
}

// EncodeMostRecent includes entries from the back of the recency list
// until maxBytes would be exceeded.
func (v *VersionVector) EncodeMostRecent(maxBytes int) []byte {
	return v.EncodeMostRecentWithOverhead(maxBytes, defaultEntryOverhead)
}

// EncodeMostRecentWithOverhead is EncodeMostRecent with a caller-supplied
// per-entry overhead estimate.
func (v *VersionVector) EncodeMostRecentWithOverhead(maxBytes, overhead int) []byte {
	return encodeEntries(fitEntries(v.mostRecentFirst(), maxBytes, overhead))
}

// EncodeMostRecentAndRandom includes the most-recent entries as above,
// then up to k additional uniformly-sampled entries from the remainder,
// still subject to maxBytes.
func (v *VersionVector) EncodeMostRecentAndRandom(maxBytes int, k int) []byte {
	return v.EncodeMostRecentAndRandomWithOverhead(maxBytes, k, defaultEntryOverhead)
}

// EncodeMostRecentAndRandomWithOverhead is EncodeMostRecentAndRandom
// with a caller-supplied per-entry overhead estimate.
func (v *VersionVector) EncodeMostRecentAndRandomWithOverhead(maxBytes, k, overhead int) []byte {
	mostRecent := v.mostRecentFirst()
	selected := fitEntries(mostRecent, maxBytes, overhead)

	included := make(map[string]bool, len(selected))
	for _, e := range selected {
		included[string(e.NodeID)] = true
	}

	var remainder []Entry
	for _, e := range mostRecent {
		if !included[string(e.NodeID)] {
			remainder = append(remainder, e)
		}
	}
	rand.Shuffle(len(remainder), func(i, j int) { remainder[i], remainder[j] = remainder[j], remainder[i] })
	if k < len(remainder) {
		remainder = remainder[:k]
	}

	used := 0
	for _, e := range selected {
		used += entrySize(e, overhead)
	}
	for _, e := range remainder {
		sz := entrySize(e, overhead)
		if used+sz > maxBytes {
			break
		}
		selected = append(selected, e)
		used += sz
	}

	return encodeEntries(selected)
}

// EncodeRandom includes uniformly-sampled entries until maxBytes would be
// exceeded.
func (v *VersionVector) EncodeRandom(maxBytes int) []byte {
	return v.EncodeRandomWithOverhead(maxBytes, defaultEntryOverhead)
}

// EncodeRandomWithOverhead is EncodeRandom with a caller-supplied
// per-entry overhead estimate.
func (v *VersionVector) EncodeRandomWithOverhead(maxBytes, overhead int) []byte {
	all := v.Iterate()
	rand.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	return encodeEntries(fitEntries(all, maxBytes, overhead))
}

// Decode parses a VersionVector TLV block. It fails with
// ErrMalformedVector if the outer type, an inner key/value type, or the
// overall structure is not well-formed.
func Decode(data []byte) (*VersionVector, error) {
	outer, n, err := wire.DecodeBlock(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedVector, err)
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: trailing bytes after outer block", ErrMalformedVector)
	}
	if outer.Type() != TypeVersionVector {
		return nil, fmt.Errorf("%w: unexpected outer TLV type %d", ErrMalformedVector, outer.Type())
	}

	children, err := wire.ParseSubelements(outer)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedVector, err)
	}
	if len(children)%2 != 0 {
		return nil, fmt.Errorf("%w: odd number of key/value blocks", ErrMalformedVector)
	}

	out := New()
	for i := 0; i < len(children); i += 2 {
		keyBlock, valBlock := children[i], children[i+1]
		if keyBlock.Type() != TypeVersionVectorKey {
			return nil, fmt.Errorf("%w: expected key TLV, got type %d", ErrMalformedVector, keyBlock.Type())
		}
		if valBlock.Type() != TypeVersionVectorValue {
			return nil, fmt.Errorf("%w: expected value TLV, got type %d", ErrMalformedVector, valBlock.Type())
		}
		seq, err := wire.DecodeNNI(valBlock.Value())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedVector, err)
		}
		if _, dup := out.entries[string(keyBlock.Value())]; dup {
			return nil, fmt.Errorf("%w: duplicate key %s", ErrMalformedVector, NodeID(keyBlock.Value()))
		}
		out.Set(NodeID(keyBlock.Value()).Clone(), SeqNo(seq))
	}

	return out, nil
}
