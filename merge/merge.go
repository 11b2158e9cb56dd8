// Package merge implements the stateless comparison logic that combines
// a local and a remote VersionVector and reports what the local side
// learned. It never locks anything itself: callers that share vectors
// across goroutines (logic.Logic does) must hold their own mutex around
// calls into this package and must invoke any resulting callback only
// after releasing it (spec §4.2/§5).
package merge

import "github.com/nishsab/ndn-svs/vv"

// Missing describes a contiguous gap of sequence numbers the host should
// now fetch from NodeID: [Low, High], i.e. Low..High inclusive.
type Missing struct {
	NodeID vv.NodeID
	Low    vv.SeqNo
	High   vv.SeqNo
}

// Result is the outcome of a single Merge call.
type Result struct {
	// LocalIsAhead is true if, after merging, some NodeID's local
	// sequence number exceeds what remote reported for it.
	LocalIsAhead bool
	// RemoteWasAhead is true if remote reported a strictly newer
	// sequence number for at least one NodeID.
	RemoteWasAhead bool
	// Missing lists every gap discovered by this merge, in remote's
	// canonical (ascending NodeID) order.
	Missing []Missing
}

// Merge combines remote into local in place and reports what changed.
// local is mutated to the pointwise maximum of the two vectors.
//
// chunkedMode changes how absent remote entries are read during the
// "is local ahead" scan: under chunked mode remote.Get(nid) == 0 means
// "this node was not covered by the partial vector", not "remote is at
// zero", since a chunked sync only ever carries a subset of the group
// (spec §4.2).
func Merge(local, remote *vv.VersionVector, chunkedMode bool) Result {
	var res Result

	for _, e := range remote.Iterate() {
		seqLocal := local.Get(e.NodeID)
		if e.Seq > seqLocal {
			res.RemoteWasAhead = true
			res.Missing = append(res.Missing, Missing{
				NodeID: e.NodeID,
				Low:    seqLocal + 1,
				High:   e.Seq,
			})
			local.Set(e.NodeID, e.Seq)
		}
	}

	res.LocalIsAhead = LocalNewerThan(local, remote, chunkedMode)
	return res
}

// LocalNewerThan reports whether local knows something other does not:
// some NodeID's sequence number in local exceeds its value in other,
// under the same chunked-mode absence policy as Merge.
func LocalNewerThan(local, other *vv.VersionVector, chunkedMode bool) bool {
	for _, e := range local.Iterate() {
		otherSeq := other.Get(e.NodeID)
		if chunkedMode && otherSeq == 0 {
			// Unknown to the (partial) other vector, not behind.
			continue
		}
		if e.Seq > otherSeq {
			return true
		}
	}
	return false
}
