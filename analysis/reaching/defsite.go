// Package reaching implements the reaching-definitions map and analysis
// (C9): DefSite/RDNodesSet/RDMap, the byte-level interval-disjointness
// test they are built on (§3.8, §4.12, §4.13), and the worklist fixpoint
// that populates an RDMap per Pointer-Graph node.
package reaching

import (
	"github.com/cs-au-dk/depgraph/analysis/offset"
	"github.com/cs-au-dk/depgraph/analysis/pgraph"
)

// DefSite names a byte range of a memory region that some node defines:
// the triple (target, offset, length), with offset and length
// independently allowed to be UNKNOWN (§3.8).
type DefSite struct {
	Target *pgraph.Node
	Offset offset.Offset
	Len    offset.Offset
}

// Of constructs a DefSite.
func Of(target *pgraph.Node, off, length offset.Offset) DefSite {
	return DefSite{Target: target, Offset: off, Len: length}
}

// Equal reports structural equality between two definition sites.
func (ds DefSite) Equal(other DefSite) bool {
	return ds.Target == other.Target && ds.Offset.Equal(other.Offset) && ds.Len.Equal(other.Len)
}

func (ds DefSite) Hash() uint32 {
	targetHash := uint32(0)
	if ds.Target != nil {
		id := ds.Target.TargetID()
		targetHash = uint32(int32(id))
	}
	return hashCombine(targetHash, offsetHash(ds.Offset), offsetHash(ds.Len))
}

func (ds DefSite) String() string {
	return "DefSite(" + nodeLabel(ds.Target) + ", " + ds.Offset.String() + ", " + ds.Len.String() + ")"
}

func nodeLabel(n *pgraph.Node) string {
	if n == nil {
		return "<nil>"
	}
	return n.String()
}

func offsetHash(o offset.Offset) uint32 {
	if o.IsUnknown() {
		return 0xffffffff
	}
	v := o.Value()
	return uint32(v) ^ uint32(v>>32)
}

// hashCombine mirrors utils.HashCombine (boost's hash_combine) without
// importing utils, matching pointsto.Pointer's self-contained approach.
func hashCombine(hs ...uint32) (seed uint32) {
	for _, v := range hs {
		seed = v + 0x9e3779b9 + (seed << 6) + (seed >> 2)
	}
	return
}

// IntervalsDisjunctive reports whether byte interval [a, a+aLen) is
// disjoint from [b, b+bLen) (§4.13). Both a and b must be concrete;
// aLen/bLen may independently be UNKNOWN, in which case that interval is
// treated as extending to infinity. Lengths must be strictly positive;
// callers must never ask about a zero-length interval.
func IntervalsDisjunctive(a, aLen, b, bLen offset.Offset) bool {
	av, bv := a.Value(), b.Value()

	if aLen.IsUnknown() {
		if bLen.IsUnknown() {
			return false
		}
		if av <= bv {
			return false
		}
		return bLen.Value() <= av-bv
	}
	if bLen.IsUnknown() {
		if av <= bv {
			return aLen.Value() <= bv-av
		}
		return false
	}

	if av <= bv {
		return aLen.Value() <= bv-av
	}
	return bLen.Value() <= av-bv
}

// IntervalsOverlap is the negation of IntervalsDisjunctive.
func IntervalsOverlap(a, aLen, b, bLen offset.Offset) bool {
	return !IntervalsDisjunctive(a, aLen, b, bLen)
}
