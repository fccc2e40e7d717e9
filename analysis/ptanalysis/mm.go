// Package ptanalysis implements the points-to fixpoint (C7): a worklist
// over a Pointer Graph that computes, for every node, a PointsToSet and
// (for the flow-sensitive variants) a per-program-point MemoryMap, with
// flow-sensitive, flow-sensitive-with-invalidate, and flow-insensitive
// modes, plus callee widening for function-pointer calls (§4.7, §4.9).
package ptanalysis

import (
	"github.com/cs-au-dk/depgraph/analysis/offset"
	"github.com/cs-au-dk/depgraph/analysis/pointsto"
)

// MemoryMap maps an abstract memory region to the MemoryObject tracking
// its offset-keyed points-to slots (§3.5, §4.7). It is deliberately a
// plain Go map, not a persistent structure: the reference analysis
// itself describes this representation as "an easy but not very
// efficient implementation, works for testing" (PointsToWithInvalidate) —
// the real structural sharing lives one level down, in MemoryObject's own
// persistent slot tree.
type MemoryMap map[pointsto.Target]*pointsto.MemoryObject

// clone returns a shallow copy of mm: a new top-level map holding the
// same *MemoryObject pointers. Safe because every mutation below first
// clones the specific MemoryObject it is about to change, rather than
// mutating a shared one in place.
func (mm MemoryMap) clone() MemoryMap {
	cp := make(MemoryMap, len(mm))
	for k, v := range mm {
		cp[k] = v
	}
	return cp
}

// getOrCreate returns the MemoryObject mm has for target, or a fresh
// empty one (not yet inserted into mm) if none exists.
func (mm MemoryMap) getOrCreate(target pointsto.Target) *pointsto.MemoryObject {
	if mo, ok := mm[target]; ok {
		return mo
	}
	return pointsto.NewMemoryObject(target)
}

// cloneObject returns a MemoryMap derived from mm in which target's
// MemoryObject has been replaced by a private, writable copy, along with
// that copy, ready to mutate.
func cloneObject(mm MemoryMap, target pointsto.Target) (MemoryMap, *pointsto.MemoryObject) {
	next := mm.clone()
	cp := *mm.getOrCreate(target)
	next[target] = &cp
	return next, &cp
}

// unionMaps merges every predecessor MemoryMap into one, offset-slot by
// offset-slot, implementing the join rule of §4.7: a node with more than
// one predecessor combines their MMs by union.
func unionMaps(maps []MemoryMap) MemoryMap {
	var result MemoryMap
	for _, mm := range maps {
		if mm == nil {
			continue
		}
		if result == nil {
			result = mm
			continue
		}
		merged := result.clone()
		for target, mo := range mm {
			if existing, ok := merged[target]; ok {
				cp := *existing
				mo.ForEach(func(off offset.Offset, s pointsto.PointsToSet) {
					cp.UnionPointsTo(off, s)
				})
				merged[target] = &cp
			} else {
				cp := *mo
				merged[target] = &cp
			}
		}
		result = merged
	}
	if result == nil {
		result = MemoryMap{}
	}
	return result
}
