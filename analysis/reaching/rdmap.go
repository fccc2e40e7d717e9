package reaching

import (
	"github.com/cs-au-dk/depgraph/analysis/offset"
	"github.com/cs-au-dk/depgraph/analysis/pgraph"
	"github.com/cs-au-dk/depgraph/utils"
	"github.com/cs-au-dk/depgraph/utils/indenter"
	"github.com/cs-au-dk/depgraph/utils/tree"
)

// RDMap stores DefSite -> RDNodesSet, the per-program-point value the
// reaching-definitions fixpoint computes (§3.8, §4.12).
type RDMap struct {
	defs tree.Tree[DefSite, RDNodesSet]
}

// New returns the empty RDMap.
func New() RDMap {
	return RDMap{defs: tree.NewTree[DefSite, RDNodesSet](utils.HashableHasher[DefSite]())}
}

// Get returns the RDNodesSet stored at ds, the empty set if none exists
// yet (mirrors the reference map's operator[]).
func (m RDMap) Get(ds DefSite) RDNodesSet {
	if s, found := m.defs.Lookup(ds); found {
		return s
	}
	return NewRDNodesSet()
}

// Add inserts n into defs[ds], returning the (possibly unchanged)
// resulting map and whether it changed.
func (m RDMap) Add(ds DefSite, n *pgraph.Node) (RDMap, bool) {
	cur := m.Get(ds)
	next, changed := cur.Insert(n)
	if !changed {
		return m, false
	}
	return RDMap{defs: m.defs.Insert(ds, next)}, true
}

// Update replaces defs[ds] with the singleton {n} — a strong update
// (§4.12). Returns whether the map changed.
func (m RDMap) Update(ds DefSite, n *pgraph.Node) (RDMap, bool) {
	replacement, _ := NewRDNodesSet().Insert(n)
	if cur, found := m.defs.Lookup(ds); found && cur.Equal(replacement) {
		return m, false
	}
	return RDMap{defs: m.defs.Insert(ds, replacement)}, true
}

// GetReachingDefinitions returns every node that may define a byte in
// [off, off+length) of target: every DefSite d with d.Target == target
// whose [d.Offset, d.Offset+d.Len) interval is not disjoint from the
// query interval, unioned together (§4.12).
func (m RDMap) GetReachingDefinitions(target *pgraph.Node, off, length offset.Offset) RDNodesSet {
	result := NewRDNodesSet()
	m.defs.ForEach(func(ds DefSite, s RDNodesSet) {
		if ds.Target != target {
			return
		}
		if IntervalsDisjunctive(ds.Offset, ds.Len, off, length) {
			return
		}
		result, _ = result.Union(s)
	})
	return result
}

// Empty reports whether m has no entries at all.
func (m RDMap) Empty() bool {
	return m.defs.Size() == 0
}

// Merge unions other into m, except that a DefSite present in without is
// a strong update: its merged value comes only from other, discarding
// m's own entry at that site entirely (§4.12). A merged set whose size
// exceeds maxSetSize (no cap when negative) collapses to UNKNOWN, the
// same ceiling C1/C9 apply to PointsToSet. Returns the merged map and
// whether it differs from m.
func (m RDMap) Merge(other RDMap, without map[DefSite]bool, maxSetSize int) (RDMap, bool) {
	result := m
	changed := false

	other.defs.ForEach(func(ds DefSite, otherSet RDNodesSet) {
		var merged RDNodesSet
		var c bool

		if without[ds] {
			cur, found := result.defs.Lookup(ds)
			if found && cur.Equal(otherSet) {
				return
			}
			merged, c = otherSet, true
		} else {
			cur := result.Get(ds)
			merged, c = cur.Union(otherSet)
			if !c {
				return
			}
		}

		if maxSetSize >= 0 && !merged.IsUnknown() && merged.Size() > maxSetSize {
			merged = UnknownRDNodesSet()
		}

		result = RDMap{defs: result.defs.Insert(ds, merged)}
		changed = changed || c
	})

	return result, changed
}

// ForEach calls f once for every (DefSite, RDNodesSet) entry in m.
func (m RDMap) ForEach(f func(DefSite, RDNodesSet)) {
	m.defs.ForEach(f)
}

// Equal reports structural equality between two RDMaps.
func (m RDMap) Equal(other RDMap) bool {
	return m.defs.Equal(other.defs, func(a, b RDNodesSet) bool { return a.Equal(b) })
}

func (m RDMap) String() string {
	var strs []func() string
	m.ForEach(func(ds DefSite, s RDNodesSet) {
		strs = append(strs, func() string { return ds.String() + ": " + s.String() })
	})
	return indenter.Indenter().Start("{").NestThunked(strs...).End("}")
}
