package pointsto

import (
	"github.com/cs-au-dk/depgraph/analysis/offset"
	"github.com/cs-au-dk/depgraph/utils/indenter"
	"github.com/cs-au-dk/depgraph/utils/tree"
)

// offsetHasher adapts offset.Offset to immutable.Hasher so it can key a
// persistent tree.Tree.
type offsetHasher struct{}

func (offsetHasher) Hash(o offset.Offset) uint32 {
	if o.IsUnknown() {
		return 0xffffffff
	}
	v := o.Value()
	return uint32(v) ^ uint32(v>>32)
}

func (offsetHasher) Equal(a, b offset.Offset) bool { return a.Equal(b) }

// MemoryObject is an abstraction of a single allocation: a map from
// Offset to PointsToSet, plus a back-pointer to the allocation node
// (§3.5, C5). Every key ever inserted is preserved for the lifetime of
// the analysis; values only grow.
type MemoryObject struct {
	// Alloc is the ALLOC/DYN_ALLOC node this object was allocated at.
	Alloc  Target
	slots  tree.Tree[offset.Offset, PointsToSet]
}

// NewMemoryObject creates an empty memory object bound to the given
// allocation node.
func NewMemoryObject(alloc Target) *MemoryObject {
	return &MemoryObject{
		Alloc: alloc,
		slots: tree.NewTree[offset.Offset, PointsToSet](offsetHasher{}),
	}
}

// GetPointsTo returns the points-to set stored at offset off, creating an
// empty one if none exists yet (mirrors the reference map's operator[]).
func (mo *MemoryObject) GetPointsTo(off offset.Offset) PointsToSet {
	if s, found := mo.slots.Lookup(off); found {
		return s
	}
	return New()
}

// AddPointsTo inserts ptr into the slot at offset off, returning whether
// the object changed.
func (mo *MemoryObject) AddPointsTo(off offset.Offset, ptr Pointer) bool {
	cur := mo.GetPointsTo(off)
	next, changed := cur.Add(ptr)
	if changed {
		mo.slots = mo.slots.Insert(off, next)
	}
	return changed
}

// UnionPointsTo unions pointers into the slot at offset off, returning
// whether the object changed.
func (mo *MemoryObject) UnionPointsTo(off offset.Offset, pointers PointsToSet) bool {
	cur := mo.GetPointsTo(off)
	next, changed := cur.Union(pointers)
	if changed {
		mo.slots = mo.slots.Insert(off, next)
	}
	return changed
}

// SetPointsTo overwrites the slot at offset off with pointers wholesale —
// used to implement a strong update (§4.7). Returns whether the object
// changed.
func (mo *MemoryObject) SetPointsTo(off offset.Offset, pointers PointsToSet) bool {
	cur, found := mo.slots.Lookup(off)
	if found && cur.Equal(pointers) {
		return false
	}
	mo.slots = mo.slots.Insert(off, pointers)
	return true
}

// ForEach calls f once for every (offset, points-to set) slot in mo.
func (mo *MemoryObject) ForEach(f func(offset.Offset, PointsToSet)) {
	mo.slots.ForEach(f)
}

func (mo *MemoryObject) String() string {
	var strs []func() string
	mo.ForEach(func(off offset.Offset, pts PointsToSet) {
		strs = append(strs, func() string { return off.String() + ": " + pts.String() })
	})
	return indenter.Indenter().Start("{").NestThunked(strs...).End("}")
}
