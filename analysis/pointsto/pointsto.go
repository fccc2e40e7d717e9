package pointsto

import (
	"github.com/cs-au-dk/depgraph/analysis/offset"
	"github.com/cs-au-dk/depgraph/utils"
	"github.com/cs-au-dk/depgraph/utils/indenter"
	"github.com/cs-au-dk/depgraph/utils/tree"
)

// PointsToSet is a set of Pointers with UNKNOWN-absorption semantics
// (§3.3, C2). The zero value is not usable; construct with New().
type PointsToSet struct {
	unknown bool
	ptrs    tree.Tree[Pointer, struct{}]
}

// New returns the empty PointsToSet.
func New() PointsToSet {
	return PointsToSet{ptrs: tree.NewTree[Pointer, struct{}](utils.HashableHasher[Pointer]())}
}

// Unknown returns the canonical UNKNOWN-absorbed PointsToSet.
func Unknown() PointsToSet {
	s := New()
	s.unknown = true
	return s
}

// IsUnknown reports whether s has collapsed to the UNKNOWN top element.
func (s PointsToSet) IsUnknown() bool {
	return s.unknown
}

// Add inserts p into s, returning the (possibly unchanged) resulting set
// and whether it changed. Adding to an UNKNOWN set is a no-op. Adding
// (UnknownMemory, *) transitions the whole set to UNKNOWN, discarding any
// other members already present (§4.2).
func (s PointsToSet) Add(p Pointer) (PointsToSet, bool) {
	if s.unknown {
		return s, false
	}

	if p.Target == UnknownMemory {
		return Unknown(), true
	}

	if _, found := s.ptrs.Lookup(p); found {
		return s, false
	}

	return PointsToSet{ptrs: s.ptrs.Insert(p, struct{}{})}, true
}

// Union adds every pointer of other into s, returning the merged set and
// whether it changed.
func (s PointsToSet) Union(other PointsToSet) (PointsToSet, bool) {
	if s.unknown {
		return s, false
	}
	if other.unknown {
		return Unknown(), true
	}

	changed := false
	result := s
	other.ForEach(func(p Pointer) {
		var c bool
		result, c = result.Add(p)
		changed = changed || c
	})
	return result, changed
}

// PointsToTarget reports whether s contains a pointer with the given
// target, at any offset.
func (s PointsToSet) PointsToTarget(t Target) bool {
	if s.unknown {
		return t == UnknownMemory
	}

	found := false
	s.ptrs.ForEach(func(p Pointer, _ struct{}) {
		if p.Target.TargetID() == t.TargetID() {
			found = true
		}
	})
	return found
}

// ForEach calls f once for every pointer in s. If s is UNKNOWN, f is
// called once with the canonical (UnknownMemory, UNKNOWN) pointer.
func (s PointsToSet) ForEach(f func(Pointer)) {
	if s.unknown {
		f(Of(UnknownMemory, offset.UNKNOWN))
		return
	}
	s.ptrs.ForEach(func(p Pointer, _ struct{}) {
		f(p)
	})
}

// Size returns the number of pointers in s (1 if s is UNKNOWN).
func (s PointsToSet) Size() int {
	if s.unknown {
		return 1
	}
	return s.ptrs.Size()
}

// Equal reports structural equality between two points-to sets.
func (s PointsToSet) Equal(other PointsToSet) bool {
	if s.unknown != other.unknown {
		return false
	}
	if s.unknown {
		return true
	}
	return s.ptrs.Equal(other.ptrs, func(struct{}, struct{}) bool { return true })
}

func (s PointsToSet) String() string {
	if s.unknown {
		return "UNKNOWN"
	}

	var elems []string
	s.ForEach(func(p Pointer) {
		elems = append(elems, p.String())
	})
	strs := make([]func() string, len(elems))
	for i, e := range elems {
		e := e
		strs[i] = func() string { return e }
	}
	return indenter.Indenter().Start("{").NestThunked(strs...).End("}")
}
