// Package pointsto implements the Pointer / PointsToSet / MemoryObject
// abstractions (components C1, C2, and C5) that the points-to and
// reaching-definitions fixpoints are built on.
package pointsto

import "github.com/cs-au-dk/depgraph/analysis/offset"

// Target identifies an abstract memory region that a Pointer can point to.
// Pointer-Graph nodes implement Target directly; three process-wide
// sentinel targets (NULL, UnknownMemory, Invalidated) also implement it.
type Target interface {
	// TargetID returns a value that is unique among all Targets that can
	// occur within a single analysis run. Sentinels use small negative
	// IDs, which never collide with a real node's (non-negative) ID.
	TargetID() int
	String() string
}

type sentinel struct {
	id   int
	name string
}

func (s sentinel) TargetID() int   { return s.id }
func (s sentinel) String() string  { return s.name }

// NULL is the target of a null pointer.
var NULL Target = sentinel{id: -1, name: "NULL"}

// UnknownMemory is the target used to over-approximate "points somewhere
// we could not resolve". A Pointer with this target absorbs any other
// member of a PointsToSet (§3.3).
var UnknownMemory Target = sentinel{id: -2, name: "UNKNOWN_MEMORY"}

// Invalidated is the target left behind by a FREE or INVALIDATE_LOCALS
// operation, standing in for memory that must no longer be dereferenced.
var Invalidated Target = sentinel{id: -3, name: "INVALIDATED"}

// Pointer is an ordered pair (target, offset).
type Pointer struct {
	Target Target
	Offset offset.Offset
}

// Of constructs a pointer, canonicalizing any UnknownMemory target to the
// single representative (UnknownMemory, UNKNOWN) pointer per §3.2.
func Of(target Target, off offset.Offset) Pointer {
	if target == UnknownMemory {
		return Pointer{Target: UnknownMemory, Offset: offset.UNKNOWN}
	}
	return Pointer{Target: target, Offset: off}
}

func (p Pointer) String() string {
	return p.Target.String() + "+" + p.Offset.String()
}

// Equal reports structural equality between two pointers.
func (p Pointer) Equal(other Pointer) bool {
	return p.Target.TargetID() == other.Target.TargetID() && p.Offset.Equal(other.Offset)
}

func (p Pointer) Hash() uint32 {
	offHash := uint32(0xffffffff)
	if !p.Offset.IsUnknown() {
		v := p.Offset.Value()
		offHash = uint32(v) ^ uint32(v>>32)
	}
	return hashCombine(uint32(int32(p.Target.TargetID())), offHash)
}

// hashCombine mirrors utils.HashCombine (the boost hash-combine algorithm)
// so that pointer.go itself imports nothing beyond offset; other files of
// this package do import utils.
func hashCombine(hs ...uint32) (seed uint32) {
	for _, v := range hs {
		seed = v + 0x9e3779b9 + (seed << 6) + (seed >> 2)
	}
	return
}
