package reaching

import (
	"github.com/cs-au-dk/depgraph/analysis/pgraph"
	"github.com/cs-au-dk/depgraph/utils"
	"github.com/cs-au-dk/depgraph/utils/indenter"
	"github.com/cs-au-dk/depgraph/utils/tree"
)

// UnknownDefiner is the sentinel node inserted into an RDNodesSet when it
// collapses to UNKNOWN — standing in for "defined by some node we could
// not resolve", mirroring the reference RDMap's UNKNOWN_MEMORY node.
var UnknownDefiner = &pgraph.Node{ID: -1, Kind: pgraph.UNKNOWN_MEM}

// RDNodesSet is a set of defining Pointer-Graph nodes with UNKNOWN-
// absorption semantics, analogous to pointsto.PointsToSet (§3.8).
type RDNodesSet struct {
	unknown bool
	nodes   tree.Tree[*pgraph.Node, struct{}]
}

// NewRDNodesSet returns the empty RDNodesSet.
func NewRDNodesSet() RDNodesSet {
	return RDNodesSet{nodes: tree.NewTree[*pgraph.Node, struct{}](utils.PointerHasher[*pgraph.Node]{})}
}

// UnknownRDNodesSet returns the canonical UNKNOWN-absorbed RDNodesSet.
func UnknownRDNodesSet() RDNodesSet {
	s := NewRDNodesSet()
	s.unknown = true
	return s
}

// IsUnknown reports whether s has collapsed to the UNKNOWN top element.
func (s RDNodesSet) IsUnknown() bool { return s.unknown }

// Insert adds n to s. Inserting into an already-UNKNOWN set is a no-op.
// Inserting UnknownDefiner transitions the whole set to UNKNOWN,
// discarding any other members already present, mirroring RDNodesSet's
// makeUnknown().
func (s RDNodesSet) Insert(n *pgraph.Node) (RDNodesSet, bool) {
	if s.unknown {
		return s, false
	}
	if n == UnknownDefiner {
		return UnknownRDNodesSet(), true
	}
	if _, found := s.nodes.Lookup(n); found {
		return s, false
	}
	return RDNodesSet{nodes: s.nodes.Insert(n, struct{}{})}, true
}

// Union adds every node of other into s, returning the merged set and
// whether it changed.
func (s RDNodesSet) Union(other RDNodesSet) (RDNodesSet, bool) {
	if s.unknown {
		return s, false
	}
	if other.unknown {
		return UnknownRDNodesSet(), true
	}

	changed := false
	result := s
	other.ForEach(func(n *pgraph.Node) {
		var c bool
		result, c = result.Insert(n)
		changed = changed || c
	})
	return result, changed
}

// ForEach calls f once for every node in s. If s is UNKNOWN, f is called
// once with UnknownDefiner.
func (s RDNodesSet) ForEach(f func(*pgraph.Node)) {
	if s.unknown {
		f(UnknownDefiner)
		return
	}
	s.nodes.ForEach(func(n *pgraph.Node, _ struct{}) {
		f(n)
	})
}

// Size returns the number of nodes in s (1 if s is UNKNOWN).
func (s RDNodesSet) Size() int {
	if s.unknown {
		return 1
	}
	return s.nodes.Size()
}

// Equal reports structural equality between two RDNodesSets.
func (s RDNodesSet) Equal(other RDNodesSet) bool {
	if s.unknown != other.unknown {
		return false
	}
	if s.unknown {
		return true
	}
	return s.nodes.Equal(other.nodes, func(struct{}, struct{}) bool { return true })
}

func (s RDNodesSet) String() string {
	if s.unknown {
		return "UNKNOWN"
	}

	var elems []string
	s.ForEach(func(n *pgraph.Node) {
		elems = append(elems, n.String())
	})
	strs := make([]func() string, len(elems))
	for i, e := range elems {
		e := e
		strs[i] = func() string { return e }
	}
	return indenter.Indenter().Start("{").NestThunked(strs...).End("}")
}
