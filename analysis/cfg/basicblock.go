// Package cfg implements the control-flow infrastructure (C3, C4, C10):
// basic blocks with labelled successor edges, dominator/post-dominator
// trees and frontiers, and the control-dependence builder (§3.6, §4.4,
// §4.5, §4.10).
package cfg

import "github.com/cs-au-dk/depgraph/utils/slices"

// Edge is a labelled successor edge to a BasicBlock. The label is opaque
// to this package (branch condition, switch case, ...); only equality
// matters for dedup and for successorsAreSame.
type Edge[N any] struct {
	Target *BasicBlock[N]
	Label  uint32
}

// BasicBlock is an ordered sequence of nodes sharing a block, a set of
// labelled successor edges, an unlabelled predecessor set, and the
// auxiliary sets the dominance and control-dependence analyses populate
// (§3.6). The zero value is an empty, detached block.
type BasicBlock[N any] struct {
	nodes []N

	succs []Edge[N]
	preds []*BasicBlock[N]

	// Dominance (§4.5).
	idom       *BasicBlock[N]
	dominators []*BasicBlock[N]
	domFront   []*BasicBlock[N]

	ipostdom       *BasicBlock[N]
	postDominators []*BasicBlock[N]
	postDomFront   []*BasicBlock[N]

	// Control dependence (§4.10).
	controlDeps    []*BasicBlock[N]
	revControlDeps []*BasicBlock[N]

	// SliceID tags the block with a slicing identifier; 0 means unset.
	SliceID uint64

	// callSites caches the block's call nodes so interprocedural
	// analyses (§4.9) don't need to rescan Nodes() to find them.
	callSites []N
}

// New returns an empty BasicBlock, optionally seeded with a first node.
func New[N any](head ...N) *BasicBlock[N] {
	b := &BasicBlock[N]{}
	if len(head) > 0 {
		b.Append(head[0])
	}
	return b
}

// Nodes returns the ordered sequence of nodes contained in the block.
func (b *BasicBlock[N]) Nodes() []N { return b.nodes }

// Empty reports whether the block holds no nodes.
func (b *BasicBlock[N]) Empty() bool { return len(b.nodes) == 0 }

// Append adds n to the end of the block's node sequence.
func (b *BasicBlock[N]) Append(n N) { b.nodes = append(b.nodes, n) }

// Prepend adds n to the front of the block's node sequence.
func (b *BasicBlock[N]) Prepend(n N) {
	b.nodes = append([]N{n}, b.nodes...)
}

// FirstNode returns the block's first node, or the zero value and false
// if the block is empty.
func (b *BasicBlock[N]) FirstNode() (n N, ok bool) {
	if len(b.nodes) == 0 {
		return n, false
	}
	return b.nodes[0], true
}

// LastNode returns the block's last node, or the zero value and false if
// the block is empty.
func (b *BasicBlock[N]) LastNode() (n N, ok bool) {
	if len(b.nodes) == 0 {
		return n, false
	}
	return b.nodes[len(b.nodes)-1], true
}

// Successors returns the block's labelled successor edges.
func (b *BasicBlock[N]) Successors() []Edge[N] { return b.succs }

// Predecessors returns the block's predecessor blocks.
func (b *BasicBlock[N]) Predecessors() []*BasicBlock[N] { return b.preds }

// SuccessorsAreSame reports whether every successor targets the same
// block, ignoring labels (§4.4).
func (b *BasicBlock[N]) SuccessorsAreSame() bool {
	if len(b.succs) < 2 {
		return true
	}
	target := b.succs[0].Target
	for _, e := range b.succs[1:] {
		if e.Target != target {
			return false
		}
	}
	return true
}

// HasSelfLoop reports whether b has a successor edge to itself.
func (b *BasicBlock[N]) HasSelfLoop() bool {
	for _, e := range b.succs {
		if e.Target == b {
			return true
		}
	}
	return false
}

// AddSuccessor inserts a labelled edge b -> target, and the matching
// back-edge into target's predecessors. A duplicate (target,label) pair
// is a no-op; the invariant B ∈ A.successors ⇔ A ∈ B.predecessors always
// holds (§4.4).
func (b *BasicBlock[N]) AddSuccessor(target *BasicBlock[N], label uint32) bool {
	edge := Edge[N]{Target: target, Label: label}
	if _, found := slices.Find(b.succs, func(e Edge[N]) bool { return e == edge }); found {
		return false
	}
	b.succs = append(b.succs, edge)
	if _, found := slices.Find(target.preds, func(p *BasicBlock[N]) bool { return p == b }); !found {
		target.preds = append(target.preds, b)
	}
	return true
}

// RemoveSuccessors clears every outgoing edge of b, removing b from each
// successor's predecessor set.
func (b *BasicBlock[N]) RemoveSuccessors() {
	for _, e := range b.succs {
		e.Target.preds = removeBlock(e.Target.preds, b)
	}
	b.succs = nil
}

func removeBlock[N any](bs []*BasicBlock[N], target *BasicBlock[N]) []*BasicBlock[N] {
	out := bs[:0]
	for _, b := range bs {
		if b != target {
			out = append(out, b)
		}
	}
	return out
}

// Isolate removes b from the control-flow graph: every predecessor is
// reconnected directly to every one of b's successors, preserving the
// predecessor's original edge label; an edge that would point back to b
// itself (a self-loop) is dropped rather than recreated. Every
// control-dependence edge incident to b is removed symmetrically. b is
// left detached (no predecessors, no successors, no CD edges) but not
// otherwise destroyed (§4.4).
func (b *BasicBlock[N]) Isolate() {
	for _, pred := range b.preds {
		var labels []uint32
		for _, e := range pred.succs {
			if e.Target == b {
				labels = append(labels, e.Label)
			}
		}
		pred.succs = removeEdgesTo(pred.succs, b)

		for _, label := range labels {
			for _, succ := range b.succs {
				if succ.Target == b {
					continue
				}
				pred.AddSuccessor(succ.Target, label)
			}
		}
	}

	b.RemoveSuccessors()
	b.preds = nil

	for _, cd := range b.controlDeps {
		if cd == b {
			continue
		}
		cd.revControlDeps = removeBlock(cd.revControlDeps, b)
	}
	for _, rcd := range b.revControlDeps {
		if rcd == b {
			continue
		}
		rcd.controlDeps = removeBlock(rcd.controlDeps, b)
	}
	b.controlDeps = nil
	b.revControlDeps = nil
}

func removeEdgesTo[N any](edges []Edge[N], target *BasicBlock[N]) []Edge[N] {
	out := edges[:0]
	for _, e := range edges {
		if e.Target != target {
			out = append(out, e)
		}
	}
	return out
}

// AddControlDependence records that b is control dependent on cd (in the
// terminology of §4.10, `b ∈ CD(cd)`), installing the reverse edge on cd
// as well.
func (b *BasicBlock[N]) AddControlDependence(cd *BasicBlock[N]) bool {
	if _, found := slices.Find(b.controlDeps, func(x *BasicBlock[N]) bool { return x == cd }); found {
		return false
	}
	b.controlDeps = append(b.controlDeps, cd)
	cd.revControlDeps = append(cd.revControlDeps, b)
	return true
}

// ControlDependence returns the blocks b is control dependent on.
func (b *BasicBlock[N]) ControlDependence() []*BasicBlock[N] { return b.controlDeps }

// RevControlDependence returns the blocks control dependent on b.
func (b *BasicBlock[N]) RevControlDependence() []*BasicBlock[N] { return b.revControlDeps }

// HasControlDependence reports whether b depends on any other block.
func (b *BasicBlock[N]) HasControlDependence() bool { return len(b.controlDeps) > 0 }

// AddCallSite registers n as a call site belonging to b, speeding up
// interprocedural lookups (§4.9) that would otherwise rescan Nodes().
func (b *BasicBlock[N]) AddCallSite(n N) { b.callSites = append(b.callSites, n) }

// CallSites returns the block's registered call sites.
func (b *BasicBlock[N]) CallSites() []N { return b.callSites }
