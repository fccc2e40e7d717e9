package reaching

import (
	"github.com/cs-au-dk/depgraph/analysis/offset"
	"github.com/cs-au-dk/depgraph/analysis/pgraph"
	"github.com/cs-au-dk/depgraph/analysis/pointsto"
	"github.com/cs-au-dk/depgraph/utils/worklist"
)

// wordLen is the definition length recorded for a scalar STORE, matching
// MemoryObject's single-slot-per-Offset model (§4.12): the analysis does
// not track operand widths, so every scalar write defines exactly one
// abstract unit at its target offset, exactly as MemoryObject addresses
// one PointsToSet per Offset rather than a byte range.
var wordLen = offset.Of(1)

// PointsToResolver supplies the (already-computed, by C7) points-to set
// of a Pointer-Graph node's address/value operand, decoupling the
// reaching-definitions fixpoint from the points-to fixpoint's own
// worklist the same way the callee-widening closure decouples C7 from
// the front-end (§4.9).
type PointsToResolver interface {
	PointsTo(n *pgraph.Node) pointsto.PointsToSet
}

// Result is the reaching-definitions fixpoint's output: one RDMap per
// Pointer-Graph node, the value after that node's own transfer function
// (the map its successors join).
type Result struct {
	maps map[*pgraph.Node]RDMap
}

// At returns the RDMap computed for n, the empty RDMap if n was never
// visited.
func (r Result) At(n *pgraph.Node) RDMap {
	if m, ok := r.maps[n]; ok {
		return m
	}
	return New()
}

// Run computes reaching definitions for every node reachable from roots
// (the ENTRY nodes of every subgraph in g, scanned via successor edges),
// using pt to resolve address operands' points-to sets. maxSetSize caps
// RDNodesSet size per entry before it collapses to UNKNOWN (a
// non-negative value; pass a negative number for no cap).
//
// The fixpoint is a worklist over nodes exactly analogous to C7's: a
// node merges its predecessors' RDMaps, then applies its own transfer
// function, and only re-enqueues successors when its own RDMap changed
// (§4.12).
func Run(g *pgraph.PointerGraph, pt PointsToResolver, maxSetSize int) Result {
	res := Result{maps: make(map[*pgraph.Node]RDMap)}

	var roots []*pgraph.Node
	for _, sg := range g.Subgraphs() {
		if sg.Entry != nil {
			roots = append(roots, sg.Entry)
		}
	}

	start := make([]*pgraph.Node, len(roots))
	copy(start, roots)

	worklist.StartV(start, func(n *pgraph.Node, add func(*pgraph.Node)) {
		joined := joinPredecessors(n, res.maps, maxSetSize)
		next := transfer(n, joined, pt, maxSetSize)

		cur, ok := res.maps[n]
		if ok && cur.Equal(next) {
			return
		}
		res.maps[n] = next
		for _, succ := range n.Succs {
			add(succ)
		}
	})

	return res
}

// joinPredecessors merges every already-computed predecessor RDMap of n
// by plain union (§4.7's join rule: a node with more than one
// predecessor combines their incoming values with no strong update of
// its own — each predecessor's STORE/FREE/etc. already baked its strong
// update into that predecessor's own RDMap via transfer()). The `without`
// parameter Merge accepts is for combining a node's own transfer-function
// result with its single predecessor's map (used inside transfer()
// itself), not for joining sibling branches.
func joinPredecessors(n *pgraph.Node, maps map[*pgraph.Node]RDMap, maxSetSize int) RDMap {
	result := New()
	for i, pred := range n.Preds {
		predMap, ok := maps[pred]
		if !ok {
			continue
		}
		if i == 0 {
			result = predMap
			continue
		}
		result, _ = result.Merge(predMap, nil, maxSetSize)
	}
	return result
}

// transfer applies n's own effect to its joined incoming RDMap (§4.12).
func transfer(n *pgraph.Node, in RDMap, pt PointsToResolver, maxSetSize int) RDMap {
	switch n.Kind {
	case pgraph.STORE:
		return storeTransfer(n, in, pt, maxSetSize)
	case pgraph.MEMCPY:
		return memcpyTransfer(n, in, pt, maxSetSize)
	case pgraph.FREE:
		return invalidateTransfer(n, in, pt, addressOperand(n), maxSetSize)
	case pgraph.INVALIDATE_LOCALS:
		return invalidateLocalsTransfer(n, in)
	case pgraph.INVALIDATE_OBJECT:
		return invalidateTransfer(n, in, pt, addressOperand(n), maxSetSize)
	default:
		return in
	}
}

// addressOperand returns the operand whose points-to set names the
// memory location a FREE/INVALIDATE_OBJECT acts on: its single operand.
func addressOperand(n *pgraph.Node) *pgraph.Node {
	if len(n.Operands) == 0 {
		return nil
	}
	return n.Operands[0]
}

// storeAddressOperand returns a STORE's pointer (address) operand: a
// STORE's operands are (value, pointer) — the strong-update set a STORE
// contributes is always computed from its pointer operand's points-to
// set, never its value operand's.
func storeAddressOperand(n *pgraph.Node) *pgraph.Node {
	if len(n.Operands) < 2 {
		return nil
	}
	return n.Operands[1]
}

func storeTransfer(n *pgraph.Node, in RDMap, pt PointsToResolver, maxSetSize int) RDMap {
	addr := storeAddressOperand(n)
	if addr == nil {
		return in
	}

	targets := pt.PointsTo(addr)
	result := in

	if targets.IsUnknown() {
		return weakDefine(result, pointsto.UnknownMemory, offset.UNKNOWN, wordLen, n, maxSetSize)
	}

	strong := targets.Size() == 1
	targets.ForEach(func(p pointsto.Pointer) {
		if p.Offset.IsUnknown() {
			result = weakDefine(result, p.Target, p.Offset, wordLen, n, maxSetSize)
			return
		}
		if strong {
			ds := Of(asNode(p.Target), p.Offset, wordLen)
			result, _ = result.Update(ds, n)
		} else {
			result = weakDefine(result, p.Target, p.Offset, wordLen, n, maxSetSize)
		}
	})
	return result
}

func memcpyTransfer(n *pgraph.Node, in RDMap, pt PointsToResolver, maxSetSize int) RDMap {
	if len(n.Operands) < 2 {
		return in
	}
	dst := n.Operands[1] // MEMCPY(src, dst, len)
	length := n.MemcpyLen

	dstSet := pt.PointsTo(dst)
	result := in
	dstSet.ForEach(func(p pointsto.Pointer) {
		result = weakDefine(result, p.Target, p.Offset, length, n, maxSetSize)
	})
	return result
}

// invalidateTransfer records n as a strong-update definer for every
// object the resolved pointer set of addr names, modelling a FREE
// (§4.7): after this point, only n defines "freed" at that site.
func invalidateTransfer(n *pgraph.Node, in RDMap, pt PointsToResolver, addr *pgraph.Node, maxSetSize int) RDMap {
	if addr == nil {
		return in
	}
	targets := pt.PointsTo(addr)
	result := in
	targets.ForEach(func(p pointsto.Pointer) {
		ds := Of(asNode(p.Target), p.Offset, offset.UNKNOWN)
		result, _ = result.Update(ds, n)
	})
	return result
}

// invalidateLocalsTransfer strongly updates every DefSite whose target is
// a non-heap, non-global node to {n}, so n replaces any earlier definer
// of that local-frame site rather than leaving a stale one behind
// (§4.12). Targets are not filtered by procedure: every non-heap,
// non-global target in the map is treated as local.
func invalidateLocalsTransfer(n *pgraph.Node, in RDMap) RDMap {
	result := in
	in.ForEach(func(ds DefSite, _ RDNodesSet) {
		if ds.Target == nil || ds.Target.IsHeap() || ds.Target.IsGlobal() {
			return
		}
		result, _ = result.Update(ds, n)
	})
	return result
}

// weakDefine unions n into the DefSite named by (target, off, length),
// collapsing to UNKNOWN past maxSetSize (§4.12).
func weakDefine(m RDMap, target pointsto.Target, off, length offset.Offset, n *pgraph.Node, maxSetSize int) RDMap {
	ds := Of(asNode(target), off, length)
	next, changed := m.Add(ds, n)
	if !changed {
		return m
	}
	if maxSetSize >= 0 {
		s := next.Get(ds)
		if !s.IsUnknown() && s.Size() > maxSetSize {
			next, _ = next.Update(ds, UnknownDefiner)
		}
	}
	return next
}

// asNode narrows a pointsto.Target to the *pgraph.Node it was
// constructed from. Pointer-Graph nodes are the only pointsto.Target
// implementation DefSite can name; the process-wide sentinels
// (NULL/UnknownMemory/Invalidated), including the UnknownMemory target
// storeTransfer passes for an UNKNOWN address set, are mapped onto
// UnknownDefiner's owning UNKNOWN_MEM node so a sentinel-addressed write
// still lands in the map instead of panicking.
func asNode(t pointsto.Target) *pgraph.Node {
	if n, ok := t.(*pgraph.Node); ok {
		return n
	}
	return UnknownDefiner
}
