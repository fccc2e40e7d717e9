package ptanalysis

import (
	"github.com/cs-au-dk/depgraph/analysis/offset"
	"github.com/cs-au-dk/depgraph/analysis/pgraph"
	"github.com/cs-au-dk/depgraph/analysis/pointsto"
	"github.com/cs-au-dk/depgraph/utils/graph"
	"github.com/cs-au-dk/depgraph/utils/pq"
	"github.com/spakin/disjoint"
)

// CalleeResolver lazily materializes the ENTRY/RETURN pair for a FUNCTION
// target discovered in a CALL_FUNCPTR's call-target points-to set,
// supporting callee widening (§4.9): new callees can be wired into the
// graph mid-fixpoint as the call-target operand's points-to set grows.
type CalleeResolver interface {
	Resolve(function pointsto.Target) (*pgraph.Subgraph, bool)
}

// NodeResolver reads a Pointer-Graph node's own PointsTo field (populated
// in place by Run) -- it structurally satisfies reaching.PointsToResolver
// without this package needing to import analysis/reaching, letting
// cmd/depgraph chain C7's output directly into C9.
type NodeResolver struct{}

// PointsTo returns n's own points-to set, as last computed by Run.
func (NodeResolver) PointsTo(n *pgraph.Node) pointsto.PointsToSet { return n.PointsTo }

// Result is the points-to fixpoint's output: the MemoryMap in effect at
// each node once its own memory effect has been applied, i.e. the map its
// successors join (every node's own PointsToSet is written directly to
// its pgraph.Node.PointsTo field as the fixpoint runs, mirroring how the
// reference implementation stores pointsTo directly on PSNode).
type Result struct {
	mm map[*pgraph.Node]MemoryMap
}

// MemoryMapAt returns the MemoryMap computed at n, nil if n was never
// visited.
func (r Result) MemoryMapAt(n *pgraph.Node) MemoryMap { return r.mm[n] }

// Run computes points-to sets and (for the flow-sensitive variants)
// per-node memory maps for every node reachable from g's subgraph ENTRY
// points, widening the callee set of CALL_FUNCPTR nodes as resolver
// permits (§4.9). Pass a nil resolver if the graph has no function
// pointers to resolve.
func Run(g *pgraph.PointerGraph, resolver CalleeResolver, opts Options) Result {
	res := Result{mm: make(map[*pgraph.Node]MemoryMap)}

	var roots []*pgraph.Node
	for _, sg := range g.Subgraphs() {
		if sg.Entry != nil {
			roots = append(roots, sg.Entry)
		}
	}

	wiredFns := make(map[*pgraph.Node]map[pointsto.Target]bool)
	clusters := newCalleeCluster()

	// Order the worklist by reverse-post-order rank (§5's "Ordering"
	// contract, §11): a node is preferentially processed only once its
	// predecessors (in RPO) have already settled this round, so a
	// straight-line procedure reaches its fixpoint in one pass instead
	// of bouncing FIFO-order between branches.
	ranks := rpoRanks(g)
	succGraph := graph.OfHashable(func(n *pgraph.Node) []*pgraph.Node { return n.Succs })
	W := pq.Empty[*pgraph.Node](func(a, b *pgraph.Node) bool { return ranks[a] < ranks[b] })
	for _, r := range roots {
		W.Add(r)
	}

	for !W.IsEmpty() {
		n := W.GetNext()

		joinedMM := joinPredecessorMMs(n, res.mm, opts)
		nextMM := mmTransfer(n, joinedMM, opts)
		nextPT := pointsToTransfer(n, nextMM, opts)
		if opts.MaxSetSize >= 0 && !nextPT.IsUnknown() && nextPT.Size() > opts.MaxSetSize {
			nextPT = pointsto.Unknown()
		}

		cur, visited := res.mm[n]
		if visited && sameMM(cur, nextMM) && n.PointsTo.Equal(nextPT) {
			continue
		}

		res.mm[n] = nextMM
		n.PointsTo = nextPT

		if n.Kind == pgraph.CALL_FUNCPTR && resolver != nil {
			widenCallees(g, succGraph, n, resolver, wiredFns, clusters, W.Add)
		}

		for _, succ := range n.Succs {
			W.Add(succ)
		}
	}

	return res
}

// rpoRanks computes a reverse-post-order rank for every node reachable
// from any subgraph's ENTRY, by a plain DFS over successor edges; a
// subgraph not yet wired to any caller (e.g. a callee resolved lazily by
// widenCallees) is still ranked up front, since every subgraph already
// exists in g from construction -- only its call edges are added lazily.
func rpoRanks(g *pgraph.PointerGraph) map[*pgraph.Node]int {
	ranks := make(map[*pgraph.Node]int)
	visited := make(map[*pgraph.Node]bool)
	var order []*pgraph.Node

	var dfs func(*pgraph.Node)
	dfs = func(n *pgraph.Node) {
		if visited[n] {
			return
		}
		visited[n] = true
		for _, s := range n.Succs {
			dfs(s)
		}
		order = append(order, n)
	}

	for _, sg := range g.Subgraphs() {
		if sg.Entry != nil {
			dfs(sg.Entry)
		}
	}

	for i, n := range order {
		ranks[n] = len(order) - 1 - i
	}
	return ranks
}

// calleeCluster tracks, for each CALL_FUNCPTR's CALL_RETURN join, the
// union-find set of every already-discovered sibling callee's RETURN node
// plus the join itself (§4.9, §11's domain-stack mandate for
// spakin/disjoint): once two nodes are unioned, re-enqueuing the whole
// cluster after a further widening is a membership lookup keyed by the
// set's current representative, not a graph walk. Each disjoint.Element's
// Data is the *pgraph.Node it stands for; membership lists are tracked
// alongside and merged whenever two sets are joined, since the library
// itself only answers "same set or not", not "who else is in this set".
type calleeCluster struct {
	elems   map[*pgraph.Node]*disjoint.Element
	members map[*disjoint.Element][]*pgraph.Node
}

func newCalleeCluster() *calleeCluster {
	return &calleeCluster{
		elems:   make(map[*pgraph.Node]*disjoint.Element),
		members: make(map[*disjoint.Element][]*pgraph.Node),
	}
}

func (c *calleeCluster) elementFor(n *pgraph.Node) *disjoint.Element {
	if e, ok := c.elems[n]; ok {
		return e
	}
	e := disjoint.NewElement()
	e.Data = n
	c.elems[n] = e
	c.members[e] = []*pgraph.Node{n}
	return e
}

// union merges a and b's clusters, if they are not already joined.
func (c *calleeCluster) union(a, b *pgraph.Node) {
	ea, eb := c.elementFor(a), c.elementFor(b)
	ra, rb := ea.Find(), eb.Find()
	if ra == rb {
		return
	}
	merged := append(c.members[ra], c.members[rb]...)
	delete(c.members, ra)
	delete(c.members, rb)
	disjoint.Union(ea, eb)
	c.members[ea.Find()] = merged
}

// clusterOf returns every node joined into n's cluster so far, including n
// itself, via a single Find on n's own element.
func (c *calleeCluster) clusterOf(n *pgraph.Node) []*pgraph.Node {
	e, ok := c.elems[n]
	if !ok {
		return nil
	}
	return c.members[e.Find()]
}

// widenCallees implements §4.9's callee-widening closure: every FUNCTION
// target newly appearing in call's call-target points-to set gets an
// ENTRY/RETURN pair wired in (call->Entry, Return->call's CALL_RETURN).
// call's CALL_RETURN join and every sibling callee's RETURN node discovered
// so far are clustered together via a union-find set, so a further
// widening knows which nodes form "the whole cluster" via a single Find
// rather than re-deriving it; a BFS from CALL_RETURN over successor edges
// (succGraph) then collects every downstream consumer that must see the
// new callee's contribution re-added to the worklist (§11).
func widenCallees(g *pgraph.PointerGraph, succGraph graph.Graph[*pgraph.Node], call *pgraph.Node, resolver CalleeResolver, wiredFns map[*pgraph.Node]map[pointsto.Target]bool, clusters *calleeCluster, add func(*pgraph.Node)) {
	if wiredFns[call] == nil {
		wiredFns[call] = make(map[pointsto.Target]bool)
	}

	var callReturn *pgraph.Node
	for _, s := range call.Succs {
		if s.Kind == pgraph.CALL_RETURN {
			callReturn = s
		}
	}
	if callReturn != nil {
		clusters.union(call, callReturn)
	}

	newlyWired := false
	call.PointsTo.ForEach(func(p pointsto.Pointer) {
		fn, ok := p.Target.(*pgraph.Node)
		if !ok || fn.Kind != pgraph.FUNCTION {
			return
		}
		if wiredFns[call][fn] {
			return
		}
		callee, found := resolver.Resolve(fn)
		if !found || callee.Entry == nil {
			return
		}

		wiredFns[call][fn] = true
		newlyWired = true
		if callReturn != nil && callee.Return != nil {
			g.AddCallEdge(call, callee, callReturn)
			clusters.union(callReturn, callee.Return)
		} else {
			g.AddEdge(call, callee.Entry)
		}
		add(callee.Entry)
	})

	if newlyWired && callReturn != nil {
		for _, n := range clusters.clusterOf(call) {
			add(n)
		}
		succGraph.BFSV(func(n *pgraph.Node) (stop bool) {
			add(n)
			return false
		}, callReturn)
	}
}

func sameMM(a, b MemoryMap) bool {
	if len(a) != len(b) {
		return false
	}
	for target, moA := range a {
		moB, ok := b[target]
		if !ok {
			return false
		}
		if moA != moB && !sameMemoryObject(moA, moB) {
			return false
		}
	}
	return true
}

func sameMemoryObject(a, b *pointsto.MemoryObject) bool {
	equal := true
	a.ForEach(func(off offset.Offset, s pointsto.PointsToSet) {
		bs := b.GetPointsTo(off)
		if !s.Equal(bs) {
			equal = false
		}
	})
	if !equal {
		return false
	}
	b.ForEach(func(off offset.Offset, s pointsto.PointsToSet) {
		as := a.GetPointsTo(off)
		if !s.Equal(as) {
			equal = false
		}
	})
	return equal
}

// canChangeMM reports whether n's own processing can introduce new
// information into the memory map, as opposed to merely sharing its
// (single) predecessor's map by reference (§4.7's sharing policy).
func canChangeMM(n *pgraph.Node, opts Options) bool {
	if opts.Variant == FlowInsensitive {
		return len(n.Preds) == 0
	}
	if len(n.Preds) == 0 || len(n.Preds) > 1 {
		return true
	}
	switch n.Kind {
	case pgraph.STORE, pgraph.MEMCPY:
		return true
	case pgraph.FREE, pgraph.INVALIDATE_LOCALS, pgraph.INVALIDATE_OBJECT:
		return opts.Variant == WithInvalidate
	}
	return false
}

func joinPredecessorMMs(n *pgraph.Node, state map[*pgraph.Node]MemoryMap, opts Options) MemoryMap {
	if opts.Variant == FlowInsensitive {
		all := make([]MemoryMap, 0, len(state))
		for _, mm := range state {
			all = append(all, mm)
		}
		return unionMaps(all)
	}

	if !canChangeMM(n, opts) && len(n.Preds) == 1 {
		return state[n.Preds[0]]
	}

	preds := make([]MemoryMap, 0, len(n.Preds))
	for _, p := range n.Preds {
		if mm, ok := state[p]; ok {
			preds = append(preds, mm)
		}
	}
	return unionMaps(preds)
}

// mmTransfer applies n's own memory-map effect on top of its joined
// incoming map (§4.7): STORE/MEMCPY write through (strong or weak
// update), FREE/INVALIDATE_LOCALS invalidate, everything else passes the
// joined map through unchanged.
func mmTransfer(n *pgraph.Node, in MemoryMap, opts Options) MemoryMap {
	switch n.Kind {
	case pgraph.STORE:
		return storeTransfer(n, in, opts)
	case pgraph.MEMCPY:
		return memcpyTransfer(n, in, opts)
	case pgraph.FREE:
		if opts.Variant == WithInvalidate {
			return freeTransfer(n, in)
		}
		return in
	case pgraph.INVALIDATE_LOCALS:
		if opts.Variant == WithInvalidate {
			return invalidateLocalsTransfer(n, in)
		}
		return in
	default:
		return in
	}
}

func storeTransfer(n *pgraph.Node, in MemoryMap, opts Options) MemoryMap {
	if len(n.Operands) < 2 {
		return in
	}
	value, addr := n.Operands[0], n.Operands[1]
	targets := addr.PointsTo
	result := in

	if targets.IsUnknown() {
		next, mo := cloneObject(result, pointsto.UnknownMemory)
		mo.UnionPointsTo(offset.UNKNOWN, value.PointsTo)
		return next
	}

	strong := targets.Size() == 1 && opts.Variant != FlowInsensitive
	targets.ForEach(func(p pointsto.Pointer) {
		next, mo := cloneObject(result, p.Target)
		if strong && !p.Offset.IsUnknown() {
			mo.SetPointsTo(p.Offset, value.PointsTo)
		} else {
			mo.UnionPointsTo(p.Offset, value.PointsTo)
		}
		result = next
	})
	return result
}

func memcpyTransfer(n *pgraph.Node, in MemoryMap, opts Options) MemoryMap {
	if len(n.Operands) < 2 {
		return in
	}
	src, dst := n.Operands[0], n.Operands[1] // MEMCPY(src, dst, len)
	result := in

	src.PointsTo.ForEach(func(sp pointsto.Pointer) {
		srcObj := result.getOrCreate(sp.Target)
		dst.PointsTo.ForEach(func(dp pointsto.Pointer) {
			next, dstObj := cloneObject(result, dp.Target)

			if n.MemcpyLen.IsUnknown() || sp.Offset.IsUnknown() || dp.Offset.IsUnknown() {
				srcObj.ForEach(func(_ offset.Offset, s pointsto.PointsToSet) {
					dstObj.UnionPointsTo(dp.Offset, s)
				})
			} else {
				length := n.MemcpyLen.Value()
				for k := uint64(0); k < length; k++ {
					s := srcObj.GetPointsTo(offset.Of(sp.Offset.Value() + k))
					dstObj.UnionPointsTo(offset.Of(dp.Offset.Value()+k), s)
				}
			}
			result = next
		})
	})
	return result
}

// freeTransfer invalidates every known slot of every object the freed
// pointer's points-to set names, leaving pointsto.Invalidated behind
// (§4.7): after this point, dereferencing that slot is a use-after-free.
func freeTransfer(n *pgraph.Node, in MemoryMap) MemoryMap {
	if len(n.Operands) == 0 {
		return in
	}
	result := in
	n.Operands[0].PointsTo.ForEach(func(p pointsto.Pointer) {
		next, mo := cloneObject(result, p.Target)
		invalidated := pointsto.New()
		invalidated, _ = invalidated.Add(pointsto.Of(pointsto.Invalidated, offset.UNKNOWN))
		mo.ForEach(func(off offset.Offset, _ pointsto.PointsToSet) {
			mo.SetPointsTo(off, invalidated)
		})
		result = next
	})
	return result
}

// invalidateLocalsTransfer drops every MM entry whose target is a
// non-heap, non-global node belonging to n's own procedure: the local
// frame being torn down on return (§4.7).
func invalidateLocalsTransfer(n *pgraph.Node, in MemoryMap) MemoryMap {
	result := in.clone()
	for target := range in {
		node, ok := target.(*pgraph.Node)
		if !ok || node.IsHeap() || node.IsGlobal() {
			continue
		}
		if node.Subgraph != n.Subgraph {
			continue
		}
		delete(result, target)
	}
	return result
}

// pointsToTransfer computes n's own PointsToSet (§4.3): ALLOC/DYN_ALLOC
// introduce a fresh object, CAST/GEP/LOAD/PHI propagate from operands,
// everything else either unions its operands (if it has any) or unions
// its predecessors' already-computed sets (a plain control-flow join).
func pointsToTransfer(n *pgraph.Node, mm MemoryMap, opts Options) pointsto.PointsToSet {
	switch n.Kind {
	case pgraph.ALLOC, pgraph.DYN_ALLOC:
		s := pointsto.New()
		s, _ = s.Add(pointsto.Of(n, offset.Zero))
		return s
	case pgraph.FUNCTION:
		s := pointsto.New()
		s, _ = s.Add(pointsto.Of(n, offset.Zero))
		return s
	case pgraph.NULL_ADDR:
		s := pointsto.New()
		s, _ = s.Add(pointsto.Of(pointsto.NULL, offset.Zero))
		return s
	case pgraph.UNKNOWN_MEM:
		return pointsto.Unknown()
	case pgraph.CONSTANT:
		return pointsto.New()
	case pgraph.GEP:
		return gepTransfer(n, opts)
	case pgraph.LOAD:
		return loadTransfer(n, mm)
	case pgraph.CAST:
		if len(n.Operands) == 0 {
			return pointsto.New()
		}
		return n.Operands[0].PointsTo
	case pgraph.PHI:
		return unionOperands(n)
	default:
		if len(n.Operands) > 0 {
			return unionOperands(n)
		}
		return unionPredecessorPointsTo(n)
	}
}

func unionOperands(n *pgraph.Node) pointsto.PointsToSet {
	result := pointsto.New()
	for _, op := range n.Operands {
		result, _ = result.Union(op.PointsTo)
	}
	return result
}

func unionPredecessorPointsTo(n *pgraph.Node) pointsto.PointsToSet {
	result := pointsto.New()
	for _, p := range n.Preds {
		result, _ = result.Union(p.PointsTo)
	}
	return result
}

// gepTransfer adds n's GEPOffset to every (target, offset) pair in its
// single operand's points-to set, saturating through offset.Add (§4.3).
func gepTransfer(n *pgraph.Node, opts Options) pointsto.PointsToSet {
	if len(n.Operands) == 0 {
		return pointsto.New()
	}
	base := n.Operands[0].PointsTo
	result := pointsto.New()
	if base.IsUnknown() {
		return pointsto.Unknown()
	}
	base.ForEach(func(p pointsto.Pointer) {
		next := p.Offset.Add(n.GEPOffset, opts.MaxOffset)
		var changed bool
		result, changed = result.Add(pointsto.Of(p.Target, next))
		_ = changed
		if opts.MaxSetSize >= 0 && !result.IsUnknown() && result.Size() > opts.MaxSetSize {
			result = pointsto.Unknown()
		}
	})
	return result
}

// loadTransfer resolves a LOAD's operand points-to set against mm,
// unioning the resolved memory object's offset=o slot (or every slot,
// when o is UNKNOWN) for each (target, o) pair (§4.8).
func loadTransfer(n *pgraph.Node, mm MemoryMap) pointsto.PointsToSet {
	if len(n.Operands) == 0 {
		return pointsto.New()
	}
	addr := n.Operands[0].PointsTo
	result := pointsto.New()

	if addr.IsUnknown() {
		return pointsto.Unknown()
	}

	addr.ForEach(func(p pointsto.Pointer) {
		mo := mm.getOrCreate(p.Target)
		if p.Offset.IsUnknown() {
			mo.ForEach(func(_ offset.Offset, s pointsto.PointsToSet) {
				result, _ = result.Union(s)
			})
			return
		}
		result, _ = result.Union(mo.GetPointsTo(p.Offset))
	})
	return result
}
