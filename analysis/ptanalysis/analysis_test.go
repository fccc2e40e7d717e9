package ptanalysis

import (
	"testing"

	"github.com/cs-au-dk/depgraph/analysis/offset"
	"github.com/cs-au-dk/depgraph/analysis/pgraph"
	"github.com/cs-au-dk/depgraph/analysis/pointsto"
)

func defaultOpts(variant Variant) Options {
	return Options{Variant: variant, MaxOffset: -1, MaxSetSize: -1}
}

// TestAllocThenLoadSeesStore implements S5: x = alloc; STORE 7 -> x;
// y = LOAD x -- y's points-to set is exactly what was stored.
func TestAllocThenLoadSeesStore(t *testing.T) {
	g := pgraph.New()
	sg := g.AddSubgraph("f")

	entry := g.AddNode(pgraph.ENTRY, sg)
	x := g.AddNode(pgraph.ALLOC, sg)
	seven := g.AddNode(pgraph.ALLOC, sg)
	store := g.AddNode(pgraph.STORE, sg)
	load := g.AddNode(pgraph.LOAD, sg)
	ret := g.AddNode(pgraph.RETURN, sg)

	store.AddOperand(seven) // value
	store.AddOperand(x)     // pointer (address)
	load.AddOperand(x)

	g.AddEdge(entry, x)
	g.AddEdge(x, seven)
	g.AddEdge(seven, store)
	g.AddEdge(store, load)
	g.AddEdge(load, ret)

	Run(g, nil, defaultOpts(FlowSensitive))

	want := pointsto.New()
	want, _ = want.Add(pointsto.Of(seven, offset.Zero))
	if !load.PointsTo.Equal(want) {
		t.Fatalf("expected load to see the stored pointer, got %v", load.PointsTo)
	}
}

// TestSecondStoreStronglyUpdates implements S5's strong-update half: two
// sequential stores to the same singleton target leave only the second
// store's value visible to a later load.
func TestSecondStoreStronglyUpdates(t *testing.T) {
	g := pgraph.New()
	sg := g.AddSubgraph("f")

	entry := g.AddNode(pgraph.ENTRY, sg)
	x := g.AddNode(pgraph.ALLOC, sg)
	a := g.AddNode(pgraph.ALLOC, sg)
	b := g.AddNode(pgraph.ALLOC, sg)
	store1 := g.AddNode(pgraph.STORE, sg)
	store2 := g.AddNode(pgraph.STORE, sg)
	load := g.AddNode(pgraph.LOAD, sg)
	ret := g.AddNode(pgraph.RETURN, sg)

	store1.AddOperand(a)
	store1.AddOperand(x)
	store2.AddOperand(b)
	store2.AddOperand(x)
	load.AddOperand(x)

	g.AddEdge(entry, x)
	g.AddEdge(x, a)
	g.AddEdge(a, b)
	g.AddEdge(b, store1)
	g.AddEdge(store1, store2)
	g.AddEdge(store2, load)
	g.AddEdge(load, ret)

	Run(g, nil, defaultOpts(FlowSensitive))

	want := pointsto.New()
	want, _ = want.Add(pointsto.Of(b, offset.Zero))
	if !load.PointsTo.Equal(want) {
		t.Fatalf("expected the load to see only the second store's value, got %v", load.PointsTo)
	}
}

// TestPhiWeaklyUnionsBothBranches implements S6's join: a PHI at the join
// of two branches, whose operands are the two distinct allocations a and
// b, points to both of them.
func TestPhiWeaklyUnionsBothBranches(t *testing.T) {
	g := pgraph.New()
	sg := g.AddSubgraph("f")

	entry := g.AddNode(pgraph.ENTRY, sg)
	a := g.AddNode(pgraph.ALLOC, sg)
	b := g.AddNode(pgraph.ALLOC, sg)
	branchA := g.AddNode(pgraph.NOOP, sg)
	branchB := g.AddNode(pgraph.NOOP, sg)
	phi := g.AddNode(pgraph.PHI, sg)
	ret := g.AddNode(pgraph.RETURN, sg)

	phi.AddOperand(a)
	phi.AddOperand(b)

	g.AddEdge(entry, a)
	g.AddEdge(a, b)
	g.AddEdge(b, branchA)
	g.AddEdge(b, branchB)
	g.AddEdge(branchA, phi)
	g.AddEdge(branchB, phi)
	g.AddEdge(phi, ret)

	Run(g, nil, defaultOpts(FlowSensitive))

	if phi.PointsTo.Size() != 2 {
		t.Fatalf("expected the PHI to union both allocations, got %v", phi.PointsTo)
	}
	if !phi.PointsTo.PointsToTarget(a) || !phi.PointsTo.PointsToTarget(b) {
		t.Fatalf("expected the PHI to see both a and b, got %v", phi.PointsTo)
	}
}

// fakeCalleeResolver resolves a single function target to a fixed
// Subgraph, recording how many times it was asked.
type fakeCalleeResolver struct {
	fn    *pgraph.Node
	sg    *pgraph.Subgraph
	calls int
}

func (r *fakeCalleeResolver) Resolve(function pointsto.Target) (*pgraph.Subgraph, bool) {
	r.calls++
	if function == pointsto.Target(r.fn) {
		return r.sg, true
	}
	return nil, false
}

// TestCalleeWideningWiresNewFunctionAndReenqueuesCallReturn implements S8:
// a CALL_FUNCPTR whose call-target operand resolves to a FUNCTION node
// gets an ENTRY/RETURN pair wired in, and the callee's return value flows
// to the CALL_RETURN join.
func TestCalleeWideningWiresNewFunctionAndReenqueuesCallReturn(t *testing.T) {
	g := pgraph.New()
	caller := g.AddSubgraph("caller")
	callee := g.AddSubgraph("callee")

	entry := g.AddNode(pgraph.ENTRY, caller)
	fn := g.AddNode(pgraph.FUNCTION, caller)
	callSite := g.AddNode(pgraph.CALL_FUNCPTR, caller)
	callReturn := g.AddNode(pgraph.CALL_RETURN, caller)
	ret := g.AddNode(pgraph.RETURN, caller)

	callSite.AddOperand(fn)

	g.AddEdge(entry, fn)
	g.AddEdge(fn, callSite)
	g.AddEdge(callSite, callReturn)
	g.AddEdge(callReturn, ret)

	calleeEntry := g.AddNode(pgraph.ENTRY, callee)
	result := g.AddNode(pgraph.ALLOC, callee)
	calleeReturn := g.AddNode(pgraph.RETURN, callee)
	calleeReturn.AddOperand(result)
	g.AddEdge(calleeEntry, result)
	g.AddEdge(result, calleeReturn)

	resolver := &fakeCalleeResolver{fn: fn, sg: callee}

	Run(g, resolver, defaultOpts(FlowSensitive))

	foundEntry := false
	for _, s := range callSite.Succs {
		if s == calleeEntry {
			foundEntry = true
		}
	}
	if !foundEntry {
		t.Fatalf("expected the call site to be wired to the callee's entry")
	}

	foundReturnEdge := false
	for _, s := range calleeReturn.Succs {
		if s == callReturn {
			foundReturnEdge = true
		}
	}
	if !foundReturnEdge {
		t.Fatalf("expected the callee's return to be wired to the call's CALL_RETURN join")
	}

	if !callReturn.PointsTo.PointsToTarget(result) {
		t.Fatalf("expected the CALL_RETURN join to see the callee's return value, got %v", callReturn.PointsTo)
	}
}

// TestFreeInvalidatesUnderWithInvalidate implements the WithInvalidate
// variant's FREE handling: a load of a freed object's slot sees
// pointsto.Invalidated rather than the pre-free value.
func TestFreeInvalidatesUnderWithInvalidate(t *testing.T) {
	g := pgraph.New()
	sg := g.AddSubgraph("f")

	entry := g.AddNode(pgraph.ENTRY, sg)
	x := g.AddNode(pgraph.ALLOC, sg)
	v := g.AddNode(pgraph.ALLOC, sg)
	store := g.AddNode(pgraph.STORE, sg)
	free := g.AddNode(pgraph.FREE, sg)
	load := g.AddNode(pgraph.LOAD, sg)
	ret := g.AddNode(pgraph.RETURN, sg)

	store.AddOperand(v)
	store.AddOperand(x)
	free.AddOperand(x)
	load.AddOperand(x)

	g.AddEdge(entry, x)
	g.AddEdge(x, v)
	g.AddEdge(v, store)
	g.AddEdge(store, free)
	g.AddEdge(free, load)
	g.AddEdge(load, ret)

	Run(g, nil, defaultOpts(WithInvalidate))

	if !load.PointsTo.PointsToTarget(pointsto.Invalidated) {
		t.Fatalf("expected the load after free to see Invalidated, got %v", load.PointsTo)
	}
}

// TestFlowInsensitiveSharesOneMemoryMap checks the degraded mode: the load
// reads the union of every recorded MemoryMap, so it sees the store's
// write, and a memory map is recorded at the load.
func TestFlowInsensitiveSharesOneMemoryMap(t *testing.T) {
	g := pgraph.New()
	sg := g.AddSubgraph("f")

	entry := g.AddNode(pgraph.ENTRY, sg)
	x := g.AddNode(pgraph.ALLOC, sg)
	v := g.AddNode(pgraph.ALLOC, sg)
	store := g.AddNode(pgraph.STORE, sg)
	load := g.AddNode(pgraph.LOAD, sg)
	ret := g.AddNode(pgraph.RETURN, sg)

	store.AddOperand(v)
	store.AddOperand(x)
	load.AddOperand(x)

	g.AddEdge(entry, x)
	g.AddEdge(x, v)
	g.AddEdge(v, store)
	g.AddEdge(store, load)
	g.AddEdge(load, ret)

	result := Run(g, nil, defaultOpts(FlowInsensitive))

	want := pointsto.New()
	want, _ = want.Add(pointsto.Of(v, offset.Zero))
	if !load.PointsTo.Equal(want) {
		t.Fatalf("expected the flow-insensitive load to see the store, got %v", load.PointsTo)
	}
	if result.MemoryMapAt(load) == nil {
		t.Fatalf("expected a memory map to be recorded at the load")
	}
}
