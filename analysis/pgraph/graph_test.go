package pgraph

import "testing"

func TestAddNodeAssignsStableIncreasingIDs(t *testing.T) {
	g := New()
	sg := g.AddSubgraph("main")
	a := g.AddNode(ALLOC, sg)
	b := g.AddNode(ALLOC, sg)

	if a.ID != 0 || b.ID != 1 {
		t.Fatalf("expected IDs 0 and 1, got %d and %d", a.ID, b.ID)
	}
	if got, ok := g.GetNode(0); !ok || got != a {
		t.Fatalf("expected GetNode(0) to return a, got %v ok=%v", got, ok)
	}
}

func TestAddNodeWiresEntryReturn(t *testing.T) {
	g := New()
	sg := g.AddSubgraph("f")
	entry := g.AddNode(ENTRY, sg)
	ret := g.AddNode(RETURN, sg)

	if sg.Entry != entry || sg.Return != ret {
		t.Fatalf("expected subgraph to track its ENTRY/RETURN nodes")
	}
}

func TestAddEdgeSymmetric(t *testing.T) {
	g := New()
	sg := g.AddSubgraph("f")
	a := g.AddNode(NOOP, sg)
	b := g.AddNode(NOOP, sg)
	g.AddEdge(a, b)

	if len(a.Succs) != 1 || a.Succs[0] != b {
		t.Fatalf("expected a->b successor edge")
	}
	if len(b.Preds) != 1 || b.Preds[0] != a {
		t.Fatalf("expected b's predecessor to be a")
	}
}

func TestAddCallEdgeWiresBothDirections(t *testing.T) {
	g := New()
	caller := g.AddSubgraph("caller")
	callee := g.AddSubgraph("callee")
	g.AddNode(ENTRY, callee)
	g.AddNode(RETURN, callee)

	call := g.AddNode(CALL, caller)
	callReturn := g.AddNode(CALL_RETURN, caller)

	g.AddCallEdge(call, callee, callReturn)

	if len(call.Succs) != 1 || call.Succs[0] != callee.Entry {
		t.Fatalf("expected call -> callee.Entry edge")
	}
	if len(callReturn.Preds) != 1 || callReturn.Preds[0] != callee.Return {
		t.Fatalf("expected callee.Return -> callReturn edge")
	}
}

func TestNodeIsHeapGlobal(t *testing.T) {
	g := New()
	sg := g.AddSubgraph("f")
	n := g.AddNode(DYN_ALLOC, sg)
	if n.IsHeap() || n.IsGlobal() {
		t.Fatal("expected fresh node to be neither heap nor global")
	}
	n.SetHeap(true)
	if !n.IsHeap() {
		t.Fatal("expected SetHeap(true) to mark the node heap")
	}
}
