package reaching

import (
	"testing"

	"github.com/cs-au-dk/depgraph/analysis/pgraph"
	"github.com/cs-au-dk/depgraph/testutil"
)

// TestSummarizeLeafProcedure checks that a procedure with no FREE and no
// callees summarizes to PerformsFree == false.
func TestSummarizeLeafProcedure(t *testing.T) {
	g := testutil.NewProgram()
	b := testutil.NewProcedure(g, "leaf")
	x := b.Alloc()
	b.Load(x)
	b.Return()

	facts := Summarize(g)
	if facts[b.SG].PerformsFree {
		t.Fatalf("leaf procedure with no FREE should not summarize as PerformsFree")
	}
}

// TestSummarizePropagatesThroughCall checks that a caller of a procedure
// that FREEs inherits PerformsFree == true through the call graph, per
// §4.12's bottom-up interprocedural summary computation.
func TestSummarizePropagatesThroughCall(t *testing.T) {
	g := testutil.NewProgram()

	callee := testutil.NewProcedure(g, "callee")
	addr := callee.Alloc()
	callee.Free(addr)
	callee.Return()

	caller := testutil.NewProcedure(g, "caller")
	call := caller.Next(pgraph.CALL)
	caller.Edge(call, callee.Entry())
	caller.Return()

	facts := Summarize(g)
	if !facts[callee.SG].PerformsFree {
		t.Fatalf("callee procedure performs FREE directly, want PerformsFree == true")
	}
	if !facts[caller.SG].PerformsFree {
		t.Fatalf("caller calls a procedure that FREEs, want PerformsFree == true")
	}
}

// TestSummarizeMutualRecursionConverges checks that a two-procedure
// recursive cluster (an SCC of size 2) converges to a single joined fact
// for both members, rather than needing its own nested fixpoint.
func TestSummarizeMutualRecursionConverges(t *testing.T) {
	g := testutil.NewProgram()

	a := testutil.NewProcedure(g, "a")
	aCall := a.Next(pgraph.CALL)

	b := testutil.NewProcedure(g, "b")
	addr := b.Alloc()
	b.Free(addr)
	bCall := b.Next(pgraph.CALL)

	a.Edge(aCall, b.Entry())
	b.Edge(bCall, a.Entry())

	a.Return()
	b.Return()

	facts := Summarize(g)
	if !facts[a.SG].PerformsFree {
		t.Fatalf("a's recursive cluster includes a FREE via b, want PerformsFree == true")
	}
	if !facts[b.SG].PerformsFree {
		t.Fatalf("b performs FREE directly, want PerformsFree == true")
	}
}
