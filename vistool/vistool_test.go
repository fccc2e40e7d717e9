package vistool

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cs-au-dk/depgraph/analysis/cfg"
	"github.com/cs-au-dk/depgraph/analysis/pgraph"
	"github.com/cs-au-dk/depgraph/testutil"
)

// TestRenderPointerGraphRoundTripsNodeAndEdgeCounts implements S10: the
// dot text exported for a small Pointer Graph contains exactly as many
// node and (successor plus operand) edge lines as the graph itself has.
func TestRenderPointerGraphRoundTripsNodeAndEdgeCounts(t *testing.T) {
	g := testutil.NewProgram()
	b := testutil.NewProcedure(g, "f")

	x := b.Alloc()
	seven := b.Alloc()
	b.Store(seven, x)
	b.Load(x)
	b.Return()

	G := RenderPointerGraph(g)

	var buf bytes.Buffer
	if err := G.WriteDot(&buf); err != nil {
		t.Fatalf("WriteDot failed: %v", err)
	}
	out := buf.String()

	wantNodes := len(g.GetNodes())
	wantEdges := 0
	for _, n := range g.GetNodes() {
		wantEdges += len(n.Succs) + len(n.Operands)
	}

	// Every node's label is "<Kind> #<ID>"; nothing else in the output
	// (cluster labels, edge attrs) contains a "#", so this counts nodes
	// exactly.
	gotNodes := strings.Count(out, " #")
	if gotNodes != wantNodes {
		t.Fatalf("expected %d node lines, got %d; dot:\n%s", wantNodes, gotNodes, out)
	}

	gotEdges := strings.Count(out, "->")
	if gotEdges != wantEdges {
		t.Fatalf("expected %d edge lines, got %d; dot:\n%s", wantEdges, gotEdges, out)
	}
}

// TestRenderCFGRoundTripsBlockAndEdgeCounts builds a six-node straight
// line, packs it into one-node-per-block via testutil.LinearBlocks, and
// checks the exported dot text has one node line per block and one edge
// line per successor edge.
func TestRenderCFGRoundTripsBlockAndEdgeCounts(t *testing.T) {
	g := testutil.NewProgram()
	b := testutil.NewProcedure(g, "f")

	x := b.Alloc()
	seven := b.Alloc()
	store := b.Store(seven, x)
	load := b.Load(x)
	ret := b.Return()

	nodes := []*pgraph.Node{b.Entry(), x, seven, store, load, ret}
	blocks, _ := testutil.LinearBlocks(nodes)

	G := RenderCFG[*pgraph.Node](blocks)

	var buf bytes.Buffer
	if err := G.WriteDot(&buf); err != nil {
		t.Fatalf("WriteDot failed: %v", err)
	}
	out := buf.String()

	if got := strings.Count(out, `shape="box"`); got != len(blocks) {
		t.Fatalf("expected %d block node lines, got %d; dot:\n%s", len(blocks), got, out)
	}

	wantEdges := 0
	for _, b := range blocks {
		wantEdges += len(b.Successors())
	}
	if got := strings.Count(out, "->"); got != wantEdges {
		t.Fatalf("expected %d edge lines, got %d; dot:\n%s", wantEdges, got, out)
	}
}

// TestRenderDominatorTreeOneEdgePerNonRootBlock checks that the rendered
// dominator tree has exactly one edge per block with a non-nil immediate
// dominator.
func TestRenderDominatorTreeOneEdgePerNonRootBlock(t *testing.T) {
	g := testutil.NewProgram()
	b := testutil.NewProcedure(g, "f")

	x := b.Alloc()
	seven := b.Alloc()
	store := b.Store(seven, x)
	ret := b.Return()

	nodes := []*pgraph.Node{b.Entry(), x, seven, store, ret}
	blocks, byNode := testutil.LinearBlocks(nodes)

	cfg.BuildDominatorTree(blocks, byNode[b.Entry()])

	G := RenderDominatorTree[*pgraph.Node](blocks, false)

	var buf bytes.Buffer
	if err := G.WriteDot(&buf); err != nil {
		t.Fatalf("WriteDot failed: %v", err)
	}
	out := buf.String()

	want := 0
	for _, blk := range blocks {
		if blk.IDom() != nil {
			want++
		}
	}
	if got := strings.Count(out, "->"); got != want {
		t.Fatalf("expected %d dominator-tree edges, got %d; dot:\n%s", want, got, out)
	}
}
