package reaching

import (
	"testing"

	"github.com/cs-au-dk/depgraph/analysis/offset"
	"github.com/cs-au-dk/depgraph/analysis/pgraph"
	"github.com/cs-au-dk/depgraph/analysis/pointsto"
)

// staticResolver maps a fixed operand node to a fixed PointsToSet,
// standing in for C7's output in tests that exercise only C9 (§10).
type staticResolver map[*pgraph.Node]pointsto.PointsToSet

func (r staticResolver) PointsTo(n *pgraph.Node) pointsto.PointsToSet {
	if s, ok := r[n]; ok {
		return s
	}
	return pointsto.New()
}

// TestRunStrongUpdateThroughStores implements S9 end-to-end: x = alloc;
// STORE 1 -> x; STORE 2 -> x; y = LOAD x -- the load's reaching
// definition is only the second store.
func TestRunStrongUpdateThroughStores(t *testing.T) {
	g := pgraph.New()
	sg := g.AddSubgraph("f")

	entry := g.AddNode(pgraph.ENTRY, sg)
	x := g.AddNode(pgraph.ALLOC, sg)
	store1 := g.AddNode(pgraph.STORE, sg)
	store2 := g.AddNode(pgraph.STORE, sg)
	load := g.AddNode(pgraph.LOAD, sg)
	ret := g.AddNode(pgraph.RETURN, sg)

	store1.AddOperand(x) // value operand, unused by the resolver stub
	store1.AddOperand(x) // pointer (address) operand
	store2.AddOperand(x)
	store2.AddOperand(x)
	load.AddOperand(x)

	g.AddEdge(entry, x)
	g.AddEdge(x, store1)
	g.AddEdge(store1, store2)
	g.AddEdge(store2, load)
	g.AddEdge(load, ret)

	resolver := staticResolver{
		x: func() pointsto.PointsToSet {
			s := pointsto.New()
			s, _ = s.Add(pointsto.Of(x, offset.Zero))
			return s
		}(),
	}

	result := Run(g, resolver, -1)

	loadIn := result.At(load)
	defs := loadIn.GetReachingDefinitions(x, offset.Zero, wordLen)
	if defs.Size() != 1 {
		t.Fatalf("expected exactly one reaching definition at the load, got size %d: %v", defs.Size(), defs)
	}
	var only *pgraph.Node
	defs.ForEach(func(n *pgraph.Node) { only = n })
	if only != store2 {
		t.Fatalf("expected store2 to be the sole reaching definition, got %v", only)
	}
}

// TestRunJoinUnionsDefinitionsFromBothBranches covers a diamond where
// each branch stores to the same object: the join sees both definers.
func TestRunJoinUnionsDefinitionsFromBothBranches(t *testing.T) {
	g := pgraph.New()
	sg := g.AddSubgraph("f")

	entry := g.AddNode(pgraph.ENTRY, sg)
	x := g.AddNode(pgraph.ALLOC, sg)
	storeA := g.AddNode(pgraph.STORE, sg)
	storeB := g.AddNode(pgraph.STORE, sg)
	join := g.AddNode(pgraph.JOIN, sg)
	ret := g.AddNode(pgraph.RETURN, sg)

	storeA.AddOperand(x) // value
	storeA.AddOperand(x) // pointer
	storeB.AddOperand(x)
	storeB.AddOperand(x)

	g.AddEdge(entry, x)
	g.AddEdge(x, storeA)
	g.AddEdge(x, storeB)
	g.AddEdge(storeA, join)
	g.AddEdge(storeB, join)
	g.AddEdge(join, ret)

	resolver := staticResolver{
		x: func() pointsto.PointsToSet {
			s := pointsto.New()
			s, _ = s.Add(pointsto.Of(x, offset.Zero))
			return s
		}(),
	}

	result := Run(g, resolver, -1)

	joinIn := result.At(join)
	defs := joinIn.GetReachingDefinitions(x, offset.Zero, wordLen)
	if defs.Size() != 2 {
		t.Fatalf("expected both branch stores to reach the join, got size %d: %v", defs.Size(), defs)
	}
}
