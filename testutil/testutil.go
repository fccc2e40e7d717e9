// Package testutil builds small synthetic Pointer Graphs and CFGs for use
// as test fixtures (C15), playing the same supporting role the teacher's
// own testutil package plays for its SSA-backed tests — but built from
// scratch, since the teacher's version is inextricably tied to loading
// real Go source through golang.org/x/tools' packages/ssa machinery and
// its go/expect-annotation format, neither of which applies to a
// front-end-less graph-structure library.
package testutil

import (
	"github.com/cs-au-dk/depgraph/analysis/cfg"
	"github.com/cs-au-dk/depgraph/analysis/offset"
	"github.com/cs-au-dk/depgraph/analysis/pgraph"
	"github.com/cs-au-dk/depgraph/analysis/pointsto"
)

// Builder accumulates nodes and edges for a single procedure of a
// PointerGraph under construction, exposing shorthand for the operand
// conventions the analyses require (STORE's (value, pointer) order,
// §4.7).
type Builder struct {
	G  *pgraph.PointerGraph
	SG *pgraph.Subgraph

	prev *pgraph.Node
}

// NewProgram returns an empty PointerGraph, ready to receive one or more
// procedures via NewProcedure.
func NewProgram() *pgraph.PointerGraph {
	return pgraph.New()
}

// NewProcedure registers a new Subgraph named name in g and returns a
// Builder scoped to it, seeded with an ENTRY node.
func NewProcedure(g *pgraph.PointerGraph, name string) *Builder {
	sg := g.AddSubgraph(name)
	b := &Builder{G: g, SG: sg}
	entry := b.node(pgraph.ENTRY)
	b.prev = entry
	return b
}

// node allocates a node of the given kind in b's procedure, without
// wiring any edge to it.
func (b *Builder) node(kind pgraph.Kind) *pgraph.Node {
	return b.G.AddNode(kind, b.SG)
}

// Entry returns the procedure's ENTRY node.
func (b *Builder) Entry() *pgraph.Node { return b.SG.Entry }

// Next allocates a node of the given kind and chains it after the
// previously allocated node with a successor edge, advancing the
// Builder's internal cursor. Use this for straight-line code; branch and
// join structure should be built with explicit Edge calls instead.
func (b *Builder) Next(kind pgraph.Kind, operands ...*pgraph.Node) *pgraph.Node {
	n := b.node(kind)
	for _, op := range operands {
		n.AddOperand(op)
	}
	b.G.AddEdge(b.prev, n)
	b.prev = n
	return n
}

// Edge wires an explicit successor edge from -> to, for branch/join
// structure Next's linear chaining can't express.
func (b *Builder) Edge(from, to *pgraph.Node) {
	b.G.AddEdge(from, to)
}

// Alloc chains a fresh ALLOC node.
func (b *Builder) Alloc() *pgraph.Node { return b.Next(pgraph.ALLOC) }

// Store chains a STORE of value through addr, passing operands in the
// (value, pointer) order the fixpoints expect.
func (b *Builder) Store(value, addr *pgraph.Node) *pgraph.Node {
	return b.Next(pgraph.STORE, value, addr)
}

// Load chains a LOAD of addr.
func (b *Builder) Load(addr *pgraph.Node) *pgraph.Node {
	return b.Next(pgraph.LOAD, addr)
}

// Free chains a FREE of addr.
func (b *Builder) Free(addr *pgraph.Node) *pgraph.Node {
	return b.Next(pgraph.FREE, addr)
}

// Phi allocates a PHI node (not chained, since a PHI's predecessors are
// the join's incoming branches, wired separately via Edge) with the given
// operands.
func (b *Builder) Phi(operands ...*pgraph.Node) *pgraph.Node {
	n := b.node(pgraph.PHI)
	for _, op := range operands {
		n.AddOperand(op)
	}
	return n
}

// Return chains a RETURN node, the procedure's designated exit.
func (b *Builder) Return() *pgraph.Node {
	return b.Next(pgraph.RETURN)
}

// StaticResolver maps a fixed set of nodes to fixed PointsToSets,
// standing in for a points-to result in tests that exercise only the
// reaching-definitions fixpoint (mirrors reaching's own internal
// staticResolver, exported here so other packages' tests can share it).
type StaticResolver map[*pgraph.Node]pointsto.PointsToSet

// PointsTo implements reaching.PointsToResolver (structurally; this
// package does not import analysis/reaching to avoid the dependency).
func (r StaticResolver) PointsTo(n *pgraph.Node) pointsto.PointsToSet {
	if s, ok := r[n]; ok {
		return s
	}
	return pointsto.New()
}

// SingletonPointsTo builds the one-element PointsToSet {(target, off)},
// the common case for wiring an ALLOC node's own address into a
// StaticResolver.
func SingletonPointsTo(target pointsto.Target, off offset.Offset) pointsto.PointsToSet {
	s := pointsto.New()
	s, _ = s.Add(pointsto.Of(target, off))
	return s
}

// LinearBlocks packs each node into its own BasicBlock and wires
// successor edges following the Pointer-Graph's own Succs, each labelled
// with the successor's index in its node's Succs,
// giving CFG-consuming code (dominance, control-dependence) a one
// node-per-block CFG view of a straight-line or branching node sequence
// without needing a real basic-block partitioner.
func LinearBlocks(nodes []*pgraph.Node) ([]*cfg.BasicBlock[*pgraph.Node], map[*pgraph.Node]*cfg.BasicBlock[*pgraph.Node]) {
	blocks := make([]*cfg.BasicBlock[*pgraph.Node], len(nodes))
	byNode := make(map[*pgraph.Node]*cfg.BasicBlock[*pgraph.Node], len(nodes))

	for i, n := range nodes {
		blocks[i] = cfg.New(n)
		byNode[n] = blocks[i]
	}

	for _, n := range nodes {
		from := byNode[n]
		for i, succ := range n.Succs {
			if to, ok := byNode[succ]; ok {
				from.AddSuccessor(to, uint32(i))
			}
		}
	}

	return blocks, byNode
}
