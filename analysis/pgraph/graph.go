package pgraph

import "github.com/cs-au-dk/depgraph/utils/hmap"

// intHasher is the trivial utils.Hasher[int] the node-ID registry needs;
// int's own identity is already collision-free, so Hash is the identity
// cast (§11: utils/hmap.Map[K,V] backs the node-ID->node registry).
type intHasher struct{}

func (intHasher) Hash(k int) uint32   { return uint32(k) }
func (intHasher) Equal(a, b int) bool { return a == b }

// PointerGraph owns every Node and Subgraph produced for a single
// analysis run (§3.4, §3.9): nodes are allocated with monotonically
// increasing stable IDs and released together with the graph.
type PointerGraph struct {
	nodes     []*Node
	byID      *hmap.Map[int, *Node]
	subgraphs []*Subgraph
	nextID    int
}

// New returns an empty PointerGraph.
func New() *PointerGraph {
	return &PointerGraph{byID: hmap.NewMap[*Node](intHasher{})}
}

// AddSubgraph registers a new procedure and returns it. Entry/Return are
// left nil; set them with AddNode(ENTRY, ...)/AddNode(RETURN, ...) and
// assign the result.
func (g *PointerGraph) AddSubgraph(name string) *Subgraph {
	sg := &Subgraph{Name: name}
	g.subgraphs = append(g.subgraphs, sg)
	return sg
}

// Subgraphs returns every registered procedure.
func (g *PointerGraph) Subgraphs() []*Subgraph { return g.subgraphs }

// AddNode allocates and registers a new Node of the given kind in sg,
// assigning it the next stable ID.
func (g *PointerGraph) AddNode(kind Kind, sg *Subgraph) *Node {
	n := &Node{ID: g.nextID, Kind: kind, Subgraph: sg}
	g.nextID++
	g.nodes = append(g.nodes, n)
	g.byID.Set(n.ID, n)

	switch kind {
	case ENTRY:
		sg.Entry = n
	case RETURN:
		sg.Return = n
	}
	return n
}

// GetNode looks up a node by its stable ID.
func (g *PointerGraph) GetNode(id int) (*Node, bool) {
	return g.byID.GetOk(id)
}

// GetNodes returns every node registered in the graph, in allocation
// order.
func (g *PointerGraph) GetNodes() []*Node { return g.nodes }

// AddEdge adds an intraprocedural (or CALL->ENTRY / RETURN->CALL_RETURN
// interprocedural, §3.4) successor edge from -> to, and the matching
// predecessor back-edge.
func (g *PointerGraph) AddEdge(from, to *Node) {
	from.Succs = append(from.Succs, to)
	to.Preds = append(to.Preds, from)
}

// AddCallEdge wires call (a CALL or CALL_FUNCPTR node) to a candidate
// callee's entry node, and the callee's return node to call's
// CALL_RETURN join, modelling one interprocedural call/return pair
// (§4.9). callReturn is the CALL_RETURN node associated with call.
func (g *PointerGraph) AddCallEdge(call *Node, callee *Subgraph, callReturn *Node) {
	g.AddEdge(call, callee.Entry)
	g.AddEdge(callee.Return, callReturn)
}
