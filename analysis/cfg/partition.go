package cfg

// Partition groups nodes into basic blocks by the classical leader rule
// (§3.6, §4.4): a node starts a new block when it has zero or more than
// one predecessor, or when its sole predecessor has more than one
// successor (a branch target). Every other node is appended to its
// predecessor's block; if that predecessor comes later in nodes and so
// has no block yet, the node starts a block of its own. Block-level
// successor edges are then derived from
// every node-level edge that crosses a block boundary, labelled by the
// edge's position in succsOf(n).
//
// nodes must list every node reachable in the graph succsOf/predsOf
// describes; a graph with several entry points (e.g. one Pointer Graph
// holding several procedures) partitions into one block tree per entry,
// since every zero-predecessor node is itself a leader.
func Partition[N comparable](nodes []N, succsOf, predsOf func(N) []N) ([]*BasicBlock[N], map[N]*BasicBlock[N]) {
	leader := make(map[N]bool, len(nodes))
	for _, n := range nodes {
		preds := predsOf(n)
		switch {
		case len(preds) != 1:
			leader[n] = true
		case len(succsOf(preds[0])) > 1:
			leader[n] = true
		}
	}

	var blocks []*BasicBlock[N]
	byNode := make(map[N]*BasicBlock[N], len(nodes))
	for _, n := range nodes {
		if !leader[n] {
			if pb, ok := byNode[predsOf(n)[0]]; ok {
				pb.Append(n)
				byNode[n] = pb
				continue
			}
		}
		b := New(n)
		blocks = append(blocks, b)
		byNode[n] = b
	}

	for _, n := range nodes {
		from := byNode[n]
		for i, s := range succsOf(n) {
			to := byNode[s]
			if to != from {
				from.AddSuccessor(to, uint32(i))
			}
		}
	}

	return blocks, byNode
}
