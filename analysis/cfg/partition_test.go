package cfg

import "testing"

// linear builds succsOf/predsOf closures over an explicit adjacency list,
// letting Partition be tested against plain ints instead of *pgraph.Node.
func adjacency(edges map[int][]int) (succsOf, predsOf func(int) []int) {
	preds := make(map[int][]int)
	for from, tos := range edges {
		for _, to := range tos {
			preds[to] = append(preds[to], from)
		}
	}
	return func(n int) []int { return edges[n] },
		func(n int) []int { return preds[n] }
}

// TestPartitionMergesStraightLineChain: 1->2->3->4 with no branches
// collapses to a single block.
func TestPartitionMergesStraightLineChain(t *testing.T) {
	succsOf, predsOf := adjacency(map[int][]int{1: {2}, 2: {3}, 3: {4}})
	blocks, byNode := Partition([]int{1, 2, 3, 4}, succsOf, predsOf)

	if len(blocks) != 1 {
		t.Fatalf("expected 1 block for a straight-line chain, got %d", len(blocks))
	}
	if len(blocks[0].Nodes()) != 4 {
		t.Fatalf("expected all 4 nodes in the one block, got %d", len(blocks[0].Nodes()))
	}
	for _, n := range []int{1, 2, 3, 4} {
		if byNode[n] != blocks[0] {
			t.Fatalf("expected node %d to map to the single block", n)
		}
	}
}

// TestPartitionSplitsAtBranchAndJoin: 1 branches to 2 and 3, both join at
// 4 -- four distinct blocks, one per node, wired with matching edges.
func TestPartitionSplitsAtBranchAndJoin(t *testing.T) {
	succsOf, predsOf := adjacency(map[int][]int{1: {2, 3}, 2: {4}, 3: {4}})
	blocks, byNode := Partition([]int{1, 2, 3, 4}, succsOf, predsOf)

	if len(blocks) != 4 {
		t.Fatalf("expected 4 blocks (branch + join), got %d", len(blocks))
	}

	b1, b2, b3, b4 := byNode[1], byNode[2], byNode[3], byNode[4]
	if !hasSucc(b1, b2) || !hasSucc(b1, b3) {
		t.Fatal("expected the branch block to have both successors")
	}
	if !hasSucc(b2, b4) || !hasSucc(b3, b4) {
		t.Fatal("expected both branch arms to reach the join block")
	}
	if len(b4.Predecessors()) != 2 {
		t.Fatalf("expected the join block to have 2 predecessors, got %d", len(b4.Predecessors()))
	}
}

// TestPartitionTwoEntryPointsProduceSeparateBlockTrees checks that a
// graph with two zero-predecessor roots (e.g. two procedures' ENTRY
// nodes) starts a fresh block at each root rather than merging them.
func TestPartitionTwoEntryPointsProduceSeparateBlockTrees(t *testing.T) {
	succsOf, predsOf := adjacency(map[int][]int{1: {2}, 10: {11}})
	blocks, byNode := Partition([]int{1, 2, 10, 11}, succsOf, predsOf)

	if len(blocks) != 2 {
		t.Fatalf("expected 2 separate blocks, got %d", len(blocks))
	}
	if byNode[1] == byNode[10] {
		t.Fatal("expected the two entry points to start distinct blocks")
	}
}
