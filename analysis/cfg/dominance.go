package cfg

import "github.com/cs-au-dk/depgraph/utils/graph"

// IDom returns b's immediate dominator, or nil for the entry block (or
// any block dominance was never computed for).
func (b *BasicBlock[N]) IDom() *BasicBlock[N] { return b.idom }

// Dominators returns the blocks that have b as their immediate
// dominator (b's children in the dominator tree).
func (b *BasicBlock[N]) Dominators() []*BasicBlock[N] { return b.dominators }

// DomFrontiers returns b's dominance frontier.
func (b *BasicBlock[N]) DomFrontiers() []*BasicBlock[N] { return b.domFront }

// IPostDom returns b's immediate post-dominator, or nil for the exit
// block (or any block post-dominance was never computed for).
func (b *BasicBlock[N]) IPostDom() *BasicBlock[N] { return b.ipostdom }

// PostDominators returns the blocks that have b as their immediate
// post-dominator (b's children in the post-dominator tree).
func (b *BasicBlock[N]) PostDominators() []*BasicBlock[N] { return b.postDominators }

// PostDomFrontiers returns b's post-dominance frontier.
func (b *BasicBlock[N]) PostDomFrontiers() []*BasicBlock[N] { return b.postDomFront }

func setIDom[N any](child, parent *BasicBlock[N]) {
	child.idom = parent
	if parent != nil {
		parent.dominators = append(parent.dominators, child)
	}
}

// asGraph wraps blocks as a utils/graph.Graph keyed by pointer identity,
// using edgesOf to pick forward or reversed adjacency.
func asGraph[N any](edgesOf func(*BasicBlock[N]) []*BasicBlock[N]) graph.Graph[*BasicBlock[N]] {
	return graph.OfHashable(edgesOf)
}

// BuildDominatorTree computes the dominator tree of the CFG reachable
// from entry, populating IDom/Dominators/DomFrontiers on every reachable
// block (§4.5). It reuses utils/graph's Cooper/Harvey/Kennedy algorithm:
// a block's immediate dominator is the nearest common dominator of its
// own predecessors (exactly the equation the algorithm iterates to a
// fixpoint over), so it is recovered by calling the closure with the
// block's predecessor list.
func BuildDominatorTree[N any](blocks []*BasicBlock[N], entry *BasicBlock[N]) {
	g := asGraph(func(b *BasicBlock[N]) []*BasicBlock[N] {
		ts := make([]*BasicBlock[N], len(b.succs))
		for i, e := range b.succs {
			ts[i] = e.Target
		}
		return ts
	})

	nearestCommon := g.DominatorTree(entry)
	reachable := reachableSet(g, entry)

	for _, b := range blocks {
		if b == entry || !reachable[b] {
			continue
		}
		preds := reachablePreds(b, reachable)
		if len(preds) == 0 {
			continue
		}
		setIDom(b, nearestCommon(preds...))
	}

	computeDomFrontiers(blocks, reachable)
}

// BuildPostDominatorTree computes the post-dominator tree of the CFG
// with the given (possibly synthetic) exit block as its root, populating
// IPostDom/PostDominators/PostDomFrontiers on every block that can reach
// exit. It is the mirror image of BuildDominatorTree run over the
// reversed-edge graph (§4.5, SPEC_FULL.md's "two structurally identical
// passes" note).
func BuildPostDominatorTree[N any](blocks []*BasicBlock[N], exit *BasicBlock[N]) {
	g := asGraph(func(b *BasicBlock[N]) []*BasicBlock[N] {
		return b.preds
	})

	nearestCommon := g.DominatorTree(exit)
	reachable := reachableSet(g, exit)

	for _, b := range blocks {
		if b == exit || !reachable[b] {
			continue
		}
		succs := reachableSuccs(b, reachable)
		if len(succs) == 0 {
			continue
		}
		setIPostDom(b, nearestCommon(succs...))
	}

	computePostDomFrontiers(blocks, reachable)
}

func setIPostDom[N any](child, parent *BasicBlock[N]) {
	child.ipostdom = parent
	if parent != nil {
		parent.postDominators = append(parent.postDominators, child)
	}
}

func reachableSet[N any](g graph.Graph[*BasicBlock[N]], root *BasicBlock[N]) map[*BasicBlock[N]]bool {
	seen := map[*BasicBlock[N]]bool{root: true}
	g.BFS(root, func(b *BasicBlock[N]) bool {
		seen[b] = true
		return false
	})
	return seen
}

func reachablePreds[N any](b *BasicBlock[N], reachable map[*BasicBlock[N]]bool) []*BasicBlock[N] {
	var out []*BasicBlock[N]
	for _, p := range b.preds {
		if reachable[p] {
			out = append(out, p)
		}
	}
	return out
}

func reachableSuccs[N any](b *BasicBlock[N], reachable map[*BasicBlock[N]]bool) []*BasicBlock[N] {
	var out []*BasicBlock[N]
	for _, e := range b.succs {
		if reachable[e.Target] {
			out = append(out, e.Target)
		}
	}
	return out
}

// Dominates reports whether a dominates b by walking b's dominator-tree
// ancestry (inclusive: a dominates itself).
func Dominates[N any](a, b *BasicBlock[N]) bool {
	for n := b; n != nil; n = n.idom {
		if n == a {
			return true
		}
	}
	return false
}

// StrictlyDominates reports whether a dominates b and a != b.
func StrictlyDominates[N any](a, b *BasicBlock[N]) bool {
	return a != b && Dominates(a, b)
}

// PostDominates reports whether a post-dominates b.
func PostDominates[N any](a, b *BasicBlock[N]) bool {
	for n := b; n != nil; n = n.ipostdom {
		if n == a {
			return true
		}
	}
	return false
}

// StrictlyPostDominates reports whether a post-dominates b and a != b.
func StrictlyPostDominates[N any](a, b *BasicBlock[N]) bool {
	return a != b && PostDominates(a, b)
}

// computeDomFrontiers computes the classical dominance frontier:
// DF(B) = { Y | B dominates a predecessor of Y and B does not strictly
// dominate Y }, via the standard Cytron et al. algorithm over the
// dominator tree computed above.
func computeDomFrontiers[N any](blocks []*BasicBlock[N], reachable map[*BasicBlock[N]]bool) {
	for _, b := range blocks {
		if !reachable[b] || len(b.preds) < 2 {
			continue
		}
		for _, p := range b.preds {
			if !reachable[p] {
				continue
			}
			runner := p
			for runner != nil && runner != b.idom {
				addDomFrontier(runner, b)
				runner = runner.idom
			}
		}
	}
}

func addDomFrontier[N any](b, df *BasicBlock[N]) bool {
	for _, x := range b.domFront {
		if x == df {
			return false
		}
	}
	b.domFront = append(b.domFront, df)
	return true
}

// computePostDomFrontiers computes PDF(B) = { Y | B postdominates a
// predecessor of Y and B does not strictly postdominate Y } (§4.5) by
// running the Cytron-style frontier computation over the post-dominator
// tree, on the reversed graph (successors play the role of
// predecessors).
func computePostDomFrontiers[N any](blocks []*BasicBlock[N], reachable map[*BasicBlock[N]]bool) {
	for _, b := range blocks {
		if !reachable[b] {
			continue
		}
		succs := reachableSuccs(b, reachable)
		if len(succs) < 2 {
			continue
		}
		for _, s := range succs {
			runner := s
			for runner != nil && runner != b.ipostdom {
				addPostDomFrontier(runner, b)
				runner = runner.ipostdom
			}
		}
	}
}

func addPostDomFrontier[N any](b, pdf *BasicBlock[N]) bool {
	for _, x := range b.postDomFront {
		if x == pdf {
			return false
		}
	}
	b.postDomFront = append(b.postDomFront, pdf)
	return true
}
