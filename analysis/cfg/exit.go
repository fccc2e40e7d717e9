package cfg

// SyntheticExit returns a fresh, unlabelled virtual exit block with an
// incoming edge (label 0) from every block in blocks that has no
// successors of its own. Post-dominator computation needs a single root;
// a CFG with more than one genuine exit (multiple returns, infinite
// loops aside) does not have one on its own, so BuildPostDominatorTree
// needs a root obtained this way for such a CFG; a CFG with exactly one
// exit block can pass that block as the root instead.
func SyntheticExit[N any](blocks []*BasicBlock[N]) *BasicBlock[N] {
	exit := New[N]()
	for _, b := range blocks {
		if len(b.succs) == 0 {
			b.AddSuccessor(exit, 0)
		}
	}
	return exit
}
