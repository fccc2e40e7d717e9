package cfg

// BuildControlDependence computes control-dependence edges over blocks
// from their already-computed post-dominance frontiers (§4.10):
// `B ∈ CD(A)` iff `A ∈ PDF(B)`. BuildPostDominatorTree (run against a
// SyntheticExit root when the CFG has more than one genuine exit) must
// have been run first so PostDomFrontiers() is populated. A block whose
// own frontier is empty — the common case for the entry block of a
// single-exit, unconditionally-executed procedure — ends up with no
// control dependence at all.
func BuildControlDependence[N any](blocks []*BasicBlock[N]) {
	for _, b := range blocks {
		for _, x := range b.postDomFront {
			b.AddControlDependence(x)
		}
	}
}
