package reaching

import (
	"github.com/cs-au-dk/depgraph/analysis"
	"github.com/cs-au-dk/depgraph/analysis/pgraph"
	"github.com/cs-au-dk/depgraph/utils/graph"
)

// CallGraph views a Pointer Graph's procedures as a graph in their own
// right (§4.12, §11): an edge sg -> callee exists whenever sg contains a
// CALL or CALL_FUNCPTR node wired to callee's ENTRY, whether that wiring
// was present from construction or added later by C7's callee widening.
func CallGraph(g *pgraph.PointerGraph) graph.Graph[*pgraph.Subgraph] {
	return graph.OfHashable(func(sg *pgraph.Subgraph) []*pgraph.Subgraph {
		seen := make(map[*pgraph.Subgraph]bool)
		var callees []*pgraph.Subgraph
		for _, n := range g.GetNodes() {
			if n.Subgraph != sg {
				continue
			}
			if n.Kind != pgraph.CALL && n.Kind != pgraph.CALL_FUNCPTR {
				continue
			}
			for _, s := range n.Succs {
				if s.Kind == pgraph.ENTRY && s.Subgraph != sg && !seen[s.Subgraph] {
					seen[s.Subgraph] = true
					callees = append(callees, s.Subgraph)
				}
			}
		}
		return callees
	})
}

// ProcedureSummary is a per-procedure fact computed bottom-up over the
// call graph's SCC condensation (§4.12): whether the procedure, or any
// procedure it (transitively) calls, performs a FREE. A real
// interprocedural reaching-definitions client would grow this into
// richer may-summaries (e.g. "may invalidate object O"); FREE-reachability
// is kept as the one concrete fact so the SCC wiring itself -- the part
// §11 actually names -- has a worked example exercising it.
type ProcedureSummary struct {
	PerformsFree bool
}

func joinSummaries(a, b ProcedureSummary) ProcedureSummary {
	return ProcedureSummary{PerformsFree: a.PerformsFree || b.PerformsFree}
}

// Summarize computes a ProcedureSummary for every subgraph of g,
// processing the call graph's strongly connected components bottom-up
// (§4.12, §11's analysis.SCCAnalysis mandate) so that a recursive cluster
// of procedures converges to a single monotonically-joined fact instead
// of needing its own nested fixpoint.
func Summarize(g *pgraph.PointerGraph) map[*pgraph.Subgraph]ProcedureSummary {
	subgraphs := append([]*pgraph.Subgraph(nil), g.Subgraphs()...)
	cg := CallGraph(g)
	scc := cg.SCC(subgraphs)

	performsFreeDirectly := make(map[*pgraph.Subgraph]bool)
	for _, n := range g.GetNodes() {
		if n.Kind == pgraph.FREE {
			performsFreeDirectly[n.Subgraph] = true
		}
	}

	facts := analysis.SCCAnalysis(scc, func(sg *pgraph.Subgraph) ProcedureSummary {
		return ProcedureSummary{PerformsFree: performsFreeDirectly[sg]}
	}, joinSummaries)

	result := make(map[*pgraph.Subgraph]ProcedureSummary, len(subgraphs))
	for _, sg := range subgraphs {
		result[sg] = facts[scc.ComponentOf(sg)]
	}
	return result
}
