package main

import (
	"bytes"
	"fmt"
	"log"
	"os"

	"github.com/cs-au-dk/depgraph/analysis/cfg"
	"github.com/cs-au-dk/depgraph/analysis/pgraph"
	"github.com/cs-au-dk/depgraph/analysis/pgraph/pgraphio"
	"github.com/cs-au-dk/depgraph/analysis/pointsto"
	"github.com/cs-au-dk/depgraph/analysis/ptanalysis"
	"github.com/cs-au-dk/depgraph/analysis/reaching"
	"github.com/cs-au-dk/depgraph/utils"
	"github.com/cs-au-dk/depgraph/utils/dot"
	"github.com/cs-au-dk/depgraph/vistool"

	"github.com/fatih/color"
)

var (
	green  = utils.CanColorize(color.New(color.FgGreen).SprintFunc())
	yellow = utils.CanColorize(color.New(color.FgYellow).SprintFunc())
	red    = utils.CanColorize(color.New(color.FgRed).SprintFunc())
	cyan   = utils.CanColorize(color.New(color.FgCyan).SprintFunc())
)

// subgraphResolver implements ptanalysis.CalleeResolver over the
// FUNCTION->procedure mapping pgraphio.Load builds from each node's
// "procedure" field (§4.9).
type subgraphResolver map[*pgraph.Node]*pgraph.Subgraph

func (r subgraphResolver) Resolve(function pointsto.Target) (*pgraph.Subgraph, bool) {
	n, ok := function.(*pgraph.Node)
	if !ok {
		return nil, false
	}
	sg, ok := r[n]
	return sg, ok
}

func runPointsTo(res pgraphio.Result) {
	g := res.Graph
	resolver := subgraphResolver(res.FunctionTargets)

	pt := ptanalysis.Run(g, resolver, ptanalysis.Options{
		Variant:    ptanalysis.WithInvalidate,
		MaxOffset:  opts.MaxOffset(),
		MaxSetSize: opts.MaxSetSize(),
	})

	for _, n := range g.GetNodes() {
		fmt.Println(cyan(n.String()), "points-to:", n.PointsTo.String())
		if mm := pt.MemoryMapAt(n); len(mm) > 0 {
			fmt.Println("  memory map:")
			for target, obj := range mm {
				fmt.Printf("    %s: %s\n", yellow(fmt.Sprint(target)), obj.String())
			}
		}
	}
}

func runReachingDefs(res pgraphio.Result) {
	g := res.Graph
	resolver := subgraphResolver(res.FunctionTargets)

	ptanalysis.Run(g, resolver, ptanalysis.Options{
		Variant:    ptanalysis.WithInvalidate,
		MaxOffset:  opts.MaxOffset(),
		MaxSetSize: opts.MaxSetSize(),
	})

	rd := reaching.Run(g, ptanalysis.NodeResolver{}, opts.MaxSetSize())

	for _, n := range g.GetNodes() {
		fmt.Println(cyan(n.String()), "reaching definitions:", rd.At(n).String())
	}
}

func runValidate(res pgraphio.Result) {
	v := pgraph.NewValidator(res.Graph)
	if v.Validate() {
		fmt.Println(green("graph is well-formed"))
		return
	}
	fmt.Print(red(v.Errors()))
	log.Fatalln("validation failed")
}

func runCfgToDot(res pgraphio.Result) {
	g := res.Graph
	for _, sg := range g.Subgraphs() {
		blocks, byNode := partitionProcedure(g, sg)

		if entry, ok := byNode[sg.Entry]; ok {
			cfg.BuildDominatorTree(blocks, entry)
		}
		if sg.Return != nil {
			if exit, ok := byNode[sg.Return]; ok {
				cfg.BuildPostDominatorTree(blocks, exit)
				cfg.BuildControlDependence(blocks)
			}
		}

		emitDot(sg.Name+".cfg", vistool.RenderCFG[*pgraph.Node](blocks))
		emitDot(sg.Name+".dom", vistool.RenderDominatorTree[*pgraph.Node](blocks, false))
	}
}

// partitionProcedure restricts cfg.Partition to sg's own nodes and
// intraprocedural edges, leaving the interprocedural CALL->ENTRY /
// RETURN->CALL_RETURN edges C7/C9 operate on out of the basic-block view
// (§3.6's basic blocks are a per-procedure structure).
func partitionProcedure(g *pgraph.PointerGraph, sg *pgraph.Subgraph) ([]*cfg.BasicBlock[*pgraph.Node], map[*pgraph.Node]*cfg.BasicBlock[*pgraph.Node]) {
	var nodes []*pgraph.Node
	for _, n := range g.GetNodes() {
		if n.Subgraph == sg {
			nodes = append(nodes, n)
		}
	}

	sameProc := func(n *pgraph.Node, all []*pgraph.Node) []*pgraph.Node {
		var r []*pgraph.Node
		for _, m := range all {
			if m.Subgraph == sg {
				r = append(r, m)
			}
		}
		return r
	}
	succsOf := func(n *pgraph.Node) []*pgraph.Node { return sameProc(n, n.Succs) }
	predsOf := func(n *pgraph.Node) []*pgraph.Node { return sameProc(n, n.Preds) }

	return cfg.Partition(nodes, succsOf, predsOf)
}

func emitDot(name string, G *dot.DotGraph) {
	if !opts.Visualize() {
		fmt.Println(yellow("--- " + name + " ---"))
		if err := G.WriteDot(os.Stdout); err != nil {
			log.Fatalln(err)
		}
		return
	}

	var buf bytes.Buffer
	if err := G.WriteDot(&buf); err != nil {
		log.Fatalln(err)
	}
	img, err := dot.DotToImage(name, opts.OutputFormat(), buf.Bytes())
	if err != nil {
		log.Fatalln(err)
	}
	fmt.Println(green("wrote " + img))
}
