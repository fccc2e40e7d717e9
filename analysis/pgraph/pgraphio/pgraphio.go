// Package pgraphio loads a Pointer Graph from a small JSON graph
// description. It stands in for a real front-end (§6, §10): absent an
// SSA-based or other IR-parsing pipeline, cmd/depgraph and the analysis
// packages' own manual tests both need some way to materialize a
// PointerGraph from outside Go source, and a flat JSON document is the
// simplest format that can express every node kind, operand list, and
// successor edge the graph defines.
package pgraphio

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/cs-au-dk/depgraph/analysis/offset"
	"github.com/cs-au-dk/depgraph/analysis/pgraph"
)

// document is the on-disk shape: a flat list of procedures, each a flat
// list of nodes. A node's position in the overall load order (counting
// across every procedure, in document order) is its global index, used
// by later nodes' "operands"/"succs" references -- this matches
// PointerGraph's own node-ID allocation order exactly, so no separate
// ID-remapping table is needed.
type document struct {
	Procedures []procedure `json:"procedures"`
}

type procedure struct {
	Name  string `json:"name"`
	Nodes []node `json:"nodes"`
}

type node struct {
	Kind     string `json:"kind"`
	Operands []int  `json:"operands,omitempty"`
	Succs    []int  `json:"succs,omitempty"`
	Heap     bool   `json:"heap,omitempty"`
	Global   bool   `json:"global,omitempty"`
	Offset   int    `json:"offset,omitempty"`
	Len      int    `json:"len,omitempty"`
	// Procedure names the procedure a FUNCTION node stands for, letting a
	// CALL_FUNCPTR's resolved points-to set name a callee by procedure
	// name instead of by an otherwise-meaningless node index (C7 §4.9).
	Procedure string `json:"procedure,omitempty"`
}

var kindByName = func() map[string]pgraph.Kind {
	m := make(map[string]pgraph.Kind)
	for _, k := range []pgraph.Kind{
		pgraph.ALLOC, pgraph.DYN_ALLOC, pgraph.LOAD, pgraph.STORE, pgraph.GEP,
		pgraph.CAST, pgraph.PHI, pgraph.CALL, pgraph.CALL_RETURN,
		pgraph.CALL_FUNCPTR, pgraph.ENTRY, pgraph.RETURN, pgraph.NOOP,
		pgraph.MEMCPY, pgraph.FREE, pgraph.INVALIDATE_LOCALS,
		pgraph.INVALIDATE_OBJECT, pgraph.FUNCTION, pgraph.CONSTANT,
		pgraph.NULL_ADDR, pgraph.UNKNOWN_MEM, pgraph.JOIN,
	} {
		m[k.String()] = k
	}
	return m
}()

// Result is what a load produces: the graph itself, plus the mapping a
// CalleeResolver needs from a FUNCTION node to the procedure it names
// (§4.9's callee widening looks callees up by FUNCTION target, not by
// procedure name, so this mapping has to be built once at load time).
type Result struct {
	Graph           *pgraph.PointerGraph
	FunctionTargets map[*pgraph.Node]*pgraph.Subgraph
}

// LoadFile reads and parses the JSON graph description at path.
func LoadFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("pgraphio: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses a JSON graph description from r and builds the
// PointerGraph it describes.
func Load(r io.Reader) (Result, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Result{}, fmt.Errorf("pgraphio: decoding graph description: %w", err)
	}

	g := pgraph.New()
	var nodes []*pgraph.Node
	var specs []node
	subgraphsByName := make(map[string]*pgraph.Subgraph, len(doc.Procedures))

	for _, proc := range doc.Procedures {
		sg := g.AddSubgraph(proc.Name)
		subgraphsByName[proc.Name] = sg
		for _, spec := range proc.Nodes {
			kind, ok := kindByName[spec.Kind]
			if !ok {
				return Result{}, fmt.Errorf("pgraphio: procedure %q: unknown node kind %q", proc.Name, spec.Kind)
			}
			n := g.AddNode(kind, sg)
			n.SetHeap(spec.Heap)
			n.SetGlobal(spec.Global)
			if kind == pgraph.GEP {
				n.GEPOffset = offset.Of(uint64(spec.Offset))
			}
			if kind == pgraph.MEMCPY {
				n.MemcpyLen = offset.Of(uint64(spec.Len))
			}
			nodes = append(nodes, n)
			specs = append(specs, spec)
		}
	}

	functionTargets := make(map[*pgraph.Node]*pgraph.Subgraph)
	for i, spec := range specs {
		n := nodes[i]
		for _, opIdx := range spec.Operands {
			op, err := resolve(nodes, opIdx)
			if err != nil {
				return Result{}, fmt.Errorf("pgraphio: node %d operand: %w", n.ID, err)
			}
			n.AddOperand(op)
		}
		for _, succIdx := range spec.Succs {
			succ, err := resolve(nodes, succIdx)
			if err != nil {
				return Result{}, fmt.Errorf("pgraphio: node %d successor: %w", n.ID, err)
			}
			g.AddEdge(n, succ)
		}
		if n.Kind == pgraph.FUNCTION && spec.Procedure != "" {
			sg, ok := subgraphsByName[spec.Procedure]
			if !ok {
				return Result{}, fmt.Errorf("pgraphio: node %d names unknown procedure %q", n.ID, spec.Procedure)
			}
			functionTargets[n] = sg
		}
	}

	return Result{Graph: g, FunctionTargets: functionTargets}, nil
}

func resolve(nodes []*pgraph.Node, idx int) (*pgraph.Node, error) {
	if idx < 0 || idx >= len(nodes) {
		return nil, fmt.Errorf("index %d out of range [0,%d)", idx, len(nodes))
	}
	return nodes[idx], nil
}
