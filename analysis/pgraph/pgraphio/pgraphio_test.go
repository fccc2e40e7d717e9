package pgraphio

import (
	"strings"
	"testing"

	"github.com/cs-au-dk/depgraph/analysis/pgraph"
)

const smallGraph = `{
  "procedures": [
    {
      "name": "f",
      "nodes": [
        {"kind": "ENTRY", "succs": [1]},
        {"kind": "ALLOC", "heap": true, "succs": [2]},
        {"kind": "CONSTANT", "succs": [3]},
        {"kind": "STORE", "operands": [2, 1], "succs": [4]},
        {"kind": "LOAD", "operands": [1], "succs": [5]},
        {"kind": "RETURN"}
      ]
    }
  ]
}`

func TestLoadBuildsWellFormedGraph(t *testing.T) {
	res, err := Load(strings.NewReader(smallGraph))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	g := res.Graph

	if len(g.Subgraphs()) != 1 {
		t.Fatalf("expected 1 subgraph, got %d", len(g.Subgraphs()))
	}
	sg := g.Subgraphs()[0]
	if sg.Name != "f" {
		t.Fatalf("expected subgraph named %q, got %q", "f", sg.Name)
	}
	if sg.Entry == nil || sg.Entry.Kind != pgraph.ENTRY {
		t.Fatalf("expected an ENTRY node")
	}
	if sg.Return == nil || sg.Return.Kind != pgraph.RETURN {
		t.Fatalf("expected a RETURN node")
	}

	if len(g.GetNodes()) != 6 {
		t.Fatalf("expected 6 nodes, got %d", len(g.GetNodes()))
	}

	alloc, _ := g.GetNode(1)
	if !alloc.IsHeap() {
		t.Fatalf("expected node 1 to be marked heap")
	}

	store, _ := g.GetNode(3)
	if store.OperandsNum() != 2 {
		t.Fatalf("expected STORE to have 2 operands, got %d", store.OperandsNum())
	}
	if store.Operands[0].ID != 2 || store.Operands[1].ID != 1 {
		t.Fatalf("expected STORE operand order (value, pointer) = (2, 1), got (%d, %d)",
			store.Operands[0].ID, store.Operands[1].ID)
	}

	v := pgraph.NewValidator(g)
	if !v.Validate() {
		t.Fatalf("expected a well-formed loaded graph to validate, got errors: %s", v.Errors())
	}
}

const graphWithFunctionTarget = `{
  "procedures": [
    {
      "name": "callee",
      "nodes": [
        {"kind": "ENTRY", "succs": [1]},
        {"kind": "RETURN"}
      ]
    },
    {
      "name": "caller",
      "nodes": [
        {"kind": "ENTRY", "succs": [3]},
        {"kind": "FUNCTION", "procedure": "callee"},
        {"kind": "RETURN"}
      ]
    }
  ]
}`

func TestLoadBuildsFunctionTargetMapping(t *testing.T) {
	res, err := Load(strings.NewReader(graphWithFunctionTarget))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	fn, _ := res.Graph.GetNode(3)
	if fn.Kind != pgraph.FUNCTION {
		t.Fatalf("expected node 3 to be the FUNCTION node, got %s", fn.Kind)
	}

	sg, ok := res.FunctionTargets[fn]
	if !ok {
		t.Fatal("expected a FunctionTargets entry for the FUNCTION node")
	}
	if sg.Name != "callee" {
		t.Fatalf("expected the FUNCTION node to resolve to procedure %q, got %q", "callee", sg.Name)
	}
}

func TestLoadRejectsUnknownProcedureReference(t *testing.T) {
	const bad = `{"procedures": [{"name": "f", "nodes": [{"kind": "FUNCTION", "procedure": "missing"}]}]}`
	if _, err := Load(strings.NewReader(bad)); err == nil {
		t.Fatal("expected an error for a FUNCTION node naming an unknown procedure")
	}
}

func TestLoadRejectsUnknownKind(t *testing.T) {
	const bad = `{"procedures": [{"name": "f", "nodes": [{"kind": "BOGUS"}]}]}`
	if _, err := Load(strings.NewReader(bad)); err == nil {
		t.Fatal("expected an error for an unknown node kind")
	}
}

func TestLoadRejectsOutOfRangeReference(t *testing.T) {
	const bad = `{"procedures": [{"name": "f", "nodes": [{"kind": "RETURN", "succs": [5]}]}]}`
	if _, err := Load(strings.NewReader(bad)); err == nil {
		t.Fatal("expected an error for an out-of-range successor reference")
	}
}
