package pgraph

import (
	"fmt"
	"strconv"
	"strings"
)

// arity gives the required operand count for node kinds with a fixed
// arity (§4.6). Kinds absent from the map are structurally unconstrained.
var arity = map[Kind]int{
	NULL_ADDR:   0,
	UNKNOWN_MEM: 0,
	NOOP:        0,
	FUNCTION:    0,
	CONSTANT:    0,
	GEP:         1,
	LOAD:        1,
	CAST:        1,
	FREE:        1,
	STORE:       2,
	MEMCPY:      2,
}

// Validator checks a PointerGraph for structural well-formedness (C11):
// operand arity by kind, PHI's arity>=1 floor, and that every operand
// reference resolves to a node actually registered in the graph.
type Validator struct {
	g      *PointerGraph
	errors strings.Builder
}

// NewValidator returns a Validator for g.
func NewValidator(g *PointerGraph) *Validator {
	return &Validator{g: g}
}

// Validate runs every structural check and returns whether the graph is
// valid. Call Errors() for a human-readable report when it is not.
func (v *Validator) Validate() bool {
	invalid := v.checkOperands()
	invalid = v.checkEdges() || invalid
	invalid = v.checkNodes() || invalid
	return !invalid
}

// Errors returns the accumulated human-readable validation report, empty
// on success (§6).
func (v *Validator) Errors() string { return v.errors.String() }

func (v *Validator) checkOperands() bool {
	invalid := false
	for _, n := range v.g.GetNodes() {
		if n.Kind == PHI {
			if n.OperandsNum() == 0 {
				v.reportInvalNumberOfOperands(n)
				invalid = true
			}
			continue
		}
		want, constrained := arity[n.Kind]
		if constrained && n.OperandsNum() != want {
			v.reportInvalNumberOfOperands(n)
			invalid = true
		}
	}
	return invalid
}

// reportInvalNumberOfOperands names the offending node's own kind and ID,
// then lists the actual ID of each of its operands. A superficially
// similar check could print nd's own ID once per operand slot instead —
// that bug is called out explicitly because it was found, verbatim, in
// the reference implementation's own validator (§4.6, §9): this report
// lists what the node actually points at, not nd.ID repeated.
func (v *Validator) reportInvalNumberOfOperands(nd *Node) {
	v.errors.WriteString("invalid number of operands for " + nd.Kind.String() +
		" with ID " + strconv.Itoa(nd.ID) + "\n  - operands: [")
	for i, op := range nd.Operands {
		if i > 0 {
			v.errors.WriteString(" ")
		}
		if op == nil {
			v.errors.WriteString("<nil>")
			continue
		}
		v.errors.WriteString(strconv.Itoa(op.ID))
	}
	v.errors.WriteString("]\n")
}

// checkEdges verifies that every operand reference resolves to a node
// registered in the graph (§4.6).
func (v *Validator) checkEdges() bool {
	invalid := false
	for _, n := range v.g.GetNodes() {
		for _, op := range n.Operands {
			if op == nil {
				v.errors.WriteString(fmt.Sprintf("node %s has a nil operand reference\n", n))
				invalid = true
				continue
			}
			if _, found := v.g.GetNode(op.ID); !found {
				v.errors.WriteString(fmt.Sprintf("node %s references operand %s which is not registered in the graph\n", n, op))
				invalid = true
			}
		}
	}
	return invalid
}

// checkNodes verifies that every registered node has a unique ID.
func (v *Validator) checkNodes() bool {
	invalid := false
	seen := make(map[int]bool, len(v.g.GetNodes()))
	for _, n := range v.g.GetNodes() {
		if seen[n.ID] {
			v.errors.WriteString(fmt.Sprintf("duplicate node ID %d\n", n.ID))
			invalid = true
			continue
		}
		seen[n.ID] = true
	}
	return invalid
}
