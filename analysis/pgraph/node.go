// Package pgraph implements the Pointer Graph (C6) and its structural
// validator (C11): a typed node graph with operand edges and
// intraprocedural CFG-like successor edges (§3.4, §4.3, §4.6).
package pgraph

import (
	"fmt"

	"github.com/cs-au-dk/depgraph/analysis/offset"
	"github.com/cs-au-dk/depgraph/analysis/pointsto"
)

// Kind identifies the operation a Node performs (§3.4).
type Kind int

const (
	ALLOC Kind = iota
	DYN_ALLOC
	LOAD
	STORE
	GEP
	CAST
	PHI
	CALL
	CALL_RETURN
	CALL_FUNCPTR
	ENTRY
	RETURN
	NOOP
	MEMCPY
	FREE
	INVALIDATE_LOCALS
	INVALIDATE_OBJECT
	FUNCTION
	CONSTANT
	NULL_ADDR
	UNKNOWN_MEM
	JOIN
)

var kindNames = [...]string{
	"ALLOC", "DYN_ALLOC", "LOAD", "STORE", "GEP", "CAST", "PHI",
	"CALL", "CALL_RETURN", "CALL_FUNCPTR", "ENTRY", "RETURN", "NOOP",
	"MEMCPY", "FREE", "INVALIDATE_LOCALS", "INVALIDATE_OBJECT",
	"FUNCTION", "CONSTANT", "NULL_ADDR", "UNKNOWN_MEM", "JOIN",
}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Subgraph represents one procedure: an ENTRY node, a RETURN node, and a
// display name. Every Node belongs to exactly one Subgraph (§3.4).
type Subgraph struct {
	Name   string
	Entry  *Node
	Return *Node
}

// Node is a single Pointer-Graph node: a stable ID, a kind-determined
// operand list, intraprocedural successor/predecessor edges (also used
// for the interprocedural CALL->ENTRY / RETURN->CALL_RETURN edges, §3.4),
// a parent Subgraph, the node's computed PointsToSet, and opaque
// front-end user data.
type Node struct {
	ID       int
	Kind     Kind
	Operands []*Node
	Succs    []*Node
	Preds    []*Node
	Subgraph *Subgraph
	PointsTo pointsto.PointsToSet

	// GEPOffset is the offset added to the operand's points-to set by a
	// GEP node; zero for every other kind.
	GEPOffset offset.Offset
	// MemcpyLen is the number of bytes copied by a MEMCPY node; zero for
	// every other kind.
	MemcpyLen offset.Offset

	heap   bool
	global bool

	UserData any
}

// TargetID implements pointsto.Target: a Node is itself an abstract
// memory region (the result of ALLOC/DYN_ALLOC), identified by its own
// stable ID.
func (n *Node) TargetID() int { return n.ID }

func (n *Node) String() string {
	return fmt.Sprintf("%s#%d", n.Kind, n.ID)
}

// IsHeap reports whether n has been marked as a heap allocation by
// SetHeap; the flag is not derived from Kind, so a DYN_ALLOC node is not
// heap until marked. INVALIDATE_LOCALS and GetLocalMemoryObjects use it to
// distinguish local-frame allocations from heap/global ones (§3.4).
func (n *Node) IsHeap() bool { return n.heap }

// IsGlobal reports whether n is a global allocation.
func (n *Node) IsGlobal() bool { return n.global }

// SetHeap marks n as a heap allocation.
func (n *Node) SetHeap(v bool) { n.heap = v }

// SetGlobal marks n as a global allocation.
func (n *Node) SetGlobal(v bool) { n.global = v }

// AddOperand appends op to n's operand list.
func (n *Node) AddOperand(op *Node) { n.Operands = append(n.Operands, op) }

// OperandsNum returns the number of operands n carries.
func (n *Node) OperandsNum() int { return len(n.Operands) }
