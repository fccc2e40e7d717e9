package reaching

import (
	"github.com/cs-au-dk/depgraph/analysis/pgraph"
	"testing"
)

func TestRDNodesSetInsertIdempotent(t *testing.T) {
	s := NewRDNodesSet()
	n := &pgraph.Node{ID: 1}

	s, changed := s.Insert(n)
	if !changed || s.Size() != 1 {
		t.Fatalf("expected first insert to change set to size 1, got %v", s)
	}

	s, changed = s.Insert(n)
	if changed || s.Size() != 1 {
		t.Fatal("expected re-inserting the same node to be a no-op")
	}
}

func TestRDNodesSetUnknownAbsorbs(t *testing.T) {
	s := NewRDNodesSet()
	a := &pgraph.Node{ID: 1}
	b := &pgraph.Node{ID: 2}

	s, _ = s.Insert(a)
	s, changed := s.Insert(UnknownDefiner)
	if !changed || !s.IsUnknown() || s.Size() != 1 {
		t.Fatalf("expected inserting UnknownDefiner to collapse the set, got %v unknown=%v", s, s.IsUnknown())
	}

	s, changed = s.Insert(b)
	if changed {
		t.Fatal("inserting into an UNKNOWN set must report unchanged")
	}
}

func TestRDNodesSetUnion(t *testing.T) {
	a := &pgraph.Node{ID: 1}
	b := &pgraph.Node{ID: 2}

	s1, _ := NewRDNodesSet().Insert(a)
	s2, _ := NewRDNodesSet().Insert(b)

	merged, changed := s1.Union(s2)
	if !changed || merged.Size() != 2 {
		t.Fatalf("expected union to contain both nodes, got %v", merged)
	}

	_, changed2 := merged.Union(s1)
	if changed2 {
		t.Fatal("expected union with an already-contained set to be a no-op")
	}
}

func TestRDNodesSetEqual(t *testing.T) {
	a := &pgraph.Node{ID: 1}
	s1, _ := NewRDNodesSet().Insert(a)
	s2, _ := NewRDNodesSet().Insert(a)

	if !s1.Equal(s2) {
		t.Fatal("expected structurally identical sets to be equal")
	}
	if UnknownRDNodesSet().Equal(s1) {
		t.Fatal("an UNKNOWN set must never equal a concrete one")
	}
}
