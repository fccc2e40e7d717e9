package pointsto

import (
	"testing"

	"github.com/cs-au-dk/depgraph/analysis/offset"
)

func TestMemoryObjectStrongUpdateReplaces(t *testing.T) {
	alloc := fakeNode{0}
	a := fakeNode{1}
	b := fakeNode{2}

	mo := NewMemoryObject(alloc)
	mo.AddPointsTo(offset.Zero, Of(a, offset.Zero))
	if mo.GetPointsTo(offset.Zero).Size() != 1 {
		t.Fatalf("expected 1 pointer after weak add")
	}

	replacement := New()
	replacement, _ = replacement.Add(Of(b, offset.Zero))
	mo.SetPointsTo(offset.Zero, replacement)

	got := mo.GetPointsTo(offset.Zero)
	if got.Size() != 1 || !got.PointsToTarget(b) || got.PointsToTarget(a) {
		t.Fatalf("expected strong update to replace slot with {b}, got %v", got)
	}
}

func TestMemoryObjectUnionGrows(t *testing.T) {
	alloc := fakeNode{0}
	a := fakeNode{1}
	b := fakeNode{2}

	mo := NewMemoryObject(alloc)
	mo.AddPointsTo(offset.Zero, Of(a, offset.Zero))

	more := New()
	more, _ = more.Add(Of(b, offset.Zero))
	mo.UnionPointsTo(offset.Zero, more)

	got := mo.GetPointsTo(offset.Zero)
	if got.Size() != 2 {
		t.Fatalf("expected union to grow slot to size 2, got %v", got)
	}
}

func TestMemoryObjectStringMentionsEverySlot(t *testing.T) {
	alloc := fakeNode{0}
	a := fakeNode{1}

	mo := NewMemoryObject(alloc)
	mo.AddPointsTo(offset.Zero, Of(a, offset.Zero))

	s := mo.String()
	if s == "" {
		t.Fatal("expected a non-empty string for a non-empty memory object")
	}
	if NewMemoryObject(alloc).String() == s {
		t.Fatalf("expected an empty memory object to render differently than a populated one")
	}
}
