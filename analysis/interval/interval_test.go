package interval

import "testing"

func values(vs ...int) map[int]struct{} {
	m := make(map[int]struct{}, len(vs))
	for _, v := range vs {
		m[v] = struct{}{}
	}
	return m
}

func collect(m *Map[int]) []struct {
	I Interval
	V map[int]struct{}
} {
	var out []struct {
		I Interval
		V map[int]struct{}
	}
	m.ForEach(func(i Interval, v map[int]struct{}) {
		out = append(out, struct {
			I Interval
			V map[int]struct{}
		}{i, v})
	})
	return out
}

func TestSplitSequence(t *testing.T) {
	var m Map[int]

	m.Update(0, 4, 1)
	m.Update(0, 1, 2)
	m.Update(1, 2, 3)
	m.Update(2, 3, 4)
	m.Update(3, 4, 5)

	if m.Size() != 4 {
		t.Fatalf("expected 4 entries, got %d: %v", m.Size(), collect(&m))
	}

	want := []struct {
		start, end int64
		val        int
	}{
		{0, 0, 2},
		{1, 1, 3},
		{2, 2, 4},
		{3, 4, 5},
	}
	got := collect(&m)
	for i, w := range want {
		if got[i].I.Start != w.start || got[i].I.End != w.end {
			t.Fatalf("entry %d: expected [%d,%d], got %v", i, w.start, w.end, got[i].I)
		}
		if _, ok := got[i].V[w.val]; !ok || len(got[i].V) != 1 {
			t.Fatalf("entry %d: expected value set {%d}, got %v", i, w.val, got[i].V)
		}
	}
}

func TestMultiCover(t *testing.T) {
	var m Map[int]

	m.Add(0, 4, 1)
	m.Add(1, 1, 2)
	m.Add(3, 5, 3)

	if m.Size() != 5 {
		t.Fatalf("expected 5 entries, got %d: %v", m.Size(), collect(&m))
	}
	if !m.OverlapsFull(1, 5) {
		t.Fatal("expected overlapsFull(1,5) to be true")
	}
	if m.OverlapsFull(0, 6) {
		t.Fatal("expected overlapsFull(0,6) to be false")
	}
}

func TestNegativeRangeOverlap(t *testing.T) {
	var m Map[int]

	m.Add(-2, 2, 0)

	if !m.OverlapsFull(-1, 1) {
		t.Fatal("expected overlapsFull(-1,1) to be true")
	}
	if m.OverlapsFull(-3, 2) {
		t.Fatal("expected overlapsFull(-3,2) to be false")
	}
}

func TestAddSameIdempotent(t *testing.T) {
	var m Map[int]

	if changed := m.Add(0, 2, 1); !changed {
		t.Fatal("first add should report changed")
	}
	if m.Size() != 1 {
		t.Fatalf("expected size 1, got %d", m.Size())
	}
	if changed := m.Add(0, 2, 1); changed {
		t.Fatal("repeating the same add should report unchanged")
	}
	if m.Size() != 1 {
		t.Fatalf("expected size to remain 1, got %d", m.Size())
	}
}

func TestUpdateIdempotent(t *testing.T) {
	var m Map[int]

	m.Update(0, 2, 1)
	if changed := m.Update(0, 2, 1); changed {
		t.Fatal("repeating the same update should report unchanged")
	}
}

func TestAddNonOverlapping(t *testing.T) {
	var m Map[int]
	m.Add(0, 2, 1)
	if m.Overlaps(3, 4) {
		t.Fatal("expected no overlap with disjoint range")
	}
	m.Add(3, 4, 2)
	if m.Size() != 2 {
		t.Fatalf("expected 2 entries, got %d", m.Size())
	}
}

func TestAddOverlappingSplitsBoth(t *testing.T) {
	var m Map[int]
	m.Add(0, 2, 1)
	m.Add(2, 3, 2)

	if m.Size() != 3 {
		t.Fatalf("expected 3 entries after overlap at a single point, got %d: %v", m.Size(), collect(&m))
	}
}

func TestOverlapsFullEmptyIsFalse(t *testing.T) {
	var m Map[int]
	if m.OverlapsFull(0, 10) {
		t.Fatal("empty map cannot overlapsFull anything")
	}
	if m.OverlapsFull(10, 10) {
		t.Fatal("empty map cannot overlapsFull a point")
	}
}

func TestOverlapsFullImpliesOverlaps(t *testing.T) {
	var m Map[int]
	m.Add(0, 0, 0)
	m.Add(1, 1, 1)
	m.Add(3, 3, 2)

	cases := []struct{ s, e int64 }{
		{0, 0}, {0, 1}, {0, 2}, {2, 3}, {3, 3}, {3, 5},
	}
	for _, c := range cases {
		if m.OverlapsFull(c.s, c.e) && !m.Overlaps(c.s, c.e) {
			t.Fatalf("overlapsFull(%d,%d) held but overlaps did not", c.s, c.e)
		}
	}
}

func TestDisjointAfterEveryMutation(t *testing.T) {
	var m Map[int]
	ops := []struct {
		s, e int64
		v    int
	}{
		{0, 4, 1}, {1, 1, 2}, {3, 5, 3}, {2, 2, 9}, {-1, 0, 7},
	}
	for _, op := range ops {
		m.Add(op.s, op.e, op.v)
		entries := collect(&m)
		for i := 1; i < len(entries); i++ {
			if entries[i-1].I.End >= entries[i].I.Start {
				t.Fatalf("disjointness violated after add(%d,%d,%d): %v overlaps %v",
					op.s, op.e, op.v, entries[i-1].I, entries[i].I)
			}
		}
	}
}
