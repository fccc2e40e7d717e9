package reaching

import (
	"testing"

	"github.com/cs-au-dk/depgraph/analysis/offset"
)

// TestIntervalsDisjunctiveSymmetric implements I6: disjointness is
// symmetric in its two interval arguments.
func TestIntervalsDisjunctiveSymmetric(t *testing.T) {
	cases := []struct {
		a, aLen, b, bLen offset.Offset
	}{
		{offset.Of(0), offset.Of(4), offset.Of(4), offset.Of(4)},
		{offset.Of(0), offset.Of(4), offset.Of(2), offset.Of(4)},
		{offset.Of(0), offset.UNKNOWN, offset.Of(100), offset.Of(4)},
		{offset.Of(0), offset.Of(4), offset.Of(100), offset.UNKNOWN},
		{offset.Of(0), offset.UNKNOWN, offset.Of(100), offset.UNKNOWN},
	}
	for _, c := range cases {
		got := IntervalsDisjunctive(c.a, c.aLen, c.b, c.bLen)
		reversed := IntervalsDisjunctive(c.b, c.bLen, c.a, c.aLen)
		if got != reversed {
			t.Fatalf("asymmetric disjointness for %+v: (a,b)=%v (b,a)=%v", c, got, reversed)
		}
	}
}

func TestIntervalsDisjunctiveConcreteAdjacent(t *testing.T) {
	// [0,4) and [4,8) touch but do not overlap.
	if !IntervalsDisjunctive(offset.Of(0), offset.Of(4), offset.Of(4), offset.Of(4)) {
		t.Fatal("expected adjacent concrete intervals to be disjoint")
	}
	// [0,4) and [3,8) overlap at byte 3.
	if IntervalsDisjunctive(offset.Of(0), offset.Of(4), offset.Of(3), offset.Of(5)) {
		t.Fatal("expected overlapping concrete intervals to not be disjoint")
	}
}

func TestIntervalsDisjunctiveBothUnknownAlwaysOverlap(t *testing.T) {
	if IntervalsDisjunctive(offset.Of(0), offset.UNKNOWN, offset.Of(1000), offset.UNKNOWN) {
		t.Fatal("two UNKNOWN-length intervals must always overlap")
	}
}

func TestIntervalsDisjunctiveOneUnknownExtendsToInfinity(t *testing.T) {
	// a = [10, inf), b = [0, 4) -- disjoint, b ends before a starts.
	if !IntervalsDisjunctive(offset.Of(10), offset.UNKNOWN, offset.Of(0), offset.Of(4)) {
		t.Fatal("expected b to lie entirely before a's UNKNOWN-length start")
	}
	// a = [10, inf), b = [8, 4) = [8,12) -- overlaps a's start.
	if IntervalsDisjunctive(offset.Of(10), offset.UNKNOWN, offset.Of(8), offset.Of(4)) {
		t.Fatal("expected b to reach into a's UNKNOWN-length interval")
	}
}

func TestIntervalsOverlapIsNegation(t *testing.T) {
	a, aLen, b, bLen := offset.Of(0), offset.Of(8), offset.Of(4), offset.Of(8)
	if IntervalsOverlap(a, aLen, b, bLen) == IntervalsDisjunctive(a, aLen, b, bLen) {
		t.Fatal("IntervalsOverlap must be the exact negation of IntervalsDisjunctive")
	}
}
