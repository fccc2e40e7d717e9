// Package interval implements DisjunctiveIntervalMap (C8): a mapping of
// pairwise-disjoint closed integer intervals to sets of values, with
// split-on-insert semantics (§3.7, §4.11).
package interval

import (
	"fmt"
	"sort"

	"github.com/cs-au-dk/depgraph/utils"
)

// Interval is a closed integer interval [Start, End], Start <= End.
type Interval struct {
	Start, End int64
}

func newInterval(start, end int64) Interval {
	if start > end {
		panic(fmt.Sprintf("interval: invalid interval [%d, %d]", start, end))
	}
	return Interval{start, end}
}

type entry[V comparable] struct {
	interval Interval
	values   map[V]struct{}
}

func singleton[V comparable](i Interval, v V) entry[V] {
	return entry[V]{interval: i, values: map[V]struct{}{v: {}}}
}

func (e entry[V]) copyValues() map[V]struct{} {
	cp := make(map[V]struct{}, len(e.values))
	for v := range e.values {
		cp[v] = struct{}{}
	}
	return cp
}

// Map is a DisjunctiveIntervalMap[V]: a sorted, pairwise-disjoint,
// gap-respecting mapping of closed integer intervals to sets of V.
// The zero value is an empty, ready-to-use map.
type Map[V comparable] struct {
	entries []entry[V]
}

// Size returns the number of live interval entries.
func (m *Map[V]) Size() int { return len(m.entries) }

// lowerBound returns the index of the first entry whose interval starts
// at or after start (the C++ equivalent of std::map::lower_bound on a
// map keyed by interval-start).
func (m *Map[V]) lowerBound(start int64) int {
	return sort.Search(len(m.entries), func(i int) bool {
		return m.entries[i].interval.Start >= start
	})
}

// splitAt splits the entry at index idx into [start, where] and
// [where+1, end], duplicating its value set into both halves. idx must
// name an entry whose interval strictly contains where as an interior
// split point (start <= where < end).
func (m *Map[V]) splitAt(idx int, where int64) {
	e := m.entries[idx]
	left := entry[V]{interval: Interval{e.interval.Start, where}, values: e.copyValues()}
	right := entry[V]{interval: Interval{where + 1, e.interval.End}, values: e.values}

	m.entries = append(m.entries, entry[V]{})
	copy(m.entries[idx+2:], m.entries[idx+1:])
	m.entries[idx] = left
	m.entries[idx+1] = right
}

// entryContaining returns the index of the entry whose interval
// contains point x, and true, or (0, false) if no entry covers x.
func (m *Map[V]) entryContaining(x int64) (int, bool) {
	idx := m.lowerBound(x + 1) // first entry with Start > x
	if idx == 0 {
		return 0, false
	}
	idx--
	if m.entries[idx].interval.End >= x {
		return idx, true
	}
	return 0, false
}

// splitExternalBorders arranges the map so that the entry covering
// I.Start (if its range reaches further left) and the entry covering
// I.End (if its range reaches further right) are each split down to
// exactly I's border, so that no stored interval straddles either end
// of I (§4.11 step 1-3). Returns whether any split occurred.
func (m *Map[V]) splitExternalBorders(I Interval) bool {
	changed := false

	if idx, ok := m.entryContaining(I.Start); ok && m.entries[idx].interval.Start < I.Start {
		m.splitAt(idx, I.Start-1)
		changed = true
	}

	if idx, ok := m.entryContaining(I.End); ok && m.entries[idx].interval.End > I.End {
		m.splitAt(idx, I.End)
		changed = true
	}

	return changed
}

func (m *Map[V]) addValue(idx int, v V, update bool) bool {
	e := &m.entries[idx]
	if update {
		if len(e.values) == 1 {
			if _, ok := e.values[v]; ok {
				return false
			}
		}
		e.values = map[V]struct{}{v: {}}
		return true
	}

	if _, ok := e.values[v]; ok {
		return false
	}
	e.values[v] = struct{}{}
	return true
}

func (m *Map[V]) insertAt(idx int, e entry[V]) {
	m.entries = append(m.entries, entry[V]{})
	copy(m.entries[idx+1:], m.entries[idx:])
	m.entries[idx] = e
}

// _add implements §4.11: split external borders, then walk covered
// sub-intervals applying addValue (union or replace) and filling gaps.
func (m *Map[V]) _add(I Interval, v V, update bool) bool {
	if len(m.entries) == 0 {
		m.entries = []entry[V]{singleton(I, v)}
		return true
	}

	changed := m.splitExternalBorders(I)
	m.checkInvariant()

	idx := m.lowerBound(I.Start)

	if idx == len(m.entries) || I.End < m.entries[idx].interval.Start {
		m.insertAt(idx, singleton(I, v))
		return true
	}

	rest := I
	for idx < len(m.entries) {
		if rest.Start < m.entries[idx].interval.Start {
			gapEnd := m.entries[idx].interval.Start - 1
			nextStart := m.entries[idx].interval.Start
			m.insertAt(idx, singleton(Interval{rest.Start, gapEnd}, v))
			rest.Start = nextStart
			changed = true
			idx++
			continue
		}

		// splitExternalBorders has already split whichever entry
		// contains I.End, so an entry reached by this walk does not
		// extend past rest.End; this split is a defensive guard that
		// keeps the value change inside the covered portion regardless.
		if m.entries[idx].interval.End > rest.End {
			m.splitAt(idx, rest.End)
		}

		changed = m.addValue(idx, v, update) || changed
		if m.entries[idx].interval.End == rest.End {
			break
		}

		rest.Start = m.entries[idx].interval.End + 1
		idx++

		if idx == len(m.entries) || m.entries[idx].interval.Start > rest.End {
			m.insertAt(idx, singleton(rest, v))
			changed = true
			break
		}
	}

	m.coalesce()
	m.checkInvariant()
	return changed
}

// coalesce merges adjacent entries that carry identical value sets into
// a single wider entry. _add never leaves a genuine gap internally, but
// two neighbors split apart by an earlier call can end up holding the
// same value set after a later update/add collapses them to equality;
// without this pass such neighbors would stay needlessly fragmented.
func (m *Map[V]) coalesce() {
	out := m.entries[:0]
	for _, e := range m.entries {
		if n := len(out); n > 0 && out[n-1].interval.End+1 == e.interval.Start && sameValues(out[n-1].values, e.values) {
			out[n-1].interval.End = e.interval.End
			continue
		}
		out = append(out, e)
	}
	m.entries = out
}

func sameValues[V comparable](a, b map[V]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for v := range a {
		if _, ok := b[v]; !ok {
			return false
		}
	}
	return true
}

// Add unions v into the value set of every sub-interval of [start,end]
// already present, filling gaps with a new singleton-v entry. Returns
// whether the map changed.
func (m *Map[V]) Add(start, end int64, v V) bool {
	return m._add(newInterval(start, end), v, false)
}

// Update replaces the value set of every covered sub-interval of
// [start,end] with {v}, filling gaps likewise. Returns whether the map
// changed.
func (m *Map[V]) Update(start, end int64, v V) bool {
	return m._add(newInterval(start, end), v, true)
}

// Overlaps reports whether any stored interval intersects [start,end]
// (inclusive endpoints).
func (m *Map[V]) Overlaps(start, end int64) bool {
	if len(m.entries) == 0 {
		return false
	}
	I := newInterval(start, end)

	ge := m.lowerBound(I.Start)
	if ge > 0 && m.entries[ge-1].interval.End >= I.Start {
		return true
	}
	return ge < len(m.entries) && m.entries[ge].interval.Start <= I.End
}

// OverlapsFull reports whether the stored intervals together cover
// [start,end] with no gap.
func (m *Map[V]) OverlapsFull(start, end int64) bool {
	if len(m.entries) == 0 {
		return false
	}
	I := newInterval(start, end)

	ge := m.lowerBound(I.Start)
	if ge == len(m.entries) {
		return m.entries[len(m.entries)-1].interval.End >= I.End
	}

	if m.entries[ge].interval.Start > I.Start {
		if ge == 0 {
			return false
		}
		prev := ge - 1
		if m.entries[prev].interval.End != m.entries[ge].interval.Start-1 {
			return false
		}
	}

	lastEnd := m.entries[ge].interval.End
	for lastEnd < I.End {
		ge++
		if ge == len(m.entries) {
			return false
		}
		if m.entries[ge].interval.Start != lastEnd+1 {
			return false
		}
		lastEnd = m.entries[ge].interval.End
	}

	return true
}

// ForEach calls f, in increasing interval order, once per live entry.
func (m *Map[V]) ForEach(f func(Interval, map[V]struct{})) {
	for _, e := range m.entries {
		f(e.interval, e.values)
	}
}

// checkInvariant is a debug-only sanity check, mirroring the reference
// map's _check(): entries are sorted, well-formed, and pairwise
// disjoint (I1).
func (m *Map[V]) checkInvariant() {
	if !utils.Opts().DebugChecks() {
		return
	}
	for i, e := range m.entries {
		if e.interval.Start > e.interval.End {
			panic(fmt.Sprintf("interval: invalid entry %v at index %d", e.interval, i))
		}
		if len(e.values) == 0 {
			panic(fmt.Sprintf("interval: empty value set at index %d", i))
		}
		if i > 0 && m.entries[i-1].interval.End >= e.interval.Start {
			panic(fmt.Sprintf("interval: disjointness violated between %v and %v", m.entries[i-1].interval, e.interval))
		}
	}
}
