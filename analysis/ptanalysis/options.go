package ptanalysis

// Variant selects which of the reference analysis's points-to algorithms
// Run executes (§4.7, §4.9).
type Variant int

const (
	// FlowSensitive tracks a distinct MemoryMap per program point and
	// performs strong updates on STORE, mirroring PointsToFlowSensitive.
	FlowSensitive Variant = iota
	// WithInvalidate extends FlowSensitive with FREE/INVALIDATE_LOCALS
	// handling, mirroring PointsToWithInvalidate.
	WithInvalidate
	// FlowInsensitive keeps no per-program-point memory state: every node
	// reads the union of the MemoryMaps recorded at all nodes visited so
	// far instead of joining its own predecessors' maps, and every STORE
	// is a weak update (§4.7's degraded, less precise mode).
	FlowInsensitive
)

// Options configures a Run.
type Options struct {
	Variant Variant
	// MaxOffset bounds GEP offset arithmetic (§4.3); negative means
	// unbounded.
	MaxOffset int
	// MaxSetSize caps a PointsToSet's size before it collapses to
	// UNKNOWN; negative means unbounded.
	MaxSetSize int
}
