package effects

// Kind classifies how an effect's GPU-side state is managed.
type Kind int

const (
	// KindLibrary marks a stateless effect: rebuilt fresh from its current
	// parameters on every render, never cached.
	KindLibrary Kind = iota

	// KindCustom marks a stateful effect: owned by the instance cache and
	// reused while its parameter fingerprint is unchanged.
	KindCustom
)

// Stateless reports whether instances of this kind bypass the cache.
// Unrecognized kinds are treated as stateless; an effect that is wrongly
// rebuilt each frame wastes work, one that is wrongly cached shows stale
// parameters.
//
// Returns:
//   - bool: true if the kind bypasses the instance cache
func (k Kind) Stateless() bool {
	switch k {
	case KindCustom:
		return false
	case KindLibrary:
		return true
	default:
		return true
	}
}

// String returns the kind's registry name.
//
// Returns:
//   - string: "library", "custom", or "unknown"
func (k Kind) String() string {
	switch k {
	case KindLibrary:
		return "library"
	case KindCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// DefaultTier is the processing tier assigned to identifiers the table does
// not know. Unknown effects sort into the middle band instead of erroring.
const DefaultTier = 3

// Descriptor describes one registered effect.
type Descriptor struct {
	// Tier is the processing-order rank, 0 (spatial pre-filter) through
	// 6 (temporal/multi-pass). Stages sort ascending by tier.
	Tier int

	// Kind selects library (stateless) or custom (stateful) management.
	Kind Kind

	// New constructs an instance from a parameter record. A nil factory
	// makes the identifier inert: it sorts and occupies a tier but renders
	// nothing.
	New func(p Params) Instance
}

// Table is the immutable effect descriptor table. Construct it once with
// NewTable and pass it by reference; compositor behavior is then a pure
// function of (selection, table, loop duration, time).
type Table struct {
	descriptors map[string]Descriptor
}

// NewTable builds a Table from the given descriptor map. The map is copied;
// later mutation of the argument does not affect the table.
//
// Parameters:
//   - descriptors: effect identifier to descriptor mapping
//
// Returns:
//   - *Table: the immutable table
func NewTable(descriptors map[string]Descriptor) *Table {
	m := make(map[string]Descriptor, len(descriptors))
	for id, d := range descriptors {
		m[id] = d
	}
	return &Table{descriptors: m}
}

// Descriptor looks up the descriptor for an identifier.
//
// Parameters:
//   - id: the effect identifier
//
// Returns:
//   - Descriptor: the registered descriptor (zero value if unknown)
//   - bool: true if the identifier is registered
func (t *Table) Descriptor(id string) (Descriptor, bool) {
	d, ok := t.descriptors[id]
	return d, ok
}

// TierFor returns the processing tier for an identifier. Unknown identifiers
// land in DefaultTier rather than erroring.
//
// Parameters:
//   - id: the effect identifier
//
// Returns:
//   - int: the tier used for pipeline ordering
func (t *Table) TierFor(id string) int {
	if d, ok := t.descriptors[id]; ok {
		return d.Tier
	}
	return DefaultTier
}

// IDs returns the registered identifiers in unspecified order.
//
// Returns:
//   - []string: all registered effect identifiers
func (t *Table) IDs() []string {
	ids := make([]string, 0, len(t.descriptors))
	for id := range t.descriptors {
		ids = append(ids, id)
	}
	return ids
}
