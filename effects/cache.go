package effects

import (
	"encoding/json"
	"fmt"

	"github.com/loopforge/loopforge"
)

// Fingerprint serializes a parameter record into a canonical cache key.
// encoding/json writes map keys in sorted order, so two records with the same
// contents always produce the same fingerprint regardless of insertion order.
//
// Parameters:
//   - p: the parameter record to serialize
//
// Returns:
//   - string: the canonical fingerprint
func Fingerprint(p Params) string {
	b, err := json.Marshal(p)
	if err != nil {
		// Parameter records are plain data; marshal failures only happen for
		// exotic values smuggled in by the UI layer. Fall back to Go syntax
		// so the entry still has a stable-enough key.
		return fmt.Sprintf("%#v", p)
	}
	return string(b)
}

// Stage is one resolved pipeline stage: an identifier paired with the live
// instance that renders it this frame.
type Stage struct {
	// ID is the effect identifier.
	ID string

	// Instance is the live effect instance.
	Instance Instance

	// stateless marks instances built fresh for this render only; the
	// compositor releases them after the frame.
	stateless bool
}

type cacheEntry struct {
	fingerprint string
	inst        Instance
}

// Cache owns the live instances of stateful (custom) effects, keyed by
// identifier with the parameter fingerprint deciding reuse. GPU-side
// allocation and teardown is bounded to fingerprint changes: an unchanged
// record reuses the exact same instance every frame, any change rebuilds the
// instance wholesale and releases the old one exactly once.
type Cache struct {
	entries map[string]cacheEntry
}

// NewCache creates an empty instance cache.
//
// Returns:
//   - *Cache: the newly created cache
func NewCache() *Cache {
	return &Cache{entries: make(map[string]cacheEntry)}
}

// Resolve maps the ordered active identifiers to live instances. Stateful
// effects are served from the cache (rebuilding on fingerprint change);
// stateless effects bypass it and are built fresh from current parameters.
// Identifiers with no registered factory are silently skipped. Cached
// instances whose identifier is no longer active are released.
//
// Parameters:
//   - ordered: active identifiers in pipeline order (see SortByTier)
//   - params: identifier to parameter record mapping
//   - table: the descriptor table
//
// Returns:
//   - []Stage: live stages in pipeline order
func (c *Cache) Resolve(ordered []string, params map[string]Params, table *Table) []Stage {
	active := make(map[string]struct{}, len(ordered))
	stages := make([]Stage, 0, len(ordered))

	for _, id := range ordered {
		d, ok := table.Descriptor(id)
		if !ok || d.New == nil {
			// Unknown identifier: inert, never fatal.
			loopforge.Logger().Debug("skipping effect with no factory", "id", id)
			continue
		}
		p := params[id]

		if d.Kind.Stateless() {
			stages = append(stages, Stage{ID: id, Instance: d.New(p), stateless: true})
			continue
		}

		active[id] = struct{}{}
		fp := Fingerprint(p)
		if entry, ok := c.entries[id]; ok && entry.fingerprint == fp {
			stages = append(stages, Stage{ID: id, Instance: entry.inst})
			continue
		}
		if entry, ok := c.entries[id]; ok {
			entry.inst.Release()
		}
		inst := d.New(p)
		c.entries[id] = cacheEntry{fingerprint: fp, inst: inst}
		loopforge.Logger().Debug("rebuilt effect instance", "id", id)
		stages = append(stages, Stage{ID: id, Instance: inst})
	}

	// Retire cached instances that are no longer toggled on.
	for id, entry := range c.entries {
		if _, ok := active[id]; !ok {
			entry.inst.Release()
			delete(c.entries, id)
		}
	}

	return stages
}

// Len returns the number of cached stateful instances.
//
// Returns:
//   - int: live cache entry count
func (c *Cache) Len() int {
	return len(c.entries)
}

// Close releases every cached instance. The cache remains usable afterwards.
func (c *Cache) Close() {
	for id, entry := range c.entries {
		entry.inst.Release()
		delete(c.entries, id)
	}
}
