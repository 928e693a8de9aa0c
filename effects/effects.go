// package effects implements the post-render compositing pipeline: a static
// descriptor table mapping effect identifiers to factories and processing
// tiers, a stable tier sorter, a fingerprint-keyed instance cache, the
// per-frame uniform pump, and the compositor that chains active effect
// stages over the scene frame.
//
// Effect order is a function of the descriptor table alone: any toggle-order
// permutation of the same active set composites identically. Unknown
// identifiers are inert, never fatal.
package effects

import (
	"github.com/loopforge/loopforge/common"
)

// Instance is a live effect stage. Instances owned by the cache (custom
// effects) persist across frames while their parameter fingerprint is
// unchanged; library instances are built fresh each render. Release frees
// any buffers the instance owns and is called exactly once, by the owner,
// when the instance is retired.
type Instance interface {
	// Apply renders the effect, reading src and writing every pixel of dst.
	// src and dst are distinct frames of equal size.
	//
	// Parameters:
	//   - src: the input frame (previous stage's output)
	//   - dst: the output frame to fill
	Apply(src, dst *common.Frame)

	// Release frees resources owned by the instance. Called exactly once.
	Release()
}

// RowApplier is an optional Instance capability for effects that are a pure
// per-pixel (or per-row) function of the source frame. The compositor splits
// the frame height into spans and applies them on its worker pool.
type RowApplier interface {
	// ApplyRows renders rows [y0, y1) of dst from src.
	//
	// Parameters:
	//   - src: the input frame
	//   - dst: the output frame
	//   - y0: first row (inclusive)
	//   - y1: last row (exclusive)
	ApplyRows(src, dst *common.Frame, y0, y1 int)
}

// TimeSink is an optional Instance capability for effects with time-driven
// terms. The uniform pump overwrites these every tick; an instance that does
// not implement TimeSink is silently skipped.
type TimeSink interface {
	// SetTime pushes this frame's clock and the ambient loop duration.
	//
	// Parameters:
	//   - t: current animation time in seconds
	//   - loopDuration: active loop duration in seconds, 0 meaning "no loop"
	SetTime(t, loopDuration float64)
}

// ParamSink is an optional Instance capability for effects whose full
// parameter record must track live UI state every tick (sliders may be
// mid-drag between cache rebuilds). The uniform pump pushes the current
// record each frame without invalidating the cached instance.
type ParamSink interface {
	// SetParams pushes the current live parameter record.
	//
	// Parameters:
	//   - p: the effect's full parameter record
	SetParams(p Params)
}

// Selection is the operator's effect state, mutated by the UI layer and read
// once per frame by the compositor. The identifier order carries no meaning;
// sorting by tier restores a deterministic pipeline order.
type Selection struct {
	// ActiveIDs lists the toggled-on effect identifiers in toggle order.
	ActiveIDs []string

	// Params maps each identifier to its current parameter record.
	Params map[string]Params
}

// Params is a loosely typed effect parameter record. Accessors return the
// provided default when a key is missing or holds an unexpected type, so a
// partially populated record is always usable.
type Params map[string]any

// Float reads a numeric parameter.
//
// Parameters:
//   - key: the parameter name
//   - def: value returned when the key is absent or non-numeric
//
// Returns:
//   - float64: the parameter value or def
func (p Params) Float(key string, def float64) float64 {
	v, ok := p[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	}
	return def
}

// Int reads an integer parameter.
//
// Parameters:
//   - key: the parameter name
//   - def: value returned when the key is absent or non-numeric
//
// Returns:
//   - int: the parameter value or def
func (p Params) Int(key string, def int) int {
	v, ok := p[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case float32:
		return int(n)
	}
	return def
}

// Bool reads a boolean parameter.
//
// Parameters:
//   - key: the parameter name
//   - def: value returned when the key is absent or not a bool
//
// Returns:
//   - bool: the parameter value or def
func (p Params) Bool(key string, def bool) bool {
	if v, ok := p[key].(bool); ok {
		return v
	}
	return def
}

// String reads a string parameter.
//
// Parameters:
//   - key: the parameter name
//   - def: value returned when the key is absent or not a string
//
// Returns:
//   - string: the parameter value or def
func (p Params) String(key string, def string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return def
}

// Color reads a color parameter. Accepts a common.Color value or a
// []float64 of 3 or 4 channels.
//
// Parameters:
//   - key: the parameter name
//   - def: value returned when the key is absent or not color-shaped
//
// Returns:
//   - common.Color: the parameter value or def
func (p Params) Color(key string, def common.Color) common.Color {
	switch v := p[key].(type) {
	case common.Color:
		return v
	case []float64:
		if len(v) >= 3 {
			c := common.Color{R: float32(v[0]), G: float32(v[1]), B: float32(v[2]), A: 1}
			if len(v) >= 4 {
				c.A = float32(v[3])
			}
			return c
		}
	}
	return def
}
