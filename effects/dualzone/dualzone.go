// package dualzone implements the masked dual-zone effect: a single stage
// that partitions the frame into two procedurally patterned zones and applies
// an independent color-transform recipe to each, blending the two results by
// the mask value.
//
// The stage is a pure function of (pixel, time, parameters): it persists no
// frame state, so it scrubs trivially — rendering any time twice gives the
// same output. Mask cells are evaluated in aspect-corrected coordinates so
// they stay square under non-square output sizes.
package dualzone

import (
	"github.com/loopforge/loopforge/common"
	"github.com/loopforge/loopforge/effects"
	"github.com/loopforge/loopforge/loopclock"
)

// MinCellSize is the defensive lower bound for mask cell dimensions, in
// fractions of the frame height. The upstream UI enforces its own minimum;
// this clamp only guards the division, it never errors.
const MinCellSize = 0.02

// Effect is the masked dual-zone stage. It is registered as a custom
// (stateful, cached) effect and receives its full live parameter record
// every tick so mid-drag slider state is visible without a cache rebuild.
type Effect struct {
	pattern  Pattern
	cellX    float64
	cellY    float64
	softness float64
	scroll   float64 // cells per second before quantization
	invert   bool

	zoneA Recipe
	zoneB Recipe

	time         float64
	loopDuration float64
}

var (
	_ effects.Instance   = &Effect{}
	_ effects.RowApplier = &Effect{}
	_ effects.TimeSink   = &Effect{}
	_ effects.ParamSink  = &Effect{}
)

// New constructs the dual-zone effect from a parameter record. Missing keys
// take identity defaults, so an empty record is a checkerboard pass-through.
//
// Parameters:
//   - p: the effect parameter record
//
// Returns:
//   - effects.Instance: the effect instance
func New(p effects.Params) effects.Instance {
	e := &Effect{}
	e.SetParams(p)
	return e
}

// SetParams re-parses the live parameter record. Called by the uniform pump
// every tick; cheap enough that no dirty tracking is needed.
//
// Parameters:
//   - p: the effect's full parameter record
func (e *Effect) SetParams(p effects.Params) {
	e.pattern = ParsePattern(p.String("pattern", "checker"))
	e.cellX = common.Clamp(p.Float("cellX", 0.25), MinCellSize, 10)
	e.cellY = common.Clamp(p.Float("cellY", 0.25), MinCellSize, 10)
	e.softness = common.Clamp(p.Float("softness", 0.1), 0, 1)
	e.scroll = p.Float("scrollSpeed", 0)
	e.invert = p.Bool("invert", false)
	e.zoneA = ParseRecipe(subParams(p, "zoneA"))
	e.zoneB = ParseRecipe(subParams(p, "zoneB"))
}

// SetTime stores this frame's clock and the ambient loop duration. The
// scroll offset derives from these on the next Apply.
//
// Parameters:
//   - t: current animation time in seconds
//   - loopDuration: active loop duration in seconds, 0 meaning "no loop"
func (e *Effect) SetTime(t, loopDuration float64) {
	e.time = t
	e.loopDuration = loopDuration
}

// Apply renders the full frame.
func (e *Effect) Apply(src, dst *common.Frame) {
	e.ApplyRows(src, dst, 0, src.Height)
}

// Release frees nothing; the effect owns no buffers.
func (e *Effect) Release() {}

// ApplyRows renders rows [y0, y1). Safe to run concurrently for disjoint
// row ranges: the per-pixel math reads only immutable per-frame state.
func (e *Effect) ApplyRows(src, dst *common.Frame, y0, y1 int) {
	// The scroll rate is a linear driver: quantized so the offset advances a
	// whole number of cells over the loop, closing the scroll seamlessly.
	offset := e.time * loopclock.QuantizeLinear(e.scroll, e.loopDuration)

	in := maskInputs{
		cellX:    e.cellX,
		cellY:    e.cellY,
		softness: e.softness,
		offset:   offset,
	}

	// Dividing both axes by the frame height keeps mask cells square under
	// non-square output; the radial pattern is centered on the frame.
	h := float64(src.Height)
	cu := float64(src.Width) / h / 2
	for y := y0; y < y1; y++ {
		v := float64(y)/h - 0.5
		for x := 0; x < src.Width; x++ {
			u := float64(x)/h - cu
			m := maskValue(e.pattern, u, v, in)
			if e.invert {
				m = 1 - m
			}

			c := src.ColorAt(x, y)
			a := e.zoneA.Apply(c)
			b := e.zoneB.Apply(c)
			dst.SetColorAt(x, y, common.LerpColor(a, b, float32(m)))
		}
	}
}

// subParams extracts a nested parameter record, accepting either an
// effects.Params value or a plain map.
func subParams(p effects.Params, key string) effects.Params {
	switch v := p[key].(type) {
	case effects.Params:
		return v
	case map[string]any:
		return effects.Params(v)
	}
	return effects.Params{}
}
