package temporal

import (
	"github.com/loopforge/loopforge/common"
	"github.com/loopforge/loopforge/effects"
)

// Trail accumulates previous frames into fading motion trails. Each frame
// the prior accumulation fades toward the background color by the decay
// fraction, then the new scene is overlaid wherever it differs from the
// background beyond a small threshold — background pixels must not erase
// trails they never touched.
//
// Trail must be the last stage in the pipeline: it accumulates the fully
// composited result of every earlier stage. The built-in table places it
// alone in the top tier for that reason.
type Trail struct {
	decay      float32
	background common.Color
	threshold  float32

	pair *TargetPair
}

var _ effects.Instance = &Trail{}

// NewTrail constructs the trail feedback effect.
// Parameters: "decay" — fade fraction per frame toward the background,
// default 0.08; "background" — fade target color, default opaque black;
// "threshold" — per-channel difference below which a scene pixel counts as
// background, default 0.05.
//
// Parameters:
//   - p: the effect parameter record
//
// Returns:
//   - effects.Instance: the effect instance
func NewTrail(p effects.Params) effects.Instance {
	return &Trail{
		decay:      float32(common.Clamp(p.Float("decay", 0.08), 0, 1)),
		background: p.Color("background", common.Color{A: 1}),
		threshold:  float32(common.Clamp(p.Float("threshold", 0.05), 0, 1)),
		pair:       NewTargetPair(),
	}
}

// Apply renders the accumulated trails for this frame.
func (e *Trail) Apply(src, dst *common.Frame) {
	if e.pair.Ensure(src.Width, src.Height) {
		// First use after a resolution change: seed with the current frame
		// so there is no flash of stale or black content.
		e.pair.Seed(src)
	}

	prev := e.pair.Read()
	next := e.pair.Write()

	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			scene := src.ColorAt(x, y)
			faded := common.LerpColor(prev.ColorAt(x, y), e.background, e.decay)

			out := faded
			if e.differsFromBackground(scene) {
				out = scene
			}
			next.SetColorAt(x, y, out)
			dst.SetColorAt(x, y, out)
		}
	}

	e.pair.Swap()
}

// Release drops the accumulation buffers.
func (e *Trail) Release() {
	e.pair.Release()
}

// differsFromBackground reports whether a scene pixel is foreground: any
// channel further from the background than the threshold.
func (e *Trail) differsFromBackground(c common.Color) bool {
	return common.Abs32(c.R-e.background.R) > e.threshold ||
		common.Abs32(c.G-e.background.G) > e.threshold ||
		common.Abs32(c.B-e.background.B) > e.threshold
}
