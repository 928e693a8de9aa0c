package temporal

import (
	"github.com/loopforge/loopforge/common"
	"github.com/loopforge/loopforge/effects"
)

const (
	// godRaysPasses is the number of successive radial blur passes.
	godRaysPasses = 3
	// godRaysTaps is the sample count per blur pass.
	godRaysTaps = 8
	// godRaysStepRatio shrinks the blur step size each pass.
	godRaysStepRatio = 0.5
	// godRaysScale divides the blur buffer resolution.
	godRaysScale = 4
)

// GodRays renders volumetric light shafts as a three-stage per-frame
// pipeline at quarter resolution: luminance-threshold extraction into a
// full-resolution buffer, three radial blur passes toward the light position
// ping-ponging between two quarter-resolution buffers with the step size
// shrinking each pass, and an additive tinted composite onto the scene.
//
// The light position, tint and intensity track live parameters every tick
// via the uniform pump, so dragging the light never rebuilds the buffers.
type GodRays struct {
	threshold float32
	lightX    float64
	lightY    float64
	intensity float32
	tint      common.Color

	// extract is the full-resolution thresholded brightness buffer.
	extract *common.Frame
	// pair ping-pongs the quarter-resolution blur passes.
	pair *TargetPair
}

var (
	_ effects.Instance  = &GodRays{}
	_ effects.ParamSink = &GodRays{}
)

// NewGodRays constructs the god rays effect.
// Parameters: "threshold" — luminance cutoff for the extraction, default
// 0.6; "lightX"/"lightY" — screen-space light position in [0, 1], default
// (0.5, 0.4); "intensity" — composite gain, default 0.8; "color" — shaft
// tint, default warm white.
//
// Parameters:
//   - p: the effect parameter record
//
// Returns:
//   - effects.Instance: the effect instance
func NewGodRays(p effects.Params) effects.Instance {
	e := &GodRays{pair: NewTargetPair()}
	e.SetParams(p)
	return e
}

// SetParams re-reads the live parameter record. Called by the uniform pump
// every tick so mid-drag light positions render immediately.
//
// Parameters:
//   - p: the effect's full parameter record
func (e *GodRays) SetParams(p effects.Params) {
	e.threshold = float32(common.Clamp(p.Float("threshold", 0.6), 0, 1))
	e.lightX = common.Clamp(p.Float("lightX", 0.5), 0, 1)
	e.lightY = common.Clamp(p.Float("lightY", 0.4), 0, 1)
	e.intensity = float32(p.Float("intensity", 0.8))
	e.tint = p.Color("color", common.Color{R: 1, G: 0.95, B: 0.8, A: 1})
}

// Apply renders the shafts for this frame.
func (e *GodRays) Apply(src, dst *common.Frame) {
	qw := max(1, src.Width/godRaysScale)
	qh := max(1, src.Height/godRaysScale)

	// A resize reallocates the blur buffers at the new aspect ratio.
	if e.extract == nil || e.extract.Width != src.Width || e.extract.Height != src.Height {
		e.extract = common.NewFrame(src.Width, src.Height)
	}
	if e.pair.Ensure(qw, qh) {
		e.extractBright(src)
		downsample(e.extract, e.pair.Write())
		e.pair.Seed(e.pair.Write())
	} else {
		e.extractBright(src)
		downsample(e.extract, e.pair.Write())
		e.pair.Swap()
	}

	// Radial blur toward the light, halving the step each pass.
	step := 1.0
	for pass := 0; pass < godRaysPasses; pass++ {
		e.radialBlur(e.pair.Read(), e.pair.Write(), step)
		e.pair.Swap()
		step *= godRaysStepRatio
	}

	e.composite(src, e.pair.Read(), dst)
}

// Release drops the extraction and blur buffers.
func (e *GodRays) Release() {
	e.extract = nil
	e.pair.Release()
}

// extractBright keeps pixels above the luminance threshold, rescaled so the
// cutoff itself maps to black, and clears everything else.
func (e *GodRays) extractBright(src *common.Frame) {
	scale := float32(1)
	if e.threshold < 1 {
		scale = 1 / (1 - e.threshold)
	}
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			c := src.ColorAt(x, y)
			l := c.Luminance()
			if l <= e.threshold {
				e.extract.SetColorAt(x, y, common.Color{A: 1})
				continue
			}
			gain := (l - e.threshold) * scale
			e.extract.SetColorAt(x, y, common.Color{
				R: c.R * gain,
				G: c.G * gain,
				B: c.B * gain,
				A: 1,
			})
		}
	}
}

// radialBlur samples taps from src along the ray toward the light position
// and averages them with decaying weights into dst. step scales how far the
// taps reach along the ray.
func (e *GodRays) radialBlur(src, dst *common.Frame, step float64) {
	w, h := src.Width, src.Height
	lx := e.lightX * float64(w)
	ly := e.lightY * float64(h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx := (lx - float64(x)) / godRaysTaps * step
			dy := (ly - float64(y)) / godRaysTaps * step

			var r, g, b, weightSum float32
			weight := float32(1)
			fx, fy := float64(x), float64(y)
			for i := 0; i < godRaysTaps; i++ {
				sx := clampInt(int(fx), 0, w-1)
				sy := clampInt(int(fy), 0, h-1)
				c := src.ColorAt(sx, sy)
				r += c.R * weight
				g += c.G * weight
				b += c.B * weight
				weightSum += weight
				weight *= 0.85
				fx += dx
				fy += dy
			}
			dst.SetColorAt(x, y, common.Color{
				R: r / weightSum,
				G: g / weightSum,
				B: b / weightSum,
				A: 1,
			})
		}
	}
}

// composite adds the tinted, upsampled shaft buffer onto the scene.
func (e *GodRays) composite(src, rays *common.Frame, dst *common.Frame) {
	for y := 0; y < src.Height; y++ {
		ry := clampInt(y*rays.Height/src.Height, 0, rays.Height-1)
		for x := 0; x < src.Width; x++ {
			rx := clampInt(x*rays.Width/src.Width, 0, rays.Width-1)
			c := src.ColorAt(x, y)
			shaft := rays.ColorAt(rx, ry)
			c.R += shaft.R * e.tint.R * e.intensity
			c.G += shaft.G * e.tint.G * e.intensity
			c.B += shaft.B * e.tint.B * e.intensity
			dst.SetColorAt(x, y, c)
		}
	}
}

// downsample box-averages src into the smaller dst.
func downsample(src, dst *common.Frame) {
	bx := src.Width / dst.Width
	by := src.Height / dst.Height
	if bx < 1 {
		bx = 1
	}
	if by < 1 {
		by = 1
	}
	n := float32(bx * by)
	for y := 0; y < dst.Height; y++ {
		for x := 0; x < dst.Width; x++ {
			var r, g, b float32
			for sy := y * by; sy < y*by+by; sy++ {
				for sx := x * bx; sx < x*bx+bx; sx++ {
					c := src.ColorAt(clampInt(sx, 0, src.Width-1), clampInt(sy, 0, src.Height-1))
					r += c.R
					g += c.G
					b += c.B
				}
			}
			dst.SetColorAt(x, y, common.Color{R: r / n, G: g / n, B: b / n, A: 1})
		}
	}
}

func clampInt(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
