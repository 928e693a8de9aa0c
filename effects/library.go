package effects

import (
	"math"

	"github.com/loopforge/loopforge/common"
)

// Library (stateless) effects. Each is a pure per-pixel function of its
// construction-time parameters, rebuilt fresh every render, so none of them
// implement TimeSink or ParamSink and Release is a no-op.

// pixelate snaps sampling to the center of fixed-size blocks.
type pixelate struct {
	size int
}

// NewPixelate creates the pixelate effect (tier 0, spatial pre-filter).
// Parameters: "size" — block edge in pixels, default 8, minimum 1.
//
// Parameters:
//   - p: the effect parameter record
//
// Returns:
//   - Instance: the effect instance
func NewPixelate(p Params) Instance {
	size := p.Int("size", 8)
	if size < 1 {
		size = 1
	}
	return &pixelate{size: size}
}

func (e *pixelate) Apply(src, dst *common.Frame) { e.ApplyRows(src, dst, 0, src.Height) }
func (e *pixelate) Release()                     {}

func (e *pixelate) ApplyRows(src, dst *common.Frame, y0, y1 int) {
	for y := y0; y < y1; y++ {
		sy := (y/e.size)*e.size + e.size/2
		if sy >= src.Height {
			sy = src.Height - 1
		}
		for x := 0; x < src.Width; x++ {
			sx := (x/e.size)*e.size + e.size/2
			if sx >= src.Width {
				sx = src.Width - 1
			}
			si := (sy*src.Width + sx) * 4
			di := (y*dst.Width + x) * 4
			copy(dst.Pix[di:di+4], src.Pix[si:si+4])
		}
	}
}

// brightnessContrast applies a brightness offset then a contrast scale
// pivoted at mid-gray.
type brightnessContrast struct {
	brightness float32
	contrast   float32
}

// NewBrightnessContrast creates the brightness/contrast effect (tier 1).
// Parameters: "brightness" — additive offset in [-1, 1], default 0;
// "contrast" — multiplier around 0.5, default 1.
//
// Parameters:
//   - p: the effect parameter record
//
// Returns:
//   - Instance: the effect instance
func NewBrightnessContrast(p Params) Instance {
	return &brightnessContrast{
		brightness: float32(p.Float("brightness", 0)),
		contrast:   float32(p.Float("contrast", 1)),
	}
}

func (e *brightnessContrast) Apply(src, dst *common.Frame) { e.ApplyRows(src, dst, 0, src.Height) }
func (e *brightnessContrast) Release()                     {}

func (e *brightnessContrast) ApplyRows(src, dst *common.Frame, y0, y1 int) {
	for y := y0; y < y1; y++ {
		for x := 0; x < src.Width; x++ {
			c := src.ColorAt(x, y)
			c.R = (c.R+e.brightness-0.5)*e.contrast + 0.5
			c.G = (c.G+e.brightness-0.5)*e.contrast + 0.5
			c.B = (c.B+e.brightness-0.5)*e.contrast + 0.5
			dst.SetColorAt(x, y, c)
		}
	}
}

// vignette darkens pixels by their aspect-corrected distance from center.
type vignette struct {
	strength float32
	radius   float64
}

// NewVignette creates the vignette effect (tier 2).
// Parameters: "strength" — darkening amount in [0, 1], default 0.5;
// "radius" — normalized distance where falloff begins, default 0.6.
//
// Parameters:
//   - p: the effect parameter record
//
// Returns:
//   - Instance: the effect instance
func NewVignette(p Params) Instance {
	return &vignette{
		strength: float32(common.Clamp(p.Float("strength", 0.5), 0, 1)),
		radius:   p.Float("radius", 0.6),
	}
}

func (e *vignette) Apply(src, dst *common.Frame) { e.ApplyRows(src, dst, 0, src.Height) }
func (e *vignette) Release()                     {}

func (e *vignette) ApplyRows(src, dst *common.Frame, y0, y1 int) {
	aspect := float64(src.Width) / float64(src.Height)
	for y := y0; y < y1; y++ {
		v := (float64(y)/float64(src.Height) - 0.5)
		for x := 0; x < src.Width; x++ {
			u := (float64(x)/float64(src.Width) - 0.5) * aspect
			dist := math.Sqrt(u*u + v*v)
			fall := float32(common.Smoothstep(e.radius, e.radius+0.4, dist))
			gain := 1 - e.strength*fall
			c := src.ColorAt(x, y)
			c.R *= gain
			c.G *= gain
			c.B *= gain
			dst.SetColorAt(x, y, c)
		}
	}
}

// chromaticAberration offsets the red and blue channels horizontally in
// opposite directions, scaled toward the frame edges.
type chromaticAberration struct {
	offset float64
}

// NewChromaticAberration creates the chromatic aberration effect (tier 4).
// Parameters: "offset" — maximum channel shift in pixels at the frame edge,
// default 3.
//
// Parameters:
//   - p: the effect parameter record
//
// Returns:
//   - Instance: the effect instance
func NewChromaticAberration(p Params) Instance {
	return &chromaticAberration{offset: p.Float("offset", 3)}
}

func (e *chromaticAberration) Apply(src, dst *common.Frame) { e.ApplyRows(src, dst, 0, src.Height) }
func (e *chromaticAberration) Release()                     {}

func (e *chromaticAberration) ApplyRows(src, dst *common.Frame, y0, y1 int) {
	half := float64(src.Width) / 2
	for y := y0; y < y1; y++ {
		for x := 0; x < src.Width; x++ {
			// Shift grows from zero at center to the full offset at edges.
			shift := int(e.offset * (float64(x) - half) / half)
			xr := clampInt(x+shift, 0, src.Width-1)
			xb := clampInt(x-shift, 0, src.Width-1)
			di := (y*dst.Width + x) * 4
			gi := (y*src.Width + x) * 4
			ri := (y*src.Width + xr) * 4
			bi := (y*src.Width + xb) * 4
			dst.Pix[di+0] = src.Pix[ri+0]
			dst.Pix[di+1] = src.Pix[gi+1]
			dst.Pix[di+2] = src.Pix[bi+2]
			dst.Pix[di+3] = src.Pix[gi+3]
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
