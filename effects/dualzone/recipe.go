package dualzone

import (
	"math"

	"github.com/loopforge/loopforge/common"
	"github.com/loopforge/loopforge/effects"
)

// Recipe is one zone's color transform. Steps always run in the same fixed
// order — brightness, contrast, hue rotation, saturation, grayscale mix,
// sepia mix, invert mix, posterize, tint — so two recipes with the same
// values produce the same output regardless of how the record was edited.
type Recipe struct {
	// Brightness is an additive offset per channel, 0 = unchanged.
	Brightness float32
	// Contrast is a multiplier around mid-gray, 1 = unchanged.
	Contrast float32
	// HueRotate is the hue rotation angle in radians, 0 = unchanged.
	HueRotate float64
	// Saturation scales chroma, 1 = unchanged, 0 = grayscale.
	Saturation float32
	// Grayscale mixes toward luma, 0 = unchanged, 1 = full grayscale.
	Grayscale float32
	// Sepia mixes toward the sepia transform, 0 = unchanged.
	Sepia float32
	// Invert mixes toward the inverted color, 0 = unchanged.
	Invert float32
	// Posterize quantizes each channel to this many levels; < 2 disables.
	Posterize int
	// Tint multiplies by TintColor mixed by this amount, 0 = unchanged.
	Tint float32
	// TintColor is the tint multiplier color.
	TintColor common.Color

	// hueCos/hueSin cache the rotation terms for the per-pixel hot path.
	hueCos, hueSin float32
}

// ParseRecipe reads a zone recipe out of a parameter record. Missing keys
// keep their identity defaults so an empty record is a pass-through.
//
// Parameters:
//   - p: the zone's parameter record
//
// Returns:
//   - Recipe: the parsed recipe
func ParseRecipe(p effects.Params) Recipe {
	r := Recipe{
		Brightness: float32(p.Float("brightness", 0)),
		Contrast:   float32(p.Float("contrast", 1)),
		HueRotate:  p.Float("hueRotate", 0),
		Saturation: float32(p.Float("saturation", 1)),
		Grayscale:  float32(common.Clamp(p.Float("grayscale", 0), 0, 1)),
		Sepia:      float32(common.Clamp(p.Float("sepia", 0), 0, 1)),
		Invert:     float32(common.Clamp(p.Float("invert", 0), 0, 1)),
		Posterize:  p.Int("posterize", 0),
		Tint:       float32(common.Clamp(p.Float("tint", 0), 0, 1)),
		TintColor:  p.Color("tintColor", common.Color{R: 1, G: 1, B: 1, A: 1}),
	}
	r.hueCos = float32(math.Cos(r.HueRotate))
	r.hueSin = float32(math.Sin(r.HueRotate))
	return r
}

// Apply runs the recipe's transform chain on a single color.
//
// Parameters:
//   - c: the source color
//
// Returns:
//   - common.Color: the transformed color (alpha preserved)
func (r *Recipe) Apply(c common.Color) common.Color {
	a := c.A

	// Brightness then contrast, pivoted at mid-gray.
	c.R = (c.R+r.Brightness-0.5)*r.Contrast + 0.5
	c.G = (c.G+r.Brightness-0.5)*r.Contrast + 0.5
	c.B = (c.B+r.Brightness-0.5)*r.Contrast + 0.5

	if r.HueRotate != 0 {
		c = hueRotate(c, r.hueCos, r.hueSin)
	}

	if r.Saturation != 1 {
		l := c.Luminance()
		c.R = l + (c.R-l)*r.Saturation
		c.G = l + (c.G-l)*r.Saturation
		c.B = l + (c.B-l)*r.Saturation
	}

	if r.Grayscale > 0 {
		l := c.Luminance()
		c = common.LerpColor(c, common.Color{R: l, G: l, B: l, A: c.A}, r.Grayscale)
	}

	if r.Sepia > 0 {
		s := common.Color{
			R: 0.393*c.R + 0.769*c.G + 0.189*c.B,
			G: 0.349*c.R + 0.686*c.G + 0.168*c.B,
			B: 0.272*c.R + 0.534*c.G + 0.131*c.B,
			A: c.A,
		}
		c = common.LerpColor(c, s, r.Sepia)
	}

	if r.Invert > 0 {
		inv := common.Color{R: 1 - c.R, G: 1 - c.G, B: 1 - c.B, A: c.A}
		c = common.LerpColor(c, inv, r.Invert)
	}

	if r.Posterize >= 2 {
		n := float32(r.Posterize - 1)
		c.R = float32(math.Round(float64(common.Clamp01(c.R)*n))) / n
		c.G = float32(math.Round(float64(common.Clamp01(c.G)*n))) / n
		c.B = float32(math.Round(float64(common.Clamp01(c.B)*n))) / n
	}

	if r.Tint > 0 {
		tinted := common.Color{
			R: c.R * r.TintColor.R,
			G: c.G * r.TintColor.G,
			B: c.B * r.TintColor.B,
			A: c.A,
		}
		c = common.LerpColor(c, tinted, r.Tint)
	}

	c.A = a
	return c
}

// hueRotate applies the luma-preserving hue rotation matrix (the SVG/CSS
// hue-rotate transform) with precomputed cos/sin terms.
func hueRotate(c common.Color, cosA, sinA float32) common.Color {
	return common.Color{
		R: (0.213+0.787*cosA-0.213*sinA)*c.R +
			(0.715-0.715*cosA-0.715*sinA)*c.G +
			(0.072-0.072*cosA+0.928*sinA)*c.B,
		G: (0.213-0.213*cosA+0.143*sinA)*c.R +
			(0.715+0.285*cosA+0.140*sinA)*c.G +
			(0.072-0.072*cosA-0.283*sinA)*c.B,
		B: (0.213-0.213*cosA-0.787*sinA)*c.R +
			(0.715-0.715*cosA+0.715*sinA)*c.G +
			(0.072+0.928*cosA+0.072*sinA)*c.B,
		A: c.A,
	}
}
