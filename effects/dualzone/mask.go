package dualzone

import (
	"math"

	"github.com/loopforge/loopforge/common"
)

// Pattern selects the procedural mask function partitioning the frame.
type Pattern int

const (
	// PatternChecker alternates square cells.
	PatternChecker Pattern = iota
	// PatternStripesV alternates vertical stripes.
	PatternStripesV
	// PatternStripesH alternates horizontal stripes.
	PatternStripesH
	// PatternHex tiles a hexagonal lattice.
	PatternHex
	// PatternRadial alternates angular sectors around the frame center.
	PatternRadial
	// PatternDiamond alternates diamond cells.
	PatternDiamond
	// PatternWave draws horizontal bands displaced by a sine wave.
	PatternWave
	// PatternStripesD alternates diagonal stripes.
	PatternStripesD
)

// ParsePattern maps a pattern name to its Pattern. Unknown names fall back
// to the checkerboard rather than erroring.
//
// Parameters:
//   - name: the pattern name from the parameter record
//
// Returns:
//   - Pattern: the matching pattern, or PatternChecker
func ParsePattern(name string) Pattern {
	switch name {
	case "checker":
		return PatternChecker
	case "stripes-v":
		return PatternStripesV
	case "stripes-h":
		return PatternStripesH
	case "hex":
		return PatternHex
	case "radial":
		return PatternRadial
	case "diamond":
		return PatternDiamond
	case "wave":
		return PatternWave
	case "stripes-d":
		return PatternStripesD
	default:
		return PatternChecker
	}
}

// String returns the pattern's registry name.
//
// Returns:
//   - string: the pattern name
func (p Pattern) String() string {
	switch p {
	case PatternChecker:
		return "checker"
	case PatternStripesV:
		return "stripes-v"
	case PatternStripesH:
		return "stripes-h"
	case PatternHex:
		return "hex"
	case PatternRadial:
		return "radial"
	case PatternDiamond:
		return "diamond"
	case PatternWave:
		return "wave"
	case PatternStripesD:
		return "stripes-d"
	default:
		return "checker"
	}
}

// maskInputs carries the per-evaluation mask configuration. Coordinates are
// aspect-corrected before evaluation, so cells stay square regardless of the
// output shape.
type maskInputs struct {
	cellX    float64 // cell width as a fraction of frame height
	cellY    float64 // cell height as a fraction of frame height
	softness float64 // edge blend width as a fraction of a cell
	offset   float64 // time-scrolled offset in cells
}

// stripe converts a periodic coordinate (in cells) into a 50% duty mask
// value, blending the edge over a softness-proportional width. The triangle
// wave keeps the field continuous so the blend never pops at cell seams.
func stripe(p, softness float64) float64 {
	tri := math.Abs(2*common.Fract(p) - 1)
	s := softness * 0.5
	return common.Smoothstep(0.5-s, 0.5+s, tri)
}

// maskValue evaluates the procedural mask at aspect-corrected coordinates
// (u, v), both in units of frame height. The result is in [0, 1]: 0 selects
// zone A, 1 selects zone B, intermediate values blend the two recipes.
func maskValue(pat Pattern, u, v float64, in maskInputs) float64 {
	switch pat {
	case PatternStripesV:
		return stripe(u/in.cellX+in.offset, in.softness)

	case PatternStripesH:
		return stripe(v/in.cellY+in.offset, in.softness)

	case PatternStripesD:
		return stripe(u/in.cellX+v/in.cellY+in.offset, in.softness)

	case PatternDiamond:
		du := math.Abs(common.Fract(u/in.cellX+in.offset) - 0.5)
		dv := math.Abs(common.Fract(v/in.cellY) - 0.5)
		s := in.softness * 0.25
		return common.Smoothstep(0.5-s, 0.5+s, du+dv)

	case PatternWave:
		phase := 2 * math.Pi * (u/in.cellX + in.offset)
		displaced := v/in.cellY + 0.35*math.Sin(phase)
		return stripe(displaced, in.softness)

	case PatternRadial:
		// Sector count comes from the cell width: one cell per sector turn.
		sectors := math.Max(1, math.Round(1/in.cellX))
		theta := math.Atan2(v, u) / (2 * math.Pi)
		return stripe(theta*sectors+in.offset, in.softness)

	case PatternHex:
		return hexMask(u/in.cellX+in.offset, v/in.cellY, in.softness)

	case PatternChecker:
		fallthrough
	default:
		a := stripe(u/in.cellX+in.offset, in.softness)
		b := stripe(v/in.cellY, in.softness)
		// Continuous XOR keeps the blend smooth where soft edges cross.
		return a*(1-b) + b*(1-a)
	}
}

// hexMask evaluates a hexagonal lattice: distance from the nearest hex
// center, thresholded at half the cell radius for an even split.
func hexMask(u, v, softness float64) float64 {
	const ry = 1.7320508075688772 // sqrt(3), hex row spacing

	ax := math.Mod(math.Abs(u), 1.0)
	ay := math.Mod(math.Abs(v), ry)
	bx := math.Mod(math.Abs(u)+0.5, 1.0)
	by := math.Mod(math.Abs(v)+ry/2, ry)

	da := math.Hypot(ax-0.5, ay-ry/2)
	db := math.Hypot(bx-0.5, by-ry/2)
	d := math.Min(da, db)

	s := softness * 0.25
	return common.Smoothstep(0.5-s, 0.5+s, d)
}
