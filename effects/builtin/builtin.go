// package builtin assembles the default effect descriptor table from the
// effects shipped with loopforge. The table is static content: construct it
// once and hand the same reference to every compositor.
package builtin

import (
	"github.com/loopforge/loopforge/effects"
	"github.com/loopforge/loopforge/effects/dualzone"
	"github.com/loopforge/loopforge/effects/temporal"
)

// Effect identifiers registered by DefaultTable.
const (
	IDPixelate            = "pixelate"
	IDBrightnessContrast  = "brightness-contrast"
	IDVignette            = "vignette"
	IDDualZone            = "dual-zone"
	IDChromaticAberration = "chromatic-aberration"
	IDGodRays             = "god-rays"
	IDTrailFeedback       = "trail-feedback"
)

// DefaultTable builds the built-in effect descriptor table.
//
// Tier assignments run 0 (spatial pre-filter) through 6 (temporal).
// Trail feedback sits alone in tier 6 so it always sorts last: it
// accumulates the fully composited result of every earlier stage, and
// anything after it would be erased from the accumulation. God rays takes
// tier 5 for the same reason in reverse — its shafts belong on top of the
// color stages but under the trail accumulation.
//
// Returns:
//   - *effects.Table: the immutable built-in table
func DefaultTable() *effects.Table {
	return effects.NewTable(map[string]effects.Descriptor{
		IDPixelate: {
			Tier: 0,
			Kind: effects.KindLibrary,
			New:  effects.NewPixelate,
		},
		IDBrightnessContrast: {
			Tier: 1,
			Kind: effects.KindLibrary,
			New:  effects.NewBrightnessContrast,
		},
		IDVignette: {
			Tier: 2,
			Kind: effects.KindLibrary,
			New:  effects.NewVignette,
		},
		IDDualZone: {
			Tier: 3,
			Kind: effects.KindCustom,
			New:  dualzone.New,
		},
		IDChromaticAberration: {
			Tier: 4,
			Kind: effects.KindLibrary,
			New:  effects.NewChromaticAberration,
		},
		IDGodRays: {
			Tier: 5,
			Kind: effects.KindCustom,
			New:  temporal.NewGodRays,
		},
		IDTrailFeedback: {
			Tier: 6,
			Kind: effects.KindCustom,
			New:  temporal.NewTrail,
		},
	})
}
