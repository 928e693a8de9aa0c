package dualzone

import (
	"bytes"
	"math"
	"testing"

	"github.com/loopforge/loopforge/common"
	"github.com/loopforge/loopforge/effects"
)

var allPatterns = []Pattern{
	PatternChecker, PatternStripesV, PatternStripesH, PatternHex,
	PatternRadial, PatternDiamond, PatternWave, PatternStripesD,
}

func TestMaskValueRange(t *testing.T) {
	in := maskInputs{cellX: 0.25, cellY: 0.25, softness: 0.3, offset: 0.37}
	for _, pat := range allPatterns {
		for v := -0.5; v <= 0.5; v += 0.05 {
			for u := -0.9; u <= 0.9; u += 0.05 {
				m := maskValue(pat, u, v, in)
				if m < 0 || m > 1 || math.IsNaN(m) {
					t.Fatalf("pattern %v: mask(%v, %v) = %v out of [0,1]", pat, u, v, m)
				}
			}
		}
	}
}

func TestMaskHardEdgeWithoutSoftness(t *testing.T) {
	in := maskInputs{cellX: 0.5, cellY: 0.5, softness: 0}
	seen := map[float64]bool{}
	for u := -1.0; u <= 1.0; u += 0.01 {
		seen[maskValue(PatternStripesV, u, 0, in)] = true
	}
	if !seen[0] || !seen[1] {
		t.Error("zero softness should produce both pure zones")
	}
}

func TestParsePatternDefaultsToChecker(t *testing.T) {
	if got := ParsePattern("not-a-pattern"); got != PatternChecker {
		t.Errorf("ParsePattern(unknown) = %v, want checker", got)
	}
	for _, pat := range allPatterns {
		if got := ParsePattern(pat.String()); got != pat {
			t.Errorf("round trip failed for %v: got %v", pat, got)
		}
	}
}

func TestEffectInversion(t *testing.T) {
	scene := common.NewFrame(32, 32)
	scene.Fill(common.Color{R: 0.8, G: 0.2, B: 0.4, A: 1})

	params := effects.Params{
		"pattern": "checker",
		"zoneB":   map[string]any{"invert": 1.0},
	}
	plain := New(params).(*Effect)
	inverted := New(effects.Params{
		"pattern": "checker",
		"invert":  true,
		"zoneB":   map[string]any{"invert": 1.0},
	}).(*Effect)

	a := common.NewFrame(32, 32)
	b := common.NewFrame(32, 32)
	plain.Apply(scene, a)
	inverted.Apply(scene, b)

	if bytes.Equal(a.Pix, b.Pix) {
		t.Error("mask inversion changed nothing")
	}
	// Where the plain mask was fully zone A, the inverted mask is fully
	// zone B: corner pixel swaps recipe.
	if a.ColorAt(0, 0) == b.ColorAt(0, 0) {
		t.Error("corner pixel should swap zones under inversion")
	}
}

func TestEffectClampsDegenerateCellSize(t *testing.T) {
	e := New(effects.Params{"cellX": 0.0, "cellY": -3.0}).(*Effect)
	if e.cellX < MinCellSize || e.cellY < MinCellSize {
		t.Fatalf("cell sizes not clamped: %v x %v", e.cellX, e.cellY)
	}

	scene := common.NewFrame(16, 16)
	scene.Fill(common.Color{R: 1, A: 1})
	dst := common.NewFrame(16, 16)
	e.Apply(scene, dst) // must not divide by zero
	for i := 0; i < len(dst.Pix); i += 4 {
		if dst.Pix[i+3] == 0 {
			t.Fatal("degenerate cell size produced unwritten pixels")
		}
	}
}

func TestEffectScrollLoopsSeamlessly(t *testing.T) {
	const loop = 2.0
	params := effects.Params{"pattern": "stripes-d", "scrollSpeed": 0.77}
	e := New(params).(*Effect)

	scene := common.NewFrame(48, 32)
	for y := 0; y < 32; y++ {
		for x := 0; x < 48; x++ {
			scene.SetColorAt(x, y, common.Color{R: float32(x) / 48, G: float32(y) / 32, B: 0.3, A: 1})
		}
	}

	start := common.NewFrame(48, 32)
	end := common.NewFrame(48, 32)
	e.SetTime(0, loop)
	e.Apply(scene, start)
	e.SetTime(loop, loop)
	e.Apply(scene, end)

	if !bytes.Equal(start.Pix, end.Pix) {
		t.Error("quantized scroll must close the loop: frames at t=0 and t=loop differ")
	}
}

func TestRecipeIdentityPassThrough(t *testing.T) {
	r := ParseRecipe(effects.Params{})
	in := common.Color{R: 0.3, G: 0.6, B: 0.9, A: 0.5}
	out := r.Apply(in)
	if math.Abs(float64(out.R-in.R)) > 1e-6 ||
		math.Abs(float64(out.G-in.G)) > 1e-6 ||
		math.Abs(float64(out.B-in.B)) > 1e-6 || out.A != in.A {
		t.Errorf("empty recipe altered the color: %v -> %v", in, out)
	}
}

func TestRecipePosterizeLevels(t *testing.T) {
	r := ParseRecipe(effects.Params{"posterize": 4})
	levels := map[float32]bool{}
	for v := 0.0; v <= 1.0; v += 0.01 {
		out := r.Apply(common.Color{R: float32(v), G: float32(v), B: float32(v), A: 1})
		levels[out.R] = true
	}
	if len(levels) != 4 {
		t.Errorf("posterize 4 produced %d distinct levels, want 4", len(levels))
	}
}

func TestRecipeFixedStepOrder(t *testing.T) {
	// Brightness applies before contrast: +0.25 then x2 around mid-gray.
	r := ParseRecipe(effects.Params{"brightness": 0.25, "contrast": 2.0})
	out := r.Apply(common.Color{R: 0.5, G: 0.5, B: 0.5, A: 1})
	// (0.5 + 0.25 - 0.5)*2 + 0.5 = 1.0; contrast-first would give 0.75.
	if math.Abs(float64(out.R)-1.0) > 1e-6 {
		t.Errorf("brightness/contrast order wrong: got %v, want 1.0", out.R)
	}
}

func TestRecipeGrayscaleFull(t *testing.T) {
	r := ParseRecipe(effects.Params{"grayscale": 1.0})
	out := r.Apply(common.Color{R: 1, G: 0, B: 0, A: 1})
	if out.R != out.G || out.G != out.B {
		t.Errorf("full grayscale should equalize channels, got %v", out)
	}
}
