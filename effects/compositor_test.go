package effects_test

import (
	"bytes"
	"testing"

	"github.com/loopforge/loopforge/common"
	"github.com/loopforge/loopforge/effects"
	"github.com/loopforge/loopforge/effects/builtin"
	"github.com/loopforge/loopforge/loopclock"
)

// gradientScene builds a deterministic test frame with structure in every
// channel so effect output differences are visible.
func gradientScene(w, h int) *common.Frame {
	f := common.NewFrame(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			f.SetColorAt(x, y, common.Color{
				R: float32(x) / float32(w),
				G: float32(y) / float32(h),
				B: float32(x+y) / float32(w+h),
				A: 1,
			})
		}
	}
	return f
}

func newTestCompositor() effects.Compositor {
	return effects.NewCompositor(builtin.DefaultTable(), loopclock.NewClock(), effects.WithRowWorkers(1))
}

func TestRenderOrderIndependence(t *testing.T) {
	params := map[string]effects.Params{
		builtin.IDPixelate: {"size": 4},
		builtin.IDVignette: {"strength": 0.8},
	}
	perms := [][]string{
		{builtin.IDPixelate, builtin.IDVignette, builtin.IDBrightnessContrast},
		{builtin.IDVignette, builtin.IDBrightnessContrast, builtin.IDPixelate},
		{builtin.IDBrightnessContrast, builtin.IDPixelate, builtin.IDVignette},
	}

	var first []byte
	for i, ids := range perms {
		c := newTestCompositor()
		out := c.Render(gradientScene(64, 48), 0.5, effects.Selection{ActiveIDs: ids, Params: params})
		pix := append([]byte(nil), out.Pix...)
		c.Close()
		if i == 0 {
			first = pix
			continue
		}
		if !bytes.Equal(first, pix) {
			t.Errorf("toggle order %v changed the composited output", ids)
		}
	}
}

func TestRenderUnknownEffectIsInert(t *testing.T) {
	c := newTestCompositor()
	defer c.Close()

	scene := gradientScene(32, 32)
	withUnknown := c.Render(scene, 0, effects.Selection{
		ActiveIDs: []string{"not-a-real-effect", builtin.IDVignette, builtin.IDPixelate},
	})
	got := append([]byte(nil), withUnknown.Pix...)

	c2 := newTestCompositor()
	defer c2.Close()
	want := c2.Render(scene, 0, effects.Selection{
		ActiveIDs: []string{builtin.IDVignette, builtin.IDPixelate},
	})

	if !bytes.Equal(got, want.Pix) {
		t.Error("unknown effect id must contribute nothing to the output")
	}
}

func TestRenderNoEffectsReturnsScene(t *testing.T) {
	c := newTestCompositor()
	defer c.Close()

	scene := gradientScene(16, 16)
	out := c.Render(scene, 0, effects.Selection{})
	if out != scene {
		t.Error("empty selection should pass the scene frame through")
	}
}

func TestRenderCachesStatefulAcrossFrames(t *testing.T) {
	c := newTestCompositor()
	defer c.Close()

	params := map[string]effects.Params{builtin.IDDualZone: {"pattern": "radial"}}
	sel := effects.Selection{ActiveIDs: []string{builtin.IDDualZone}, Params: params}

	scene := gradientScene(32, 32)
	c.Render(scene, 0, sel)
	if c.Cache().Len() != 1 {
		t.Fatalf("cache holds %d entries, want 1", c.Cache().Len())
	}
	c.Render(scene, 0.1, sel)
	if c.Cache().Len() != 1 {
		t.Errorf("second frame grew the cache to %d entries", c.Cache().Len())
	}

	// Toggling off must retire the instance.
	c.Render(scene, 0.2, effects.Selection{})
	if c.Cache().Len() != 0 {
		t.Errorf("deactivation left %d cached entries", c.Cache().Len())
	}
}

func TestRenderScrubbing(t *testing.T) {
	// Rendering the same time twice with a pure stage gives identical output,
	// even with frames rendered at other times in between.
	c := newTestCompositor()
	defer c.Close()

	params := map[string]effects.Params{
		builtin.IDDualZone: {"pattern": "wave", "scrollSpeed": 1.5},
	}
	sel := effects.Selection{ActiveIDs: []string{builtin.IDDualZone}, Params: params}
	scene := gradientScene(48, 32)

	first := append([]byte(nil), c.Render(scene, 1.25, sel).Pix...)
	c.Render(scene, 7.5, sel)
	second := c.Render(scene, 1.25, sel)

	if !bytes.Equal(first, second.Pix) {
		t.Error("dual-zone must be a pure function of (pixel, time, parameters)")
	}
}
