package capture

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/loopforge/loopforge/capture/encode"
	"github.com/loopforge/loopforge/common"
	"github.com/loopforge/loopforge/loopclock"
)

// fakeHost renders a flat frame whose red channel tracks virtual time, so
// encoded output exposes which times were sampled.
type fakeHost struct {
	w, h    int
	ratio   float64
	alpha   float64
	bg      common.Color
	renders []float64
	shade   func(t float64) float32
}

func newFakeHost(w, h int) *fakeHost {
	return &fakeHost{
		w: w, h: h,
		ratio: 2.0,
		alpha: 0.0,
		bg:    common.Color{R: 0.1, G: 0.1, B: 0.1, A: 1},
		shade: func(t float64) float32 { return float32(math.Mod(t, 10) / 10) },
	}
}

func (h *fakeHost) Render(t float64) *common.Frame {
	h.renders = append(h.renders, t)
	f := common.NewFrame(h.w, h.h)
	f.Fill(common.Color{R: h.shade(t), A: 1})
	return f
}

func (h *fakeHost) Size() (int, int)        { return h.w, h.h }
func (h *fakeHost) PixelRatio() float64     { return h.ratio }
func (h *fakeHost) SetPixelRatio(r float64) { h.ratio = r }
func (h *fakeHost) ClearAlpha() float64     { return h.alpha }
func (h *fakeHost) SetClearAlpha(a float64) { h.alpha = a }

func (h *fakeHost) Background() common.Color     { return h.bg }
func (h *fakeHost) SetBackground(c common.Color) { h.bg = c }

// fakeEncoder records the red byte of each frame's first pixel.
type fakeEncoder struct {
	reds    []byte
	failAt  int
	flushed bool
	closed  bool
}

func (e *fakeEncoder) Encode(f *common.Frame) error {
	if e.failAt > 0 && len(e.reds)+1 >= e.failAt {
		return errors.New("synthetic encode failure")
	}
	e.reds = append(e.reds, f.Pix[0])
	return nil
}

func (e *fakeEncoder) Flush() error { e.flushed = true; return nil }
func (e *fakeEncoder) Close() error { e.closed = true; return nil }

func fakeFactory(enc *fakeEncoder) encode.Factory {
	return func(cfg encode.Config, sink encode.Sink) (encode.Encoder, error) {
		return enc, nil
	}
}

// drive pumps Advance until the controller returns to idle.
func drive(t *testing.T, c Controller, dt float64) {
	t.Helper()
	for i := 0; i < 10000; i++ {
		c.Advance(dt)
		if c.State() == StateIdle {
			return
		}
	}
	t.Fatal("controller never returned to idle")
}

func TestBasicExport(t *testing.T) {
	host := newFakeHost(512, 512)
	clock := loopclock.NewClock()
	enc := &fakeEncoder{}

	var doneRes Result
	var doneErr error
	c := NewController(host, clock,
		WithEncoderFactory(fakeFactory(enc)),
		WithOutputDir(t.TempDir()),
		WithCompletionFunc(func(res Result, err error) { doneRes, doneErr = res, err }),
	)

	err := c.Start(Request{
		Width: 512, Height: 512,
		FPS:             30,
		DurationSeconds: 2,
		Mode:            LoopModeLoop,
		BlendSeconds:    0.5,
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !clock.Active() {
		t.Error("loop clock not set for the run")
	}
	if host.ratio != 1 || host.alpha != 1 {
		t.Error("host not pinned to ratio 1 / opaque clear for the run")
	}

	drive(t, c, 0.25)

	if doneErr != nil {
		t.Fatalf("run failed: %v", doneErr)
	}
	// 60 loop frames plus 15 overlap frames captured, 60 encoded.
	warmRenders := 8 // 2s of warm-up at dt=0.25
	if got := len(host.renders) - warmRenders; got != 75 {
		t.Errorf("captured %d frames, want 75", got)
	}
	if len(enc.reds) != 60 {
		t.Errorf("encoded %d frames, want 60", len(enc.reds))
	}
	if doneRes.Frames != 60 {
		t.Errorf("result reports %d frames, want 60", doneRes.Frames)
	}
	if !enc.flushed || !enc.closed {
		t.Error("encoder not flushed and closed")
	}
	if filepath.Base(doneRes.Path) != "loop_loop_512x512_2s.mp4" {
		t.Errorf("unexpected filename %q", filepath.Base(doneRes.Path))
	}
	if _, err := os.Stat(doneRes.Path); err != nil {
		t.Errorf("output file missing: %v", err)
	}

	// Teardown restored everything.
	if host.ratio != 2.0 || host.alpha != 0.0 {
		t.Error("host settings not restored")
	}
	if clock.Active() {
		t.Error("loop clock not cleared")
	}
	if c.Progress() != 0 {
		t.Error("progress not reset")
	}
}

func TestCaptureSamplesFixedGrid(t *testing.T) {
	host := newFakeHost(32, 32)
	c := NewController(host, loopclock.NewClock(),
		WithEncoderFactory(fakeFactory(&fakeEncoder{})),
		WithOutputDir(t.TempDir()))

	if err := c.Start(Request{FPS: 10, DurationSeconds: 1}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	drive(t, c, 0.5)

	// After 2 warm-up frames the grid is 0, 0.1, 0.2, ... regardless of
	// the erratic wall clock.
	grid := host.renders[2:]
	for i, got := range grid {
		if math.Abs(got-float64(i)/10) > 1e-9 {
			t.Fatalf("capture %d sampled t=%v, want %v", i, got, float64(i)/10)
		}
	}
}

func TestPingPongPalindromeOutput(t *testing.T) {
	host := newFakeHost(16, 16)
	// Distinct shade per frame index at 10 fps.
	host.shade = func(t float64) float32 { return float32(t) / 4 }
	enc := &fakeEncoder{}
	c := NewController(host, loopclock.NewClock(),
		WithEncoderFactory(fakeFactory(enc)),
		WithOutputDir(t.TempDir()))

	if err := c.Start(Request{FPS: 10, DurationSeconds: 1, Mode: LoopModePingPong}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	drive(t, c, 1)

	if len(enc.reds) != 10 {
		t.Fatalf("encoded %d frames, want 10", len(enc.reds))
	}
	// Forward leg 0..5 then the interior reversed: 4,3,2,1.
	for i := 1; i < 5; i++ {
		if enc.reds[5+i] != enc.reds[5-i] {
			t.Errorf("frame %d is not the mirror of frame %d", 5+i, 5-i)
		}
	}
	if enc.reds[9] == enc.reds[0] {
		t.Error("turnaround endpoint repeated at the wrap")
	}
}

func TestLoopBlendClosesSeam(t *testing.T) {
	host := newFakeHost(16, 16)
	// A ramp that does not loop on its own: worst case for the seam.
	host.shade = func(t float64) float32 { return float32(t) / 4 }
	enc := &fakeEncoder{}
	c := NewController(host, loopclock.NewClock(),
		WithEncoderFactory(fakeFactory(enc)),
		WithOutputDir(t.TempDir()))

	if err := c.Start(Request{
		FPS: 10, DurationSeconds: 2, Mode: LoopModeLoop, BlendSeconds: 0.5,
	}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	drive(t, c, 1)

	first := float64(enc.reds[0])
	last := float64(enc.reds[len(enc.reds)-1])
	rawFirst := 0.0 // shade at t=0
	seam := math.Abs(last - first)
	rawSeam := math.Abs(last - rawFirst)
	if seam >= rawSeam {
		t.Errorf("blend did not shrink the seam: %v vs unblended %v", seam, rawSeam)
	}
}

func TestStartWhileBusy(t *testing.T) {
	host := newFakeHost(16, 16)
	c := NewController(host, loopclock.NewClock(),
		WithEncoderFactory(fakeFactory(&fakeEncoder{})),
		WithOutputDir(t.TempDir()))

	if err := c.Start(Request{FPS: 10, DurationSeconds: 1}); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	c.Advance(0.1)
	if err := c.Start(Request{}); !errors.Is(err, ErrBusy) {
		t.Errorf("second Start = %v, want ErrBusy", err)
	}
	c.Cancel()
}

func TestStartRejectsNegativeValues(t *testing.T) {
	host := newFakeHost(16, 16)
	c := NewController(host, loopclock.NewClock())
	bad := []Request{
		{Width: -1},
		{Height: -1},
		{FPS: -30},
		{DurationSeconds: -2},
	}
	for _, req := range bad {
		if err := c.Start(req); !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("Start(%+v) = %v, want ErrInvalidRequest", req, err)
		}
	}
	if c.State() != StateIdle {
		t.Errorf("state after rejected Start = %v, want idle", c.State())
	}
}

func TestBackgroundOverrideRestored(t *testing.T) {
	host := newFakeHost(16, 16)
	original := host.bg
	override := common.Color{R: 1, G: 0.5, B: 0, A: 1}
	c := NewController(host, loopclock.NewClock(),
		WithEncoderFactory(fakeFactory(&fakeEncoder{})),
		WithOutputDir(t.TempDir()))

	if err := c.Start(Request{FPS: 10, DurationSeconds: 1, Background: override}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if host.bg != override {
		t.Errorf("background during run = %v, want %v", host.bg, override)
	}
	drive(t, c, 1)
	if host.bg != original {
		t.Errorf("background after run = %v, want %v restored", host.bg, original)
	}

	// A zero-alpha request leaves the host background alone.
	if err := c.Start(Request{FPS: 10, DurationSeconds: 1}); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if host.bg != original {
		t.Errorf("zero-alpha request changed the background to %v", host.bg)
	}
	c.Cancel()
}

func TestStartWithoutSurface(t *testing.T) {
	host := newFakeHost(0, 0)
	c := NewController(host, loopclock.NewClock())
	if err := c.Start(Request{}); !errors.Is(err, ErrNoSurface) {
		t.Errorf("Start = %v, want ErrNoSurface", err)
	}
}

func TestCancelRestoresHost(t *testing.T) {
	host := newFakeHost(16, 16)
	clock := loopclock.NewClock()
	var doneErr error
	c := NewController(host, clock,
		WithEncoderFactory(fakeFactory(&fakeEncoder{})),
		WithOutputDir(t.TempDir()),
		WithCompletionFunc(func(_ Result, err error) { doneErr = err }))

	if err := c.Start(Request{FPS: 10, DurationSeconds: 1}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	c.Advance(0.1)
	c.Cancel()

	if c.State() != StateIdle {
		t.Errorf("state after cancel = %v, want idle", c.State())
	}
	if !errors.Is(doneErr, ErrCanceled) || !errors.Is(c.LastError(), ErrCanceled) {
		t.Errorf("cancel error = %v / %v, want ErrCanceled", doneErr, c.LastError())
	}
	if host.ratio != 2.0 || host.alpha != 0.0 || clock.Active() {
		t.Error("cancel did not restore the host and clock")
	}
}

func TestEncodeFailureDiscardsOutput(t *testing.T) {
	host := newFakeHost(16, 16)
	dir := t.TempDir()
	var doneErr error
	c := NewController(host, loopclock.NewClock(),
		WithEncoderFactory(fakeFactory(&fakeEncoder{failAt: 3})),
		WithOutputDir(dir),
		WithCompletionFunc(func(_ Result, err error) { doneErr = err }))

	if err := c.Start(Request{FPS: 10, DurationSeconds: 1}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	drive(t, c, 1)

	if doneErr == nil || c.LastError() == nil {
		t.Fatal("encode failure not reported")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("partial output left behind: %v", entries)
	}
	if host.ratio != 2.0 || host.alpha != 0.0 {
		t.Error("failure did not restore the host")
	}
}

func TestProgressAdvancesThroughSlices(t *testing.T) {
	host := newFakeHost(16, 16)
	var seen []float64
	c := NewController(host, loopclock.NewClock(),
		WithEncoderFactory(fakeFactory(&fakeEncoder{})),
		WithOutputDir(t.TempDir()),
		WithProgressFunc(func(p float64) { seen = append(seen, p) }))

	if err := c.Start(Request{FPS: 10, DurationSeconds: 1}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	drive(t, c, 0.25)

	if len(seen) < 3 {
		t.Fatalf("too few progress reports: %v", seen)
	}
	if seen[len(seen)-1] != 0 {
		t.Errorf("teardown must reset progress to 0, got %v", seen[len(seen)-1])
	}
	run := seen[:len(seen)-1]
	peak := 0.0
	for i, p := range run {
		if p < 0 || p > 1 {
			t.Fatalf("progress %v out of range", p)
		}
		if i > 0 && p+1e-9 < run[i-1] {
			t.Fatalf("progress went backwards: %v after %v", p, run[i-1])
		}
		if p > peak {
			peak = p
		}
	}
	if math.Abs(peak-1) > 1e-9 {
		t.Errorf("peak progress %v, want 1", peak)
	}
}

func TestSuggestedFilename(t *testing.T) {
	name := SuggestedFilename(Request{
		Width: 640, Height: 360, DurationSeconds: 2.5, Mode: LoopModePingPong,
	})
	if name != "loop_pingpong_640x360_2.5s.mp4" {
		t.Errorf("SuggestedFilename = %q", name)
	}
	if strings.ContainsAny(name, " /") {
		t.Errorf("filename contains unsafe characters: %q", name)
	}
}
