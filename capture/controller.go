package capture

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/loopforge/loopforge"
	"github.com/loopforge/loopforge/capture/encode"
	"github.com/loopforge/loopforge/common"
	"github.com/loopforge/loopforge/loopclock"
)

// Progress is split into fixed slices per phase so the bar moves steadily
// even though the phases have very different costs.
const (
	progressWarmSlice    = 0.15
	progressCaptureSlice = 0.35
	progressEncodeSlice  = 0.50
)

type controller struct {
	mu         sync.Mutex
	host       Host
	clock      *loopclock.Clock
	newEncoder encode.Factory
	outputDir  string
	onProgress func(float64)
	onDone     func(Result, error)

	state    State
	req      Request
	progress float64
	lastErr  error

	warmElapsed  float64
	frameCount   int
	captureTotal int
	blendFrames  int
	captured     []*common.Frame
	savedRatio   float64
	savedAlpha   float64
	savedBg      common.Color
}

// Controller runs capture sessions against a Host. All methods are safe for
// concurrent use, but Advance is designed to be driven once per frame from
// the host's own loop.
type Controller interface {
	// Start validates the request, saves the host settings it is about to
	// override, and enters warm-up. The run then progresses one step per
	// Advance call.
	//
	// Parameters:
	//   - req: the export request; zero fields take defaults
	//
	// Returns:
	//   - error: ErrBusy if a run is active, ErrInvalidRequest for
	//     negative request values, ErrNoSurface if the host has no
	//     drawable surface
	Start(req Request) error

	// Advance performs one step of the active run. wallDT is the
	// wall-clock seconds since the previous frame and only matters during
	// warm-up; recording itself runs on the fixed virtual frame grid.
	//
	// Parameters:
	//   - wallDT: elapsed wall-clock time for this frame, in seconds
	Advance(wallDT float64)

	// Cancel aborts the active run, discards any partial output and
	// restores the host. A no-op when idle.
	Cancel()

	// State reports the current phase.
	//
	// Returns:
	//   - State: the current state
	State() State

	// Progress reports overall completion in [0,1].
	//
	// Returns:
	//   - float64: current progress fraction
	Progress() float64

	// LastError returns the error that ended the most recent run, or nil
	// if it completed.
	//
	// Returns:
	//   - error: the terminal error of the last run, if any
	LastError() error
}

var _ Controller = &controller{}

func (c *controller) Start(req Request) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateIdle {
		return ErrBusy
	}
	if req.Width < 0 || req.Height < 0 || req.FPS < 0 || req.DurationSeconds < 0 {
		return fmt.Errorf("%w: %dx%d@%d for %vs", ErrInvalidRequest,
			req.Width, req.Height, req.FPS, req.DurationSeconds)
	}
	hostW, hostH := c.host.Size()
	if hostW < 1 || hostH < 1 {
		return ErrNoSurface
	}

	req.FPS = common.Coalesce(req.FPS, 30)
	req.Width = common.Coalesce(req.Width, hostW)
	req.Height = common.Coalesce(req.Height, hostH)
	if req.DurationSeconds <= 0 {
		req.DurationSeconds = 2
	}
	if req.BlendSeconds < 0 {
		req.BlendSeconds = 0
	}
	if req.BlendSeconds > req.DurationSeconds/2 {
		req.BlendSeconds = req.DurationSeconds / 2
	}

	c.req = req
	c.frameCount = int(math.Round(req.DurationSeconds * float64(req.FPS)))
	if c.frameCount < 2 {
		c.frameCount = 2
	}
	switch req.Mode {
	case LoopModePingPong:
		c.blendFrames = 0
		// Forward leg plus reversed interior must cover the full count.
		c.captureTotal = (c.frameCount + 3) / 2
	default:
		c.blendFrames = int(math.Round(req.BlendSeconds * float64(req.FPS)))
		c.captureTotal = c.frameCount + c.blendFrames
	}

	c.savedRatio = c.host.PixelRatio()
	c.savedAlpha = c.host.ClearAlpha()
	c.savedBg = c.host.Background()
	c.host.SetPixelRatio(1)
	c.host.SetClearAlpha(1)
	if req.Background.A > 0 {
		c.host.SetBackground(req.Background)
	}
	c.clock.Set(req.DurationSeconds)

	c.lastErr = nil
	c.captured = nil
	c.warmElapsed = 0
	c.state = StateWarmingUp
	c.report(0)
	loopforge.Logger().Info("capture run started",
		"mode", req.Mode.String(),
		"size", fmt.Sprintf("%dx%d", req.Width, req.Height),
		"fps", req.FPS,
		"duration", req.DurationSeconds)
	return nil
}

func (c *controller) Advance(wallDT float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StateWarmingUp:
		c.advanceWarmUp(wallDT)
	case StateCapturing:
		c.advanceCapture()
	case StateAssembling:
		c.finish()
	}
}

func (c *controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateIdle {
		return
	}
	c.fail(ErrCanceled)
}

func (c *controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *controller) Progress() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress
}

func (c *controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// advanceWarmUp runs the scene for one full loop on wall-clock time so
// history-carrying effects reach steady state before any frame is kept.
func (c *controller) advanceWarmUp(wallDT float64) {
	if wallDT < 0 {
		wallDT = 0
	}
	c.warmElapsed += wallDT
	c.host.Render(math.Mod(c.warmElapsed, c.req.DurationSeconds))
	if c.warmElapsed >= c.req.DurationSeconds {
		c.state = StateCapturing
		c.report(progressWarmSlice)
		return
	}
	c.report(progressWarmSlice * c.warmElapsed / c.req.DurationSeconds)
}

// advanceCapture records exactly one frame on the virtual grid.
func (c *controller) advanceCapture() {
	t := float64(len(c.captured)) / float64(c.req.FPS)
	frame := c.host.Render(t)
	if frame == nil {
		c.fail(fmt.Errorf("host returned no frame at t=%v: %w", t, ErrNoSurface))
		return
	}
	c.captured = append(c.captured, conformFrame(frame, c.req.Width, c.req.Height))
	c.report(progressWarmSlice +
		progressCaptureSlice*float64(len(c.captured))/float64(c.captureTotal))
	if len(c.captured) == c.captureTotal {
		c.state = StateAssembling
	}
}

// finish assembles the loop and encodes it. Runs in a single Advance step;
// encoding is the long pole and reports progress per frame.
func (c *controller) finish() {
	var frames []*common.Frame
	switch c.req.Mode {
	case LoopModePingPong:
		frames = assemblePingPong(c.captured, c.frameCount)
	default:
		frames = assembleLoop(c.captured, c.frameCount, c.blendFrames)
	}
	c.state = StateEncoding

	path := filepath.Join(c.outputDir, SuggestedFilename(c.req))
	if err := c.encodeFrames(frames, path); err != nil {
		_ = os.Remove(path)
		c.fail(err)
		return
	}

	res := Result{Path: path, Frames: len(frames)}
	c.teardown()
	c.state = StateIdle
	loopforge.Logger().Info("capture run finished", "path", res.Path, "frames", res.Frames)
	if c.onDone != nil {
		c.onDone(res, nil)
	}
}

func (c *controller) encodeFrames(frames []*common.Frame, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", path, err)
	}
	defer file.Close()

	enc, err := c.newEncoder(encode.Config{
		Width:       c.req.Width,
		Height:      c.req.Height,
		FPS:         c.req.FPS,
		BitrateKbps: c.req.BitrateKbps,
	}, file)
	if err != nil {
		return fmt.Errorf("error creating encoder: %w", err)
	}
	for i, f := range frames {
		if err := enc.Encode(f); err != nil {
			_ = enc.Close()
			return fmt.Errorf("error encoding frame %d: %w", i, err)
		}
		c.report(progressWarmSlice + progressCaptureSlice +
			progressEncodeSlice*float64(i+1)/float64(len(frames)))
	}
	if err := enc.Flush(); err != nil {
		_ = enc.Close()
		return fmt.Errorf("error flushing encoder: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("error closing encoder: %w", err)
	}
	return nil
}

// fail records the terminal error and tears the run down. The host is
// restored on every exit path, success or not.
func (c *controller) fail(err error) {
	c.state = StateFailed
	c.lastErr = err
	loopforge.Logger().Error("capture run failed", "error", err)
	c.teardown()
	c.state = StateIdle
	if c.onDone != nil {
		c.onDone(Result{}, err)
	}
}

// teardown restores the host settings, releases the ambient loop duration
// and drops the captured frames.
func (c *controller) teardown() {
	c.host.SetPixelRatio(c.savedRatio)
	c.host.SetClearAlpha(c.savedAlpha)
	c.host.SetBackground(c.savedBg)
	c.clock.Clear()
	c.captured = nil
	c.report(0)
}

// report stores the progress fraction and notifies the observer, if any.
func (c *controller) report(p float64) {
	c.progress = p
	if c.onProgress != nil {
		c.onProgress(p)
	}
}
