package engine

import (
	"sync"
	"time"

	"github.com/loopforge/loopforge"
	"github.com/loopforge/loopforge/capture"
	"github.com/loopforge/loopforge/common"
	"github.com/loopforge/loopforge/effects"
	"github.com/loopforge/loopforge/engine/preview"
	"github.com/loopforge/loopforge/engine/profiler"
	"github.com/loopforge/loopforge/engine/window"
	"github.com/loopforge/loopforge/loopclock"
)

// Source produces the base scene image the effect chain runs over.
type Source interface {
	// RenderFrame draws the scene at time t into dst. The frame arrives
	// pre-filled with the background color.
	//
	// Parameters:
	//   - dst: the frame to draw into
	//   - t: animation time in seconds
	RenderFrame(dst *common.Frame, t float64)
}

// engine implements the Engine interface.
// Coordinates the tick, render, and window threads around the compositor
// and the capture controller.
type engine struct {
	tickRateChannel chan time.Duration

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once

	window    window.Window
	presenter preview.Presenter

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate   time.Duration
	tickCallback     func(deltaTime float32)
	renderFrameLimit time.Duration

	clock      *loopclock.Clock
	table      *effects.Table
	compositor effects.Compositor
	controller capture.Controller
	source     Source

	compositorOpts []effects.CompositorOption
	captureOpts    []capture.ControllerOption

	// mu guards the fields below; they are written from the caller's
	// goroutine and read from the render goroutine.
	mu         sync.Mutex
	selection  effects.Selection
	background common.Color
	pixelRatio float64
	clearAlpha float64
	offscreenW int
	offscreenH int

	// Render-goroutine state.
	animTime   float64
	sceneFrame *common.Frame
	lastFrame  *common.Frame
}

// Engine hosts a live effect-composited scene: it runs the animation clock,
// renders and presents frames, exposes the effect selection, and drives
// exports through the capture controller.
type Engine interface {
	// Window returns the underlying window, or nil when offscreen.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// EnableProfiler enables periodic frame statistics output.
	EnableProfiler()

	// DisableProfiler disables frame statistics output.
	DisableProfiler()

	// SetTickRate sets the logic tick rate in ticks per second.
	// The tick callback will be called at this rate.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each logic tick.
	// Use this for input handling and animation parameter updates.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames
	// per second. Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// SetSource replaces the scene source.
	//
	// Parameters:
	//   - source: the scene to render, or nil for background only
	SetSource(source Source)

	// EnableEffect switches an effect on. Enabling an already-active id is
	// a no-op; activation order is preserved for equal-tier effects.
	//
	// Parameters:
	//   - id: the effect identifier
	EnableEffect(id string)

	// DisableEffect switches an effect off.
	//
	// Parameters:
	//   - id: the effect identifier
	DisableEffect(id string)

	// SetEffectParams replaces the live parameter record for an effect.
	// Takes effect on the next rendered frame.
	//
	// Parameters:
	//   - id: the effect identifier
	//   - params: the new parameter record
	SetEffectParams(id string, params effects.Params)

	// ActiveEffects returns the enabled effect ids in activation order.
	//
	// Returns:
	//   - []string: a copy of the active id list
	ActiveEffects() []string

	// SetBackground sets the clear color behind the scene.
	//
	// Parameters:
	//   - c: the background color
	SetBackground(c common.Color)

	// Export starts a capture run with the given request.
	//
	// Parameters:
	//   - req: the export request
	//
	// Returns:
	//   - error: capture.ErrBusy if a run is active, capture.ErrNoSurface
	//     if there is nothing to record
	Export(req capture.Request) error

	// CancelExport aborts an active capture run.
	CancelExport()

	// ExportState reports the capture controller's current phase.
	//
	// Returns:
	//   - capture.State: the current capture state
	ExportState() capture.State

	// ExportProgress reports export completion in [0,1].
	//
	// Returns:
	//   - float64: current progress fraction
	ExportProgress() float64

	// Clock returns the shared loop clock used for frequency quantization.
	//
	// Returns:
	//   - *loopclock.Clock: the ambient loop clock
	Clock() *loopclock.Clock

	// Run starts the engine loops (blocks until the window closes or Quit
	// is called).
	Run()

	// Quit signals all engine goroutines to stop and shuts down the engine.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

var _ Engine = &engine{}
var _ capture.Host = &engine{}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Run() {
	if e.window != nil && e.presenter == nil {
		p, err := preview.NewPresenter(e.window.SurfaceDescriptor(), e.window.Width(), e.window.Height())
		if err != nil {
			loopforge.Logger().Error("preview unavailable, running headless", "error", err)
		} else {
			e.presenter = p
			e.window.SetResizeCallback(func(width, height int) {
				p.Resize(width, height)
			})
		}
	}

	e.running = true
	e.handle()
	if e.window != nil {
		e.window.ProcessMessages()
		e.signalQuit()
	}
	e.wg.Wait()
	if e.presenter != nil {
		e.presenter.Close()
	}
	e.compositor.Close()
}

// Quit signals all engine goroutines to stop and shuts down the engine.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running = false
		close(e.quitChannel)
	})
}

// handle launches the tick, render, and quit goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(3)
	go e.handleTick()
	go e.handleRender()
	go e.handleQuit()
}

// handleTick runs the fixed-rate logic tick loop in its own goroutine.
// Fires the tick callback at the configured rate and listens for dynamic
// rate changes via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleTick() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the render loop in its own goroutine. Each iteration
// either advances the live animation or hands the frame slot to the capture
// controller, then presents the most recent composited frame.
// Recovers from panics to avoid crashing the process and signals quit on
// recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			loopforge.Logger().Error("render goroutine recovered from panic", "panic", r)
			e.signalQuit()
		}
	}()

	lastRender := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			now := time.Now()
			dt := now.Sub(lastRender).Seconds()
			lastRender = now

			if e.controller.State() != capture.StateIdle {
				// The controller owns virtual time while a run is active;
				// it calls back into Render on this goroutine.
				e.controller.Advance(dt)
			} else {
				e.animTime += dt
				e.Render(e.animTime)
			}

			if e.lastFrame != nil && e.presenter != nil {
				if err := e.presenter.Present(e.lastFrame); err != nil {
					loopforge.Logger().Warn("present failed", "error", err)
				}
			}

			if e.profilingEnabled && e.profiler != nil {
				e.profiler.Tick(len(e.ActiveEffects()))
			}

			if e.renderFrameLimit > 0 {
				elapsed := time.Since(lastRender)
				if remaining := e.renderFrameLimit - elapsed; remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

// handleQuit blocks until the quit channel is closed, then decrements the
// WaitGroup.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
}

// Render draws the scene at time t and runs the effect chain over it. This
// is the capture.Host entry point; the returned frame is reused between
// calls.
func (e *engine) Render(t float64) *common.Frame {
	w, h := e.Size()
	if w < 1 || h < 1 {
		return nil
	}
	if e.sceneFrame == nil || e.sceneFrame.Width != w || e.sceneFrame.Height != h {
		e.sceneFrame = common.NewFrame(w, h)
	}

	e.mu.Lock()
	bg := e.background
	bg.A = float32(e.clearAlpha)
	source := e.source
	sel := effects.Selection{
		ActiveIDs: append([]string(nil), e.selection.ActiveIDs...),
		Params:    e.selection.Params,
	}
	e.mu.Unlock()

	e.sceneFrame.Fill(bg)
	if source != nil {
		source.RenderFrame(e.sceneFrame, t)
	}
	e.lastFrame = e.compositor.Render(e.sceneFrame, t, sel)
	return e.lastFrame
}

// Size reports the render resolution: the surface size scaled by the pixel
// ratio.
func (e *engine) Size() (int, int) {
	e.mu.Lock()
	ratio := e.pixelRatio
	w, h := e.offscreenW, e.offscreenH
	e.mu.Unlock()
	if e.window != nil {
		w, h = e.window.Width(), e.window.Height()
	}
	return int(float64(w) * ratio), int(float64(h) * ratio)
}

func (e *engine) PixelRatio() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pixelRatio
}

func (e *engine) SetPixelRatio(r float64) {
	if r <= 0 {
		return
	}
	e.mu.Lock()
	e.pixelRatio = r
	e.mu.Unlock()
}

func (e *engine) ClearAlpha() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clearAlpha
}

func (e *engine) SetClearAlpha(a float64) {
	e.mu.Lock()
	e.clearAlpha = common.Clamp(a, 0, 1)
	e.mu.Unlock()
}

// EnableProfiler enables periodic frame statistics output.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables frame statistics output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the logic tick rate in ticks per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Second / time.Duration(fps)

	if e.running {
		// Non-blocking send - if the channel is full, replace the pending
		// value.
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		e.engineTickRate = newRate
	}
}

// SetTickCallback registers the function called each logic tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Second / time.Duration(fps)
}

func (e *engine) SetSource(source Source) {
	e.mu.Lock()
	e.source = source
	e.mu.Unlock()
}

func (e *engine) EnableEffect(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, active := range e.selection.ActiveIDs {
		if active == id {
			return
		}
	}
	e.selection.ActiveIDs = append(e.selection.ActiveIDs, id)
}

func (e *engine) DisableEffect(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, active := range e.selection.ActiveIDs {
		if active == id {
			e.selection.ActiveIDs = append(e.selection.ActiveIDs[:i], e.selection.ActiveIDs[i+1:]...)
			return
		}
	}
}

func (e *engine) SetEffectParams(id string, params effects.Params) {
	e.mu.Lock()
	defer e.mu.Unlock()
	// Replace the map so a concurrent render keeps a consistent snapshot.
	next := make(map[string]effects.Params, len(e.selection.Params)+1)
	for k, v := range e.selection.Params {
		next[k] = v
	}
	next[id] = params
	e.selection.Params = next
}

func (e *engine) ActiveEffects() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.selection.ActiveIDs...)
}

func (e *engine) SetBackground(c common.Color) {
	e.mu.Lock()
	e.background = c
	e.mu.Unlock()
}

func (e *engine) Background() common.Color {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.background
}

func (e *engine) Export(req capture.Request) error {
	return e.controller.Start(req)
}

func (e *engine) CancelExport() {
	e.controller.Cancel()
}

func (e *engine) ExportState() capture.State {
	return e.controller.State()
}

func (e *engine) ExportProgress() float64 {
	return e.controller.Progress()
}

func (e *engine) Clock() *loopclock.Clock {
	return e.clock
}
