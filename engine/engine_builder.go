package engine

import (
	"time"

	"github.com/loopforge/loopforge/capture"
	"github.com/loopforge/loopforge/common"
	"github.com/loopforge/loopforge/effects"
	"github.com/loopforge/loopforge/effects/builtin"
	"github.com/loopforge/loopforge/engine/profiler"
	"github.com/loopforge/loopforge/engine/window"
	"github.com/loopforge/loopforge/loopclock"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to
// the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables frame statistics output.
//
// Parameters:
//   - enabled: if true, enables profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithTickRate sets the logic tick rate in ticks per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.engineTickRate = time.Second / time.Duration(fps)
	}
}

// WithWindow sets a custom configured window for the engine to present on.
// Without a window the engine runs offscreen.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithOffscreenSize sets the render resolution used when no window is
// attached.
//
// Parameters:
//   - width: offscreen surface width in pixels
//   - height: offscreen surface height in pixels
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithOffscreenSize(width, height int) EngineBuilderOption {
	return func(e *engine) {
		e.offscreenW = width
		e.offscreenH = height
	}
}

// WithSource sets the scene source rendered under the effect chain.
//
// Parameters:
//   - source: the scene source
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSource(source Source) EngineBuilderOption {
	return func(e *engine) {
		e.source = source
	}
}

// WithTable replaces the effect table. Defaults to the built-in effect set.
//
// Parameters:
//   - table: the effect descriptor table
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTable(table *effects.Table) EngineBuilderOption {
	return func(e *engine) {
		e.table = table
	}
}

// WithBackground sets the clear color behind the scene.
//
// Parameters:
//   - c: the background color
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithBackground(c common.Color) EngineBuilderOption {
	return func(e *engine) {
		e.background = c
	}
}

// WithCompositorOptions forwards options to the effect compositor.
//
// Parameters:
//   - options: compositor options to apply
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCompositorOptions(options ...effects.CompositorOption) EngineBuilderOption {
	return func(e *engine) {
		e.compositorOpts = append(e.compositorOpts, options...)
	}
}

// WithCaptureOptions forwards options to the capture controller.
//
// Parameters:
//   - options: capture controller options to apply
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCaptureOptions(options ...capture.ControllerOption) EngineBuilderOption {
	return func(e *engine) {
		e.captureOpts = append(e.captureOpts, options...)
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per
// second. Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Second / time.Duration(fps)
	}
}

// NewEngine creates a new Engine instance with the provided options.
// Initializes the loop clock, compositor, and capture controller with
// sensible defaults. Options are applied directly to the engine struct via
// the option-builder pattern.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		profiler:        profiler.NewProfiler(),
		engineTickRate:  time.Second / 60,
		clock:           loopclock.NewClock(),
		pixelRatio:      1,
		clearAlpha:      1,
		background:      common.Color{R: 0.05, G: 0.05, B: 0.08, A: 1},
		offscreenW:      1280,
		offscreenH:      720,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.table == nil {
		e.table = builtin.DefaultTable()
	}
	e.compositor = effects.NewCompositor(e.table, e.clock, e.compositorOpts...)
	e.controller = capture.NewController(e, e.clock, e.captureOpts...)

	return e
}
