package capture

import (
	"github.com/loopforge/loopforge/capture/encode"
	"github.com/loopforge/loopforge/loopclock"
)

// ControllerOption is a functional option for configuring a controller.
// Use the With* functions to create options.
type ControllerOption func(c *controller)

// WithEncoderFactory overrides the encoder construction. The default is the
// MP4/H.264 encoder; tests substitute fakes here.
//
// Parameters:
//   - factory: the factory to build encoders with
//
// Returns:
//   - ControllerOption: option function to apply
func WithEncoderFactory(factory encode.Factory) ControllerOption {
	return func(c *controller) {
		c.newEncoder = factory
	}
}

// WithOutputDir sets the directory exported files are written into.
// Defaults to the current working directory.
//
// Parameters:
//   - dir: destination directory, must already exist
//
// Returns:
//   - ControllerOption: option function to apply
func WithOutputDir(dir string) ControllerOption {
	return func(c *controller) {
		c.outputDir = dir
	}
}

// WithProgressFunc sets an observer for progress updates. Called on the
// goroutine driving the controller.
//
// Parameters:
//   - fn: receives the progress fraction in [0,1]
//
// Returns:
//   - ControllerOption: option function to apply
func WithProgressFunc(fn func(progress float64)) ControllerOption {
	return func(c *controller) {
		c.onProgress = fn
	}
}

// WithCompletionFunc sets an observer for run completion, successful or
// not. Called on the goroutine driving the controller, after teardown.
//
// Parameters:
//   - fn: receives the result and the terminal error, if any
//
// Returns:
//   - ControllerOption: option function to apply
func WithCompletionFunc(fn func(res Result, err error)) ControllerOption {
	return func(c *controller) {
		c.onDone = fn
	}
}

// NewController creates a capture Controller bound to a host surface and
// the shared loop clock.
//
// Parameters:
//   - host: the surface to record from; must not be nil
//   - clock: the ambient loop clock set during runs; must not be nil
//   - options: functional options to configure the controller
//
// Returns:
//   - Controller: the configured controller, in StateIdle
func NewController(host Host, clock *loopclock.Clock, options ...ControllerOption) Controller {
	if host == nil {
		panic("host is required")
	}
	if clock == nil {
		panic("loop clock is required")
	}
	c := &controller{
		host:       host,
		clock:      clock,
		newEncoder: encode.NewH264Encoder,
		outputDir:  ".",
		state:      StateIdle,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}
