// package capture records a seamless loop from a live host surface and
// exports it as an MP4 file. A capture run walks a fixed state machine:
// warm-up on a virtual clock, deterministic frame grab, loop assembly, and
// encode, with an unconditional teardown that restores the host no matter
// how the run ends.
package capture

import (
	"errors"
	"fmt"

	"github.com/loopforge/loopforge/common"
)

var (
	// ErrBusy is returned by Start while a capture run is in flight.
	ErrBusy = errors.New("capture: a run is already in progress")

	// ErrNoSurface is returned by Start when the host has no drawable
	// surface to read from.
	ErrNoSurface = errors.New("capture: host surface unavailable")

	// ErrCanceled reports a run torn down by Cancel.
	ErrCanceled = errors.New("capture: run canceled")

	// ErrInvalidRequest is returned by Start for negative dimensions,
	// frame rates, or durations.
	ErrInvalidRequest = errors.New("capture: invalid request")
)

// LoopMode selects how captured frames are assembled into a seamless loop.
type LoopMode int

const (
	// LoopModeLoop captures past the nominal end and cross-fades the
	// overlap over the start of the sequence.
	LoopModeLoop LoopMode = iota

	// LoopModePingPong captures roughly half the frames and plays them
	// forward then backward, skipping the repeated endpoints.
	LoopModePingPong
)

// String returns the wire name of the mode.
func (m LoopMode) String() string {
	if m == LoopModePingPong {
		return "pingpong"
	}
	return "loop"
}

// State identifies where a capture run currently is.
type State int

const (
	// StateIdle means no run is active.
	StateIdle State = iota

	// StateWarmingUp means the scene is being advanced on the virtual
	// clock so history-carrying effects settle before recording.
	StateWarmingUp

	// StateCapturing means frames are being recorded on the fixed grid.
	StateCapturing

	// StateAssembling means captured frames are being folded into a
	// seamless sequence.
	StateAssembling

	// StateEncoding means the assembled sequence is being written out.
	StateEncoding

	// StateFailed is the transient error state; teardown returns the
	// controller to StateIdle.
	StateFailed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateWarmingUp:
		return "warming-up"
	case StateCapturing:
		return "capturing"
	case StateAssembling:
		return "assembling"
	case StateEncoding:
		return "encoding"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Request describes one export.
type Request struct {
	// Width and Height are the output dimensions. Zero values default to
	// the host surface size.
	Width, Height int

	// FPS is the output frame rate. Zero defaults to 30.
	FPS int

	// DurationSeconds is the loop length. Zero defaults to 2 seconds.
	DurationSeconds float64

	// Mode selects loop or ping-pong assembly.
	Mode LoopMode

	// BlendSeconds is the cross-fade window for LoopModeLoop. It is
	// clamped to half the duration and ignored for ping-pong.
	BlendSeconds float64

	// BitrateKbps is passed through to the encoder. Zero lets the encoder
	// pick.
	BitrateKbps int

	// Background overrides the host clear color for the run. A zero alpha
	// keeps the host's current background.
	Background common.Color
}

// Host is the live surface a capture run drives. The controller saves the
// mutable host settings on Start and restores them on teardown.
type Host interface {
	// Render draws the scene at virtual time t and returns the frame. The
	// returned frame is owned by the host and only valid until the next
	// Render call.
	Render(t float64) *common.Frame

	// Size returns the current surface size in pixels.
	Size() (width, height int)

	// PixelRatio returns the device pixel ratio applied to rendering.
	PixelRatio() float64

	// SetPixelRatio overrides the device pixel ratio.
	SetPixelRatio(r float64)

	// ClearAlpha returns the background alpha the host clears with.
	ClearAlpha() float64

	// SetClearAlpha overrides the background alpha.
	SetClearAlpha(a float64)

	// Background returns the scene clear color.
	Background() common.Color

	// SetBackground overrides the scene clear color.
	SetBackground(c common.Color)
}

// Result summarizes a finished export.
type Result struct {
	// Path is the written container file.
	Path string

	// Frames is the number of frames in the final sequence.
	Frames int
}

// SuggestedFilename names the output file after the request.
//
// Parameters:
//   - req: the capture request, after defaults are applied
//
// Returns:
//   - string: a filename like "loop_pingpong_512x512_2s.mp4"
func SuggestedFilename(req Request) string {
	return fmt.Sprintf("loop_%s_%dx%d_%gs.mp4",
		req.Mode, req.Width, req.Height, req.DurationSeconds)
}
