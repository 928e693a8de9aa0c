// package encode turns assembled RGBA frames into a playable MP4 file: a
// software H.264 encode feeding an incremental fragmented-MP4 muxer. The
// encoder runs strictly after capture — frames are pushed in order, flushed,
// and closed; nothing here overlaps the render loop.
package encode

import (
	"errors"

	"github.com/loopforge/loopforge/common"
)

// ErrClosed is returned when frames are pushed after Close.
var ErrClosed = errors.New("encode: encoder closed")

// Config describes one encode run.
type Config struct {
	// Width and Height are the output dimensions in pixels.
	Width, Height int

	// FPS is the constant output frame rate.
	FPS int

	// BitrateKbps is the target bitrate. Zero selects a quality-driven
	// default.
	BitrateKbps int

	// KeyframeSeconds forces a sync sample at least this often. Zero
	// defaults to 2 seconds of output.
	KeyframeSeconds float64
}

// KeyframeFrames returns the keyframe interval in frames.
//
// Returns:
//   - int: frames between forced sync samples, at least 1
func (c Config) KeyframeFrames() int {
	secs := c.KeyframeSeconds
	if secs <= 0 {
		secs = 2
	}
	n := int(secs * float64(c.FPS))
	if n < 1 {
		n = 1
	}
	return n
}

// Encoder consumes frames in presentation order and produces a container
// stream. Encode never blocks on container writes; failures on the
// asynchronous mux path are stored and re-raised by Flush or Close, so
// resources are always torn down before the error surfaces.
type Encoder interface {
	// Encode submits the next frame. The frame must match the configured
	// dimensions.
	//
	// Parameters:
	//   - frame: the RGBA frame to encode
	//
	// Returns:
	//   - error: error if the frame is rejected
	Encode(frame *common.Frame) error

	// Flush drains any delayed encoder output into the container and
	// re-raises the first stored asynchronous error.
	//
	// Returns:
	//   - error: the first error captured on the mux path, if any
	Flush() error

	// Close finalizes the container and releases the encoder. Safe to call
	// after a failed Flush; it reports the stored error if one remains.
	//
	// Returns:
	//   - error: error if finalization fails
	Close() error
}

// Factory constructs an Encoder for a config over an output sink. The
// capture controller takes a Factory so tests can substitute a fake.
type Factory func(cfg Config, sink Sink) (Encoder, error)

// Sink receives the muxed container bytes.
type Sink interface {
	Write(p []byte) (int, error)
}
