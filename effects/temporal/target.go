// package temporal implements the multi-pass effects whose output depends on
// a persisted prior-frame buffer: trail feedback and god rays. Each effect
// owns a ping-pong TargetPair — two equal-size surfaces swapping read/write
// roles every frame — and the shared seed state machine that protects the
// first frame after a resolution change from showing stale or black content.
package temporal

import "github.com/loopforge/loopforge/common"

// SeedState tracks a target pair through its lifecycle.
type SeedState int

const (
	// Uninitialized means the pair holds no usable content; the next use
	// must seed it from the current frame.
	Uninitialized SeedState = iota
	// Seeded means both halves hold a copy of the seed frame.
	Seeded
	// Running means the pair is accumulating frame-over-frame state.
	Running
)

// TargetPair is a pair of equal-size frames alternating read/write roles
// across frames. A size change drops the pair back to Uninitialized, forcing
// a one-time reseed instead of stretching stale content.
type TargetPair struct {
	read, write *common.Frame
	state       SeedState
}

// NewTargetPair creates an empty, uninitialized pair. Buffers are allocated
// on the first Ensure call.
//
// Returns:
//   - *TargetPair: the newly created pair
func NewTargetPair() *TargetPair {
	return &TargetPair{}
}

// Ensure makes the pair match the given size, reallocating both halves when
// the stored size differs from the current one. Detecting the resolution
// change here, every frame, resolves mid-session resizes without throwing.
//
// Parameters:
//   - width: required width in pixels
//   - height: required height in pixels
//
// Returns:
//   - bool: true if the pair was (re)allocated and must be reseeded
func (tp *TargetPair) Ensure(width, height int) bool {
	if tp.read != nil && tp.read.Width == width && tp.read.Height == height {
		return false
	}
	tp.read = common.NewFrame(width, height)
	tp.write = common.NewFrame(width, height)
	tp.state = Uninitialized
	return true
}

// Seed copies the given frame into both halves and marks the pair Seeded.
// Seeding both halves means the first Running frame reads real content
// whichever half the swap lands on.
//
// Parameters:
//   - src: the frame to seed from (must match the pair size)
func (tp *TargetPair) Seed(src *common.Frame) {
	_ = tp.read.CopyFrom(src)
	_ = tp.write.CopyFrom(src)
	tp.state = Seeded
}

// Read returns the frame holding the previous accumulation.
//
// Returns:
//   - *common.Frame: the current read half
func (tp *TargetPair) Read() *common.Frame {
	return tp.read
}

// Write returns the frame to render this frame's accumulation into.
//
// Returns:
//   - *common.Frame: the current write half
func (tp *TargetPair) Write() *common.Frame {
	return tp.write
}

// Swap exchanges the read/write roles and marks the pair Running.
func (tp *TargetPair) Swap() {
	tp.read, tp.write = tp.write, tp.read
	tp.state = Running
}

// State returns the pair's seed state.
//
// Returns:
//   - SeedState: the current state
func (tp *TargetPair) State() SeedState {
	return tp.state
}

// Release drops both halves. The pair returns to Uninitialized and may be
// reused after another Ensure.
func (tp *TargetPair) Release() {
	tp.read = nil
	tp.write = nil
	tp.state = Uninitialized
}
