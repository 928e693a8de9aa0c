// package common contains common types that are used throughout this project. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import "fmt"

// Frame is a CPU-side RGBA pixel buffer, 4 bytes per pixel in row-major order.
// It is the unit of exchange between the scene source, every effect stage,
// the preview presenter and the capture pipeline.
type Frame struct {
	// Pix is the raw pixel data, len == Width*Height*4.
	Pix []byte
	// Width is the frame width in pixels.
	Width int
	// Height is the frame height in pixels.
	Height int
}

// NewFrame allocates a zeroed (transparent black) frame of the given size.
// Panics if either dimension is not positive.
//
// Parameters:
//   - width: frame width in pixels
//   - height: frame height in pixels
//
// Returns:
//   - *Frame: the newly allocated frame
func NewFrame(width, height int) *Frame {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("common: NewFrame requires positive dimensions, got %dx%d", width, height))
	}
	return &Frame{
		Pix:    make([]byte, width*height*4),
		Width:  width,
		Height: height,
	}
}

// Clone returns a deep copy of the frame.
//
// Returns:
//   - *Frame: a new frame with its own copy of the pixel data
func (f *Frame) Clone() *Frame {
	cp := NewFrame(f.Width, f.Height)
	copy(cp.Pix, f.Pix)
	return cp
}

// CopyFrom copies src's pixels into f. Both frames must be the same size.
//
// Parameters:
//   - src: the frame to copy from
//
// Returns:
//   - error: error if the dimensions differ
func (f *Frame) CopyFrom(src *Frame) error {
	if f.Width != src.Width || f.Height != src.Height {
		return fmt.Errorf("frame size mismatch: %dx%d vs %dx%d", f.Width, f.Height, src.Width, src.Height)
	}
	copy(f.Pix, src.Pix)
	return nil
}

// Fill sets every pixel of the frame to the given color.
//
// Parameters:
//   - c: the fill color
func (f *Frame) Fill(c Color) {
	r, g, b, a := c.RGBA8()
	for i := 0; i < len(f.Pix); i += 4 {
		f.Pix[i+0] = r
		f.Pix[i+1] = g
		f.Pix[i+2] = b
		f.Pix[i+3] = a
	}
}

// ColorAt reads the pixel at (x, y) as a normalized Color.
// The caller is responsible for bounds; out-of-range coordinates panic.
//
// Parameters:
//   - x: pixel column
//   - y: pixel row
//
// Returns:
//   - Color: the pixel color with channels in [0, 1]
func (f *Frame) ColorAt(x, y int) Color {
	i := (y*f.Width + x) * 4
	return Color{
		R: float32(f.Pix[i+0]) / 255,
		G: float32(f.Pix[i+1]) / 255,
		B: float32(f.Pix[i+2]) / 255,
		A: float32(f.Pix[i+3]) / 255,
	}
}

// SetColorAt writes a normalized Color to the pixel at (x, y), clamping each
// channel to [0, 1] before quantizing to 8 bits.
//
// Parameters:
//   - x: pixel column
//   - y: pixel row
//   - c: the color to write
func (f *Frame) SetColorAt(x, y int, c Color) {
	i := (y*f.Width + x) * 4
	r, g, b, a := c.RGBA8()
	f.Pix[i+0] = r
	f.Pix[i+1] = g
	f.Pix[i+2] = b
	f.Pix[i+3] = a
}

// Color is an RGBA color with float32 channels, nominally in [0, 1].
// Intermediate effect math may take channels outside that range; values are
// clamped when written back to a Frame.
type Color struct {
	R, G, B, A float32
}

// RGBA8 quantizes the color to 8-bit channels, clamping to [0, 1] first.
//
// Returns:
//   - byte: red channel
//   - byte: green channel
//   - byte: blue channel
//   - byte: alpha channel
func (c Color) RGBA8() (byte, byte, byte, byte) {
	return byte(Clamp01(c.R)*255 + 0.5),
		byte(Clamp01(c.G)*255 + 0.5),
		byte(Clamp01(c.B)*255 + 0.5),
		byte(Clamp01(c.A)*255 + 0.5)
}

// LerpColor linearly interpolates between colors a and b by t in [0, 1].
//
// Parameters:
//   - a: color at t = 0
//   - b: color at t = 1
//   - t: interpolation factor
//
// Returns:
//   - Color: the interpolated color
func LerpColor(a, b Color, t float32) Color {
	return Color{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
		A: a.A + (b.A-a.A)*t,
	}
}

// Luminance returns the Rec. 601 luma of the color.
//
// Returns:
//   - float32: perceptual brightness in [0, 1] for in-range colors
func (c Color) Luminance() float32 {
	return 0.299*c.R + 0.587*c.G + 0.114*c.B
}
