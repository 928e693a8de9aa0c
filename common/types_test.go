package common

import (
	"math"
	"testing"
)

func TestFrameColorRoundTrip(t *testing.T) {
	f := NewFrame(4, 4)
	in := Color{R: 0.25, G: 0.5, B: 0.75, A: 1}
	f.SetColorAt(2, 1, in)
	out := f.ColorAt(2, 1)
	// One byte of quantization each way.
	const tol = 1.0 / 255
	if math.Abs(float64(out.R-in.R)) > tol ||
		math.Abs(float64(out.G-in.G)) > tol ||
		math.Abs(float64(out.B-in.B)) > tol {
		t.Errorf("round trip %v -> %v", in, out)
	}
}

func TestFrameCloneIsIndependent(t *testing.T) {
	f := NewFrame(2, 2)
	f.Fill(Color{R: 1, A: 1})
	cp := f.Clone()
	cp.Fill(Color{G: 1, A: 1})
	if f.ColorAt(0, 0).G != 0 {
		t.Error("mutating the clone changed the original")
	}
}

func TestFrameCopyFromSizeMismatch(t *testing.T) {
	dst := NewFrame(4, 4)
	if err := dst.CopyFrom(NewFrame(4, 2)); err == nil {
		t.Error("size mismatch must be rejected")
	}
	if err := dst.CopyFrom(NewFrame(4, 4)); err != nil {
		t.Errorf("matching sizes rejected: %v", err)
	}
}

func TestNewFramePanicsOnBadSize(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("non-positive dimensions must panic")
		}
	}()
	NewFrame(0, 4)
}

func TestLuminanceWeights(t *testing.T) {
	cases := []struct {
		c    Color
		want float32
	}{
		{Color{R: 1, G: 1, B: 1, A: 1}, 1},
		{Color{A: 1}, 0},
		{Color{R: 1, A: 1}, 0.299},
		{Color{G: 1, A: 1}, 0.587},
		{Color{B: 1, A: 1}, 0.114},
	}
	for _, tc := range cases {
		if got := tc.c.Luminance(); Abs32(got-tc.want) > 1e-6 {
			t.Errorf("Luminance(%v) = %v, want %v", tc.c, got, tc.want)
		}
	}
}

func TestCoalesce(t *testing.T) {
	if got := Coalesce(0, 0, 7, 9); got != 7 {
		t.Errorf("Coalesce ints = %d, want 7", got)
	}
	if got := Coalesce("", "fallback"); got != "fallback" {
		t.Errorf("Coalesce strings = %q", got)
	}
	if got := Coalesce(0, 0); got != 0 {
		t.Errorf("all-zero Coalesce = %d, want 0", got)
	}
}
