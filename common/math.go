package common

import "math"

// Clamp01 clamps x to the [0, 1] range.
//
// Parameters:
//   - x: the value to clamp
//
// Returns:
//   - float32: x limited to [0, 1]
func Clamp01(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// Clamp clamps x to the [lo, hi] range.
//
// Parameters:
//   - x: the value to clamp
//   - lo: lower bound
//   - hi: upper bound
//
// Returns:
//   - float64: x limited to [lo, hi]
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Lerp linearly interpolates between a and b by t.
//
// Parameters:
//   - a: value at t = 0
//   - b: value at t = 1
//   - t: interpolation factor
//
// Returns:
//   - float64: the interpolated value
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Smoothstep performs the classic Hermite interpolation between two edges.
// Returns 0 for x <= edge0, 1 for x >= edge1, and a smooth ramp in between.
// Degenerate edges (edge1 <= edge0) collapse to a hard step at edge0.
//
// Parameters:
//   - edge0: lower edge
//   - edge1: upper edge
//   - x: the input value
//
// Returns:
//   - float64: the smoothed step value in [0, 1]
func Smoothstep(edge0, edge1, x float64) float64 {
	if edge1 <= edge0 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := Clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}

// Fract returns the positive fractional part of x, so the result is always
// in [0, 1) even for negative inputs. This matches GLSL fract semantics and
// keeps time-scrolled mask offsets continuous across zero.
//
// Parameters:
//   - x: the input value
//
// Returns:
//   - float64: x - floor(x)
func Fract(x float64) float64 {
	return x - math.Floor(x)
}

// Abs32 returns the absolute value of a float32.
//
// Parameters:
//   - x: the input value
//
// Returns:
//   - float32: |x|
func Abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
