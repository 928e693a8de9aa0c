// package loopclock provides the process-wide optional loop duration and the
// frequency quantizer that closes every periodic animation driver into a
// seamless loop of that duration.
//
// The duration is ambient: readable from anywhere, written only by the capture
// controller at export start (set) and export end (cleared). While a duration
// is active, every frequency passed through the quantizer completes a whole
// number of cycles within it, so a driver's value and slope sign at t=0 and
// t=duration match exactly and replay shows no seam. For the loop closure to
// hold visually, every periodic driver in the process must pass through the
// quantizer: scene-graph motion and shader time terms alike. One unquantized
// driver loops out of phase with the rest.
package loopclock

import (
	"math"
	"sync"
)

// Clock holds the ambient loop duration. The zero value is a valid clock with
// no active loop.
type Clock struct {
	mu       sync.RWMutex
	duration float64
}

// NewClock creates a Clock with no active loop duration.
//
// Returns:
//   - *Clock: the newly created clock
func NewClock() *Clock {
	return &Clock{}
}

// Set activates a loop duration in seconds. Values <= 0 clear the loop.
//
// Parameters:
//   - seconds: the target loop duration
func (c *Clock) Set(seconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seconds <= 0 {
		c.duration = 0
		return
	}
	c.duration = seconds
}

// Clear deactivates the loop duration.
func (c *Clock) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.duration = 0
}

// Duration returns the active loop duration in seconds, or 0 if none is set.
//
// Returns:
//   - float64: the loop duration, 0 meaning "no loop"
func (c *Clock) Duration() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.duration
}

// Active reports whether a loop duration is currently set.
//
// Returns:
//   - bool: true if a positive loop duration is active
func (c *Clock) Active() bool {
	return c.Duration() > 0
}

// QuantizeAngular adjusts an angular frequency (radians per second) so that
// it completes a whole number of cycles within loopDuration. With no active
// loop (loopDuration <= 0) the frequency is returned unchanged.
//
// The adjusted frequency is the nearest whole-cycle rate, never less than one
// full cycle: cycles = max(1, round(freq*loopDuration/2π)). For any freq > 0
// and loopDuration > 0, sin(t*q) at t=0 and t=loopDuration match in value and
// slope sign, where q is the quantized frequency.
//
// Parameters:
//   - freq: angular frequency in radians per second
//   - loopDuration: target loop duration in seconds (<= 0 means no loop)
//
// Returns:
//   - float64: the quantized angular frequency
func QuantizeAngular(freq, loopDuration float64) float64 {
	if loopDuration <= 0 {
		return freq
	}
	cycles := math.Round(freq * loopDuration / (2 * math.Pi))
	if cycles < 1 {
		cycles = 1
	}
	return 2 * math.Pi * cycles / loopDuration
}

// QuantizeLinear adjusts a linear rate (cycles or scroll units per second) so
// that it advances a whole number of units within loopDuration. With no
// active loop (loopDuration <= 0) the rate is returned unchanged.
//
// cycles = max(1, round(freq*loopDuration)); the result is cycles/loopDuration.
//
// Parameters:
//   - freq: linear rate in cycles per second
//   - loopDuration: target loop duration in seconds (<= 0 means no loop)
//
// Returns:
//   - float64: the quantized linear rate
func QuantizeLinear(freq, loopDuration float64) float64 {
	if loopDuration <= 0 {
		return freq
	}
	cycles := math.Round(freq * loopDuration)
	if cycles < 1 {
		cycles = 1
	}
	return cycles / loopDuration
}

// QuantizeAngular quantizes an angular frequency against the clock's current
// loop duration. Identity when no loop is active.
//
// Parameters:
//   - freq: angular frequency in radians per second
//
// Returns:
//   - float64: the quantized angular frequency
func (c *Clock) QuantizeAngular(freq float64) float64 {
	return QuantizeAngular(freq, c.Duration())
}

// QuantizeLinear quantizes a linear rate against the clock's current loop
// duration. Identity when no loop is active.
//
// Parameters:
//   - freq: linear rate in cycles per second
//
// Returns:
//   - float64: the quantized linear rate
func (c *Clock) QuantizeLinear(freq float64) float64 {
	return QuantizeLinear(freq, c.Duration())
}
