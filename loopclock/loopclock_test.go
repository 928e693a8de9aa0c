package loopclock

import (
	"math"
	"testing"
)

func TestQuantizeAngularIdentityWithoutLoop(t *testing.T) {
	for _, freq := range []float64{0, 0.1, 1, 7.3, 1000} {
		if got := QuantizeAngular(freq, 0); got != freq {
			t.Errorf("QuantizeAngular(%v, 0) = %v, want identity", freq, got)
		}
		if got := QuantizeAngular(freq, -2); got != freq {
			t.Errorf("QuantizeAngular(%v, -2) = %v, want identity", freq, got)
		}
	}
}

func TestQuantizeLinearIdentityWithoutLoop(t *testing.T) {
	for _, freq := range []float64{0, 0.25, 3, 59.94} {
		if got := QuantizeLinear(freq, 0); got != freq {
			t.Errorf("QuantizeLinear(%v, 0) = %v, want identity", freq, got)
		}
	}
}

func TestQuantizeAngularClosure(t *testing.T) {
	// sin(0*q) must equal sin(loopDuration*q) for every quantized frequency.
	freqs := []float64{0.01, 0.5, 1, 2.2, 6.28, 13.7, 144}
	durations := []float64{0.5, 1, 2, 3.3, 10}
	for _, f := range freqs {
		for _, d := range durations {
			q := QuantizeAngular(f, d)
			start := math.Sin(0 * q)
			end := math.Sin(d * q)
			if math.Abs(start-end) > 1e-9 {
				t.Errorf("seam for f=%v d=%v: sin(0)=%v sin(d*q)=%v", f, d, start, end)
			}
			// Slope sign must match as well: cos(0) and cos(d*q) agree.
			if math.Abs(math.Cos(0*q)-math.Cos(d*q)) > 1e-9 {
				t.Errorf("slope mismatch for f=%v d=%v", f, d)
			}
		}
	}
}

func TestQuantizeLinearClosure(t *testing.T) {
	// The scrolled phase fract(t*q) must return to its start at t=loopDuration.
	for _, f := range []float64{0.1, 0.9, 1, 4.6} {
		for _, d := range []float64{1, 2, 5.5} {
			q := QuantizeLinear(f, d)
			phase := q * d
			if math.Abs(phase-math.Round(phase)) > 1e-9 {
				t.Errorf("f=%v d=%v: q*d=%v not a whole number of cycles", f, d, phase)
			}
		}
	}
}

func TestQuantizeMinimumOneCycle(t *testing.T) {
	// Tiny frequencies round up to one full cycle rather than freezing.
	if got := QuantizeAngular(0.001, 2); math.Abs(got-math.Pi) > 1e-12 {
		t.Errorf("QuantizeAngular(0.001, 2) = %v, want one cycle (π)", got)
	}
	if got := QuantizeLinear(0.001, 2); got != 0.5 {
		t.Errorf("QuantizeLinear(0.001, 2) = %v, want 0.5", got)
	}
}

func TestQuantizedPeriodDividesDuration(t *testing.T) {
	// While a duration is set, every quantized frequency's period divides it
	// an integer number of times.
	d := 4.0
	for _, f := range []float64{0.3, 1.7, 9.9} {
		q := QuantizeLinear(f, d)
		period := 1 / q
		n := d / period
		if math.Abs(n-math.Round(n)) > 1e-9 {
			t.Errorf("period %v does not divide duration %v (n=%v)", period, d, n)
		}
	}
}

func TestClockAmbientDuration(t *testing.T) {
	c := NewClock()
	if c.Active() {
		t.Fatal("new clock should have no active loop")
	}
	if got := c.QuantizeAngular(3.3); got != 3.3 {
		t.Errorf("inactive clock must quantize to identity, got %v", got)
	}

	c.Set(2)
	if !c.Active() || c.Duration() != 2 {
		t.Fatalf("Set(2): Active=%v Duration=%v", c.Active(), c.Duration())
	}
	if got, want := c.QuantizeLinear(1.2), QuantizeLinear(1.2, 2); got != want {
		t.Errorf("clock quantize = %v, want %v", got, want)
	}

	c.Clear()
	if c.Active() {
		t.Error("Clear should deactivate the loop")
	}

	c.Set(-1)
	if c.Active() {
		t.Error("negative durations must clear, not activate")
	}
}
