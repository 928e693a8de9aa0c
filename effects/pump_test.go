package effects

import "testing"

type fakeTimeSink struct {
	fakeInstance
	t, loop float64
	calls   int
}

func (f *fakeTimeSink) SetTime(t, loopDuration float64) {
	f.t = t
	f.loop = loopDuration
	f.calls++
}

type fakeParamSink struct {
	fakeInstance
	got Params
}

func (f *fakeParamSink) SetParams(p Params) { f.got = p }

func TestPumpUniformsPushesTime(t *testing.T) {
	ts := &fakeTimeSink{}
	stages := []Stage{{ID: "a", Instance: ts}}

	PumpUniforms(stages, 1.5, 4, nil)
	if ts.t != 1.5 || ts.loop != 4 || ts.calls != 1 {
		t.Errorf("SetTime got (%v, %v) x%d, want (1.5, 4) x1", ts.t, ts.loop, ts.calls)
	}

	// No active loop: the sentinel is 0.
	PumpUniforms(stages, 2, 0, nil)
	if ts.loop != 0 {
		t.Errorf("no-loop sentinel = %v, want 0", ts.loop)
	}
}

func TestPumpUniformsPushesLiveParams(t *testing.T) {
	ps := &fakeParamSink{}
	params := map[string]Params{"special": {"lightX": 0.7}}
	PumpUniforms([]Stage{{ID: "special", Instance: ps}}, 0, 0, params)
	if ps.got.Float("lightX", 0) != 0.7 {
		t.Errorf("ParamSink got %v, want live record", ps.got)
	}
}

func TestPumpUniformsSkipsPlainInstances(t *testing.T) {
	plain := &fakeInstance{}
	// Must not panic or error: missing inputs are silently skipped.
	PumpUniforms([]Stage{{ID: "plain", Instance: plain}}, 1, 2, nil)
}

var _ Instance = &fakeTimeSink{}
