package effects

// PumpUniforms pushes this frame's clock into every resolved stage. Stages
// implementing TimeSink receive the current time and the ambient loop
// duration (0 when no loop is active). Stages implementing ParamSink
// additionally receive their full live parameter record, so continuous
// fields track mid-drag slider state without invalidating the cache.
// Stages implementing neither are skipped; a missing input is never an error.
//
// Parameters:
//   - stages: the resolved pipeline stages in order
//   - t: current animation time in seconds
//   - loopDuration: active loop duration in seconds, 0 meaning "no loop"
//   - params: identifier to parameter record mapping (live UI state)
func PumpUniforms(stages []Stage, t, loopDuration float64, params map[string]Params) {
	for _, st := range stages {
		if ts, ok := st.Instance.(TimeSink); ok {
			ts.SetTime(t, loopDuration)
		}
		if ps, ok := st.Instance.(ParamSink); ok {
			ps.SetParams(params[st.ID])
		}
	}
}
