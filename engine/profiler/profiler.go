package profiler

import (
	"runtime"
	"time"

	"github.com/loopforge/loopforge"
)

// Profiler tracks render frame rate and memory churn and reports them
// through the package logger at a fixed interval.
type Profiler struct {
	frameCount     int
	stageSum       int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastTotalAlloc uint64
}

// NewProfiler creates a Profiler reporting once per second.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
}

// SetInterval changes how often stats are reported.
//
// Parameters:
//   - interval: time between reports; values <= 0 keep the current interval
func (p *Profiler) SetInterval(interval time.Duration) {
	if interval > 0 {
		p.updateInterval = interval
	}
}

// Tick records one rendered frame and the number of effect stages it ran.
// Emits a report when the interval has elapsed.
//
// Parameters:
//   - stages: effect stages composited this frame
//
// Returns:
//   - bool: true if stats were reported this tick
func (p *Profiler) Tick(stages int) bool {
	p.frameCount++
	p.stageSum += stages
	now := time.Now()
	elapsed := now.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()
	avgStages := float64(p.stageSum) / float64(p.frameCount)

	runtime.ReadMemStats(&p.memStats)
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	loopforge.Logger().Debug("frame stats",
		"fps", fps,
		"stages", avgStages,
		"heapMB", float64(p.memStats.Alloc)/1024/1024,
		"allocMBps", float64(allocDelta)/1024/1024/elapsed.Seconds(),
		"gc", p.memStats.NumGC,
	)

	p.frameCount = 0
	p.stageSum = 0
	p.lastTime = now
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
