package effects

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/loopforge/loopforge/common"
	"github.com/loopforge/loopforge/loopclock"
)

// compositor is the implementation of the Compositor interface.
type compositor struct {
	table *Table
	clock *loopclock.Clock
	cache *Cache

	// rowPool manages a bounded set of reusable goroutines for the parallel
	// per-row span of pure pixel effects. Workers persist across frames,
	// avoiding per-frame goroutine spawn/teardown overhead.
	rowPool worker.DynamicWorkerPool
	workers int

	// scratchA/scratchB alternate as stage outputs so each stage reads one
	// frame and writes the other. Reallocated when the scene size changes.
	scratchA, scratchB *common.Frame
}

// Compositor chains the active effect stages over a scene frame each tick.
// It owns the instance cache and the worker pool; shared state is mutated
// only on the render tick, so the single-threaded frame model needs no locks
// around frame data.
type Compositor interface {
	// Render composites the active effects over the scene frame at time t.
	// The selection is read once; identifier order in it carries no meaning.
	// The returned frame is owned by the compositor and valid until the next
	// Render call (it may alias the scene frame when no stage is active).
	//
	// Parameters:
	//   - scene: the freshly rendered scene frame
	//   - t: current animation time in seconds
	//   - sel: the operator's effect selection
	//
	// Returns:
	//   - *common.Frame: the fully composited frame
	Render(scene *common.Frame, t float64, sel Selection) *common.Frame

	// Cache exposes the instance cache, primarily for inspection.
	//
	// Returns:
	//   - *Cache: the compositor's instance cache
	Cache() *Cache

	// Close releases every cached effect instance and their buffers.
	Close()
}

var _ Compositor = &compositor{}

// CompositorOption is a functional option for configuring a Compositor.
type CompositorOption func(*compositor)

// WithRowWorkers sets the worker count for the parallel per-row effect span.
// Values <= 0 fall back to runtime.NumCPU().
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - CompositorOption: option function to apply
func WithRowWorkers(n int) CompositorOption {
	return func(c *compositor) {
		if n > 0 {
			c.workers = n
		}
	}
}

// NewCompositor creates a Compositor over the given descriptor table and
// loop clock. Both are required and NewCompositor panics if either is nil.
//
// Parameters:
//   - table: the immutable effect descriptor table
//   - clock: the ambient loop clock
//   - options: functional options to further configure the compositor
//
// Returns:
//   - Compositor: the newly created compositor
func NewCompositor(table *Table, clock *loopclock.Clock, options ...CompositorOption) Compositor {
	if table == nil {
		panic("effects: NewCompositor requires a non-nil Table")
	}
	if clock == nil {
		panic("effects: NewCompositor requires a non-nil Clock")
	}
	c := &compositor{
		table:   table,
		clock:   clock,
		cache:   NewCache(),
		workers: runtime.NumCPU(),
	}
	for _, opt := range options {
		opt(c)
	}
	// Queue size of 256 accommodates the row spans of a full pipeline with
	// headroom. Idle workers exit after a second away from the render loop.
	c.rowPool = worker.NewDynamicWorkerPool(c.workers, 256, 1*time.Second)
	return c
}

func (c *compositor) Cache() *Cache {
	return c.cache
}

func (c *compositor) Render(scene *common.Frame, t float64, sel Selection) *common.Frame {
	ordered := SortByTier(sel.ActiveIDs, c.table)
	stages := c.cache.Resolve(ordered, sel.Params, c.table)
	PumpUniforms(stages, t, c.clock.Duration(), sel.Params)

	if len(stages) == 0 {
		return scene
	}

	c.ensureScratch(scene.Width, scene.Height)

	cur := scene
	for _, st := range stages {
		dst := c.scratchA
		if cur == c.scratchA {
			dst = c.scratchB
		}
		c.applyStage(st.Instance, cur, dst)
		cur = dst

		if st.stateless {
			st.Instance.Release()
		}
	}
	return cur
}

func (c *compositor) Close() {
	c.cache.Close()
	c.scratchA = nil
	c.scratchB = nil
}

// ensureScratch resizes the stage ping-pong frames to the scene size.
func (c *compositor) ensureScratch(width, height int) {
	if c.scratchA == nil || c.scratchA.Width != width || c.scratchA.Height != height {
		c.scratchA = common.NewFrame(width, height)
		c.scratchB = common.NewFrame(width, height)
	}
}

// applyStage runs one stage, splitting pure per-row effects across the
// worker pool and running everything else inline.
func (c *compositor) applyStage(inst Instance, src, dst *common.Frame) {
	ra, ok := inst.(RowApplier)
	if !ok || c.workers <= 1 || src.Height < c.workers {
		inst.Apply(src, dst)
		return
	}

	span := (src.Height + c.workers - 1) / c.workers
	var wg sync.WaitGroup
	taskID := 0
	for y := 0; y < src.Height; y += span {
		y0, y1 := y, y+span
		if y1 > src.Height {
			y1 = src.Height
		}
		wg.Add(1)
		id := taskID
		taskID++
		c.rowPool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				ra.ApplyRows(src, dst, y0, y1)
				return nil, nil
			},
		})
	}
	wg.Wait()
}
