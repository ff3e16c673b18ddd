// Package bake produces the textures the sky, aerial-perspective and cloud
// models read: transmittance and multi-scattering LUTs, the sky-view LUT, the
// aerial-perspective volume, cloud noise and weather, and rendered frames.
// Passes run data-parallel over a shared worker pool and are ordered by a
// dependency graph.
package bake

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// queueSize bounds tasks waiting for a worker. Submission blocks once it is full.
const queueSize = 256

// Dispatcher runs index-space dispatches on a reusable worker pool.
type Dispatcher struct {
	pool    worker.DynamicWorkerPool
	workers int
	nextID  atomic.Int64
}

// NewDispatcher starts a pool of workers; workers <= 0 uses every CPU.
func NewDispatcher(workers int) *Dispatcher {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Dispatcher{
		pool:    worker.NewDynamicWorkerPool(workers, queueSize, 1*time.Second),
		workers: workers,
	}
}

// Workers returns the pool size.
func (d *Dispatcher) Workers() int {
	return d.workers
}

// Rows calls fn(i) for every i in [0, n) on the pool and returns once all
// submitted calls have finished. Once ctx is done no further indices are
// submitted and ctx.Err() is returned.
func (d *Dispatcher) Rows(ctx context.Context, n int, fn func(i int)) error {
	// pool.Wait only returns after workers idle out, so each dispatch carries
	// its own barrier.
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		row := i
		d.pool.SubmitTask(worker.Task{
			ID: int(d.nextID.Add(1)),
			Do: func() (any, error) {
				defer wg.Done()
				fn(row)
				return nil, nil
			},
		})
	}
	wg.Wait()
	return ctx.Err()
}
