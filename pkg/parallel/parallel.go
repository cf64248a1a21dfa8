// Package parallel provides the scheduling policy used by the chunk
// containers: a fixed pool of workers plus nesting detection.
//
// Statevector operations run in one of two modes. When a caller invokes an
// operation from ordinary (non-parallel) code, the operation partitions its
// range across the pool and runs with internal parallelism. When the caller
// is itself a worker inside an engine region (the execution driver typically
// opens one region per simulated chunk), the operation must NOT open a
// nested region: nested fan-out over the same pool would deadlock or
// serialize. The engine tracks active regions and collapses nested For calls
// to an inline call on the calling goroutine, which then runs on that
// worker's share of the outer partition.
//
// Partitioning follows truncating integer division: worker i of w covers
// [i*n/w, (i+1)*n/w). The last partition implicitly absorbs the remainder.
//
// Example:
//
//	eng := parallel.Default()
//	eng.For(len(buf), func(lo, hi int) {
//		clear(buf[lo:hi])
//	})
//
// All engine operations are synchronous: For returns only after every
// partition has completed. There is no cancellation; callers that need
// bounded work bound the range instead.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

type task struct {
	fn     func(lo, hi int)
	lo, hi int
	done   chan struct{}
}

// Engine dispatches range partitions to a persistent worker pool.
//
// An Engine is safe for concurrent use. Overlapping top-level For calls from
// independent goroutines share the pool; a For issued from inside another
// For on the same engine runs inline (nesting avoidance).
type Engine struct {
	workers   int
	tasks     chan task
	doneSlots chan chan struct{}
	active    atomic.Int32
}

var (
	defaultEngine *Engine
	defaultOnce   sync.Once
)

// Default returns the process-wide engine, sized to GOMAXPROCS.
func Default() *Engine {
	defaultOnce.Do(func() {
		defaultEngine = New(0)
	})
	return defaultEngine
}

// New creates an engine with the given worker count. A count of zero or
// less selects GOMAXPROCS.
func New(workers int) *Engine {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	e := &Engine{
		workers:   workers,
		tasks:     make(chan task, workers*2),
		doneSlots: make(chan chan struct{}, workers),
	}
	for i := 0; i < workers; i++ {
		e.doneSlots <- make(chan struct{}, workers)
	}
	for i := 0; i < workers; i++ {
		go func() {
			for t := range e.tasks {
				t.fn(t.lo, t.hi)
				t.done <- struct{}{}
			}
		}()
	}
	return e
}

// Workers returns the pool size.
func (e *Engine) Workers() int {
	return e.workers
}

// InParallel reports whether an engine region is currently active. Container
// operations use this to choose between delegating to the engine and running
// on the calling goroutine's share of an outer partition.
func (e *Engine) InParallel() bool {
	return e.active.Load() > 0
}

// For runs fn over [0, n) split across the pool.
//
// Inside an active region, or when the pool has a single worker, fn runs
// once inline as fn(0, n). Otherwise the range is partitioned with
// truncating division and For blocks until every partition returns.
func (e *Engine) For(n int, fn func(lo, hi int)) {
	e.ForShard(n, func(_, lo, hi int) { fn(lo, hi) })
}

// ForShard is For with the partition index exposed. The index is always in
// [0, Workers()); the inline path uses shard 0 covering the whole range.
// Reductions size their partial-result slots by Workers() and combine after
// ForShard returns.
func (e *Engine) ForShard(n int, fn func(shard, lo, hi int)) {
	if n <= 0 {
		return
	}
	if e.workers <= 1 || e.active.Load() > 0 {
		fn(0, 0, n)
		return
	}

	e.active.Add(1)
	defer e.active.Add(-1)

	done := <-e.doneSlots
	dispatched := 0
	for i := 0; i < e.workers; i++ {
		shard := i
		lo := i * n / e.workers
		hi := (i + 1) * n / e.workers
		if lo >= hi {
			continue
		}
		dispatched++
		e.tasks <- task{
			fn:   func(tlo, thi int) { fn(shard, tlo, thi) },
			lo:   lo,
			hi:   hi,
			done: done,
		}
	}
	for i := 0; i < dispatched; i++ {
		<-done
	}
	e.doneSlots <- done
}
