// Package workerpool provides a bounded goroutine pool for fan-out work
// such as the port sweep, where thousands of short blocking dials must not
// become thousands of goroutines.
package workerpool

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool runs submitted tasks on at most the configured number of goroutines.
// Workers are started lazily and exit when the pool is closed.
type Pool struct {
	workers int32
	running int32
	closed  int32

	tasks chan func()
	wg    sync.WaitGroup
}

// New creates a pool with the given number of workers.
// A non-positive count falls back to GOMAXPROCS.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{
		workers: int32(workers),
		tasks:   make(chan func(), workers*4),
	}
}

// Submit queues a task, spawning a worker if the pool is below capacity.
// It blocks while the queue is full and returns false once the pool is closed.
func (p *Pool) Submit(task func()) bool {
	if atomic.LoadInt32(&p.closed) == 1 {
		return false
	}

	for {
		running := atomic.LoadInt32(&p.running)
		if running >= p.workers {
			break
		}
		if atomic.CompareAndSwapInt32(&p.running, running, running+1) {
			p.wg.Add(1)
			go p.worker()
			break
		}
	}

	p.tasks <- task
	return true
}

func (p *Pool) worker() {
	defer func() {
		atomic.AddInt32(&p.running, -1)
		p.wg.Done()
	}()

	for task := range p.tasks {
		p.run(task)
	}
}

// run executes one task; a panicking task does not take the worker down.
func (p *Pool) run(task func()) {
	defer func() { _ = recover() }()
	if task != nil {
		task()
	}
}

// Close stops accepting tasks and waits for queued ones to finish.
func (p *Pool) Close() {
	if !atomic.CompareAndSwapInt32(&p.closed, 0, 1) {
		return
	}
	close(p.tasks)
	p.wg.Wait()
}

// Filter applies fn to every item on the pool and returns the items for
// which it reported true, in their original order. Items not yet started
// when ctx is cancelled are skipped.
func Filter[T any](ctx context.Context, p *Pool, items []T, fn func(context.Context, T) bool) []T {
	keep := make([]bool, len(items))
	var wg sync.WaitGroup

	for i, item := range items {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		ok := p.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			keep[i] = fn(ctx, item)
		})
		if !ok {
			wg.Done()
			break
		}
	}
	wg.Wait()

	out := make([]T, 0, len(items)/8)
	for i, item := range items {
		if keep[i] {
			out = append(out, item)
		}
	}
	return out
}
