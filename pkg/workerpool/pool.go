// Package workerpool provides a bounded goroutine pool with backpressure.
//
// When all workers are busy and the queue is full, Submit returns ErrPoolFull
// immediately so the caller can decide what to do (the event dispatcher runs
// the task inline).
//
//	pool := workerpool.New(16)
//	defer pool.Shutdown()
//
//	if err := pool.Submit(task); errors.Is(err, workerpool.ErrPoolFull) {
//	    task()
//	}
package workerpool

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/shashiranjanraj/shopease/pkg/logger"
)

// ErrPoolFull is returned by Submit when the task queue is at capacity.
var ErrPoolFull = errors.New("workerpool: pool is full")

// ErrPoolClosed is returned by Submit after Shutdown has been called.
var ErrPoolClosed = errors.New("workerpool: pool is closed")

// Pool is a bounded goroutine pool.
type Pool struct {
	mu     sync.RWMutex // guards closed and sends on tasks
	closed bool
	tasks  chan func()
	wg     sync.WaitGroup
	once   sync.Once

	completed atomic.Int64
	panicked  atomic.Int64
}

// New creates a Pool with size workers and a queue of 2×size.
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}

	p := &Pool{tasks: make(chan func(), size*2)}
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Submit enqueues task without blocking.
func (p *Pool) Submit(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrPoolFull
	}
}

// SubmitWait blocks until the task is queued. It must not be called
// concurrently with Shutdown.
func (p *Pool) SubmitWait(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	p.tasks <- task
	return nil
}

// Shutdown stops accepting tasks, drains the queue and waits for the workers.
// It is safe to call multiple times.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.tasks)
		p.mu.Unlock()
		p.wg.Wait()
	})
}

// Stats returns the number of completed and panicked tasks.
func (p *Pool) Stats() (completed, panicked int64) {
	return p.completed.Load(), p.panicked.Load()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		p.run(task)
	}
}

// run executes task, recovering from panics so a bad task doesn't kill the
// worker goroutine.
func (p *Pool) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			p.panicked.Add(1)
			logger.Error("workerpool: task panicked", "panic", fmt.Sprint(r))
			return
		}
		p.completed.Add(1)
	}()
	task()
}
