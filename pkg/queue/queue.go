// Package queue runs background jobs with retries.
//
//	type SendOrderConfirmation struct{ OrderID string }
//
//	func (j *SendOrderConfirmation) Handle(ctx context.Context) error { ... }
//
//	queue.Register(func() queue.Job { return &SendOrderConfirmation{} })
//	queue.Dispatch(&SendOrderConfirmation{OrderID: o.ID})
//
// Jobs are serialised to JSON, so every field a job needs must be exported.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shashiranjanraj/shopease/pkg/logger"
	"github.com/shashiranjanraj/shopease/pkg/metrics"
)

// Job is the interface every queued job must satisfy.
type Job interface {
	// Handle executes the job. Return a non-nil error to signal failure.
	Handle(ctx context.Context) error
}

// FailedJob holds information about a job that exhausted its retries.
type FailedJob struct {
	Type     string
	Job      Job
	Err      error
	FailedAt time.Time
	Attempts int
}

// Driver is the queue storage backend.
type Driver interface {
	Push(ctx context.Context, payload []byte) error
	// Pop waits for the next payload. It may return (nil, nil) when nothing
	// arrived within the driver's poll interval.
	Pop(ctx context.Context) ([]byte, error)
	Name() string
}

// DelayedDriver is implemented by drivers that can hold a job until a
// future time.
type DelayedDriver interface {
	PushDelayed(ctx context.Context, payload []byte, delay time.Duration) error
}

// ErrUnknownJob is returned when a payload names an unregistered job type.
var ErrUnknownJob = errors.New("queue: unknown job type")

// ─── Manager ──────────────────────────────────────────────────────────────────

// Manager is the central queue hub.
type Manager struct {
	mu       sync.RWMutex
	driver   Driver
	registry map[string]func() Job // type name → constructor
	failed   []FailedJob
	maxRetry int
	backoff  time.Duration
}

var defaultManager = &Manager{
	registry: map[string]func() Job{},
	maxRetry: 3,
	backoff:  time.Second,
	driver:   NewMemoryDriver(1000),
}

// SetDriver swaps the underlying queue driver.
func SetDriver(d Driver) {
	defaultManager.mu.Lock()
	defer defaultManager.mu.Unlock()
	defaultManager.driver = d
}

// DriverName reports the active driver.
func DriverName() string { return defaultManager.currentDriver().Name() }

// SetRetry sets the attempt budget and the linear backoff step.
func SetRetry(attempts int, backoff time.Duration) {
	defaultManager.mu.Lock()
	defer defaultManager.mu.Unlock()
	if attempts < 1 {
		attempts = 1
	}
	defaultManager.maxRetry = attempts
	defaultManager.backoff = backoff
}

// Register makes a job type available for deserialization.
func Register(factory func() Job) {
	name := typeName(factory())
	defaultManager.mu.Lock()
	defer defaultManager.mu.Unlock()
	defaultManager.registry[name] = factory
}

func typeName(job Job) string { return fmt.Sprintf("%T", job) }

func (m *Manager) currentDriver() Driver {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.driver
}

// ─── Dispatch ─────────────────────────────────────────────────────────────────

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func encode(job Job) ([]byte, error) {
	name := typeName(job)
	payload, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("queue: marshal job %s: %w", name, err)
	}
	return json.Marshal(envelope{Type: name, Payload: payload})
}

// Dispatch pushes job onto the queue.
func Dispatch(ctx context.Context, job Job) error {
	raw, err := encode(job)
	if err != nil {
		return err
	}
	return defaultManager.currentDriver().Push(ctx, raw)
}

// DispatchAfter pushes job once delay has elapsed. Drivers without delayed
// support get a timer in this process.
func DispatchAfter(ctx context.Context, job Job, delay time.Duration) error {
	raw, err := encode(job)
	if err != nil {
		return err
	}
	d := defaultManager.currentDriver()
	if dd, ok := d.(DelayedDriver); ok {
		return dd.PushDelayed(ctx, raw, delay)
	}
	time.AfterFunc(delay, func() {
		if err := d.Push(context.Background(), raw); err != nil {
			logger.Error("queue: delayed dispatch failed", "error", err)
		}
	})
	return nil
}

// ─── Worker ───────────────────────────────────────────────────────────────────

// StartWorkers launches n workers that run until ctx is cancelled. The
// returned func blocks until every worker has exited.
func StartWorkers(ctx context.Context, n int) (wait func()) {
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defaultManager.work(ctx)
		}()
	}
	logger.Info("queue: workers started", "count", n, "driver", DriverName())
	return wg.Wait
}

// InProcess reports whether queued jobs live only in this process, so a
// command that dispatches them must also run them before it exits.
func InProcess() bool {
	_, ok := defaultManager.currentDriver().(*MemoryDriver)
	return ok
}

// Drain runs the jobs already queued on the memory driver, in the calling
// goroutine, and returns how many it processed. Other drivers are left to
// their workers.
func Drain(ctx context.Context) int {
	d, ok := defaultManager.currentDriver().(*MemoryDriver)
	if !ok {
		return 0
	}
	n := 0
	for ctx.Err() == nil && d.Len() > 0 {
		raw, err := d.Pop(ctx)
		if err != nil || raw == nil {
			break
		}
		defaultManager.process(ctx, raw)
		n++
	}
	return n
}

func (m *Manager) work(ctx context.Context) {
	for ctx.Err() == nil {
		raw, err := m.currentDriver().Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("queue: pop failed", "error", err)
			sleep(ctx, 500*time.Millisecond)
			continue
		}
		if raw != nil {
			m.process(ctx, raw)
		}
	}
}

func (m *Manager) process(ctx context.Context, raw []byte) {
	job, name, err := m.decode(raw)
	if err != nil {
		logger.Error("queue: dropping job", "type", name, "error", err)
		return
	}
	m.runWithRetry(ctx, job, name)
}

func (m *Manager) decode(raw []byte) (Job, string, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, "", fmt.Errorf("queue: bad envelope: %w", err)
	}

	m.mu.RLock()
	factory, ok := m.registry[env.Type]
	m.mu.RUnlock()
	if !ok {
		return nil, env.Type, ErrUnknownJob
	}

	job := factory()
	if err := json.Unmarshal(env.Payload, job); err != nil {
		return nil, env.Type, fmt.Errorf("queue: unmarshal payload: %w", err)
	}
	return job, env.Type, nil
}

func (m *Manager) runWithRetry(ctx context.Context, job Job, name string) {
	m.mu.RLock()
	attempts, backoff := m.maxRetry, m.backoff
	m.mu.RUnlock()

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		start := time.Now()
		err := job.Handle(ctx)
		if err == nil {
			metrics.RecordQueueJob(name, "success", start)
			logger.Info("queue: job processed", "type", name, "attempt", attempt)
			return
		}
		lastErr = err
		metrics.RecordQueueJob(name, "failed", start)
		logger.Warn("queue: job failed", "type", name, "attempt", attempt, "error", err)

		if attempt < attempts && !sleep(ctx, time.Duration(attempt)*backoff) {
			break
		}
	}

	m.persistFailed(job, name, lastErr, attempts)
	logger.Error("queue: job exhausted retries", "type", name, "error", lastErr)
}

// sleep waits for d or until ctx is done; it reports whether d elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// FailedJobs returns a snapshot of jobs that exhausted their retries.
func FailedJobs() []FailedJob {
	defaultManager.mu.RLock()
	defer defaultManager.mu.RUnlock()
	out := make([]FailedJob, len(defaultManager.failed))
	copy(out, defaultManager.failed)
	return out
}
