// Package schedule runs named background tasks at fixed intervals.
//
//	schedule.Every(15 * time.Minute).Name("orders:expire-pending").
//	    WithoutOverlapping().Run(expirePending)
//
//	wait := schedule.Start(ctx) // returns when ctx is cancelled and wait() is called
//	defer wait()
package schedule

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shashiranjanraj/shopease/pkg/logger"
)

// Task is a scheduled unit of work.
type Task func(ctx context.Context) error

type entry struct {
	name      string
	interval  time.Duration
	task      Task
	noOverlap bool

	mu      sync.Mutex
	lastRun time.Time
	running bool
}

// Scheduler owns a set of entries and the loop that dispatches them.
type Scheduler struct {
	mu      sync.Mutex
	entries []*entry
	tick    time.Duration
}

// New returns a scheduler that checks for due tasks every tick.
func New(tick time.Duration) *Scheduler {
	return &Scheduler{tick: tick}
}

var defaultScheduler = New(time.Second)

// Builder configures an entry before Run registers it.
type Builder struct {
	s *Scheduler
	e *entry
}

// Every starts an entry that runs every d on s.
func (s *Scheduler) Every(d time.Duration) *Builder {
	return &Builder{s: s, e: &entry{interval: d}}
}

func (b *Builder) Name(name string) *Builder {
	b.e.name = name
	return b
}

// WithoutOverlapping skips a run while the previous one is still executing.
func (b *Builder) WithoutOverlapping() *Builder {
	b.e.noOverlap = true
	return b
}

// Run registers the task. The first run happens one interval after Start.
func (b *Builder) Run(task Task) {
	b.e.task = task
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	if b.e.name == "" {
		b.e.name = fmt.Sprintf("task-%d", len(b.s.entries)+1)
	}
	b.s.entries = append(b.s.entries, b.e)
}

func (s *Scheduler) snapshot() []*entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*entry(nil), s.entries...)
}

// Start runs the dispatch loop until ctx is cancelled. The returned wait
// blocks until the loop and every in-flight task have returned.
func (s *Scheduler) Start(ctx context.Context) (wait func()) {
	var wg sync.WaitGroup
	started := time.Now()
	for _, e := range s.snapshot() {
		e.mu.Lock()
		e.lastRun = started
		e.mu.Unlock()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(s.tick)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				for _, e := range s.snapshot() {
					if e.due(now) {
						s.dispatch(ctx, e, &wg)
					}
				}
			}
		}
	}()

	logger.Info("schedule: started", "tasks", len(s.snapshot()))
	return wg.Wait
}

func (e *entry) due(now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return now.Sub(e.lastRun) >= e.interval
}

func (s *Scheduler) dispatch(ctx context.Context, e *entry, wg *sync.WaitGroup) {
	e.mu.Lock()
	if e.noOverlap && e.running {
		e.mu.Unlock()
		logger.Warn("schedule: skipping overlapping run", "task", e.name)
		return
	}
	e.running = true
	e.lastRun = time.Now()
	e.mu.Unlock()

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			e.mu.Lock()
			e.running = false
			e.mu.Unlock()
		}()
		_ = execute(ctx, e)
	}()
}

func execute(ctx context.Context, e *entry) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("schedule: %s panicked: %v", e.name, r)
		}
		if err != nil {
			logger.Error("schedule: task failed", "task", e.name, "error", err, "duration", time.Since(start))
			return
		}
		logger.Info("schedule: task done", "task", e.name, "duration", time.Since(start))
	}()
	return e.task(ctx)
}

// RunAll executes every task once, sequentially, and joins their errors.
// Used by the schedule:run command.
func (s *Scheduler) RunAll(ctx context.Context) error {
	var errs []error
	for _, e := range s.snapshot() {
		if err := execute(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// List describes every entry as "name [interval]", sorted by name.
func (s *Scheduler) List() []string {
	entries := s.snapshot()
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, fmt.Sprintf("%s [every %s]", e.name, e.interval))
	}
	sort.Strings(out)
	return out
}

// ─── Default scheduler ────────────────────────────────────────────────────────

// Default returns the process-wide scheduler the package functions use.
func Default() *Scheduler { return defaultScheduler }

func Every(d time.Duration) *Builder           { return defaultScheduler.Every(d) }
func Start(ctx context.Context) (wait func()) { return defaultScheduler.Start(ctx) }
func RunAll(ctx context.Context) error        { return defaultScheduler.RunAll(ctx) }
func List() []string                          { return defaultScheduler.List() }
