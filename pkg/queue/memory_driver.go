package queue

import (
	"context"
	"errors"
	"time"
)

// ErrQueueFull is returned by MemoryDriver.Push when the buffer is full.
var ErrQueueFull = errors.New("queue: memory queue is full")

// MemoryDriver is an in-process, channel-backed queue driver.
// Not durable across restarts.
type MemoryDriver struct {
	ch chan []byte
}

// NewMemoryDriver creates an in-memory queue holding up to size jobs.
func NewMemoryDriver(size int) *MemoryDriver {
	return &MemoryDriver{ch: make(chan []byte, size)}
}

func (d *MemoryDriver) Name() string { return "memory" }

func (d *MemoryDriver) Push(_ context.Context, payload []byte) error {
	select {
	case d.ch <- payload:
		return nil
	default:
		return ErrQueueFull
	}
}

func (d *MemoryDriver) Pop(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case payload := <-d.ch:
		return payload, nil
	case <-time.After(time.Second):
		return nil, nil
	}
}

// Len reports the number of queued jobs.
func (d *MemoryDriver) Len() int { return len(d.ch) }
