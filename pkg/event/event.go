// Package event is an in-process event dispatcher. Listeners registered with
// Listen are called by Fire (inline) or FireAsync (on the worker pool).
//
//	event.Listen("order.placed", func(p interface{}) {
//	    order := p.(*models.Order)
//	    ...
//	})
//	event.FireAsync("order.placed", order)
package event

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/shopease/pkg/logger"
	"github.com/shashiranjanraj/shopease/pkg/workerpool"
)

// Handler is a function that receives an event payload.
type Handler func(payload interface{})

var (
	mu       sync.RWMutex
	handlers = map[string][]Handler{}
	pool     *workerpool.Pool
)

// Listen registers a handler for the given event name.
func Listen(event string, handler Handler) {
	mu.Lock()
	defer mu.Unlock()
	handlers[event] = append(handlers[event], handler)
}

// UsePool routes FireAsync through p. With no pool, FireAsync runs inline.
func UsePool(p *workerpool.Pool) {
	mu.Lock()
	pool = p
	mu.Unlock()
}

func snapshot(event string) ([]Handler, *workerpool.Pool) {
	mu.RLock()
	defer mu.RUnlock()
	hs := make([]Handler, len(handlers[event]))
	copy(hs, handlers[event])
	return hs, pool
}

// Fire dispatches an event synchronously to all registered listeners.
func Fire(event string, payload interface{}) {
	hs, _ := snapshot(event)
	for _, h := range hs {
		call(event, h, payload)
	}
}

// FireAsync hands each listener to the worker pool and returns immediately.
// A full or closed pool runs the listener inline instead of dropping it.
func FireAsync(event string, payload interface{}) {
	hs, p := snapshot(event)
	for _, h := range hs {
		h := h
		if p != nil {
			err := p.Submit(func() { call(event, h, payload) })
			if err == nil {
				continue
			}
			if !errors.Is(err, workerpool.ErrPoolFull) && !errors.Is(err, workerpool.ErrPoolClosed) {
				logger.Warn("event: submit failed", "event", event, "error", err)
			}
		}
		call(event, h, payload)
	}
}

func call(event string, h Handler, payload interface{}) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("event: listener panicked", "event", event, "panic", fmt.Sprint(r))
		}
	}()
	h(payload)
}

// Flush removes all listeners (useful in tests).
func Flush() {
	mu.Lock()
	defer mu.Unlock()
	handlers = map[string][]Handler{}
}
