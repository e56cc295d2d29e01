package event_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/shopease/pkg/event"
	"github.com/shashiranjanraj/shopease/pkg/workerpool"
)

func TestFire_CallsListenersInOrder(t *testing.T) {
	event.Flush()
	defer event.Flush()

	var got []string
	event.Listen("order.placed", func(p interface{}) { got = append(got, "mail:"+p.(string)) })
	event.Listen("order.placed", func(p interface{}) { got = append(got, "ws:"+p.(string)) })
	event.Listen("order.status_changed", func(interface{}) { got = append(got, "never") })

	event.Fire("order.placed", "ORD-1")
	assert.Equal(t, []string{"mail:ORD-1", "ws:ORD-1"}, got)
}

func TestFire_ListenerPanicIsContained(t *testing.T) {
	event.Flush()
	defer event.Flush()

	called := false
	event.Listen("x", func(interface{}) { panic("boom") })
	event.Listen("x", func(interface{}) { called = true })

	assert.NotPanics(t, func() { event.Fire("x", nil) })
	assert.True(t, called)
}

func TestFireAsync_UsesPool(t *testing.T) {
	event.Flush()
	defer event.Flush()

	p := workerpool.New(2)
	event.UsePool(p)
	defer event.UsePool(nil)

	var n atomic.Int32
	var wg sync.WaitGroup
	wg.Add(10)
	event.Listen("order.placed", func(interface{}) {
		n.Add(1)
		wg.Done()
	})

	for i := 0; i < 10; i++ {
		event.FireAsync("order.placed", i)
	}
	wg.Wait()
	p.Shutdown()

	assert.Equal(t, int32(10), n.Load())
}
