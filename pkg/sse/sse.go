// Package sse provides Server-Sent Events streams and a small in-process
// broker that fans events out to subscribed streams.
//
//	sub := broker.Subscribe(userID) // "" receives everything
//	defer sub.Close()
//	sse.New(c.W, c.R).Pump(sub, 25*time.Second)
//
//	broker.Publish(order.UserID, sse.Event{Name: "order.status", Data: order})
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Stream is an active SSE connection to one client.
type Stream struct {
	w       http.ResponseWriter
	r       *http.Request
	flusher http.Flusher
}

// New sets the SSE headers and returns a stream, or nil (after writing a
// 500) if w cannot flush.
func New(w http.ResponseWriter, r *http.Request) *Stream {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return nil
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &Stream{w: w, r: r, flusher: flusher}
}

// Send writes a named event with a JSON payload.
func (s *Stream) Send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("sse: marshal: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// Comment writes an SSE comment line, used as a heartbeat.
func (s *Stream) Comment(msg string) error {
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", msg); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// Pump forwards sub's events to the client until the request ends, the
// subscription closes, or a write fails. A heartbeat comment is written
// every heartbeat.
func (s *Stream) Pump(sub *Subscription, heartbeat time.Duration) {
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-s.r.Context().Done():
			return
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			if err := s.Send(ev.Name, ev.Data); err != nil {
				return
			}
		case <-ticker.C:
			if err := s.Comment("heartbeat"); err != nil {
				return
			}
		}
	}
}

// ─── Broker ───────────────────────────────────────────────────────────────────

// Event is one message published through a Broker.
type Event struct {
	Name string
	Data any
}

// Subscription receives events on C until Close.
type Subscription struct {
	C      <-chan Event
	ch     chan Event
	key    string
	broker *Broker
	once   sync.Once
}

// Close detaches the subscription and closes C.
func (s *Subscription) Close() {
	s.once.Do(func() { s.broker.remove(s) })
}

// Broker routes events to subscriptions by key. A subscription with an
// empty key receives every event.
type Broker struct {
	mu   sync.RWMutex
	subs map[*Subscription]struct{}
	buf  int
}

// NewBroker returns a broker whose subscriptions buffer buf events. Slow
// subscribers drop events rather than block publishers.
func NewBroker(buf int) *Broker {
	return &Broker{subs: make(map[*Subscription]struct{}), buf: buf}
}

func (b *Broker) Subscribe(key string) *Subscription {
	ch := make(chan Event, b.buf)
	sub := &Subscription{C: ch, ch: ch, key: key, broker: b}
	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

func (b *Broker) remove(sub *Subscription) {
	b.mu.Lock()
	delete(b.subs, sub)
	close(sub.ch)
	b.mu.Unlock()
}

// Publish delivers ev to subscriptions keyed key and to catch-all ones. It
// returns how many subscriptions received it.
func (b *Broker) Publish(key string, ev Event) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := 0
	for sub := range b.subs {
		if sub.key != "" && sub.key != key {
			continue
		}
		select {
		case sub.ch <- ev:
			n++
		default:
		}
	}
	return n
}

// Len reports the number of open subscriptions.
func (b *Broker) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
