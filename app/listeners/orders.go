// Package listeners reacts to order events: customer mail goes through the
// queue, live updates go to the admin WebSocket hub and the SSE broker.
package listeners

import (
	"context"
	"encoding/json"

	"github.com/shashiranjanraj/shopease/app/jobs"
	"github.com/shashiranjanraj/shopease/app/models"
	"github.com/shashiranjanraj/shopease/app/notifications"
	"github.com/shashiranjanraj/shopease/app/repositories"
	"github.com/shashiranjanraj/shopease/app/services"
	"github.com/shashiranjanraj/shopease/pkg/event"
	"github.com/shashiranjanraj/shopease/pkg/logger"
	"github.com/shashiranjanraj/shopease/pkg/queue"
	"github.com/shashiranjanraj/shopease/pkg/sse"
	"github.com/shashiranjanraj/shopease/pkg/ws"
)

// SSEStatusEvent is the event name pushed to order streams.
const SSEStatusEvent = "order.status"

// Feed is the JSON frame sent to admin WebSocket clients.
type Feed struct {
	Type  string        `json:"type"`
	Order *models.Order `json:"order"`
	From  string        `json:"from,omitempty"`
}

type Listeners struct {
	users  repositories.UserRepository
	hub    *ws.Hub
	broker *sse.Broker
}

func New(users repositories.UserRepository, hub *ws.Hub, broker *sse.Broker) *Listeners {
	return &Listeners{users: users, hub: hub, broker: broker}
}

// Register subscribes every handler.
func (l *Listeners) Register() {
	event.Listen(services.EventOrderPlaced, l.onPlaced)
	event.Listen(services.EventOrderStatusChanged, l.onStatusChanged)
}

func (l *Listeners) onPlaced(payload interface{}) {
	o, ok := payload.(*models.Order)
	if !ok {
		return
	}
	l.broadcast(Feed{Type: services.EventOrderPlaced, Order: o})

	ctx := context.Background()
	u, err := l.users.FindByID(ctx, o.UserID)
	if err != nil {
		logger.Warn("listeners: order owner lookup failed", "order_id", o.ID, "error", err)
		return
	}
	job := &jobs.SendOrderConfirmation{Email: u.Email, Notice: notifications.NewOrderPlaced(u.Name, o)}
	if err := queue.Dispatch(ctx, job); err != nil {
		logger.Error("listeners: dispatch confirmation failed", "order_id", o.ID, "error", err)
	}
}

func (l *Listeners) onStatusChanged(payload interface{}) {
	ch, ok := payload.(*services.StatusChange)
	if !ok || ch.Order == nil {
		return
	}
	o := ch.Order
	l.broadcast(Feed{Type: services.EventOrderStatusChanged, Order: o, From: string(ch.From)})
	if l.broker != nil {
		l.broker.Publish(o.UserID, sse.Event{Name: SSEStatusEvent, Data: Feed{Type: SSEStatusEvent, Order: o, From: string(ch.From)}})
	}

	ctx := context.Background()
	u, err := l.users.FindByID(ctx, o.UserID)
	if err != nil {
		logger.Warn("listeners: order owner lookup failed", "order_id", o.ID, "error", err)
		return
	}
	job := &jobs.SendOrderStatusUpdate{
		Email:  u.Email,
		Notice: notifications.OrderStatusChanged{Name: u.Name, OrderNumber: o.OrderNumber, Status: string(o.Status)},
	}
	if err := queue.Dispatch(ctx, job); err != nil {
		logger.Error("listeners: dispatch status update failed", "order_id", o.ID, "error", err)
	}
}

func (l *Listeners) broadcast(f Feed) {
	if l.hub == nil {
		return
	}
	raw, err := json.Marshal(f)
	if err != nil {
		logger.Error("listeners: encode feed", "error", err)
		return
	}
	l.hub.Broadcast(raw)
}
