// Package jobs holds the queued background work.
package jobs

import (
	"context"

	"github.com/shashiranjanraj/shopease/app/notifications"
	"github.com/shashiranjanraj/shopease/pkg/notification"
	"github.com/shashiranjanraj/shopease/pkg/queue"
)

func init() {
	queue.Register(func() queue.Job { return &SendOrderConfirmation{} })
	queue.Register(func() queue.Job { return &SendOrderStatusUpdate{} })
}

// SendOrderConfirmation mails the order summary to the customer.
type SendOrderConfirmation struct {
	Email  string                    `json:"email"`
	Notice notifications.OrderPlaced `json:"notice"`
}

func (j *SendOrderConfirmation) Handle(ctx context.Context) error {
	return notification.Send(ctx, j.Email, j.Notice)
}

// SendOrderStatusUpdate mails the customer when their order changes state.
type SendOrderStatusUpdate struct {
	Email  string                           `json:"email"`
	Notice notifications.OrderStatusChanged `json:"notice"`
}

func (j *SendOrderStatusUpdate) Handle(ctx context.Context) error {
	return notification.Send(ctx, j.Email, j.Notice)
}
