// Package tasks registers the recurring jobs run by the scheduler.
package tasks

import (
	"context"
	"time"

	"github.com/shashiranjanraj/shopease/app/notifications"
	"github.com/shashiranjanraj/shopease/app/services"
	"github.com/shashiranjanraj/shopease/config"
	"github.com/shashiranjanraj/shopease/pkg/logger"
	"github.com/shashiranjanraj/shopease/pkg/notification"
	"github.com/shashiranjanraj/shopease/pkg/schedule"
)

const (
	ExpirePending  = "orders:expire-pending"
	LowStockReport = "inventory:low-stock-report"
)

// Register adds the storefront tasks to s.
func Register(s *schedule.Scheduler, svc *services.Services) {
	s.Every(15 * time.Minute).Name(ExpirePending).WithoutOverlapping().Run(func(ctx context.Context) error {
		n, err := svc.Orders.ExpirePending(ctx, config.PendingOrderTTL())
		if n > 0 {
			logger.Info("expired pending orders", "count", n)
		}
		return err
	})

	s.Every(time.Hour).Name(LowStockReport).WithoutOverlapping().Run(func(ctx context.Context) error {
		return lowStockReport(ctx, svc.Dashboard)
	})
}

func lowStockReport(ctx context.Context, d *services.DashboardService) error {
	products, err := d.LowStock(ctx, 50)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		return nil
	}
	for _, p := range products {
		logger.Warn("low stock", "product_id", p.ID, "name", p.Name, "stock", p.Stock)
	}
	return notification.Send(ctx, "", notifications.LowStock{Threshold: config.LowStockThreshold(), Products: products})
}
