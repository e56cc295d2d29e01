package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/shashiranjanraj/shopease/app/models"
	"github.com/shashiranjanraj/shopease/app/repositories"
	"github.com/shashiranjanraj/shopease/config"
)

// Stats is the admin dashboard summary.
type Stats struct {
	TotalSales     float64                      `json:"totalSales"`
	TotalOrders    int64                        `json:"totalOrders"`
	TotalProducts  int64                        `json:"totalProducts"`
	TotalUsers     int64                        `json:"totalUsers"`
	OrdersByStatus map[models.OrderStatus]int64 `json:"ordersByStatus"`
	RecentOrders   []models.Order               `json:"recentOrders"`
	LowStock       []models.Product             `json:"lowStock"`
}

type DashboardService struct {
	repos *repositories.Repositories
}

func NewDashboardService(repos *repositories.Repositories) *DashboardService {
	return &DashboardService{repos: repos}
}

// Stats fetches every part concurrently; the first failure cancels the rest.
func (s *DashboardService) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		st.TotalSales, err = s.repos.Orders.SalesTotal(ctx)
		return err
	})
	g.Go(func() (err error) {
		st.TotalOrders, err = s.repos.Orders.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		st.TotalProducts, err = s.repos.Products.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		st.TotalUsers, err = s.repos.Users.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		st.OrdersByStatus, err = s.repos.Orders.CountByStatus(ctx)
		return err
	})
	g.Go(func() (err error) {
		st.RecentOrders, err = s.repos.Orders.Recent(ctx, 5)
		return err
	})
	g.Go(func() (err error) {
		st.LowStock, err = s.repos.Products.LowStock(ctx, config.LowStockThreshold(), 10)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	st.TotalSales = Round(st.TotalSales)
	if st.RecentOrders == nil {
		st.RecentOrders = []models.Order{}
	}
	if st.LowStock == nil {
		st.LowStock = []models.Product{}
	}
	return &st, nil
}

// LowStock lists products at or below the configured threshold.
func (s *DashboardService) LowStock(ctx context.Context, limit int) ([]models.Product, error) {
	return s.repos.Products.LowStock(ctx, config.LowStockThreshold(), limit)
}
