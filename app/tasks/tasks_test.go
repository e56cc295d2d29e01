package tasks_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/shopease/app/models"
	"github.com/shashiranjanraj/shopease/app/repositories"
	"github.com/shashiranjanraj/shopease/app/services"
	"github.com/shashiranjanraj/shopease/app/tasks"
	"github.com/shashiranjanraj/shopease/config"
	"github.com/shashiranjanraj/shopease/pkg/cache"
	"github.com/shashiranjanraj/shopease/pkg/database"
	"github.com/shashiranjanraj/shopease/pkg/event"
	"github.com/shashiranjanraj/shopease/pkg/schedule"
	"github.com/shashiranjanraj/shopease/pkg/storage"
)

func setup(t *testing.T) (*repositories.Repositories, *schedule.Scheduler) {
	t.Helper()
	db, err := database.Open("sqlite", fmt.Sprintf("file:tasks_%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Product{}, &models.Order{}, &models.OrderItem{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	prev := cache.Current()
	cache.Use(cache.NewMemoryStore())
	t.Cleanup(func() { cache.Use(prev) })
	event.Flush()
	config.Set("SLACK_WEBHOOK_URL", "")

	repos := repositories.NewGorm(db)
	svc := services.New(repos, storage.Default)
	s := schedule.New(time.Hour)
	tasks.Register(s, svc)
	return repos, s
}

func TestRegisteredTasks(t *testing.T) {
	_, s := setup(t)
	assert.Equal(t, []string{
		"inventory:low-stock-report [every 1h0m0s]",
		"orders:expire-pending [every 15m0s]",
	}, s.List())
}

func TestExpirePendingCancelsStaleOrders(t *testing.T) {
	repos, s := setup(t)
	ctx := context.Background()

	p := &models.Product{Name: "Lamp", Price: 10, Stock: 1}
	require.NoError(t, repos.Products.Create(ctx, p))

	old := time.Now().UTC().Add(-config.PendingOrderTTL() - time.Hour)
	stale := &models.Order{
		UserID: "u1", PaymentMethod: "cash", Status: models.StatusPending, CreatedAt: old,
		Products: []models.OrderItem{{ProductID: p.ID, Name: p.Name, Price: 10, Quantity: 2}},
	}
	fresh := &models.Order{UserID: "u1", PaymentMethod: "cash", Status: models.StatusPending}
	require.NoError(t, repos.Orders.Create(ctx, stale))
	require.NoError(t, repos.Orders.Create(ctx, fresh))

	require.NoError(t, s.RunAll(ctx))

	got, err := repos.Orders.FindByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, got.Status)
	assert.NotNil(t, got.CancelledAt)

	got, err = repos.Orders.FindByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)

	restocked, err := repos.Products.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, restocked.Stock)
}
