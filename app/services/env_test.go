package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/shopease/app/models"
	"github.com/shashiranjanraj/shopease/app/repositories"
	"github.com/shashiranjanraj/shopease/app/services"
	"github.com/shashiranjanraj/shopease/pkg/cache"
	"github.com/shashiranjanraj/shopease/pkg/database"
	"github.com/shashiranjanraj/shopease/pkg/event"
	"github.com/shashiranjanraj/shopease/pkg/storage"
)

type env struct {
	repos *repositories.Repositories
	svc   *services.Services
	disk  *storage.LocalDisk
}

// newEnv wires the services over a private in-memory SQLite database, a
// fresh memory cache and a temp-dir disk.
func newEnv(t *testing.T) *env {
	t.Helper()

	db, err := database.Open("sqlite", fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", t.Name()))
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
	t.Cleanup(event.Flush)

	disk, err := storage.NewLocalDisk(t.TempDir(), "/storage")
	require.NoError(t, err)

	repos := repositories.NewGorm(db)
	return &env{
		repos: repos,
		svc:   services.New(repos, func() storage.Disk { return disk }),
		disk:  disk,
	}
}

func (e *env) product(t *testing.T, name string, price float64, stock int) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Price: price, Stock: stock, Category: "Test", Brand: "Acme"}
	require.NoError(t, e.repos.Products.Create(context.Background(), p))
	return p
}

func (e *env) stock(t *testing.T, id string) int {
	t.Helper()
	p, err := e.repos.Products.FindByID(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func address() services.AddressInput {
	return services.AddressInput{FullName: "Ada L", Address: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US"}
}
