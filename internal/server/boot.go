package server

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/shopease/app/repositories"
	"github.com/shashiranjanraj/shopease/app/services"
	"github.com/shashiranjanraj/shopease/config"
	_ "github.com/shashiranjanraj/shopease/database/migrations"
	"github.com/shashiranjanraj/shopease/pkg/cache"
	"github.com/shashiranjanraj/shopease/pkg/database"
	"github.com/shashiranjanraj/shopease/pkg/logger"
	"github.com/shashiranjanraj/shopease/pkg/migration"
	"github.com/shashiranjanraj/shopease/pkg/queue"
	"github.com/shashiranjanraj/shopease/pkg/storage"
)

// App is the booted dependency graph shared by serve and the CLI commands.
type App struct {
	Repos    *repositories.Repositories
	Services *services.Services

	closers []func()
}

// Boot loads config and opens the store, cache, storage and queue. Redis
// being unreachable is not fatal: cache and queue fall back to memory.
func Boot(ctx context.Context) (*App, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	a := &App{}

	if uri := config.Get("LOG_MONGO_URI", ""); uri != "" {
		flush, err := logger.EnableMongo(uri, config.Get("LOG_MONGO_DATABASE", "shopease"), config.Get("LOG_MONGO_COLLECTION", "logs"))
		if err != nil {
			logger.Warn("boot: mongo log sink disabled", "error", err)
		} else {
			a.onClose(flush)
		}
	}

	if err := a.connectStore(ctx); err != nil {
		a.Close()
		return nil, err
	}

	if err := cache.Connect(); err != nil {
		logger.Warn("boot: redis unavailable, using memory cache", "error", err)
		cache.Use(cache.NewMemoryStore())
	} else {
		a.onClose(func() { _ = cache.Close() })
	}

	if err := storage.Connect(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("storage: %w", err)
	}

	if config.QueueDriver() == "redis" && cache.RDB != nil {
		queue.SetDriver(queue.NewRedisDriver(cache.RDB))
	} else {
		queue.SetDriver(queue.NewMemoryDriver(1000))
	}
	if database.DB != nil {
		queue.UseDB(database.DB)
	}

	repos, err := repositories.New(config.StoreDriver())
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Repos = repos
	a.Services = services.New(repos, storage.Default)

	logger.Info("boot: ready",
		"store", config.StoreDriver(),
		"cache", cache.Current().Name(),
		"queue", queue.DriverName(),
		"disk", storage.Default().Name(),
	)
	return a, nil
}

func (a *App) connectStore(ctx context.Context) error {
	if config.StoreDriver() == "mongo" {
		if err := database.ConnectMongo(ctx); err != nil {
			return err
		}
		a.onClose(func() { _ = database.CloseMongo(context.Background()) })
		return nil
	}

	if err := database.Connect(); err != nil {
		return err
	}
	a.onClose(func() { _ = database.Close() })

	// SQLite is the zero-setup dev store; keep its schema current on boot.
	if config.DatabaseDriver() == "sqlite" {
		ran, err := migration.New(database.DB).Run()
		if err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
		if len(ran) > 0 {
			logger.Info("boot: migrated sqlite", "migrations", ran)
		}
	}
	return nil
}

// onClose registers fn to run on Close, in reverse order.
func (a *App) onClose(fn func()) { a.closers = append(a.closers, fn) }

// Close releases everything Boot opened, newest first.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
