// Package server runs the storefront process: HTTP API, gRPC health, queue
// workers, scheduler and event pool, torn down together on shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shashiranjanraj/shopease/app/listeners"
	"github.com/shashiranjanraj/shopease/app/routes"
	"github.com/shashiranjanraj/shopease/app/tasks"
	"github.com/shashiranjanraj/shopease/config"
	"github.com/shashiranjanraj/shopease/internal/kernel"
	"github.com/shashiranjanraj/shopease/pkg/database"
	"github.com/shashiranjanraj/shopease/pkg/event"
	"github.com/shashiranjanraj/shopease/pkg/grpc"
	"github.com/shashiranjanraj/shopease/pkg/logger"
	"github.com/shashiranjanraj/shopease/pkg/queue"
	"github.com/shashiranjanraj/shopease/pkg/schedule"
	"github.com/shashiranjanraj/shopease/pkg/sse"
	"github.com/shashiranjanraj/shopease/pkg/workerpool"
	"github.com/shashiranjanraj/shopease/pkg/ws"
)

const (
	shutdownTimeout = 10 * time.Second
	queueWorkers    = 5
	eventWorkers    = 8
)

// Start boots the application and serves until ctx is cancelled (the CLI
// cancels it on SIGINT/SIGTERM). Components stop in reverse start order.
func Start(ctx context.Context) error {
	app, err := Boot(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	pool := workerpool.New(eventWorkers)
	event.UsePool(pool)
	defer func() {
		event.UsePool(nil)
		pool.Shutdown()
	}()

	hub := ws.NewHub()
	go hub.Run(runCtx)
	broker := sse.NewBroker(16)
	listeners.New(app.Repos.Users, hub, broker).Register()

	waitQueue := queue.StartWorkers(runCtx, queueWorkers)
	defer func() { cancel(); waitQueue() }()

	tasks.Register(schedule.Default(), app.Services)
	waitSchedule := schedule.Start(runCtx)
	defer func() { cancel(); waitSchedule() }()

	grpcSrv, err := grpc.Start(config.GRPCPort(), database.PingStore)
	if err != nil {
		return err
	}
	defer grpc.Stop(grpcSrv, shutdownTimeout)

	r, err := kernel.NewHTTPKernel(kernel.Options{
		Deps:      routes.Deps{Services: app.Services, Broker: broker, Hub: hub},
		Ping:      database.PingStore,
		RateLimit: config.RateLimit(),
	})
	if err != nil {
		return fmt.Errorf("kernel: %w", err)
	}

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http: listening", "addr", srv.Addr, "app", config.AppName(), "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down", "timeout", shutdownTimeout)
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http: %w", err)
		}
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http: shutdown", "error", err)
	}
	cancel()
	return nil
}
