// Command server runs only the storefront API, for container images that
// do not need the operational commands.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/shashiranjanraj/shopease/internal/server"
	"github.com/shashiranjanraj/shopease/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Error("server exited", "error", err)
		stop()
		os.Exit(1)
	}
}
