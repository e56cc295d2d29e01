// Package kernel assembles the HTTP handler: the global middleware stack,
// the infrastructure endpoints and the API routes.
package kernel

import (
	"context"
	"net/http"
	"time"

	"github.com/shashiranjanraj/shopease/app/graphql"
	"github.com/shashiranjanraj/shopease/app/routes"
	"github.com/shashiranjanraj/shopease/config"
	gqlhttp "github.com/shashiranjanraj/shopease/pkg/graphql"
	"github.com/shashiranjanraj/shopease/pkg/logger"
	"github.com/shashiranjanraj/shopease/pkg/metrics"
	"github.com/shashiranjanraj/shopease/pkg/middleware"
	"github.com/shashiranjanraj/shopease/pkg/reqid"
	"github.com/shashiranjanraj/shopease/pkg/response"
	"github.com/shashiranjanraj/shopease/pkg/router"
	"github.com/shashiranjanraj/shopease/pkg/session"
	"github.com/shashiranjanraj/shopease/pkg/storage"
)

// Options carries everything the kernel mounts.
type Options struct {
	routes.Deps

	// Ping reports store health for /health.
	Ping func(ctx context.Context) error

	// RateLimit is requests per minute per client IP; 0 disables it.
	RateLimit int
}

// NewHTTPKernel builds the router with the global middleware stack
// (outermost first): metrics, recovery, request id, access log, session,
// CORS, rate limit.
func NewHTTPKernel(o Options) (*router.Router, error) {
	r := router.New()

	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(session.Middleware(session.DefaultOptions()))
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	if o.RateLimit > 0 {
		r.Use(middleware.RateLimit(o.RateLimit, time.Minute))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) { response.NotFound(w) })
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/health", "health", health(o.Ping))
	r.Get("/metrics", "metrics", metrics.Handler())

	schema, err := graphql.Schema(o.Services.Products)
	if err != nil {
		return nil, err
	}
	r.Handle("/graphql", "graphql", gqlhttp.Handler(schema))

	if local, ok := storage.Local(); ok {
		r.Get("/storage/*", "storage", http.StripPrefix("/storage/", http.FileServer(http.Dir(local.Root()))).ServeHTTP)
	}

	routes.RegisterAPI(r, o.Deps)
	return r, nil
}

func health(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]string{"app": config.AppName(), "env": config.AppEnv()}
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				logger.WithCtx(r.Context()).Error("health: store ping failed", "error", err)
				response.JSON(w, http.StatusServiceUnavailable, response.Envelope{
					Status: http.StatusServiceUnavailable, Message: "Store unavailable", Data: body,
				})
				return
			}
		}
		response.Success(w, body)
	}
}
