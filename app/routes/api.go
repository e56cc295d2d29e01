// Package routes maps the REST API onto the controllers.
package routes

import (
	"github.com/shashiranjanraj/shopease/app/controllers"
	"github.com/shashiranjanraj/shopease/app/services"
	"github.com/shashiranjanraj/shopease/pkg/ctx"
	"github.com/shashiranjanraj/shopease/pkg/middleware"
	"github.com/shashiranjanraj/shopease/pkg/rbac"
	"github.com/shashiranjanraj/shopease/pkg/router"
	"github.com/shashiranjanraj/shopease/pkg/sse"
	"github.com/shashiranjanraj/shopease/pkg/ws"
)

// Deps is what the API routes are built over.
type Deps struct {
	Services *services.Services
	Broker   *sse.Broker
	Hub      *ws.Hub
}

func RegisterAPI(r *router.Router, d Deps) {
	authCtl := controllers.NewAuthController(d.Services.Auth)
	userCtl := controllers.NewUserController(d.Services.Users)
	productCtl := controllers.NewProductController(d.Services.Products)
	cartCtl := controllers.NewCartController(d.Services.Cart)
	orderCtl := controllers.NewOrderController(d.Services.Orders, d.Broker)
	adminCtl := controllers.NewAdminController(d.Services.Dashboard, d.Hub)

	api := r.Group("/api")

	// ─── Users ────────────────────────────────────────────────────────────
	users := api.Group("/users")
	users.Post("/register", "users.register", ctx.Wrap(authCtl.Register))
	users.Post("/login", "users.login", ctx.Wrap(authCtl.Login))
	users.Post("/refresh", "users.refresh", ctx.Wrap(authCtl.Refresh))

	me := users.Group("", middleware.Auth)
	me.Get("/profile", "users.profile", ctx.Wrap(authCtl.Profile))
	me.Put("/profile", "users.profile.update", ctx.Wrap(authCtl.UpdateProfile))

	manage := users.Group("", middleware.Auth, rbac.Admin)
	manage.Get("", "users.index", ctx.Wrap(userCtl.Index))
	manage.Get("/{id}", "users.show", ctx.Wrap(userCtl.Show))
	manage.Put("/{id}", "users.update", ctx.Wrap(userCtl.Update))
	manage.Delete("/{id}", "users.destroy", ctx.Wrap(userCtl.Destroy))

	// ─── Catalog ──────────────────────────────────────────────────────────
	products := api.Group("/products")
	products.Get("", "products.index", ctx.Wrap(productCtl.Index))
	products.Get("/facets", "products.facets", ctx.Wrap(productCtl.Facets))
	products.Get("/{id}", "products.show", ctx.Wrap(productCtl.Show))

	catalogAdmin := products.Group("", middleware.Auth, rbac.Admin)
	catalogAdmin.Post("", "products.store", ctx.Wrap(productCtl.Store))
	catalogAdmin.Put("/{id}", "products.update", ctx.Wrap(productCtl.Update))
	catalogAdmin.Delete("/{id}", "products.destroy", ctx.Wrap(productCtl.Destroy))
	catalogAdmin.Post("/{id}/image", "products.image", ctx.Wrap(productCtl.UploadImage))

	// ─── Cart ─────────────────────────────────────────────────────────────
	cart := api.Group("/cart", middleware.OptionalAuth)
	cart.Get("", "cart.show", ctx.Wrap(cartCtl.Show))
	cart.Delete("", "cart.clear", ctx.Wrap(cartCtl.Clear))
	cart.Post("/items", "cart.items.add", ctx.Wrap(cartCtl.Add))
	cart.Put("/items/{productId}", "cart.items.update", ctx.Wrap(cartCtl.Update))
	cart.Delete("/items/{productId}", "cart.items.remove", ctx.Wrap(cartCtl.Remove))
	cart.Post("/quote", "cart.quote", ctx.Wrap(cartCtl.Quote))

	// ─── Orders ───────────────────────────────────────────────────────────
	orders := api.Group("/orders", middleware.Auth)
	orders.Post("", "orders.store", ctx.Wrap(orderCtl.Store))
	orders.Get("/user", "orders.mine", ctx.Wrap(orderCtl.Mine))
	orders.Get("/stream", "orders.stream", ctx.Wrap(orderCtl.Stream))
	orders.Get("/{id}", "orders.show", ctx.Wrap(orderCtl.Show))
	orders.Put("/{id}/cancel", "orders.cancel", ctx.Wrap(orderCtl.Cancel))

	ordersAdmin := orders.Group("", rbac.Admin)
	ordersAdmin.Get("", "orders.index", ctx.Wrap(orderCtl.Index))
	ordersAdmin.Put("/{id}", "orders.status", ctx.Wrap(orderCtl.UpdateStatus))

	// ─── Admin ────────────────────────────────────────────────────────────
	admin := api.Group("/admin", middleware.Auth, rbac.Admin)
	admin.Get("/stats", "admin.stats", ctx.Wrap(adminCtl.Stats))

	r.Get("/ws/admin/orders", "ws.admin.orders", ctx.Wrap(adminCtl.Feed),
		middleware.QueryToken, middleware.Auth, rbac.Admin)
}
