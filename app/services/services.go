// Package services holds the storefront use cases. Services talk to the
// repositories, the cache and the storage disk, and fire domain events; they
// know nothing about HTTP.
package services

import (
	"github.com/shashiranjanraj/shopease/app/models"
	"github.com/shashiranjanraj/shopease/app/repositories"
	"github.com/shashiranjanraj/shopease/pkg/storage"
)

// Event names fired by the services.
const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status_changed"
)

// StatusChange is the payload of EventOrderStatusChanged.
type StatusChange struct {
	Order *models.Order
	From  models.OrderStatus
}

// Services is the set the controllers, GraphQL resolvers and commands use.
type Services struct {
	Auth      *AuthService
	Users     *UserService
	Products  *ProductService
	Cart      *CartService
	Orders    *OrderService
	Dashboard *DashboardService
}

// New wires every service over repos. disk resolves the storage disk for
// uploads at call time, so tests and boot order can swap it.
func New(repos *repositories.Repositories, disk func() storage.Disk) *Services {
	pricing := DefaultPricing()
	products := NewProductService(repos.Products, disk)
	cart := NewCartService(repos.Products, pricing)
	return &Services{
		Auth:      NewAuthService(repos.Users, cart),
		Users:     NewUserService(repos.Users),
		Products:  products,
		Cart:      cart,
		Orders:    NewOrderService(repos, cart, pricing, products),
		Dashboard: NewDashboardService(repos),
	}
}
