// Package repositories persists the storefront entities. Every repository has
// a GORM implementation (STORE_DRIVER=sql) and a MongoDB implementation
// (STORE_DRIVER=mongo); services only see the interfaces.
package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shashiranjanraj/shopease/app/models"
	"github.com/shashiranjanraj/shopease/pkg/database"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicate         = errors.New("duplicate record")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Product sort keys accepted by ProductFilter.Sort.
const (
	SortNewest    = "newest"
	SortPriceLow  = "price_low"
	SortPriceHigh = "price_high"
	SortRating    = "rating"
	SortPopular   = "popular"
)

// ProductFilter narrows a catalog listing. Page and Limit are expected to be
// clamped by the caller.
type ProductFilter struct {
	Category string   `json:"category,omitempty"`
	Brand    string   `json:"brand,omitempty"`
	Search   string   `json:"search,omitempty"`
	MinPrice *float64 `json:"minPrice,omitempty"`
	MaxPrice *float64 `json:"maxPrice,omitempty"`
	InStock  bool     `json:"inStock,omitempty"`
	Sort     string   `json:"sort,omitempty"`
	Page     int      `json:"page"`
	Limit    int      `json:"limit"`
}

// OrderFilter narrows the admin order listing.
type OrderFilter struct {
	Status models.OrderStatus
	Page   int
	Limit  int
}

// Facets are the distinct catalog dimensions, sorted.
type Facets struct {
	Categories []string `json:"categories"`
	Brands     []string `json:"brands"`
}

type UserRepository interface {
	// Create fails with ErrDuplicate when the email is taken.
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.User, error)
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, page, limit int) ([]models.User, int64, error)
	Count(ctx context.Context) (int64, error)
}

type ProductRepository interface {
	Create(ctx context.Context, p *models.Product) error
	FindByID(ctx context.Context, id string) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Product, error)
	FindByName(ctx context.Context, name string) (*models.Product, error)
	// Update writes only the fields set in changes.
	Update(ctx context.Context, id string, changes ProductChanges) error
	// AddImage makes url the primary image and appends it to the gallery.
	AddImage(ctx context.Context, id, url string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f ProductFilter) ([]models.Product, int64, error)
	Count(ctx context.Context) (int64, error)
	// DecrementStock takes qty units only if at least qty are available,
	// otherwise it returns ErrInsufficientStock and changes nothing.
	DecrementStock(ctx context.Context, id string, qty int) error
	IncrementStock(ctx context.Context, id string, qty int) error
	LowStock(ctx context.Context, threshold, limit int) ([]models.Product, error)
	Facets(ctx context.Context) (Facets, error)
}

type OrderRepository interface {
	Create(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, id string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	List(ctx context.Context, f OrderFilter) ([]models.Order, int64, error)
	// UpdateStatus moves the order from -> to at the given time. It returns
	// ErrNotFound when no order with that id is currently in from.
	UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus, at time.Time) error
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (map[models.OrderStatus]int64, error)
	// SalesTotal sums totalPrice over every order that is not Cancelled.
	SalesTotal(ctx context.Context) (float64, error)
	Recent(ctx context.Context, n int) ([]models.Order, error)
	PendingOlderThan(ctx context.Context, t time.Time) ([]models.Order, error)
}

// Repositories is the set handed to services.
type Repositories struct {
	Users    UserRepository
	Products ProductRepository
	Orders   OrderRepository
}

// New returns the repositories for driver ("sql" or "mongo") over the
// connections opened by pkg/database.
func New(driver string) (*Repositories, error) {
	switch driver {
	case "mongo":
		if database.Mongo == nil {
			return nil, fmt.Errorf("repositories: mongo is not connected")
		}
		return NewMongo(database.Mongo), nil
	case "sql", "":
		if database.DB == nil {
			return nil, fmt.Errorf("repositories: sql database is not connected")
		}
		return NewGorm(database.DB), nil
	default:
		return nil, fmt.Errorf("repositories: unknown store driver %q", driver)
	}
}

func sortedUnique(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
