package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shashiranjanraj/shopease/app/models"
	"github.com/shashiranjanraj/shopease/app/repositories"
	"github.com/shashiranjanraj/shopease/pkg/collection"
	"github.com/shashiranjanraj/shopease/pkg/event"
	"github.com/shashiranjanraj/shopease/pkg/logger"
	"github.com/shashiranjanraj/shopease/pkg/metrics"
	"github.com/shashiranjanraj/shopease/pkg/orm"
)

type OrderLineInput struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity"  validate:"gte=1"`
}

type AddressInput struct {
	FullName   string `json:"fullName"   validate:"required,max=255"`
	Phone      string `json:"phone"      validate:"max=50"`
	Address    string `json:"address"    validate:"required,max=512"`
	City       string `json:"city"       validate:"required,max=100"`
	PostalCode string `json:"postalCode" validate:"required,max=20"`
	Country    string `json:"country"    validate:"required,max=100"`
}

// PlaceOrderInput is the checkout payload. Totals sent by clients are not
// part of it: prices come from the catalog.
type PlaceOrderInput struct {
	Items           []OrderLineInput `json:"items"           validate:"dive"`
	ShippingAddress AddressInput     `json:"shippingAddress" validate:"dive"`
	PaymentMethod   string           `json:"paymentMethod"   validate:"required,in=credit,paypal,cash"`
	CouponCode      string           `json:"couponCode"      validate:"max=50"`
}

// OrderPage is one page of the admin order listing.
type OrderPage struct {
	Items      []models.Order `json:"items"`
	Pagination orm.Pagination `json:"pagination"`
}

type OrderService struct {
	orders   repositories.OrderRepository
	products repositories.ProductRepository
	users    repositories.UserRepository
	cart     *CartService
	pricing  Pricing
	catalog  *ProductService

	now func() time.Time
}

func NewOrderService(repos *repositories.Repositories, cart *CartService, pricing Pricing, catalog *ProductService) *OrderService {
	return &OrderService{
		orders:   repos.Orders,
		products: repos.Products,
		users:    repos.Users,
		cart:     cart,
		pricing:  pricing,
		catalog:  catalog,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// mergeLines sums quantities of repeated products, keeping first-seen order.
func mergeLines(in []OrderLineInput) []OrderLineInput {
	idx := make(map[string]int, len(in))
	out := make([]OrderLineInput, 0, len(in))
	for _, l := range in {
		if i, ok := idx[l.ProductID]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		idx[l.ProductID] = len(out)
		out = append(out, l)
	}
	return out
}

// Place reserves stock and records the order. With no items in the input the
// caller's cart is checked out and cleared afterwards.
func (s *OrderService) Place(ctx context.Context, userID string, in PlaceOrderInput) (*models.Order, error) {
	log := logger.WithCtx(ctx)

	lines := in.Items
	fromCart := false
	if len(lines) == 0 && s.cart != nil {
		lines = collection.Map(s.cart.Items(ctx, UserCart(userID)), func(it CartItem) OrderLineInput {
			return OrderLineInput{ProductID: it.ProductID, Quantity: it.Quantity}
		})
		fromCart = true
	}
	lines = mergeLines(lines)
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}

	ids := collection.Map(lines, func(l OrderLineInput) string { return l.ProductID })
	found, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}
	byID := collection.KeyBy(found, func(p models.Product) string { return p.ID })

	items := make([]models.OrderItem, 0, len(lines))
	priced := make([]PricedLine, 0, len(lines))
	for _, l := range lines {
		p, ok := byID[l.ProductID]
		if !ok {
			return nil, fmt.Errorf("place order: product %s: %w", l.ProductID, repositories.ErrNotFound)
		}
		items = append(items, models.OrderItem{
			ProductID: p.ID, Name: p.Name, Image: p.Image, Price: p.Price, Quantity: l.Quantity,
		})
		priced = append(priced, PricedLine{Price: p.Price, Quantity: l.Quantity})
	}

	quote, err := s.pricing.Quote(priced, in.CouponCode)
	if err != nil {
		return nil, err
	}

	reserved, err := s.reserve(ctx, items)
	if err != nil {
		return nil, err
	}

	a := in.ShippingAddress
	order := &models.Order{
		UserID:   userID,
		Products: items,
		ShippingAddress: models.ShippingAddress{
			FullName: a.FullName, Phone: a.Phone, Address: a.Address,
			City: a.City, PostalCode: a.PostalCode, Country: a.Country,
		},
		PaymentMethod: in.PaymentMethod,
		CouponCode:    quote.CouponCode,
		ItemsPrice:    quote.ItemsPrice,
		ShippingPrice: quote.ShippingPrice,
		TaxPrice:      quote.TaxPrice,
		DiscountPrice: quote.DiscountPrice,
		TotalPrice:    quote.TotalPrice,
		Status:        models.StatusPending,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		s.release(ctx, reserved)
		return nil, fmt.Errorf("place order: %w", err)
	}

	if fromCart {
		if err := s.cart.Clear(ctx, UserCart(userID)); err != nil {
			log.Warn("order placed but cart not cleared", "order_id", order.ID, "error", err)
		}
	}
	s.catalog.invalidate(ctx)
	metrics.RecordOrderPlaced(order.PaymentMethod, order.TotalPrice)
	log.Info("order placed", "order_id", order.ID, "order_number", order.OrderNumber, "total", order.TotalPrice)

	event.FireAsync(EventOrderPlaced, order)
	return order, nil
}

// reserve takes stock line by line. On any failure the lines already taken
// are put back and nothing stays reserved.
func (s *OrderService) reserve(ctx context.Context, items []models.OrderItem) ([]models.OrderItem, error) {
	reserved := make([]models.OrderItem, 0, len(items))
	for _, it := range items {
		err := s.products.DecrementStock(ctx, it.ProductID, it.Quantity)
		if err == nil {
			reserved = append(reserved, it)
			continue
		}
		s.release(ctx, reserved)
		if errors.Is(err, repositories.ErrInsufficientStock) {
			metrics.StockRejections.Inc()
			return nil, &StockError{ProductID: it.ProductID, Name: it.Name, Err: err}
		}
		return nil, fmt.Errorf("place order: reserve %s: %w", it.ProductID, err)
	}
	return reserved, nil
}

func (s *OrderService) release(ctx context.Context, items []models.OrderItem) {
	for _, it := range items {
		if err := s.products.IncrementStock(ctx, it.ProductID, it.Quantity); err != nil {
			logger.WithCtx(ctx).Error("stock release failed",
				"product_id", it.ProductID, "quantity", it.Quantity, "error", err)
		}
	}
}

func (s *OrderService) ListMine(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// Get returns an order visible to the caller. Foreign orders look missing.
func (s *OrderService) Get(ctx context.Context, userID string, isAdmin bool, id string) (*models.Order, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if !isAdmin && !o.Owns(userID) {
		return nil, fmt.Errorf("get order: %w", repositories.ErrNotFound)
	}
	return o, nil
}

// List is the admin listing with the buyer summary attached.
func (s *OrderService) List(ctx context.Context, f repositories.OrderFilter) (*OrderPage, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	f.Page, f.Limit = orm.Clamp(f.Page, f.Limit, 20, 100)

	orders, total, err := s.orders.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}

	userIDs := collection.Unique(collection.Map(orders, func(o models.Order) string { return o.UserID }))
	users, err := s.users.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	byID := collection.KeyBy(users, func(u models.User) string { return u.ID })
	for i := range orders {
		if u, ok := byID[orders[i].UserID]; ok {
			orders[i].User = u.Summary()
		}
	}
	return &OrderPage{Items: orders, Pagination: orm.NewPagination(f.Page, f.Limit, total)}, nil
}

// UpdateStatus is the admin status change. Re-applying the current status
// succeeds without side effects.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, to models.OrderStatus) (*models.Order, error) {
	if !to.Valid() {
		return nil, ErrInvalidStatus
	}
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}
	if o.Status == to {
		return o, nil
	}
	if !o.Status.CanTransition(to) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, o.Status, to)
	}
	if err := s.transition(ctx, o, to); err != nil {
		return nil, err
	}
	return o, nil
}

// Cancel lets a buyer cancel their own order while it is still Pending.
func (s *OrderService) Cancel(ctx context.Context, userID, id string) (*models.Order, error) {
	o, err := s.Get(ctx, userID, false, id)
	if err != nil {
		return nil, err
	}
	if o.Status != models.StatusPending {
		return nil, fmt.Errorf("%w: only pending orders can be cancelled", ErrInvalidTransition)
	}
	if err := s.transition(ctx, o, models.StatusCancelled); err != nil {
		return nil, err
	}
	return o, nil
}

// transition persists o.Status -> to conditionally on the status o was read
// with, so two concurrent changes cannot both win.
func (s *OrderService) transition(ctx context.Context, o *models.Order, to models.OrderStatus) error {
	from := o.Status
	at := s.now()
	if err := s.orders.UpdateStatus(ctx, o.ID, from, to, at); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: order changed concurrently", ErrInvalidTransition)
		}
		return fmt.Errorf("update order: %w", err)
	}

	o.Status, o.UpdatedAt = to, at
	if to == models.StatusCancelled {
		o.CancelledAt = &at
		s.release(ctx, o.Products)
		s.catalog.invalidate(ctx)
	}

	metrics.RecordTransition(string(from), string(to))
	logger.WithCtx(ctx).Info("order status changed", "order_id", o.ID, "from", from, "to", to)
	event.FireAsync(EventOrderStatusChanged, &StatusChange{Order: o, From: from})
	return nil
}

// ExpirePending cancels Pending orders older than ttl and restocks them.
func (s *OrderService) ExpirePending(ctx context.Context, ttl time.Duration) (int, error) {
	stale, err := s.orders.PendingOlderThan(ctx, s.now().Add(-ttl))
	if err != nil {
		return 0, fmt.Errorf("expire pending: %w", err)
	}
	n := 0
	for i := range stale {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if err := s.transition(ctx, &stale[i], models.StatusCancelled); err != nil {
			logger.WithCtx(ctx).Warn("expire pending: skipped", "order_id", stale[i].ID, "error", err)
			continue
		}
		n++
	}
	return n, nil
}
