package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/shopease/app/models"
	"github.com/shashiranjanraj/shopease/app/repositories"
	"github.com/shashiranjanraj/shopease/config"
	"github.com/shashiranjanraj/shopease/pkg/cache"
	"github.com/shashiranjanraj/shopease/pkg/collection"
)

// UserCart and GuestCart build cart owner keys.
func UserCart(userID string) string     { return "user:" + userID }
func GuestCart(sessionID string) string { return "guest:" + sessionID }

func cartKey(owner string) string { return "cart:" + owner }

// CartItem is a product line snapshotted when it was added.
type CartItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type CartLine struct {
	CartItem
	LineTotal float64 `json:"lineTotal"`
}

// Cart is the view returned to clients.
type Cart struct {
	Items      []CartLine `json:"items"`
	ItemCount  int        `json:"itemCount"`
	TotalPrice float64    `json:"totalPrice"`
}

// CartService keeps carts in the cache, one entry per owner.
type CartService struct {
	products repositories.ProductRepository
	pricing  Pricing

	// locks serialises read-modify-write per owner within this process.
	locks sync.Map
}

func NewCartService(products repositories.ProductRepository, pricing Pricing) *CartService {
	return &CartService{products: products, pricing: pricing}
}

func (s *CartService) lock(owner string) func() {
	m, _ := s.locks.LoadOrStore(owner, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Items returns the raw cart lines of owner.
func (s *CartService) Items(ctx context.Context, owner string) []CartItem {
	var items []CartItem
	cache.Get(ctx, cartKey(owner), &items)
	return items
}

func (s *CartService) save(ctx context.Context, owner string, items []CartItem) error {
	if len(items) == 0 {
		return cache.Del(ctx, cartKey(owner))
	}
	if err := cache.Set(ctx, cartKey(owner), items, config.CartTTL()); err != nil {
		return fmt.Errorf("cart: save: %w", err)
	}
	return nil
}

func view(items []CartItem) *Cart {
	c := &Cart{Items: make([]CartLine, 0, len(items))}
	for _, it := range items {
		line := CartLine{CartItem: it, LineTotal: Round(it.Price * float64(it.Quantity))}
		c.Items = append(c.Items, line)
		c.ItemCount += it.Quantity
	}
	c.TotalPrice = Round(collection.Sum(items, func(it CartItem) float64 { return it.Price * float64(it.Quantity) }))
	return c
}

func (s *CartService) Get(ctx context.Context, owner string) *Cart {
	return view(s.Items(ctx, owner))
}

// Add puts qty units of a product in the cart, summing with an existing line.
func (s *CartService) Add(ctx context.Context, owner, productID string, qty int) (*Cart, error) {
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("cart add: %w", err)
	}
	if !p.InStock() {
		return nil, ErrOutOfStock
	}

	defer s.lock(owner)()
	items := s.Items(ctx, owner)
	items = addLine(items, snapshot(p, qty))
	if err := s.save(ctx, owner, items); err != nil {
		return nil, err
	}
	return view(items), nil
}

func snapshot(p *models.Product, qty int) CartItem {
	return CartItem{ProductID: p.ID, Name: p.Name, Image: p.Image, Price: p.Price, Quantity: qty}
}

func addLine(items []CartItem, in CartItem) []CartItem {
	for i := range items {
		if items[i].ProductID == in.ProductID {
			items[i].Quantity += in.Quantity
			items[i].Name, items[i].Image, items[i].Price = in.Name, in.Image, in.Price
			return items
		}
	}
	return append(items, in)
}

// SetQuantity replaces a line's quantity. Values below 1 clamp to 1.
func (s *CartService) SetQuantity(ctx context.Context, owner, productID string, qty int) (*Cart, error) {
	if qty < 1 {
		qty = 1
	}
	defer s.lock(owner)()
	items := s.Items(ctx, owner)
	found := false
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity = qty
			found = true
		}
	}
	if !found {
		return nil, ErrCartItemNotFound
	}
	if err := s.save(ctx, owner, items); err != nil {
		return nil, err
	}
	return view(items), nil
}

func (s *CartService) Remove(ctx context.Context, owner, productID string) (*Cart, error) {
	defer s.lock(owner)()
	items := s.Items(ctx, owner)
	kept := collection.Filter(items, func(it CartItem) bool { return it.ProductID != productID })
	if len(kept) == len(items) {
		return nil, ErrCartItemNotFound
	}
	if err := s.save(ctx, owner, kept); err != nil {
		return nil, err
	}
	return view(kept), nil
}

func (s *CartService) Clear(ctx context.Context, owner string) error {
	defer s.lock(owner)()
	return cache.Del(ctx, cartKey(owner))
}

// Merge moves every line of from into to and deletes from.
func (s *CartService) Merge(ctx context.Context, from, to string) error {
	guest := s.Items(ctx, from)
	if len(guest) == 0 {
		return nil
	}
	defer s.lock(to)()
	items := s.Items(ctx, to)
	for _, it := range guest {
		items = addLine(items, it)
	}
	if err := s.save(ctx, to, items); err != nil {
		return err
	}
	return cache.Del(ctx, cartKey(from))
}

// Quote prices the cart at current catalog prices. Lines whose product no
// longer exists are ignored.
func (s *CartService) Quote(ctx context.Context, owner, coupon string) (*Quote, error) {
	items := s.Items(ctx, owner)
	ids := collection.Unique(collection.Map(items, func(it CartItem) string { return it.ProductID }))
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("cart quote: %w", err)
	}
	byID := collection.KeyBy(products, func(p models.Product) string { return p.ID })

	var lines []PricedLine
	for _, it := range items {
		if p, ok := byID[it.ProductID]; ok {
			lines = append(lines, PricedLine{Price: p.Price, Quantity: it.Quantity})
		}
	}
	q, err := s.pricing.Quote(lines, coupon)
	if err != nil {
		return nil, err
	}
	return &q, nil
}
