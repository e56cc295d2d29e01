package seeders

import (
	"context"
	"errors"
	"fmt"

	"github.com/shashiranjanraj/shopease/app/models"
	"github.com/shashiranjanraj/shopease/app/repositories"
	"github.com/shashiranjanraj/shopease/app/services"
	"github.com/shashiranjanraj/shopease/config"
)

func init() {
	Register("admin", seedAdmin)
	Register("products", seedProducts)
}

func seedAdmin(ctx context.Context, env Env) error {
	email := config.Get("ADMIN_EMAIL", "admin@shopease.local")
	created, err := env.Services.Users.EnsureAdmin(ctx, "Administrator", email, config.Get("ADMIN_PASSWORD", "admin123"))
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(env.Out, "(admin %s) ", email)
	}
	return nil
}

func price(v float64) *float64 { return &v }

// Catalog is the sample product set.
var Catalog = []services.ProductInput{
	{Name: "Aurora Wireless Headphones", Category: "Electronics", Brand: "Sonique", Price: 129.99, OriginalPrice: price(159.99), Stock: 25, Rating: 4.6,
		Description: "Over-ear noise cancelling headphones with 30 hour battery life.",
		Features:    []string{"Active noise cancelling", "Bluetooth 5.3", "USB-C fast charge"},
		Specifications: []models.Spec{{Name: "Battery", Value: "30 h"}, {Name: "Weight", Value: "250 g"}}},
	{Name: "Pulse Fitness Tracker", Category: "Electronics", Brand: "Vitalis", Price: 49.99, Stock: 40, Rating: 4.2,
		Description: "Slim tracker with heart-rate and sleep monitoring.",
		Features:    []string{"Heart-rate sensor", "7 day battery", "Water resistant"}},
	{Name: "Nimbus 14 Laptop", Category: "Electronics", Brand: "Altair", Price: 899.00, OriginalPrice: price(999.00), Stock: 8, Rating: 4.7,
		Description: "Lightweight 14 inch laptop for everyday work.",
		Specifications: []models.Spec{{Name: "CPU", Value: "8-core"}, {Name: "RAM", Value: "16 GB"}, {Name: "Storage", Value: "512 GB SSD"}}},
	{Name: "Echo Smart Speaker", Category: "Electronics", Brand: "Sonique", Price: 79.50, Stock: 3, Rating: 4.1,
		Description: "Compact speaker with voice assistant support."},
	{Name: "Trailblazer Running Shoes", Category: "Footwear", Brand: "Stride", Price: 89.95, Stock: 30, Rating: 4.5,
		Description: "Cushioned trail shoes with a grippy outsole.",
		Features:    []string{"Breathable mesh", "Rock plate"}},
	{Name: "City Loafers", Category: "Footwear", Brand: "Harrow", Price: 65.00, Stock: 12, Rating: 3.9,
		Description: "Leather loafers for the office and beyond."},
	{Name: "Alpine Down Jacket", Category: "Clothing", Brand: "Northpeak", Price: 189.00, OriginalPrice: price(229.00), Stock: 10, Rating: 4.8,
		Description: "Packable 800-fill down jacket."},
	{Name: "Everyday Cotton Tee", Category: "Clothing", Brand: "Harrow", Price: 19.99, Stock: 120, Rating: 4.0,
		Description: "Organic cotton crew neck tee."},
	{Name: "Barista Espresso Machine", Category: "Home", Brand: "Crema", Price: 349.00, Stock: 5, Rating: 4.4,
		Description: "15 bar espresso machine with steam wand."},
	{Name: "Cast Iron Skillet", Category: "Home", Brand: "Forge & Co", Price: 34.50, Stock: 60, Rating: 4.9,
		Description: "Pre-seasoned 12 inch skillet."},
	{Name: "The Pragmatic Gardener", Category: "Books", Brand: "Leaf Press", Price: 24.00, Stock: 0, Rating: 4.3,
		Description: "A practical guide to small-space gardening."},
	{Name: "Yoga Mat Pro", Category: "Sports", Brand: "Vitalis", Price: 39.99, Stock: 22, Rating: 4.2,
		Description: "6 mm non-slip mat with carry strap."},
}

func seedProducts(ctx context.Context, env Env) error {
	added := 0
	for _, in := range Catalog {
		_, err := env.Repos.Products.FindByName(ctx, in.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return err
		}
		if _, err := env.Services.Products.Create(ctx, in); err != nil {
			return fmt.Errorf("%s: %w", in.Name, err)
		}
		added++
	}
	fmt.Fprintf(env.Out, "(%d products) ", added)
	return nil
}
