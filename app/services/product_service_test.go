package services_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/shopease/app/repositories"
	"github.com/shashiranjanraj/shopease/app/services"
)

func TestNormalize(t *testing.T) {
	f := services.Normalize(repositories.ProductFilter{Page: -1, Limit: 1000, Sort: "bogus", Search: "  shoe "})
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 100, f.Limit)
	assert.Equal(t, repositories.SortNewest, f.Sort)
	assert.Equal(t, "shoe", f.Search)
	assert.Equal(t, 8, services.Normalize(repositories.ProductFilter{}).Limit)
}

func TestCatalogCacheInvalidatedOnWrite(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	p, err := e.svc.Products.Create(ctx, services.ProductInput{Name: "Lamp", Price: 30, Stock: 2, Category: "Home"})
	require.NoError(t, err)

	page, err := e.svc.Products.List(ctx, repositories.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	price := 25.0
	_, err = e.svc.Products.Update(ctx, p.ID, services.ProductPatch{Price: &price})
	require.NoError(t, err)

	page, err = e.svc.Products.List(ctx, repositories.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, 25.0, page.Items[0].Price, "stale listing was served from cache")
	assert.Equal(t, "Home", page.Items[0].Category, "unset patch fields are kept")

	require.NoError(t, e.svc.Products.Delete(ctx, p.ID))
	page, err = e.svc.Products.List(ctx, repositories.ProductFilter{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	assert.ErrorIs(t, e.svc.Products.Delete(ctx, p.ID), repositories.ErrNotFound)
}

func TestFacets(t *testing.T) {
	e := newEnv(t)
	e.product(t, "A", 1, 1)
	f, err := e.svc.Products.Facets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Test"}, f.Categories)
	assert.Equal(t, []string{"Acme"}, f.Brands)
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestUploadImage(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.product(t, "Lamp", 30, 2)

	got, err := e.svc.Products.UploadImage(ctx, p.ID, bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got.Image, "/storage/products/"+p.ID+"/"), got.Image)
	assert.True(t, strings.HasSuffix(got.Image, ".png"))
	assert.Equal(t, []string{got.Image}, got.Images)

	path := strings.TrimPrefix(got.Image, "/storage/")
	ok, err := e.disk.Exists(ctx, path)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = e.svc.Products.UploadImage(ctx, p.ID, strings.NewReader("plain text"))
	assert.ErrorIs(t, err, services.ErrInvalidImage)

	big := append(append([]byte{}, pngHeader...), make([]byte, services.MaxImageBytes)...)
	_, err = e.svc.Products.UploadImage(ctx, p.ID, bytes.NewReader(big))
	assert.ErrorIs(t, err, services.ErrImageTooLarge)

	_, err = e.svc.Products.UploadImage(ctx, "missing", bytes.NewReader(pngHeader))
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestProductWritesKeepReservedStock(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.product(t, "Widget", 30, 5)

	require.NoError(t, e.repos.Products.DecrementStock(ctx, p.ID, 3))

	name := "Widget v2"
	got, err := e.svc.Products.Update(ctx, p.ID, services.ProductPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Widget v2", got.Name)
	assert.Equal(t, 2, got.Stock)

	got, err = e.svc.Products.UploadImage(ctx, p.ID, bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, 2, got.Stock)
	assert.Equal(t, 2, e.stock(t, p.ID))
}

func TestOriginalPriceNotBelowPrice(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	low, high := 5.0, 60.0

	_, err := e.svc.Products.Create(ctx, services.ProductInput{Name: "X", Price: 50, OriginalPrice: &low})
	var fe *services.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "originalPrice", fe.Field)

	p, err := e.svc.Products.Create(ctx, services.ProductInput{Name: "X", Price: 50, OriginalPrice: &high})
	require.NoError(t, err)

	// Raising the price above the stored original price is checked against
	// the merged product.
	price := 70.0
	_, err = e.svc.Products.Update(ctx, p.ID, services.ProductPatch{Price: &price})
	require.ErrorAs(t, err, &fe)

	_, err = e.svc.Products.Update(ctx, p.ID, services.ProductPatch{OriginalPrice: &low})
	require.ErrorAs(t, err, &fe)

	price = 55
	got, err := e.svc.Products.Update(ctx, p.ID, services.ProductPatch{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 55.0, got.Price)
	require.NotNil(t, got.OriginalPrice)
	assert.Equal(t, 60.0, *got.OriginalPrice)
}

func TestUpdateTrimsNames(t *testing.T) {
	e := newEnv(t)
	p := e.product(t, "Lamp", 30, 2)

	name, brand := "  Desk Lamp ", " Lumo "
	got, err := e.svc.Products.Update(context.Background(), p.ID, services.ProductPatch{Name: &name, Brand: &brand})
	require.NoError(t, err)
	assert.Equal(t, "Desk Lamp", got.Name)
	assert.Equal(t, "Lumo", got.Brand)
}
