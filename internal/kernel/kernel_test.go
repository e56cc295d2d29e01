package kernel_test

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/shopease/app/models"
	"github.com/shashiranjanraj/shopease/app/repositories"
	"github.com/shashiranjanraj/shopease/app/routes"
	"github.com/shashiranjanraj/shopease/app/services"
	"github.com/shashiranjanraj/shopease/internal/kernel"
	"github.com/shashiranjanraj/shopease/pkg/cache"
	"github.com/shashiranjanraj/shopease/pkg/database"
	"github.com/shashiranjanraj/shopease/pkg/event"
	"github.com/shashiranjanraj/shopease/pkg/sse"
	"github.com/shashiranjanraj/shopease/pkg/storage"
	"github.com/shashiranjanraj/shopease/pkg/testkit"
	"github.com/shashiranjanraj/shopease/pkg/ws"
)

type app struct {
	h     http.Handler
	api   *testkit.Client
	repos *repositories.Repositories
	svc   *services.Services
	admin string
}

func newApp(t *testing.T) *app {
	t.Helper()

	db, err := database.Open("sqlite", fmt.Sprintf("file:kernel_%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Product{}, &models.Order{}, &models.OrderItem{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	prev := cache.Current()
	cache.Use(cache.NewMemoryStore())
	t.Cleanup(func() { cache.Use(prev) })
	event.Flush()
	t.Cleanup(event.Flush)

	disk, err := storage.NewLocalDisk(t.TempDir(), "/storage")
	require.NoError(t, err)
	storage.Register(disk)
	storage.SetDefault("local")

	repos := repositories.NewGorm(db)
	svc := services.New(repos, storage.Default)

	r, err := kernel.NewHTTPKernel(kernel.Options{
		Deps: routes.Deps{Services: svc, Broker: sse.NewBroker(4), Hub: ws.NewHub()},
		Ping: func(context.Context) error { return nil },
	})
	require.NoError(t, err)

	a := &app{h: r.Handler(), repos: repos, svc: svc}
	a.api = testkit.New(t, a.h)

	_, err = svc.Users.EnsureAdmin(context.Background(), "Admin", "admin@shop.test", "admin123")
	require.NoError(t, err)
	a.admin = a.login(t, "admin@shop.test", "admin123")
	return a
}

func (a *app) login(t *testing.T, email, password string) string {
	t.Helper()
	var res services.AuthResult
	a.api.Post("/api/users/login", map[string]string{"email": email, "password": password}).
		AssertStatus(http.StatusOK).Data(&res)
	require.NotEmpty(t, res.Token)
	return res.Token
}

func (a *app) customer(t *testing.T, email string) string {
	t.Helper()
	var res services.AuthResult
	a.api.Post("/api/users/register", map[string]string{"name": "Cust", "email": email, "password": "secret1"}).
		AssertStatus(http.StatusCreated).Data(&res)
	return res.Token
}

func (a *app) product(t *testing.T, name string, price float64, stock int) models.Product {
	t.Helper()
	var p models.Product
	a.api.As(a.admin).Post("/api/products", map[string]any{
		"name": name, "price": price, "stock": stock, "category": "Gadgets", "brand": "Acme",
	}).AssertStatus(http.StatusCreated).AssertMessage("Created").Data(&p)
	return p
}

func shipping() map[string]string {
	return map[string]string{"fullName": "Ada L", "address": "1 Main St", "city": "Springfield", "postalCode": "12345", "country": "US"}
}

// ─── Infrastructure ───────────────────────────────────────────────────────────

func TestHealthAndMetrics(t *testing.T) {
	a := newApp(t)
	a.api.Get("/health").AssertStatus(http.StatusOK)

	res := a.api.Get("/metrics").AssertStatus(http.StatusOK)
	assert.Contains(t, res.Body(), "http_requests_total")
}

func TestUnknownRouteIsEnvelope404(t *testing.T) {
	a := newApp(t)
	a.api.Get("/api/nope").AssertStatus(http.StatusNotFound)
}

func TestRequestIDHeader(t *testing.T) {
	a := newApp(t)
	res := a.api.WithHeader("X-Request-ID", "abc-123").Get("/health")
	assert.Equal(t, "abc-123", res.Rec.Header().Get("X-Request-ID"))
}

// ─── Auth ─────────────────────────────────────────────────────────────────────

func TestAuthFlow(t *testing.T) {
	a := newApp(t)

	var reg services.AuthResult
	a.api.Post("/api/users/register", map[string]string{"name": "Ann", "email": "Ann@Shop.test", "password": "secret1"}).
		AssertStatus(http.StatusCreated).Data(&reg)
	require.NotNil(t, reg.User)
	assert.Equal(t, "ann@shop.test", reg.User.Email)

	a.api.Post("/api/users/register", map[string]string{"name": "Ann", "email": "ann@shop.test", "password": "secret1"}).
		AssertStatus(http.StatusConflict)

	a.api.Post("/api/users/register", map[string]string{"email": "bad", "password": "1"}).
		AssertStatus(http.StatusUnprocessableEntity).
		AssertFieldError("name").AssertFieldError("email").AssertFieldError("password")

	a.api.Post("/api/users/login", map[string]string{"email": "ann@shop.test", "password": "wrong!"}).
		AssertStatus(http.StatusUnauthorized).AssertMessage("Invalid email or password")

	var me models.User
	a.api.As(reg.Token).Get("/api/users/profile").AssertStatus(http.StatusOK).Data(&me)
	assert.Equal(t, "Ann", me.Name)

	a.api.As(reg.Token).Put("/api/users/profile", map[string]string{"name": "Annie"}).
		AssertStatus(http.StatusOK).Data(&me)
	assert.Equal(t, "Annie", me.Name)

	var refreshed services.AuthResult
	a.api.Post("/api/users/refresh", map[string]string{"refreshToken": reg.RefreshToken}).
		AssertStatus(http.StatusOK).Data(&refreshed)
	assert.NotEmpty(t, refreshed.Token)

	a.api.Post("/api/users/refresh", map[string]string{"refreshToken": reg.Token}).
		AssertStatus(http.StatusUnauthorized)

	a.api.Get("/api/users/profile").AssertStatus(http.StatusUnauthorized).AssertMessage("Unauthorized")
	a.api.As("garbage").Get("/api/users/profile").AssertStatus(http.StatusUnauthorized).AssertMessage("Invalid token")
}

func TestAdminUserManagement(t *testing.T) {
	a := newApp(t)
	tok := a.customer(t, "bob@shop.test")

	a.api.As(tok).Get("/api/users").AssertStatus(http.StatusForbidden).AssertMessage("Admin access required")

	var page struct {
		Items []models.User `json:"items"`
	}
	a.api.As(a.admin).Get("/api/users").AssertStatus(http.StatusOK).Data(&page)
	require.Len(t, page.Items, 2)

	bob, err := a.repos.Users.FindByEmail(context.Background(), "bob@shop.test")
	require.NoError(t, err)

	var u models.User
	a.api.As(a.admin).Put("/api/users/"+bob.ID, map[string]any{"isAdmin": true}).
		AssertStatus(http.StatusOK).Data(&u)
	assert.True(t, u.IsAdmin)

	admin, err := a.repos.Users.FindByEmail(context.Background(), "admin@shop.test")
	require.NoError(t, err)
	a.api.As(a.admin).Delete("/api/users/" + admin.ID).AssertStatus(http.StatusBadRequest)

	a.api.As(a.admin).Delete("/api/users/" + bob.ID).AssertStatus(http.StatusOK)
	a.api.As(a.admin).Get("/api/users/" + bob.ID).AssertStatus(http.StatusNotFound)
}

// ─── Catalog ──────────────────────────────────────────────────────────────────

func TestProductCRUD(t *testing.T) {
	a := newApp(t)
	p := a.product(t, "Widget", 25, 4)

	var got models.Product
	a.api.Get("/api/products/" + p.ID).AssertStatus(http.StatusOK).Data(&got)
	assert.Equal(t, "Widget", got.Name)

	a.api.As(a.admin).Put("/api/products/"+p.ID, map[string]any{"price": 30}).
		AssertStatus(http.StatusOK).Data(&got)
	assert.Equal(t, 30.0, got.Price)
	assert.Equal(t, 4, got.Stock, "absent fields are kept")

	a.api.As(a.admin).Delete("/api/products/" + p.ID).AssertStatus(http.StatusOK).AssertMessage("Deleted")
	a.api.Get("/api/products/" + p.ID).AssertStatus(http.StatusNotFound).AssertMessage("Not found")
	a.api.As(a.admin).Delete("/api/products/" + p.ID).AssertStatus(http.StatusNotFound)
}

func TestProductWritesRequireAdmin(t *testing.T) {
	a := newApp(t)
	tok := a.customer(t, "c@shop.test")

	a.api.Post("/api/products", map[string]any{"name": "X"}).AssertStatus(http.StatusUnauthorized)
	a.api.As(tok).Post("/api/products", map[string]any{"name": "X"}).AssertStatus(http.StatusForbidden)
	a.api.As(a.admin).Post("/api/products", map[string]any{"price": -1}).
		AssertStatus(http.StatusUnprocessableEntity).AssertFieldError("name").AssertFieldError("price")
}

func TestProductPriceAndNameRules(t *testing.T) {
	a := newApp(t)
	p := a.product(t, "Widget", 25, 4)

	a.api.As(a.admin).Post("/api/products", map[string]any{"name": "X", "price": 50, "originalPrice": 5}).
		AssertStatus(http.StatusUnprocessableEntity).AssertFieldError("originalPrice")
	a.api.As(a.admin).Put("/api/products/"+p.ID, map[string]any{"originalPrice": 10}).
		AssertStatus(http.StatusUnprocessableEntity).AssertFieldError("originalPrice")
	a.api.As(a.admin).Put("/api/products/"+p.ID, map[string]any{"name": "   "}).
		AssertStatus(http.StatusUnprocessableEntity).AssertFieldError("name")
	a.api.As(a.admin).Put("/api/users/profile", map[string]any{"name": " "}).
		AssertStatus(http.StatusUnprocessableEntity).AssertFieldError("name")

	var got models.Product
	a.api.As(a.admin).Put("/api/products/"+p.ID, map[string]any{"originalPrice": 40}).
		AssertStatus(http.StatusOK).Data(&got)
	require.NotNil(t, got.OriginalPrice)
	assert.Equal(t, 40.0, *got.OriginalPrice)
	assert.Equal(t, "Widget", got.Name)
}

func TestProductListing(t *testing.T) {
	a := newApp(t)
	a.product(t, "Cheap Cable", 5, 10)
	a.product(t, "Pricey Phone", 500, 0)
	a.product(t, "Mid Mouse", 40, 3)

	var page struct {
		Items      []models.Product `json:"items"`
		Pagination struct {
			Total      int `json:"total"`
			TotalPages int `json:"totalPages"`
		} `json:"pagination"`
	}
	a.api.Get("/api/products?sort=price_low&limit=2").AssertStatus(http.StatusOK).Data(&page)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Cheap Cable", page.Items[0].Name)
	assert.Equal(t, 3, page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.TotalPages)

	a.api.Get("/api/products?inStock=true&search=PHONE").AssertStatus(http.StatusOK).Data(&page)
	assert.Empty(t, page.Items)

	a.api.Get("/api/products?minPrice=abc").AssertStatus(http.StatusBadRequest)

	var facets repositories.Facets
	a.api.Get("/api/products/facets").AssertStatus(http.StatusOK).Data(&facets)
	assert.Equal(t, []string{"Gadgets"}, facets.Categories)
}

func TestProductImageUpload(t *testing.T) {
	a := newApp(t)
	p := a.product(t, "Camera", 99, 1)

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.White)
	var pngBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, img))

	upload := func(content []byte) *httptest.ResponseRecorder {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		fw, err := mw.CreateFormFile("image", "pic.png")
		require.NoError(t, err)
		_, _ = fw.Write(content)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/products/"+p.ID+"/image", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+a.admin)
		rec := httptest.NewRecorder()
		a.h.ServeHTTP(rec, req)
		return rec
	}

	rec := upload(pngBuf.Bytes())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got, err := a.repos.Products.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Contains(t, got.Image, "/storage/products/"+p.ID+"/")
	require.Len(t, got.Images, 1)

	served := a.api.Get(got.Image)
	assert.Equal(t, http.StatusOK, served.Code())

	rec = upload([]byte("not an image at all"))
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestGraphQLCatalog(t *testing.T) {
	a := newApp(t)
	p := a.product(t, "Lamp", 20, 2)

	res := a.api.Post("/graphql", map[string]any{
		"query":     `query($id: ID!) { product(id: $id) { id name price } facets { brands } products(limit: 5) { items { name } pagination { total } } }`,
		"variables": map[string]any{"id": p.ID},
	})
	require.Equal(t, http.StatusOK, res.Code())
	assert.JSONEq(t, fmt.Sprintf(`{"data":{
		"product":{"id":%q,"name":"Lamp","price":20},
		"facets":{"brands":["Acme"]},
		"products":{"items":[{"name":"Lamp"}],"pagination":{"total":1}}
	}}`, p.ID), res.Body())
}

// ─── Cart and orders ──────────────────────────────────────────────────────────

func TestGuestCartMergesOnLogin(t *testing.T) {
	a := newApp(t)
	p := a.product(t, "Mug", 12.5, 10)
	a.customer(t, "guest@shop.test")

	res := a.api.Post("/api/cart/items", map[string]any{"productId": p.ID, "quantity": 2}).AssertStatus(http.StatusOK)
	cookies := res.Cookies()
	require.NotEmpty(t, cookies, "guest cart issues a session cookie")
	guest := a.api.WithCookies(cookies)

	var cart services.Cart
	guest.Get("/api/cart").AssertStatus(http.StatusOK).Data(&cart)
	assert.Equal(t, 2, cart.ItemCount)
	assert.Equal(t, 25.0, cart.TotalPrice)

	var auth services.AuthResult
	guest.Post("/api/users/login", map[string]string{"email": "guest@shop.test", "password": "secret1"}).
		AssertStatus(http.StatusOK).Data(&auth)

	a.api.As(auth.Token).Get("/api/cart").AssertStatus(http.StatusOK).Data(&cart)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
}

func TestCartOperations(t *testing.T) {
	a := newApp(t)
	tok := a.customer(t, "cart@shop.test")
	p := a.product(t, "Pen", 60, 10)
	sold := a.product(t, "Sold Out", 1, 0)
	me := a.api.As(tok)

	me.Post("/api/cart/items", map[string]any{"productId": "missing", "quantity": 1}).AssertStatus(http.StatusNotFound)
	me.Post("/api/cart/items", map[string]any{"productId": sold.ID, "quantity": 1}).AssertStatus(http.StatusConflict)
	me.Post("/api/cart/items", map[string]any{"productId": p.ID, "quantity": 0}).AssertStatus(http.StatusUnprocessableEntity)

	me.Post("/api/cart/items", map[string]any{"productId": p.ID, "quantity": 1}).AssertStatus(http.StatusOK)
	me.Post("/api/cart/items", map[string]any{"productId": p.ID, "quantity": 1}).AssertStatus(http.StatusOK)

	var cart services.Cart
	me.Put("/api/cart/items/"+p.ID, map[string]any{"quantity": 0}).AssertStatus(http.StatusOK).Data(&cart)
	assert.Equal(t, 1, cart.Items[0].Quantity, "quantities clamp to 1")
	me.Put("/api/cart/items/missing", map[string]any{"quantity": 2}).AssertStatus(http.StatusNotFound)

	me.Put("/api/cart/items/"+p.ID, map[string]any{"quantity": 2}).AssertStatus(http.StatusOK)
	var q services.Quote
	me.Post("/api/cart/quote", map[string]any{"couponCode": "discount20"}).AssertStatus(http.StatusOK).Data(&q)
	assert.Equal(t, services.Quote{ItemsPrice: 120, ShippingPrice: 0, DiscountPrice: 24, TaxPrice: 9.6, TotalPrice: 105.6, CouponCode: "DISCOUNT20"}, q)
	me.Post("/api/cart/quote", map[string]any{"couponCode": "BOGUS"}).AssertStatus(http.StatusBadRequest)

	me.Delete("/api/cart").AssertStatus(http.StatusOK).Data(&cart)
	assert.Empty(t, cart.Items)
}

func TestOrderLifecycle(t *testing.T) {
	a := newApp(t)
	tok := a.customer(t, "buyer@shop.test")
	other := a.customer(t, "other@shop.test")
	p := a.product(t, "Kettle", 30, 5)
	me := a.api.As(tok)

	me.Post("/api/orders", map[string]any{"shippingAddress": shipping(), "paymentMethod": "cash"}).
		AssertStatus(http.StatusBadRequest).AssertMessage("Order has no items")
	me.Post("/api/orders", map[string]any{"items": []map[string]any{{"productId": p.ID, "quantity": 1}}, "paymentMethod": "barter"}).
		AssertStatus(http.StatusUnprocessableEntity).AssertFieldError("paymentMethod")
	me.Post("/api/orders", map[string]any{
		"items": []map[string]any{{"productId": p.ID, "quantity": 9}}, "shippingAddress": shipping(), "paymentMethod": "cash",
	}).AssertStatus(http.StatusConflict)

	var o models.Order
	me.Post("/api/orders", map[string]any{
		"items":           []map[string]any{{"productId": p.ID, "quantity": 2}},
		"shippingAddress": shipping(),
		"paymentMethod":   "credit",
		"totalPrice":      0.01,
	}).AssertStatus(http.StatusCreated).AssertMessage("Order placed").Data(&o)
	assert.Equal(t, 60.0, o.ItemsPrice)
	assert.Equal(t, 10.0, o.ShippingPrice)
	assert.Equal(t, 6.0, o.TaxPrice)
	assert.Equal(t, 76.0, o.TotalPrice)
	assert.Equal(t, models.StatusPending, o.Status)

	var mine []models.Order
	me.Get("/api/orders/user").AssertStatus(http.StatusOK).Data(&mine)
	require.Len(t, mine, 1)

	me.Get("/api/orders/" + o.ID).AssertStatus(http.StatusOK)
	a.api.As(other).Get("/api/orders/" + o.ID).AssertStatus(http.StatusNotFound)
	a.api.As(a.admin).Get("/api/orders/" + o.ID).AssertStatus(http.StatusOK)

	me.Get("/api/orders").AssertStatus(http.StatusForbidden)
	var page struct {
		Items []models.Order `json:"items"`
	}
	a.api.As(a.admin).Get("/api/orders?status=Pending").AssertStatus(http.StatusOK).Data(&page)
	require.Len(t, page.Items, 1)
	require.NotNil(t, page.Items[0].User)
	assert.Equal(t, "buyer@shop.test", page.Items[0].User.Email)

	a.api.As(a.admin).Put("/api/orders/"+o.ID, map[string]string{"status": "Lost"}).
		AssertStatus(http.StatusUnprocessableEntity).AssertFieldError("status")
	a.api.As(a.admin).Put("/api/orders/"+o.ID, map[string]string{"status": "Shipped"}).
		AssertStatus(http.StatusOK).AssertMessage("Order status updated").Data(&o)
	assert.Equal(t, models.StatusShipped, o.Status)
	a.api.As(a.admin).Put("/api/orders/"+o.ID, map[string]string{"status": "Pending"}).
		AssertStatus(http.StatusConflict)

	me.Put("/api/orders/"+o.ID+"/cancel", nil).AssertStatus(http.StatusConflict)

	var stats services.Stats
	a.api.As(a.admin).Get("/api/admin/stats").AssertStatus(http.StatusOK).Data(&stats)
	assert.Equal(t, 76.0, stats.TotalSales)
	assert.EqualValues(t, 1, stats.TotalOrders)
	assert.EqualValues(t, 3, stats.TotalUsers)
	assert.EqualValues(t, 1, stats.OrdersByStatus[models.StatusShipped])
}

func TestCancelRestocks(t *testing.T) {
	a := newApp(t)
	tok := a.customer(t, "cancel@shop.test")
	p := a.product(t, "Lamp", 15, 3)
	me := a.api.As(tok)

	me.Post("/api/cart/items", map[string]any{"productId": p.ID, "quantity": 3}).AssertStatus(http.StatusOK)

	var o models.Order
	me.Post("/api/orders", map[string]any{"shippingAddress": shipping(), "paymentMethod": "paypal"}).
		AssertStatus(http.StatusCreated).Data(&o)

	var cart services.Cart
	me.Get("/api/cart").Data(&cart)
	assert.Empty(t, cart.Items, "checkout clears the cart")

	got, _ := a.repos.Products.FindByID(context.Background(), p.ID)
	assert.Equal(t, 0, got.Stock)

	me.Put("/api/orders/"+o.ID+"/cancel", nil).AssertStatus(http.StatusOK).Data(&o)
	assert.Equal(t, models.StatusCancelled, o.Status)

	got, _ = a.repos.Products.FindByID(context.Background(), p.ID)
	assert.Equal(t, 3, got.Stock)
}

func TestFeedRequiresAdminToken(t *testing.T) {
	a := newApp(t)
	tok := a.customer(t, "ws@shop.test")

	a.api.Get("/ws/admin/orders").AssertStatus(http.StatusUnauthorized)
	a.api.Get("/ws/admin/orders?token=" + tok).AssertStatus(http.StatusForbidden)
}
