package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/shopease/pkg/router"
)

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func tag(v string) router.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("X-Chain", v)
			next.ServeHTTP(w, r)
		})
	}
}

func TestGroupMiddlewareOrder(t *testing.T) {
	r := router.New()
	api := r.Group("/api", tag("api"))
	orders := api.Group("orders", tag("orders"))
	orders.Put("/{id}", "orders.update", ok, tag("route"))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/orders/42", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"api", "orders", "route"}, rec.Header().Values("X-Chain"))
}

func TestNamedURL(t *testing.T) {
	r := router.New()
	r.Group("/api/products").Get("/{id}", "products.show", ok)

	url, err := r.URL("products.show", map[string]string{"id": "p1"})
	require.NoError(t, err)
	assert.Equal(t, "/api/products/p1", url)

	_, err = r.URL("products.show", nil)
	assert.Error(t, err)
	_, err = r.URL("nope", nil)
	assert.Error(t, err)
}

func TestRoutesTable(t *testing.T) {
	r := router.New()
	g := r.Group("/api/products")
	g.Get("/", "products.index", ok)
	g.Post("/", "products.store", ok)
	g.Delete("/{id}", "products.destroy", ok)
	r.Get("/health", "health", ok)

	routes := r.Routes()
	require.Len(t, routes, 4)
	assert.Equal(t, router.RouteInfo{Method: "GET", Path: "/api/products", Name: "products.index"}, routes[0])
	assert.Equal(t, "/health", routes[3].Path)
}
