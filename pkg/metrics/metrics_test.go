package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/shopease/pkg/metrics"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(metrics.Middleware())
	r.Get("/api/products/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok")) //nolint:errcheck
	})

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/products/"+id, nil))
	}

	got := testutil.ToFloat64(metrics.RequestTotal.WithLabelValues("GET", "/api/products/{id}", "200"))
	assert.Equal(t, float64(3), got)
}

func TestRecordOrderPlaced(t *testing.T) {
	before := testutil.ToFloat64(metrics.OrdersPlaced.WithLabelValues("paypal"))
	metrics.RecordOrderPlaced("paypal", 42.5)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.OrdersPlaced.WithLabelValues("paypal")))
}

func TestHandler_ExposesShopMetrics(t *testing.T) {
	metrics.RecordTransition("Pending", "Shipped")

	rec := httptest.NewRecorder()
	metrics.Handler()(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "shopease_orders_status_transitions_total"))
}
