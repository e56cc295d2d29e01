package ctx_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	appctx "github.com/shashiranjanraj/shopease/pkg/ctx"
	"github.com/shashiranjanraj/shopease/pkg/middleware"
	"github.com/shashiranjanraj/shopease/pkg/orm"
)

func run(req *http.Request, h appctx.HandlerFunc) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	appctx.Wrap(h)(rec, req)
	return rec
}

func TestMessageEnvelope(t *testing.T) {
	rec := run(httptest.NewRequest(http.MethodPut, "/", nil), func(c *appctx.Context) {
		c.Message("Order status updated", map[string]any{"status": "Shipped"})
	})

	var body struct {
		Status  int               `json:"status"`
		Message string            `json:"message"`
		Data    map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Status != 200 || body.Message != "Order status updated" || body.Data["status"] != "Shipped" {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestCreated(t *testing.T) {
	rec := run(httptest.NewRequest(http.MethodPost, "/", nil), func(c *appctx.Context) {
		c.Created("Created", map[string]any{"_id": "p1"})
	})
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
}

func TestPaginated(t *testing.T) {
	rec := run(httptest.NewRequest(http.MethodGet, "/", nil), func(c *appctx.Context) {
		c.Paginated([]string{"a"}, orm.NewPagination(1, 8, 1))
	})
	if !strings.Contains(rec.Body.String(), `"totalPages":1`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestQueryParsing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=2&minPrice=9.5&inStock=true&limit=x", nil)
	run(req, func(c *appctx.Context) {
		if n, err := c.QueryInt("page", 1); err != nil || n != 2 {
			t.Errorf("page: %d %v", n, err)
		}
		if n, err := c.QueryInt("missing", 7); err != nil || n != 7 {
			t.Errorf("missing: %d %v", n, err)
		}
		if f, err := c.QueryFloat("minPrice"); err != nil || f == nil || *f != 9.5 {
			t.Errorf("minPrice: %v %v", f, err)
		}
		if b, err := c.QueryBool("inStock"); err != nil || !b {
			t.Errorf("inStock: %v %v", b, err)
		}
		_, err := c.QueryInt("limit", 8)
		var qe *appctx.QueryError
		if !errors.As(err, &qe) || qe.Key != "limit" {
			t.Errorf("expected QueryError for limit, got %v", err)
		}
	})
}

func TestIdentity(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(middleware.WithIdentity(req.Context(), "u1", "admin"))
	run(req, func(c *appctx.Context) {
		if c.UserID() != "u1" || !c.IsAdmin() {
			t.Errorf("identity not visible: %q %v", c.UserID(), c.IsAdmin())
		}
	})

	run(httptest.NewRequest(http.MethodGet, "/", nil), func(c *appctx.Context) {
		if c.UserID() != "" || c.IsAdmin() {
			t.Error("guest should have no identity")
		}
	})
}

func TestSetAndGet(t *testing.T) {
	run(httptest.NewRequest(http.MethodGet, "/", nil), func(c *appctx.Context) {
		c.Set("cart_owner", "guest:abc")
		if got := c.GetString("cart_owner"); got != "guest:abc" {
			t.Errorf("expected guest:abc, got %s", got)
		}
	})
}

func TestBindJSONValid(t *testing.T) {
	body := `{"productId":"p1","quantity":2}`
	rec := run(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), func(c *appctx.Context) {
		var input struct {
			ProductID string `json:"productId" validate:"required"`
			Quantity  int    `json:"quantity"  validate:"gte=1"`
		}
		if !c.BindJSON(&input) {
			t.Error("expected BindJSON to succeed")
			return
		}
		if input.Quantity != 2 {
			t.Errorf("expected 2, got %d", input.Quantity)
		}
		c.Success(nil)
	})
	if rec.Code != http.StatusOK {
		t.Errorf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
}

func TestBindJSONInvalid(t *testing.T) {
	rec := run(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"quantity":0}`)), func(c *appctx.Context) {
		var input struct {
			ProductID string `json:"productId" validate:"required"`
		}
		if c.BindJSON(&input) {
			t.Error("expected BindJSON to fail")
		}
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestBindOptionalJSON(t *testing.T) {
	rec := run(httptest.NewRequest(http.MethodPost, "/", nil), func(c *appctx.Context) {
		var input struct {
			CouponCode string `json:"couponCode"`
		}
		if !c.BindOptionalJSON(&input) {
			t.Error("empty body should be accepted")
			return
		}
		c.Success(nil)
	})
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestErrorResponse(t *testing.T) {
	rec := run(httptest.NewRequest(http.MethodGet, "/", nil), func(c *appctx.Context) {
		c.NotFound()
	})
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "Not found") {
		t.Errorf("unexpected response %d: %s", rec.Code, rec.Body.String())
	}
}
