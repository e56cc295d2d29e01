package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/shopease/app/repositories"
	"github.com/shashiranjanraj/shopease/app/services"
	"github.com/shashiranjanraj/shopease/pkg/ctx"
)

func TestFailStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{&services.StockError{Name: "Lamp", Err: repositories.ErrInsufficientStock}, http.StatusConflict},
		{fmt.Errorf("get: %w", repositories.ErrNotFound), http.StatusNotFound},
		{services.ErrCartItemNotFound, http.StatusNotFound},
		{services.ErrForbidden, http.StatusForbidden},
		{services.ErrInvalidCredentials, http.StatusUnauthorized},
		{services.ErrInvalidToken, http.StatusUnauthorized},
		{services.ErrEmailTaken, http.StatusConflict},
		{repositories.ErrDuplicate, http.StatusConflict},
		{fmt.Errorf("%w: nope", services.ErrInvalidTransition), http.StatusConflict},
		{services.ErrOutOfStock, http.StatusConflict},
		{services.ErrInvalidStatus, http.StatusUnprocessableEntity},
		{services.ErrEmptyOrder, http.StatusBadRequest},
		{services.ErrInvalidCoupon, http.StatusBadRequest},
		{services.ErrSelfAction, http.StatusBadRequest},
		{services.ErrInvalidImage, http.StatusBadRequest},
		{services.ErrImageTooLarge, http.StatusRequestEntityTooLarge},
		{fmt.Errorf("update: %w", &services.FieldError{Field: "originalPrice", Message: "too low"}), http.StatusUnprocessableEntity},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			ctx.Wrap(func(c *ctx.Context) { fail(c, tc.err, "Boom") })(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestFailHidesInternalErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	ctx.Wrap(func(c *ctx.Context) { fail(c, errors.New("dsn=secret"), "Fetch failed") })(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Contains(t, rec.Body.String(), "Fetch failed")
	assert.NotContains(t, rec.Body.String(), "secret")
}

func TestStockErrorNamesProduct(t *testing.T) {
	rec := httptest.NewRecorder()
	err := &services.StockError{ProductID: "p1", Name: "Lamp", Err: repositories.ErrInsufficientStock}
	ctx.Wrap(func(c *ctx.Context) { fail(c, err, "Order failed") })(rec, httptest.NewRequest(http.MethodPost, "/x", nil))
	assert.Contains(t, rec.Body.String(), "insufficient stock for Lamp")
}

func TestFieldErrorKeysValidationErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	err := &services.FieldError{Field: "originalPrice", Message: "The originalPrice must be greater than or equal to the price."}
	ctx.Wrap(func(c *ctx.Context) { fail(c, err, "Update failed") })(rec, httptest.NewRequest(http.MethodPut, "/x", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"originalPrice":"The originalPrice must be greater than or equal to the price."`)
}
