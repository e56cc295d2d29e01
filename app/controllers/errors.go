// Package controllers adapts HTTP requests onto the services and maps their
// errors onto status codes.
package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/shopease/app/repositories"
	"github.com/shashiranjanraj/shopease/app/services"
	"github.com/shashiranjanraj/shopease/pkg/ctx"
	"github.com/shashiranjanraj/shopease/pkg/logger"
)

// fail writes the response for err. Unrecognised errors are logged and
// reported as a 500 with the operation's generic message.
func fail(c *ctx.Context, err error, generic string) {
	var (
		stock *services.StockError
		field *services.FieldError
	)
	switch {
	case errors.As(err, &stock):
		c.Error(http.StatusConflict, stock.Error())
	case errors.As(err, &field):
		c.ValidationError(map[string]string{field.Field: field.Message})
	case errors.Is(err, repositories.ErrNotFound), errors.Is(err, services.ErrCartItemNotFound):
		c.NotFound()
	case errors.Is(err, services.ErrForbidden):
		c.Forbidden()
	case errors.Is(err, services.ErrInvalidCredentials):
		c.Unauthorized("Invalid email or password")
	case errors.Is(err, services.ErrInvalidToken):
		c.Unauthorized("Invalid token")
	case errors.Is(err, services.ErrEmailTaken), errors.Is(err, repositories.ErrDuplicate):
		c.Error(http.StatusConflict, "Email already registered")
	case errors.Is(err, services.ErrInvalidTransition):
		c.Error(http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrOutOfStock), errors.Is(err, repositories.ErrInsufficientStock):
		c.Error(http.StatusConflict, "Out of stock")
	case errors.Is(err, services.ErrInvalidStatus):
		c.ValidationError(map[string]string{"status": "The selected status is invalid."})
	case errors.Is(err, services.ErrEmptyOrder):
		c.Error(http.StatusBadRequest, "Order has no items")
	case errors.Is(err, services.ErrInvalidCoupon):
		c.Error(http.StatusBadRequest, "Invalid coupon code")
	case errors.Is(err, services.ErrSelfAction), errors.Is(err, services.ErrInvalidImage):
		c.Error(http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrImageTooLarge):
		c.Error(http.StatusRequestEntityTooLarge, err.Error())
	default:
		logger.WithCtx(c.Context()).Error(generic, "error", err, "path", c.R.URL.Path)
		c.Error(http.StatusInternalServerError, generic)
	}
}

// badQuery reports a malformed query parameter.
func badQuery(c *ctx.Context, err error) {
	c.Error(http.StatusBadRequest, err.Error())
}
