package services

import (
	"errors"
	"fmt"
)

// Domain errors. Controllers map them onto HTTP statuses with errors.Is.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrEmailTaken         = errors.New("email already registered")
	ErrEmptyOrder         = errors.New("order has no items")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrInvalidCoupon      = errors.New("invalid coupon code")
	ErrForbidden          = errors.New("forbidden")
	ErrSelfAction         = errors.New("admins cannot delete or demote themselves")
	ErrOutOfStock         = errors.New("product is out of stock")
	ErrCartItemNotFound   = errors.New("item not in cart")
	ErrInvalidImage       = errors.New("image must be a jpeg, png, webp or gif")
	ErrImageTooLarge      = errors.New("image exceeds the upload limit")
)

// StockError reports the product that could not be reserved. It unwraps to
// repositories.ErrInsufficientStock.
type StockError struct {
	ProductID string
	Name      string
	Err       error
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s", e.Name)
}

func (e *StockError) Unwrap() error { return e.Err }

// FieldError is a rule on one input field that struct tags cannot express.
// Controllers report it as a 422 keyed by Field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Message }

var errOriginalPrice = &FieldError{
	Field:   "originalPrice",
	Message: "The originalPrice must be greater than or equal to the price.",
}
