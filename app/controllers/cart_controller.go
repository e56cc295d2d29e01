package controllers

import (
	"github.com/shashiranjanraj/shopease/app/services"
	"github.com/shashiranjanraj/shopease/pkg/ctx"
	"github.com/shashiranjanraj/shopease/pkg/logger"
	"github.com/shashiranjanraj/shopease/pkg/session"
)

type CartController struct {
	cart *services.CartService
}

func NewCartController(cart *services.CartService) *CartController {
	return &CartController{cart: cart}
}

// owner resolves whose cart the request addresses. Guests are keyed by the
// session id; the session is saved so a fresh one gets its cookie.
func (ctl *CartController) owner(c *ctx.Context) (string, bool) {
	if id := c.UserID(); id != "" {
		return services.UserCart(id), true
	}
	sess := session.FromCtx(c.R)
	if sess == nil {
		c.Unauthorized()
		return "", false
	}
	if sess.IsNew() {
		sess.Set("cart", true)
		if err := sess.Save(c.Context(), c.W); err != nil {
			logger.WithCtx(c.Context()).Error("cart: session save failed", "error", err)
		}
	}
	return services.GuestCart(sess.ID()), true
}

func (ctl *CartController) Show(c *ctx.Context) {
	owner, ok := ctl.owner(c)
	if !ok {
		return
	}
	c.Success(ctl.cart.Get(c.Context(), owner))
}

func (ctl *CartController) Add(c *ctx.Context) {
	var in struct {
		ProductID string `json:"productId" validate:"required"`
		Quantity  int    `json:"quantity"  validate:"required,gte=1"`
	}
	if !c.BindJSON(&in) {
		return
	}
	owner, ok := ctl.owner(c)
	if !ok {
		return
	}
	cart, err := ctl.cart.Add(c.Context(), owner, in.ProductID, in.Quantity)
	if err != nil {
		fail(c, err, "Add to cart failed")
		return
	}
	c.Message("Added to cart", cart)
}

func (ctl *CartController) Update(c *ctx.Context) {
	var in struct {
		Quantity int `json:"quantity"`
	}
	if !c.BindJSON(&in) {
		return
	}
	owner, ok := ctl.owner(c)
	if !ok {
		return
	}
	cart, err := ctl.cart.SetQuantity(c.Context(), owner, c.Param("productId"), in.Quantity)
	if err != nil {
		fail(c, err, "Update failed")
		return
	}
	c.Message("Cart updated", cart)
}

func (ctl *CartController) Remove(c *ctx.Context) {
	owner, ok := ctl.owner(c)
	if !ok {
		return
	}
	cart, err := ctl.cart.Remove(c.Context(), owner, c.Param("productId"))
	if err != nil {
		fail(c, err, "Remove failed")
		return
	}
	c.Message("Removed", cart)
}

func (ctl *CartController) Clear(c *ctx.Context) {
	owner, ok := ctl.owner(c)
	if !ok {
		return
	}
	if err := ctl.cart.Clear(c.Context(), owner); err != nil {
		fail(c, err, "Clear failed")
		return
	}
	c.Message("Cart cleared", ctl.cart.Get(c.Context(), owner))
}

func (ctl *CartController) Quote(c *ctx.Context) {
	var in struct {
		CouponCode string `json:"couponCode"`
	}
	if !c.BindOptionalJSON(&in) {
		return
	}
	owner, ok := ctl.owner(c)
	if !ok {
		return
	}
	q, err := ctl.cart.Quote(c.Context(), owner, in.CouponCode)
	if err != nil {
		fail(c, err, "Quote failed")
		return
	}
	c.Success(q)
}
