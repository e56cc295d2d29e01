package controllers

import (
	"time"

	"github.com/shashiranjanraj/shopease/app/models"
	"github.com/shashiranjanraj/shopease/app/repositories"
	"github.com/shashiranjanraj/shopease/app/services"
	"github.com/shashiranjanraj/shopease/pkg/ctx"
	"github.com/shashiranjanraj/shopease/pkg/sse"
)

// Heartbeat is the idle interval between SSE keep-alive comments.
var Heartbeat = 25 * time.Second

type OrderController struct {
	orders *services.OrderService
	broker *sse.Broker
}

func NewOrderController(orders *services.OrderService, broker *sse.Broker) *OrderController {
	return &OrderController{orders: orders, broker: broker}
}

func (ctl *OrderController) Store(c *ctx.Context) {
	var in services.PlaceOrderInput
	if !c.BindJSON(&in) {
		return
	}
	o, err := ctl.orders.Place(c.Context(), c.UserID(), in)
	if err != nil {
		fail(c, err, "Order failed")
		return
	}
	c.Created("Order placed", o)
}

func (ctl *OrderController) Mine(c *ctx.Context) {
	orders, err := ctl.orders.ListMine(c.Context(), c.UserID())
	if err != nil {
		fail(c, err, "Fetch failed")
		return
	}
	c.Success(orders)
}

func (ctl *OrderController) Show(c *ctx.Context) {
	o, err := ctl.orders.Get(c.Context(), c.UserID(), c.IsAdmin(), c.Param("id"))
	if err != nil {
		fail(c, err, "Fetch failed")
		return
	}
	c.Success(o)
}

// Index is the admin listing, optionally narrowed by ?status=.
func (ctl *OrderController) Index(c *ctx.Context) {
	f := repositories.OrderFilter{Status: models.OrderStatus(c.Query("status"))}
	if f.Status != "" && !f.Status.Valid() {
		c.ValidationError(map[string]string{"status": "The selected status is invalid."})
		return
	}
	var err error
	if f.Page, err = c.QueryInt("page", 1); err != nil {
		badQuery(c, err)
		return
	}
	if f.Limit, err = c.QueryInt("limit", 20); err != nil {
		badQuery(c, err)
		return
	}
	page, err := ctl.orders.List(c.Context(), f)
	if err != nil {
		fail(c, err, "Fetch failed")
		return
	}
	c.Paginated(page.Items, page.Pagination)
}

func (ctl *OrderController) UpdateStatus(c *ctx.Context) {
	var in struct {
		Status models.OrderStatus `json:"status" validate:"required"`
	}
	if !c.BindJSON(&in) {
		return
	}
	o, err := ctl.orders.UpdateStatus(c.Context(), c.Param("id"), in.Status)
	if err != nil {
		fail(c, err, "Update failed")
		return
	}
	c.Message("Order status updated", o)
}

func (ctl *OrderController) Cancel(c *ctx.Context) {
	o, err := ctl.orders.Cancel(c.Context(), c.UserID(), c.Param("id"))
	if err != nil {
		fail(c, err, "Cancel failed")
		return
	}
	c.Message("Order cancelled", o)
}

// Stream pushes order.status events for the caller's orders. Admins get
// every order.
func (ctl *OrderController) Stream(c *ctx.Context) {
	key := c.UserID()
	if c.IsAdmin() {
		key = ""
	}
	sub := ctl.broker.Subscribe(key)
	defer sub.Close()

	stream := sse.New(c.W, c.R)
	if stream == nil {
		return
	}
	_ = stream.Send("ready", map[string]string{"userId": c.UserID()})
	stream.Pump(sub, Heartbeat)
}
