// Package notifications holds the messages the storefront sends.
package notifications

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/shashiranjanraj/shopease/app/models"
	"github.com/shashiranjanraj/shopease/pkg/notification"
)

var orderPlacedTmpl = template.Must(template.New("order_placed").Parse(`<h2>Thanks for your order, {{.Name}}!</h2>
<p>Order <strong>{{.OrderNumber}}</strong> has been received.</p>
<table>
{{range .Lines}}<tr><td>{{.Name}}</td><td>× {{.Quantity}}</td><td>{{printf "%.2f" .Price}}</td></tr>
{{end}}</table>
<p>Total: <strong>{{printf "%.2f" .Total}}</strong></p>`))

var statusTmpl = template.Must(template.New("order_status").Parse(`<p>Hi {{.Name}},</p>
<p>Your order <strong>{{.OrderNumber}}</strong> is now <strong>{{.Status}}</strong>.</p>`))

// Line is one order line as shown in a message.
type Line struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// OrderPlaced confirms a new order to the customer.
type OrderPlaced struct {
	Name        string  `json:"name"`
	OrderNumber string  `json:"orderNumber"`
	Total       float64 `json:"total"`
	Lines       []Line  `json:"lines"`
}

func NewOrderPlaced(name string, o *models.Order) OrderPlaced {
	n := OrderPlaced{Name: name, OrderNumber: o.OrderNumber, Total: o.TotalPrice}
	for _, it := range o.Products {
		n.Lines = append(n.Lines, Line{Name: it.Name, Quantity: it.Quantity, Price: it.Price})
	}
	return n
}

func (n OrderPlaced) ToMail() notification.MailData {
	return notification.MailData{
		Subject:  "Order " + n.OrderNumber + " confirmed",
		Template: orderPlacedTmpl,
		Data:     n,
	}
}

// OrderStatusChanged tells the customer their order moved.
type OrderStatusChanged struct {
	Name        string `json:"name"`
	OrderNumber string `json:"orderNumber"`
	Status      string `json:"status"`
}

func (n OrderStatusChanged) ToMail() notification.MailData {
	return notification.MailData{
		Subject:  fmt.Sprintf("Order %s is %s", n.OrderNumber, strings.ToLower(n.Status)),
		Template: statusTmpl,
		Data:     n,
	}
}

// LowStock is the hourly inventory alert for the operations channel.
type LowStock struct {
	Threshold int
	Products  []models.Product
}

func (n LowStock) ToSlack() notification.SlackData {
	var b strings.Builder
	for _, p := range n.Products {
		fmt.Fprintf(&b, "• %s (%s): %d left\n", p.Name, p.Brand, p.Stock)
	}
	return notification.SlackData{
		Text: fmt.Sprintf("%d product(s) at or below %d units", len(n.Products), n.Threshold),
		Attachments: []notification.SlackAttachment{{
			Color:  "warning",
			Title:  "Low stock",
			Text:   b.String(),
			Footer: "inventory:low-stock-report",
		}},
	}
}
