package notifications_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/shopease/app/models"
	"github.com/shashiranjanraj/shopease/app/notifications"
)

func TestOrderPlacedMail(t *testing.T) {
	o := &models.Order{OrderNumber: "ORD-7", TotalPrice: 76, Products: []models.OrderItem{
		{Name: "Kettle", Quantity: 2, Price: 30},
	}}
	m := notifications.NewOrderPlaced("Ann <b>", o).ToMail()
	assert.Equal(t, "Order ORD-7 confirmed", m.Subject)

	var buf bytes.Buffer
	require.NoError(t, m.Template.Execute(&buf, m.Data))
	body := buf.String()
	assert.Contains(t, body, "ORD-7")
	assert.Contains(t, body, "Kettle")
	assert.Contains(t, body, "76.00")
	assert.Contains(t, body, "Ann &lt;b&gt;", "names are escaped")
}

func TestStatusMailSubject(t *testing.T) {
	m := notifications.OrderStatusChanged{OrderNumber: "ORD-7", Status: "Shipped"}.ToMail()
	assert.Equal(t, "Order ORD-7 is shipped", m.Subject)
}

func TestLowStockSlack(t *testing.T) {
	d := notifications.LowStock{Threshold: 5, Products: []models.Product{
		{Name: "Lamp", Brand: "Acme", Stock: 2},
		{Name: "Mug", Brand: "Crema", Stock: 0},
	}}.ToSlack()
	assert.Equal(t, "2 product(s) at or below 5 units", d.Text)
	require.Len(t, d.Attachments, 1)
	assert.Contains(t, d.Attachments[0].Text, "Lamp (Acme): 2 left")
	assert.Contains(t, d.Attachments[0].Text, "Mug (Crema): 0 left")
}
