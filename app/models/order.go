package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "Pending"
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

// Statuses lists every status in lifecycle order.
var Statuses = []OrderStatus{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusDelivered, StatusCancelled},
	StatusShipped:    {StatusDelivered},
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition reports whether an order may move from s to next.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, v := range transitions[s] {
		if v == next {
			return true
		}
	}
	return false
}

// Payment methods accepted at checkout.
const (
	PaymentCredit = "credit"
	PaymentPayPal = "paypal"
	PaymentCash   = "cash"
)

// ShippingAddress is where an order is delivered.
type ShippingAddress struct {
	FullName   string `gorm:"size:255" json:"fullName"   bson:"fullName"`
	Phone      string `gorm:"size:50"  json:"phone"      bson:"phone"`
	Address    string `gorm:"size:512" json:"address"    bson:"address"`
	City       string `gorm:"size:100" json:"city"       bson:"city"`
	PostalCode string `gorm:"size:20"  json:"postalCode" bson:"postalCode"`
	Country    string `gorm:"size:100" json:"country"    bson:"country"`
}

// OrderItem is a priced line of an order, snapshotted from the catalog at
// placement time.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey;autoIncrement"  json:"-"         bson:"-"`
	OrderID   string  `gorm:"size:36;not null;index"    json:"-"         bson:"-"`
	ProductID string  `gorm:"size:36;not null"          json:"productId" bson:"productId"`
	Name      string  `gorm:"size:255"                  json:"name"      bson:"name"`
	Image     string  `gorm:"size:1024"                 json:"image"     bson:"image"`
	Price     float64 `gorm:"not null"                  json:"price"     bson:"price"`
	Quantity  int     `gorm:"not null"                  json:"quantity"  bson:"quantity"`
}

// Order is a placed checkout.
type Order struct {
	ID              string          `gorm:"primaryKey;size:36"                         json:"_id"                   bson:"_id"`
	OrderNumber     string          `gorm:"size:20;uniqueIndex;not null"               json:"orderNumber"           bson:"orderNumber"`
	UserID          string          `gorm:"size:36;not null;index:idx_orders_user"     json:"userId"                bson:"userId"`
	User            *UserSummary    `gorm:"-"                                          json:"user,omitempty"        bson:"-"`
	Products        []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"products"     bson:"products"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:ship_"              json:"shippingAddress"       bson:"shippingAddress"`
	PaymentMethod   string          `gorm:"size:20;not null"                           json:"paymentMethod"         bson:"paymentMethod"`
	CouponCode      string          `gorm:"size:50"                                    json:"couponCode,omitempty"  bson:"couponCode,omitempty"`
	ItemsPrice      float64         `gorm:"not null"                                   json:"itemsPrice"            bson:"itemsPrice"`
	ShippingPrice   float64         `gorm:"not null"                                   json:"shippingPrice"         bson:"shippingPrice"`
	TaxPrice        float64         `gorm:"not null"                                   json:"taxPrice"              bson:"taxPrice"`
	DiscountPrice   float64         `gorm:"not null;default:0"                         json:"discountPrice"         bson:"discountPrice"`
	TotalPrice      float64         `gorm:"not null"                                   json:"totalPrice"            bson:"totalPrice"`
	Status          OrderStatus     `gorm:"size:20;not null;default:Pending;index"     json:"status"                bson:"status"`
	CreatedAt       time.Time       `gorm:"index:idx_orders_user"                      json:"createdAt"             bson:"createdAt"`
	UpdatedAt       time.Time       `                                                  json:"updatedAt"             bson:"updatedAt"`
	CancelledAt     *time.Time      `                                                  json:"cancelledAt,omitempty" bson:"cancelledAt,omitempty"`
}

// Owns reports whether userID placed the order.
func (o *Order) Owns(userID string) bool { return o.UserID == userID }

// Quantities sums the quantity per product id.
func (o *Order) Quantities() map[string]int {
	out := make(map[string]int, len(o.Products))
	for _, it := range o.Products {
		out[it.ProductID] += it.Quantity
	}
	return out
}

// Prepare fills the id, order number and initial status of an order about
// to be inserted. Both stores call it.
func (o *Order) Prepare() {
	if o.ID == "" {
		o.ID = NewID()
	}
	if o.OrderNumber == "" {
		o.OrderNumber = NewOrderNumber()
	}
	if o.Status == "" {
		o.Status = StatusPending
	}
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	o.Prepare()
	return nil
}
