package services

import (
	"math"
	"strings"

	"github.com/shashiranjanraj/shopease/config"
	"github.com/shashiranjanraj/shopease/pkg/collection"
)

// coupons maps an upper-cased code to its discount rate.
var coupons = map[string]float64{
	"DISCOUNT20": 0.20,
}

// PricedLine is one product line with a catalog price.
type PricedLine struct {
	Price    float64
	Quantity int
}

// Quote is a pricing breakdown. All amounts are rounded to cents.
type Quote struct {
	ItemsPrice    float64 `json:"itemsPrice"`
	ShippingPrice float64 `json:"shippingPrice"`
	DiscountPrice float64 `json:"discountPrice"`
	TaxPrice      float64 `json:"taxPrice"`
	TotalPrice    float64 `json:"totalPrice"`
	CouponCode    string  `json:"couponCode,omitempty"`
}

// Pricing holds the shipping and tax rules.
type Pricing struct {
	FreeShippingThreshold float64
	FlatRate              float64
	TaxRate               float64
}

func DefaultPricing() Pricing {
	return Pricing{
		FreeShippingThreshold: config.FreeShippingThreshold(),
		FlatRate:              config.ShippingFlatRate(),
		TaxRate:               config.TaxRate(),
	}
}

// Round rounds half away from zero to cents.
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}

// Quote prices lines. Free shipping is judged on the pre-discount subtotal
// and tax is charged on the discounted subtotal.
func (p Pricing) Quote(lines []PricedLine, coupon string) (Quote, error) {
	code := strings.ToUpper(strings.TrimSpace(coupon))
	rate, ok := coupons[code]
	if code != "" && !ok {
		return Quote{}, ErrInvalidCoupon
	}

	items := Round(collection.Sum(lines, func(l PricedLine) float64 { return l.Price * float64(l.Quantity) }))

	q := Quote{ItemsPrice: items, CouponCode: code}
	if items > 0 && items <= p.FreeShippingThreshold {
		q.ShippingPrice = Round(p.FlatRate)
	}
	q.DiscountPrice = Round(items * rate)
	q.TaxPrice = Round((items - q.DiscountPrice) * p.TaxRate)
	q.TotalPrice = Round(items - q.DiscountPrice + q.ShippingPrice + q.TaxPrice)
	return q, nil
}
