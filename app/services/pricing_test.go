package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/shopease/app/services"
)

var rules = services.Pricing{FreeShippingThreshold: 100, FlatRate: 10, TaxRate: 0.10}

func TestQuote(t *testing.T) {
	cases := []struct {
		name   string
		lines  []services.PricedLine
		coupon string
		want   services.Quote
	}{
		{
			name:  "empty cart ships free",
			lines: nil,
			want:  services.Quote{},
		},
		{
			name:  "below threshold pays flat shipping",
			lines: []services.PricedLine{{Price: 25, Quantity: 2}},
			want:  services.Quote{ItemsPrice: 50, ShippingPrice: 10, TaxPrice: 5, TotalPrice: 65},
		},
		{
			name:  "exactly at threshold still pays shipping",
			lines: []services.PricedLine{{Price: 100, Quantity: 1}},
			want:  services.Quote{ItemsPrice: 100, ShippingPrice: 10, TaxPrice: 10, TotalPrice: 120},
		},
		{
			name:   "coupon discounts before tax, free shipping judged pre-discount",
			lines:  []services.PricedLine{{Price: 120, Quantity: 1}},
			coupon: "discount20",
			want: services.Quote{
				ItemsPrice: 120, DiscountPrice: 24, TaxPrice: 9.6, TotalPrice: 105.6, CouponCode: "DISCOUNT20",
			},
		},
		{
			name:  "rounds half away from zero",
			lines: []services.PricedLine{{Price: 0.125, Quantity: 1}},
			want:  services.Quote{ItemsPrice: 0.13, ShippingPrice: 10, TaxPrice: 0.01, TotalPrice: 10.14},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := rules.Quote(c.lines, c.coupon)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestQuote_UnknownCoupon(t *testing.T) {
	_, err := rules.Quote([]services.PricedLine{{Price: 10, Quantity: 1}}, "FREESTUFF")
	assert.ErrorIs(t, err, services.ErrInvalidCoupon)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 2.5, services.Round(2.499999999))
	assert.Equal(t, -1.01, services.Round(-1.005000001))
	assert.Equal(t, 0.13, services.Round(0.125))
	assert.Equal(t, -0.13, services.Round(-0.125))
}
