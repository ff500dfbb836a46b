package orders

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Keoroanthony/go-food-delivery/internal/models"
)

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculateTotal(t *testing.T) {
	tests := []struct {
		name     string
		lines    []Line
		percent  int
		tip      string
		items    string
		discount string
		total    string
	}{
		{
			name:     "coupon and tip",
			lines:    []Line{{money("12.50"), 2}, {money("5.00"), 1}},
			percent:  10,
			tip:      "5.00",
			items:    "30.00",
			discount: "3.00",
			total:    "32.00",
		},
		{
			name:  "no coupon no tip",
			lines: []Line{{money("8.99"), 3}},
			tip:   "0",
			items: "26.97", discount: "0.00", total: "26.97",
		},
		{
			name:    "discount rounds half up",
			lines:   []Line{{money("0.50"), 1}},
			percent: 25,
			tip:     "0",
			items:   "0.50", discount: "0.13", total: "0.37",
		},
		{
			name:    "discount rounds to cents",
			lines:   []Line{{money("10.05"), 1}},
			percent: 15,
			tip:     "0",
			items:   "10.05", discount: "1.51", total: "8.54",
		},
		{
			name:    "full discount leaves the tip",
			lines:   []Line{{money("20.00"), 1}},
			percent: 100,
			tip:     "2.00",
			items:   "20.00", discount: "20.00", total: "2.00",
		},
		{
			name:    "discount capped at items total",
			lines:   []Line{{money("20.00"), 1}},
			percent: 150,
			tip:     "0",
			items:   "20.00", discount: "20.00", total: "0.00",
		},
		{
			name:  "nothing to price",
			tip:   "0",
			items: "0.00", discount: "0.00", total: "0.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := CalculateTotal(tt.lines, tt.percent, money(tt.tip))
			assert.Equal(t, tt.items, q.ItemsTotal.StringFixed(2))
			assert.Equal(t, tt.discount, q.Discount.StringFixed(2))
			assert.Equal(t, tt.total, q.Total.StringFixed(2))
			assert.False(t, q.Total.IsNegative())
		})
	}
}

func TestValidTip(t *testing.T) {
	assert.True(t, validTip(money("0")))
	assert.True(t, validTip(money("1000.00")))
	assert.False(t, validTip(money("1000.01")))
	assert.False(t, validTip(money("-0.01")))
}

func TestLinesOfUsesFrozenPrices(t *testing.T) {
	items := []models.OrderItem{
		{PriceAtOrder: money("12.50"), Quantity: 2, Meal: models.Meal{Price: money("99.00")}},
	}
	q := CalculateTotal(linesOf(items), 0, decimal.Zero)
	assert.Equal(t, "25.00", q.Total.StringFixed(2))
}

func TestCouponValid(t *testing.T) {
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, CouponValid(&models.Coupon{Active: true}, now))
	assert.True(t, CouponValid(&models.Coupon{Active: true, ExpiresAt: &future}, now))
	assert.False(t, CouponValid(&models.Coupon{Active: true, ExpiresAt: &past}, now))
	assert.False(t, CouponValid(&models.Coupon{Active: true, ExpiresAt: &now}, now))
	assert.False(t, CouponValid(&models.Coupon{Active: false}, now))
	assert.False(t, CouponValid(nil, now))
}
