package orders

import (
	"github.com/shopspring/decimal"

	"github.com/Keoroanthony/go-food-delivery/internal/models"
)

// Money amounts carry exactly two fractional digits; rounding is half-up.
const moneyPlaces = 2

var maxTip = decimal.NewFromInt(1000)

// Line is one priced order line: the unit price frozen at placement and the quantity.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Quote is the result of pricing an order.
type Quote struct {
	ItemsTotal decimal.Decimal
	Discount   decimal.Decimal
	Tip        decimal.Decimal
	Total      decimal.Decimal
}

// CalculateTotal prices lines with an optional percentage discount (0 for no
// coupon) and a tip. The discount never exceeds the items total and the total
// never drops below zero.
func CalculateTotal(lines []Line, discountPercent int, tip decimal.Decimal) Quote {
	itemsTotal := decimal.Zero
	for _, l := range lines {
		itemsTotal = itemsTotal.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	itemsTotal = roundMoney(itemsTotal)

	discount := decimal.Zero
	if discountPercent > 0 {
		discount = roundMoney(itemsTotal.Mul(decimal.NewFromInt(int64(discountPercent))).Shift(-2))
		if discount.GreaterThan(itemsTotal) {
			discount = itemsTotal
		}
	}

	tip = roundMoney(tip)
	total := itemsTotal.Sub(discount).Add(tip)
	if total.IsNegative() {
		total = decimal.Zero
	}
	return Quote{
		ItemsTotal: itemsTotal,
		Discount:   discount,
		Tip:        tip,
		Total:      roundMoney(total),
	}
}

// linesOf rebuilds pricing lines from the frozen order lines, never from live meal prices.
func linesOf(items []models.OrderItem) []Line {
	lines := make([]Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, Line{UnitPrice: it.PriceAtOrder, Quantity: it.Quantity})
	}
	return lines
}

func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}

func validTip(tip decimal.Decimal) bool {
	return !tip.IsNegative() && !tip.GreaterThan(maxTip)
}
