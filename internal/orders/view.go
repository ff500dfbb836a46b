package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/Keoroanthony/go-food-delivery/internal/models"
)

type OrderLineView struct {
	MealID       uuid.UUID `json:"meal_id"`
	MealName     string    `json:"meal_name"`
	Quantity     int       `json:"quantity"`
	PriceAtOrder string    `json:"price_at_order"`
}

// OrderView is the read model handed to callers. Money is rendered with
// exactly two fractional digits.
type OrderView struct {
	ID              uuid.UUID            `json:"id"`
	CustomerID      uuid.UUID            `json:"customer_id"`
	CustomerName    string               `json:"customer_name"`
	RestaurantID    uuid.UUID            `json:"restaurant_id"`
	RestaurantName  string               `json:"restaurant_name"`
	OrderDate       time.Time            `json:"order_date"`
	Status          models.OrderStatus   `json:"status"`
	TotalAmount     string               `json:"total_amount"`
	TipAmount       string               `json:"tip_amount"`
	CouponCode      *string              `json:"coupon_code,omitempty"`
	DiscountPercent *int                 `json:"discount_percent,omitempty"`
	Items           []OrderLineView      `json:"items"`
	NextStatuses    []models.OrderStatus `json:"next_statuses"`
	Version         int64                `json:"version"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// NewOrderView projects o for a caller with the given role; NextStatuses
// reflects what that role could do next.
func NewOrderView(o *models.Order, role models.Role) OrderView {
	v := OrderView{
		ID:             o.ID,
		CustomerID:     o.CustomerID,
		CustomerName:   o.Customer.Name,
		RestaurantID:   o.RestaurantID,
		RestaurantName: o.Restaurant.Name,
		OrderDate:      o.OrderDate,
		Status:         o.Status,
		TotalAmount:    o.TotalAmount.StringFixed(moneyPlaces),
		TipAmount:      o.TipAmount.StringFixed(moneyPlaces),
		Items:          make([]OrderLineView, 0, len(o.Items)),
		NextStatuses:   NextStatuses(o.Status, role),
		Version:        o.Version,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
	if o.Coupon != nil {
		code, pct := o.Coupon.Code, o.Coupon.DiscountPercent
		v.CouponCode = &code
		v.DiscountPercent = &pct
	}
	for _, it := range o.Items {
		v.Items = append(v.Items, OrderLineView{
			MealID:       it.MealID,
			MealName:     it.Meal.Name,
			Quantity:     it.Quantity,
			PriceAtOrder: it.PriceAtOrder.StringFixed(moneyPlaces),
		})
	}
	return v
}

type OrderPage struct {
	Items      []OrderView `json:"items"`
	Page       int         `json:"page"`
	Size       int         `json:"size"`
	Total      int64       `json:"total"`
	TotalPages int         `json:"total_pages"`
}

func newOrderPage(list []models.Order, role models.Role, page, size int, total int64) *OrderPage {
	p := &OrderPage{
		Items: make([]OrderView, 0, len(list)),
		Page:  page,
		Size:  size,
		Total: total,
	}
	if size > 0 {
		p.TotalPages = int((total + int64(size) - 1) / int64(size))
	}
	for i := range list {
		p.Items = append(p.Items, NewOrderView(&list[i], role))
	}
	return p
}
