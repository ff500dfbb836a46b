package orders

import (
	"time"

	"github.com/Keoroanthony/go-food-delivery/internal/models"
)

// CouponValid reports whether c can be applied at now: it must be active and
// either have no expiry or expire strictly after now.
func CouponValid(c *models.Coupon, now time.Time) bool {
	if c == nil || !c.Active {
		return false
	}
	return c.ExpiresAt == nil || now.Before(*c.ExpiresAt)
}

func discountPercentOf(c *models.Coupon) int {
	if c == nil {
		return 0
	}
	return c.DiscountPercent
}
