package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Keoroanthony/go-food-delivery/internal/orders"
)

var maxMealPrice = decimal.NewFromInt(100000)

type UpdateMealPriceRequest struct {
	Price decimal.Decimal `json:"price"`
}

// UpdateMealPrice changes a meal's live price. Orders already placed keep the
// price they were placed at.
func (h *OwnerHandler) UpdateMealPrice(c *gin.Context) {
	mealID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.writeError(c, orders.ErrMealNotFound)
		return
	}

	var req UpdateMealPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	if !req.Price.IsPositive() || req.Price.GreaterThan(maxMealPrice) {
		h.badRequest(c, errors.New("price must be greater than 0 and at most 100000"))
		return
	}

	meal, err := h.store.FindMeal(c.Request.Context(), mealID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	caller, _, ok := h.restaurantFor(c, meal.RestaurantID)
	if !ok {
		return
	}

	price := req.Price.Round(2)
	if err := h.store.UpdateMealPrice(c.Request.Context(), meal.ID, price); err != nil {
		h.writeError(c, err)
		return
	}

	h.log.Info("meal price updated",
		zap.String("meal_id", meal.ID.String()),
		zap.String("old_price", meal.Price.StringFixed(2)),
		zap.String("new_price", price.StringFixed(2)),
		zap.String("actor_id", caller.ID.String()),
	)

	c.JSON(http.StatusOK, gin.H{
		"meal_id":       meal.ID,
		"restaurant_id": meal.RestaurantID,
		"name":          meal.Name,
		"price":         price.StringFixed(2),
	})
}
