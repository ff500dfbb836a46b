package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Keoroanthony/go-food-delivery/internal/orders"
)

func (h *OwnerHandler) BlockUser(c *gin.Context) {
	restaurantID, userID, ok := h.blockParams(c)
	if !ok {
		return
	}
	caller, restaurant, ok := h.restaurantFor(c, restaurantID)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if _, err := h.store.FindUser(ctx, userID); err != nil {
		h.writeError(c, err)
		return
	}

	block, err := h.store.BlockUser(ctx, userID, restaurant.ID, caller.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.log.Info("user blocked at restaurant",
		zap.String("user_id", userID.String()),
		zap.String("restaurant_id", restaurant.ID.String()),
		zap.String("blocked_by", caller.ID.String()),
	)

	c.JSON(http.StatusCreated, gin.H{
		"user_id":       block.UserID,
		"restaurant_id": block.RestaurantID,
		"blocked_by":    block.BlockedByID,
		"blocked_at":    block.BlockedAt,
	})
}

func (h *OwnerHandler) UnblockUser(c *gin.Context) {
	restaurantID, userID, ok := h.blockParams(c)
	if !ok {
		return
	}
	caller, restaurant, ok := h.restaurantFor(c, restaurantID)
	if !ok {
		return
	}

	removed, err := h.store.UnblockUser(c.Request.Context(), userID, restaurant.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if removed {
		h.log.Info("user unblocked at restaurant",
			zap.String("user_id", userID.String()),
			zap.String("restaurant_id", restaurant.ID.String()),
			zap.String("unblocked_by", caller.ID.String()),
		)
	}

	c.Status(http.StatusNoContent)
}

func (h *OwnerHandler) blockParams(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	restaurantID, err := uuid.Parse(c.Param("restaurantId"))
	if err != nil {
		h.writeError(c, orders.ErrRestaurantNotFound)
		return uuid.Nil, uuid.Nil, false
	}
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		h.writeError(c, orders.ErrUserNotFound)
		return uuid.Nil, uuid.Nil, false
	}
	return restaurantID, userID, true
}
