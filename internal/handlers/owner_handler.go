package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Keoroanthony/go-food-delivery/internal/auth"
	"github.com/Keoroanthony/go-food-delivery/internal/models"
	"github.com/Keoroanthony/go-food-delivery/internal/orders"
)

// OwnerStore is what the restaurant-owner endpoints read and write.
type OwnerStore interface {
	FindUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindRestaurant(ctx context.Context, id uuid.UUID) (*models.Restaurant, error)
	FindMeal(ctx context.Context, id uuid.UUID) (*models.Meal, error)
	BlockUser(ctx context.Context, userID, restaurantID, blockedBy uuid.UUID) (*models.UserRestaurantBlock, error)
	UnblockUser(ctx context.Context, userID, restaurantID uuid.UUID) (bool, error)
	UpdateMealPrice(ctx context.Context, mealID uuid.UUID, price decimal.Decimal) error
}

// OwnerHandler serves the restaurant-owner endpoints. Every action is allowed
// to the restaurant's owner and to admins.
type OwnerHandler struct {
	responder
	store OwnerStore
}

func NewOwnerHandler(store OwnerStore, log *zap.Logger, rejects Rejections) *OwnerHandler {
	return &OwnerHandler{responder: responder{log: log, rejects: rejects}, store: store}
}

func (h *OwnerHandler) Register(api *gin.RouterGroup) {
	owner := api.Group("/owner")
	owner.POST("/blocks/restaurants/:restaurantId/users/:userId", h.BlockUser)
	owner.DELETE("/blocks/restaurants/:restaurantId/users/:userId", h.UnblockUser)
	owner.PUT("/meals/:id/price", h.UpdateMealPrice)
}

// manages reports whether user may administer restaurant.
func manages(user *models.User, restaurant *models.Restaurant) bool {
	return user.Role == models.RoleAdmin || (user.Role == models.RoleOwner && restaurant.OwnerID == user.ID)
}

// restaurantFor loads the restaurant and checks the caller
// manages it. It writes the response itself on failure.
func (h *OwnerHandler) restaurantFor(c *gin.Context, id uuid.UUID) (*models.User, *models.Restaurant, bool) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, nil, false
	}
	if user.Role != models.RoleOwner && user.Role != models.RoleAdmin {
		h.writeError(c, orders.ErrForbidden)
		return nil, nil, false
	}
	restaurant, err := h.store.FindRestaurant(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return nil, nil, false
	}
	if !manages(user, restaurant) {
		h.writeError(c, orders.ErrForbidden)
		return nil, nil, false
	}
	return user, restaurant, true
}
