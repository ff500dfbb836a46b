package handlers_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Keoroanthony/go-food-delivery/internal/models"
	"github.com/Keoroanthony/go-food-delivery/internal/orders"
)

func TestBlockUserHandler(t *testing.T) {
	env := setupTestRouter(t)
	path := "/api/owner/blocks/restaurants/" + env.restaurant.ID.String() + "/users/" + env.customer.ID.String()

	t.Run("customers cannot block", func(t *testing.T) {
		rec := env.perform(http.MethodPost, path, nil, env.as(env.customer))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("owners of other restaurants cannot block", func(t *testing.T) {
		rec := env.perform(http.MethodPost, path, nil, env.as(env.otherOwner))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		p := "/api/owner/blocks/restaurants/" + env.restaurant.ID.String() + "/users/" + uuid.NewString()
		rec := env.perform(http.MethodPost, p, nil, env.as(env.owner))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("owner blocks and the customer can no longer order", func(t *testing.T) {
		rec := env.perform(http.MethodPost, path, nil, env.as(env.owner))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var count int64
		env.db.Model(&models.UserRestaurantBlock{}).Where("user_id = ?", env.customer.ID).Count(&count)
		assert.Equal(t, int64(1), count)

		body := map[string]interface{}{
			"restaurant_id": env.restaurant.ID,
			"items":         []map[string]interface{}{{"meal_id": env.burger.ID, "quantity": 1}},
		}
		rec = env.perform(http.MethodPost, "/api/orders", body, env.as(env.customer))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin unblocks", func(t *testing.T) {
		rec := env.perform(http.MethodDelete, path, nil, env.as(env.admin))
		assert.Equal(t, http.StatusNoContent, rec.Code)

		env.placeOrder(t)
	})
}

func TestUpdateMealPriceHandler(t *testing.T) {
	env := setupTestRouter(t)
	view := env.placeOrder(t)
	path := "/api/owner/meals/" + env.burger.ID.String() + "/price"

	rec := env.perform(http.MethodPut, path, map[string]string{"price": "20.00"}, env.as(env.otherOwner))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.perform(http.MethodPut, path, map[string]string{"price": "0"}, env.as(env.owner))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.perform(http.MethodPut, "/api/owner/meals/"+uuid.NewString()+"/price", map[string]string{"price": "1"}, env.as(env.owner))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.perform(http.MethodPut, path, map[string]string{"price": "20.00"}, env.as(env.owner))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var meal models.Meal
	require.NoError(t, env.db.First(&meal, "id = ?", env.burger.ID).Error)
	assert.Equal(t, "20.00", meal.Price.StringFixed(2))

	rec = env.perform(http.MethodGet, "/api/orders/"+view.ID.String(), nil, env.as(env.customer))
	require.Equal(t, http.StatusOK, rec.Code)
	var got orders.OrderView
	decode(t, rec, &got)
	assert.Equal(t, "12.50", got.Items[0].PriceAtOrder)
	assert.Equal(t, "32.00", got.TotalAmount)
}
