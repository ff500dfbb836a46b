package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Keoroanthony/go-food-delivery/internal/auth"
	"github.com/Keoroanthony/go-food-delivery/internal/models"
	"github.com/Keoroanthony/go-food-delivery/internal/orders"
)

type OrderItemRequest struct {
	MealID   uuid.UUID `json:"meal_id"`
	Quantity int       `json:"quantity"`
}

type CreateOrderRequest struct {
	RestaurantID uuid.UUID          `json:"restaurant_id"`
	Items        []OrderItemRequest `json:"items"`
	TipAmount    *decimal.Decimal   `json:"tip_amount"`
	CouponCode   *string            `json:"coupon_code"`
}

type UpdateOrderRequest struct {
	TipAmount  *decimal.Decimal `json:"tip_amount"`
	CouponCode *string          `json:"coupon_code"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ListOrdersQuery struct {
	Status string     `form:"status"`
	From   *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To     *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	Page   int        `form:"page"`
	Size   int        `form:"size"`
}

type OrderHandler struct {
	responder
	svc *orders.Service
}

func NewOrderHandler(svc *orders.Service, log *zap.Logger, rejects Rejections) *OrderHandler {
	return &OrderHandler{responder: responder{log: log, rejects: rejects}, svc: svc}
}

// Register mounts the order routes on an authenticated group.
func (h *OrderHandler) Register(api *gin.RouterGroup) {
	api.POST("/orders", h.CreateOrder)
	api.GET("/orders", h.ListOrders)
	api.GET("/orders/:id", h.GetOrder)
	api.PUT("/orders/:id", h.UpdateOrder)
	api.PUT("/orders/:id/status", h.UpdateStatus)
	api.DELETE("/orders/:id", h.CancelOrder)
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	items := make([]orders.ItemRequest, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, orders.ItemRequest{MealID: it.MealID, Quantity: it.Quantity})
	}

	view, err := h.svc.PlaceOrder(c.Request.Context(), orders.PlaceOrderRequest{
		CustomerID:   user.ID,
		RestaurantID: req.RestaurantID,
		Items:        items,
		Tip:          req.TipAmount,
		CouponCode:   req.CouponCode,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var q ListOrdersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.badRequest(c, err)
		return
	}

	filter := orders.ListFilter{From: q.From, To: q.To, Page: q.Page, Size: q.Size}
	if q.Status != "" {
		st, err := orders.ParseStatus(q.Status)
		if err != nil {
			h.writeError(c, err)
			return
		}
		filter.Status = &st
	}

	page, err := h.svc.ListOrdersForUser(c.Request.Context(), user.ID, filter)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	user, orderID, ok := h.orderRequest(c)
	if !ok {
		return
	}

	view, err := h.svc.GetOrder(c.Request.Context(), orderID, user.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	user, orderID, ok := h.orderRequest(c)
	if !ok {
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	view, err := h.svc.UpdateOrder(c.Request.Context(), orderID, orders.UpdateOrderRequest{
		Tip:        req.TipAmount,
		CouponCode: req.CouponCode,
	}, user.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	user, orderID, ok := h.orderRequest(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	target, err := orders.ParseStatus(req.Status)
	if err != nil {
		h.writeError(c, err)
		return
	}

	view, err := h.svc.UpdateStatus(c.Request.Context(), orderID, target, user.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	user, orderID, ok := h.orderRequest(c)
	if !ok {
		return
	}

	if err := h.svc.CancelOrder(c.Request.Context(), orderID, user.ID); err != nil {
		h.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// orderRequest resolves the caller and the :id path parameter, writing the
// response itself when either is missing.
func (h *OrderHandler) orderRequest(c *gin.Context) (*models.User, uuid.UUID, bool) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, uuid.Nil, false
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.writeError(c, orders.ErrOrderNotFound)
		return nil, uuid.Nil, false
	}
	return user, id, true
}
