package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Keoroanthony/go-food-delivery/internal/models"
)

const (
	maxOrderLines   = 20
	minLineQuantity = 1
	maxLineQuantity = 100

	defaultPageSize = 20
	maxPageSize     = 100
)

// Lookups return ErrUserNotFound, ErrRestaurantNotFound and ErrCouponNotFound
// respectively when the record does not exist.
type UserLookup interface {
	FindUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type RestaurantLookup interface {
	FindRestaurant(ctx context.Context, id uuid.UUID) (*models.Restaurant, error)
}

// MealLookup returns one meal per id it finds; missing ids are simply absent.
type MealLookup interface {
	FindMeals(ctx context.Context, ids []uuid.UUID) ([]models.Meal, error)
}

type CouponLookup interface {
	FindCoupon(ctx context.Context, code string) (*models.Coupon, error)
}

type BlockRegistry interface {
	BlockExists(ctx context.Context, userID, restaurantID uuid.UUID) (bool, error)
}

// OrderStore persists orders. CreateOrder writes the header and its lines as
// one unit. UpdateOrder writes only if the stored version still equals
// order.Version, bumps it, and returns ErrConcurrentModification otherwise.
// FindOrder returns ErrOrderNotFound and loads lines, meals, customer,
// restaurant and coupon.
type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	UpdateOrder(ctx context.Context, order *models.Order) error
	ListOrders(ctx context.Context, q OrderQuery) ([]models.Order, int64, error)
}

// OrderQuery scopes a listing. Nil fields do not filter.
type OrderQuery struct {
	CustomerID *uuid.UUID
	OwnerID    *uuid.UUID
	Status     *models.OrderStatus
	From       *time.Time
	To         *time.Time
	Page       int
	Size       int
}

// Listener is told about committed changes. It is called synchronously after
// the write succeeded and must not block.
type Listener interface {
	OrderPlaced(ctx context.Context, order *models.Order)
	StatusChanged(ctx context.Context, order *models.Order, from models.OrderStatus)
}

type Deps struct {
	Users       UserLookup
	Restaurants RestaurantLookup
	Meals       MealLookup
	Coupons     CouponLookup
	Blocks      BlockRegistry
	Orders      OrderStore
	Listeners   []Listener
	Now         func() time.Time
	Logger      *zap.Logger
}

// Service runs the order lifecycle: placement, reads, status transitions and
// tip/coupon edits. Every mutation validates fully before it writes.
type Service struct {
	users       UserLookup
	restaurants RestaurantLookup
	meals       MealLookup
	coupons     CouponLookup
	blocks      BlockRegistry
	orders      OrderStore
	listeners   []Listener
	now         func() time.Time
	log         *zap.Logger
}

func NewService(d Deps) *Service {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		users:       d.Users,
		restaurants: d.Restaurants,
		meals:       d.Meals,
		coupons:     d.Coupons,
		blocks:      d.Blocks,
		orders:      d.Orders,
		listeners:   d.Listeners,
		now:         now,
		log:         log,
	}
}

type ItemRequest struct {
	MealID   uuid.UUID
	Quantity int
}

type PlaceOrderRequest struct {
	CustomerID   uuid.UUID
	RestaurantID uuid.UUID
	Items        []ItemRequest
	Tip          *decimal.Decimal
	CouponCode   *string
}

// UpdateOrderRequest edits a PLACED order. A nil field is left unchanged; a
// blank CouponCode removes the coupon.
type UpdateOrderRequest struct {
	Tip        *decimal.Decimal
	CouponCode *string
}

type ListFilter struct {
	Status *models.OrderStatus
	From   *time.Time
	To     *time.Time
	Page   int
	Size   int
}

func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*OrderView, error) {
	if err := validatePlacement(req); err != nil {
		return nil, err
	}

	customer, err := s.users.FindUser(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer.Blocked {
		return nil, ErrAccountBlocked
	}
	restaurant, err := s.restaurants.FindRestaurant(ctx, req.RestaurantID)
	if err != nil {
		return nil, err
	}
	if restaurant.Blocked {
		return nil, ErrRestaurantBlocked
	}
	blocked, err := s.blocks.BlockExists(ctx, customer.ID, restaurant.ID)
	if err != nil {
		return nil, fmt.Errorf("check restaurant block: %w", err)
	}
	if blocked {
		return nil, ErrUserBlockedAtRestaurant
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrderItems
	}

	ids, quantities, err := mergeItems(req.Items)
	if err != nil {
		return nil, err
	}
	found, err := s.meals.FindMeals(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("find meals: %w", err)
	}
	meals := make(map[uuid.UUID]models.Meal, len(found))
	for _, m := range found {
		meals[m.ID] = m
	}
	var missing []string
	for _, id := range ids {
		if _, ok := meals[id]; !ok {
			missing = append(missing, id.String())
		}
	}
	if len(missing) > 0 {
		return nil, ErrMealNotFound.withReason("meal not found: %s", strings.Join(missing, ", "))
	}
	for _, id := range ids {
		if meals[id].RestaurantID != restaurant.ID {
			return nil, ErrCrossRestaurantItems
		}
	}

	items := make([]models.OrderItem, 0, len(ids))
	for _, id := range ids {
		meal := meals[id]
		items = append(items, models.OrderItem{
			ID:           uuid.New(),
			MealID:       meal.ID,
			Position:     len(items),
			Quantity:     quantities[id],
			PriceAtOrder: meal.Price,
		})
	}

	coupon, err := s.resolveCoupon(ctx, req.CouponCode)
	if err != nil {
		return nil, err
	}
	tip := decimal.Zero
	if req.Tip != nil {
		tip = *req.Tip
	}
	quote := CalculateTotal(linesOf(items), discountPercentOf(coupon), tip)

	now := s.now()
	order := &models.Order{
		ID:           uuid.New(),
		CustomerID:   customer.ID,
		RestaurantID: restaurant.ID,
		OrderDate:    now,
		Status:       models.StatusPlaced,
		TotalAmount:  quote.Total,
		TipAmount:    quote.Tip,
		Items:        items,
		Version:      1,
	}
	if coupon != nil {
		order.CouponID = &coupon.ID
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	order.Customer = *customer
	order.Restaurant = *restaurant
	order.Coupon = coupon
	for i := range order.Items {
		order.Items[i].Meal = meals[order.Items[i].MealID]
	}

	s.log.Info("order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("customer_id", customer.ID.String()),
		zap.String("restaurant_id", restaurant.ID.String()),
		zap.String("items_total", quote.ItemsTotal.StringFixed(moneyPlaces)),
		zap.String("discount", quote.Discount.StringFixed(moneyPlaces)),
		zap.String("total", quote.Total.StringFixed(moneyPlaces)),
	)
	for _, l := range s.listeners {
		l.OrderPlaced(ctx, order)
	}

	view := NewOrderView(order, customer.Role)
	return &view, nil
}

func (s *Service) GetOrder(ctx context.Context, orderID, callerID uuid.UUID) (*OrderView, error) {
	actor, err := s.actor(ctx, callerID)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.FindOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	subject, err := s.subject(ctx, order)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, subject, ActionRead); err != nil {
		return nil, err
	}
	view := NewOrderView(order, actor.Role)
	return &view, nil
}

// ListOrdersForUser lists the caller's own orders for customers, the orders of
// their restaurants for owners and every order for admins, newest first.
func (s *Service) ListOrdersForUser(ctx context.Context, callerID uuid.UUID, f ListFilter) (*OrderPage, error) {
	if f.Page < 0 {
		return nil, ErrInvalidInput.withReason("page must not be negative")
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return nil, ErrInvalidInput.withReason("from must not be after to")
	}
	size := f.Size
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	actor, err := s.actor(ctx, callerID)
	if err != nil {
		return nil, err
	}
	q := OrderQuery{Status: f.Status, From: f.From, To: f.To, Page: f.Page, Size: size}
	switch actor.Role {
	case models.RoleCustomer:
		q.CustomerID = &actor.ID
	case models.RoleOwner:
		q.OwnerID = &actor.ID
	case models.RoleAdmin:
	default:
		return nil, ErrForbidden
	}

	list, total, err := s.orders.ListOrders(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return newOrderPage(list, actor.Role, f.Page, size, total), nil
}

func (s *Service) UpdateStatus(ctx context.Context, orderID uuid.UUID, target models.OrderStatus, callerID uuid.UUID) (*OrderView, error) {
	actor, err := s.actor(ctx, callerID)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.FindOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	subject, err := s.subject(ctx, order)
	if err != nil {
		return nil, err
	}

	from := order.Status
	next, err := Transition(from, target, actor, subject)
	if err != nil {
		return nil, err
	}
	order.Status = next
	if err := s.orders.UpdateOrder(ctx, order); err != nil {
		return nil, err
	}

	s.log.Info("order status changed",
		zap.String("order_id", order.ID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(next)),
		zap.String("actor_id", actor.ID.String()),
		zap.String("actor_role", string(actor.Role)),
	)
	for _, l := range s.listeners {
		l.StatusChanged(ctx, order, from)
	}

	view := NewOrderView(order, actor.Role)
	return &view, nil
}

// CancelOrder is UpdateStatus to CANCELED without the resulting view.
func (s *Service) CancelOrder(ctx context.Context, orderID, callerID uuid.UUID) error {
	_, err := s.UpdateStatus(ctx, orderID, models.StatusCanceled, callerID)
	return err
}

// UpdateOrder replaces the tip and/or coupon of a PLACED order and reprices
// it from its frozen lines.
func (s *Service) UpdateOrder(ctx context.Context, orderID uuid.UUID, req UpdateOrderRequest, callerID uuid.UUID) (*OrderView, error) {
	if req.Tip != nil && !validTip(*req.Tip) {
		return nil, ErrInvalidTip
	}

	actor, err := s.actor(ctx, callerID)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.FindOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	subject, err := s.subject(ctx, order)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, subject, ActionEdit); err != nil {
		return nil, err
	}
	if !IsEditable(order.Status) {
		return nil, ErrOrderNotEditable.withReason("order is %s, only PLACED orders can be updated", order.Status)
	}

	tip := order.TipAmount
	if req.Tip != nil {
		tip = *req.Tip
	}
	coupon := order.Coupon
	if req.CouponCode != nil {
		coupon, err = s.resolveCoupon(ctx, req.CouponCode)
		if err != nil {
			return nil, err
		}
	}

	quote := CalculateTotal(linesOf(order.Items), discountPercentOf(coupon), tip)
	order.TipAmount = quote.Tip
	order.TotalAmount = quote.Total
	order.Coupon = coupon
	order.CouponID = nil
	if coupon != nil {
		order.CouponID = &coupon.ID
	}
	if err := s.orders.UpdateOrder(ctx, order); err != nil {
		return nil, err
	}

	s.log.Info("order updated",
		zap.String("order_id", order.ID.String()),
		zap.String("tip", quote.Tip.StringFixed(moneyPlaces)),
		zap.String("total", quote.Total.StringFixed(moneyPlaces)),
		zap.String("actor_id", actor.ID.String()),
	)

	view := NewOrderView(order, actor.Role)
	return &view, nil
}

func (s *Service) actor(ctx context.Context, callerID uuid.UUID) (Actor, error) {
	u, err := s.users.FindUser(ctx, callerID)
	if err != nil {
		return Actor{}, err
	}
	return Actor{ID: u.ID, Role: u.Role}, nil
}

func (s *Service) subject(ctx context.Context, order *models.Order) (Subject, error) {
	restaurant := &order.Restaurant
	if restaurant.ID == uuid.Nil {
		r, err := s.restaurants.FindRestaurant(ctx, order.RestaurantID)
		if err != nil {
			return Subject{}, err
		}
		restaurant = r
	}
	return Subject{CustomerID: order.CustomerID, RestaurantOwnerID: restaurant.OwnerID}, nil
}

// resolveCoupon returns nil for an absent or blank code.
func (s *Service) resolveCoupon(ctx context.Context, code *string) (*models.Coupon, error) {
	if code == nil || strings.TrimSpace(*code) == "" {
		return nil, nil
	}
	c, err := s.coupons.FindCoupon(ctx, strings.TrimSpace(*code))
	if errors.Is(err, ErrCouponNotFound) {
		return nil, ErrInvalidOrExpiredCoupon
	}
	if err != nil {
		return nil, fmt.Errorf("find coupon: %w", err)
	}
	if !CouponValid(c, s.now()) {
		return nil, ErrInvalidOrExpiredCoupon
	}
	return c, nil
}

func validatePlacement(req PlaceOrderRequest) error {
	if req.Tip != nil && !validTip(*req.Tip) {
		return ErrInvalidTip
	}
	if len(req.Items) > maxOrderLines {
		return ErrTooManyItems
	}
	for i, it := range req.Items {
		if it.MealID == uuid.Nil {
			return ErrInvalidInput.withReason("items[%d].meal_id is required", i)
		}
		if it.Quantity < minLineQuantity || it.Quantity > maxLineQuantity {
			return ErrInvalidQuantity.withReason("items[%d].quantity must be between 1 and 100", i)
		}
	}
	return nil
}

// mergeItems sums quantities of repeated meal ids, keeping first-seen order.
func mergeItems(items []ItemRequest) ([]uuid.UUID, map[uuid.UUID]int, error) {
	ids := make([]uuid.UUID, 0, len(items))
	quantities := make(map[uuid.UUID]int, len(items))
	for _, it := range items {
		if _, seen := quantities[it.MealID]; !seen {
			ids = append(ids, it.MealID)
		}
		quantities[it.MealID] += it.Quantity
	}
	for _, id := range ids {
		if quantities[id] > maxLineQuantity {
			return nil, nil, ErrInvalidQuantity.withReason("total quantity for meal %s exceeds 100", id)
		}
	}
	return ids, quantities, nil
}
