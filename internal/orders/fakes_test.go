package orders

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Keoroanthony/go-food-delivery/internal/models"
)

// memStore keeps everything in maps and hands out copies, so the service
// cannot mutate stored orders without going through UpdateOrder.
type memStore struct {
	users       map[uuid.UUID]models.User
	restaurants map[uuid.UUID]models.Restaurant
	meals       map[uuid.UUID]models.Meal
	coupons     map[string]models.Coupon
	blocks      map[[2]uuid.UUID]bool
	orders      map[uuid.UUID]models.Order

	creates   int
	updates   int
	updateErr error
}

func newMemStore() *memStore {
	return &memStore{
		users:       map[uuid.UUID]models.User{},
		restaurants: map[uuid.UUID]models.Restaurant{},
		meals:       map[uuid.UUID]models.Meal{},
		coupons:     map[string]models.Coupon{},
		blocks:      map[[2]uuid.UUID]bool{},
		orders:      map[uuid.UUID]models.Order{},
	}
}

func (m *memStore) FindUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (m *memStore) FindRestaurant(_ context.Context, id uuid.UUID) (*models.Restaurant, error) {
	r, ok := m.restaurants[id]
	if !ok {
		return nil, ErrRestaurantNotFound
	}
	return &r, nil
}

func (m *memStore) FindMeals(_ context.Context, ids []uuid.UUID) ([]models.Meal, error) {
	var out []models.Meal
	for _, id := range ids {
		if meal, ok := m.meals[id]; ok {
			out = append(out, meal)
		}
	}
	return out, nil
}

func (m *memStore) FindCoupon(_ context.Context, code string) (*models.Coupon, error) {
	c, ok := m.coupons[code]
	if !ok {
		return nil, ErrCouponNotFound
	}
	return &c, nil
}

func (m *memStore) BlockExists(_ context.Context, userID, restaurantID uuid.UUID) (bool, error) {
	return m.blocks[[2]uuid.UUID{userID, restaurantID}], nil
}

func (m *memStore) CreateOrder(_ context.Context, order *models.Order) error {
	m.creates++
	stored := *order
	stored.Items = append([]models.OrderItem(nil), order.Items...)
	m.orders[order.ID] = stored
	return nil
}

func (m *memStore) FindOrder(_ context.Context, id uuid.UUID) (*models.Order, error) {
	stored, ok := m.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	o := m.hydrate(stored)
	return &o, nil
}

func (m *memStore) UpdateOrder(_ context.Context, order *models.Order) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	stored, ok := m.orders[order.ID]
	if !ok || stored.Version != order.Version {
		return ErrConcurrentModification
	}
	m.updates++
	stored.Status = order.Status
	stored.TipAmount = order.TipAmount
	stored.TotalAmount = order.TotalAmount
	stored.CouponID = order.CouponID
	stored.Version++
	m.orders[order.ID] = stored
	order.Version++
	return nil
}

func (m *memStore) ListOrders(_ context.Context, q OrderQuery) ([]models.Order, int64, error) {
	var matched []models.Order
	for _, o := range m.orders {
		if q.CustomerID != nil && o.CustomerID != *q.CustomerID {
			continue
		}
		if q.OwnerID != nil && m.restaurants[o.RestaurantID].OwnerID != *q.OwnerID {
			continue
		}
		if q.Status != nil && o.Status != *q.Status {
			continue
		}
		if q.From != nil && o.OrderDate.Before(*q.From) {
			continue
		}
		if q.To != nil && o.OrderDate.After(*q.To) {
			continue
		}
		matched = append(matched, m.hydrate(o))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].OrderDate.After(matched[j].OrderDate) })

	total := int64(len(matched))
	start := q.Page * q.Size
	if start > len(matched) {
		start = len(matched)
	}
	end := start + q.Size
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (m *memStore) hydrate(stored models.Order) models.Order {
	o := stored
	o.Items = make([]models.OrderItem, len(stored.Items))
	for i, it := range stored.Items {
		it.Meal = m.meals[it.MealID]
		o.Items[i] = it
	}
	o.Customer = m.users[o.CustomerID]
	o.Restaurant = m.restaurants[o.RestaurantID]
	o.Coupon = nil
	if o.CouponID != nil {
		for _, c := range m.coupons {
			if c.ID == *o.CouponID {
				c := c
				o.Coupon = &c
			}
		}
	}
	return o
}

type statusChange struct {
	orderID uuid.UUID
	from    models.OrderStatus
	to      models.OrderStatus
}

type recordingListener struct {
	placed  []uuid.UUID
	changes []statusChange
}

func (r *recordingListener) OrderPlaced(_ context.Context, order *models.Order) {
	r.placed = append(r.placed, order.ID)
}

func (r *recordingListener) StatusChanged(_ context.Context, order *models.Order, from models.OrderStatus) {
	r.changes = append(r.changes, statusChange{order.ID, from, order.Status})
}

var fixedNow = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
