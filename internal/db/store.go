package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Keoroanthony/go-food-delivery/internal/models"
	"github.com/Keoroanthony/go-food-delivery/internal/orders"
)

// Postgres SQLSTATEs that mean another transaction got to the row first.
var concurrencyCodes = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"55P03": true, // lock_not_available
}

// Store is the gorm-backed implementation of every collaborator the order
// service consumes, plus the few owner-side writes the API exposes.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, notFound(err, orders.ErrUserNotFound)
	}
	return &u, nil
}

func (s *Store) FindRestaurant(ctx context.Context, id uuid.UUID) (*models.Restaurant, error) {
	var r models.Restaurant
	if err := s.db.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		return nil, notFound(err, orders.ErrRestaurantNotFound)
	}
	return &r, nil
}

func (s *Store) FindMeals(ctx context.Context, ids []uuid.UUID) ([]models.Meal, error) {
	var meals []models.Meal
	if len(ids) == 0 {
		return meals, nil
	}
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&meals).Error; err != nil {
		return nil, err
	}
	return meals, nil
}

func (s *Store) FindMeal(ctx context.Context, id uuid.UUID) (*models.Meal, error) {
	var m models.Meal
	if err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFound(err, orders.ErrMealNotFound)
	}
	return &m, nil
}

func (s *Store) FindCoupon(ctx context.Context, code string) (*models.Coupon, error) {
	var c models.Coupon
	if err := s.db.WithContext(ctx).Where("code = ?", code).First(&c).Error; err != nil {
		return nil, notFound(err, orders.ErrCouponNotFound)
	}
	return &c, nil
}

func (s *Store) BlockExists(ctx context.Context, userID, restaurantID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.UserRestaurantBlock{}).
		Where("user_id = ? AND restaurant_id = ?", userID, restaurantID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// BlockUser records a restaurant-level ban. Blocking twice keeps the first record.
func (s *Store) BlockUser(ctx context.Context, userID, restaurantID, blockedBy uuid.UUID) (*models.UserRestaurantBlock, error) {
	block := models.UserRestaurantBlock{
		UserID:       userID,
		RestaurantID: restaurantID,
		BlockedByID:  blockedBy,
		BlockedAt:    time.Now().UTC(),
	}
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND restaurant_id = ?", userID, restaurantID).
		FirstOrCreate(&block).Error
	if err != nil {
		return nil, err
	}
	return &block, nil
}

// UnblockUser removes the ban and reports whether one existed.
func (s *Store) UnblockUser(ctx context.Context, userID, restaurantID uuid.UUID) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND restaurant_id = ?", userID, restaurantID).
		Delete(&models.UserRestaurantBlock{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// UpdateMealPrice changes the live price. Existing order lines keep their snapshot.
func (s *Store) UpdateMealPrice(ctx context.Context, mealID uuid.UUID, price decimal.Decimal) error {
	res := s.db.WithContext(ctx).
		Model(&models.Meal{}).
		Where("id = ?", mealID).
		Updates(map[string]interface{}{"price": price, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return orders.ErrMealNotFound
	}
	return nil
}

// CreateOrder inserts the order header and its lines in one transaction.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return fmt.Errorf("insert order: %w", translate(err))
		}
		if len(order.Items) == 0 {
			return nil
		}
		if err := tx.Omit(clause.Associations).CreateInBatches(&order.Items, len(order.Items)).Error; err != nil {
			return fmt.Errorf("insert order items: %w", translate(err))
		}
		return nil
	})
}

func (s *Store) FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var o models.Order
	err := s.withDetails(s.db.WithContext(ctx)).First(&o, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, orders.ErrOrderNotFound)
	}
	return &o, nil
}

// UpdateOrder writes the mutable columns of order only if nobody else wrote
// since it was read, then advances order.Version.
func (s *Store) UpdateOrder(ctx context.Context, order *models.Order) error {
	var couponID interface{}
	if order.CouponID != nil {
		couponID = *order.CouponID
	}
	now := time.Now().UTC()

	res := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND version = ?", order.ID, order.Version).
		Updates(map[string]interface{}{
			"status":       order.Status,
			"tip_amount":   order.TipAmount,
			"total_amount": order.TotalAmount,
			"coupon_id":    couponID,
			"version":      order.Version + 1,
			"updated_at":   now,
		})
	if res.Error != nil {
		return fmt.Errorf("update order: %w", translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return orders.ErrConcurrentModification
	}
	order.Version++
	order.UpdatedAt = now
	return nil
}

func (s *Store) ListOrders(ctx context.Context, q orders.OrderQuery) ([]models.Order, int64, error) {
	filter := func(tx *gorm.DB) *gorm.DB {
		if q.CustomerID != nil {
			tx = tx.Where("customer_id = ?", *q.CustomerID)
		}
		if q.OwnerID != nil {
			owned := s.db.Model(&models.Restaurant{}).Select("id").Where("owner_id = ?", *q.OwnerID)
			tx = tx.Where("restaurant_id IN (?)", owned)
		}
		if q.Status != nil {
			tx = tx.Where("status = ?", *q.Status)
		}
		if q.From != nil {
			tx = tx.Where("order_date >= ?", *q.From)
		}
		if q.To != nil {
			tx = tx.Where("order_date <= ?", *q.To)
		}
		return tx
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Order{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []models.Order
	err := s.withDetails(s.db.WithContext(ctx)).
		Scopes(filter).
		Order("order_date DESC").
		Offset(q.Page * q.Size).
		Limit(q.Size).
		Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (s *Store) withDetails(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Items.Meal").
		Preload("Customer").
		Preload("Restaurant").
		Preload("Coupon")
}

func notFound(err error, sentinel *orders.Error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

func translate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && concurrencyCodes[pgErr.Code] {
		return orders.ErrConcurrentModification
	}
	return err
}

// UpsertOIDCUser returns the user linked to the OpenID subject, creating a
// customer account on first login.
func (s *Store) UpsertOIDCUser(ctx context.Context, subject, name, email, phone string) (*models.User, error) {
	if subject == "" {
		return nil, errors.New("empty OpenID subject")
	}
	var u models.User
	err := s.db.WithContext(ctx).Where(&models.User{OIDCID: subject}).First(&u).Error
	if err == nil {
		return &u, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	u = models.User{
		OIDCID: subject,
		Name:   name,
		Email:  email,
		Phone:  phone,
		Role:   models.RoleCustomer,
	}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}
