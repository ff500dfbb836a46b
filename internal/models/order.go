package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	StatusPlaced     OrderStatus = "PLACED"
	StatusProcessing OrderStatus = "PROCESSING"
	StatusInRoute    OrderStatus = "IN_ROUTE"
	StatusDelivered  OrderStatus = "DELIVERED"
	StatusReceived   OrderStatus = "RECEIVED"
	StatusCanceled   OrderStatus = "CANCELED"
)

type Order struct {
	ID           uuid.UUID       `gorm:"type:varchar(36);primaryKey"`
	CustomerID   uuid.UUID       `gorm:"type:varchar(36);index;not null"`
	Customer     User            `gorm:"foreignKey:CustomerID"`
	RestaurantID uuid.UUID       `gorm:"type:varchar(36);index;not null"`
	Restaurant   Restaurant      `gorm:"foreignKey:RestaurantID"`
	OrderDate    time.Time       `gorm:"index;not null"`
	Status       OrderStatus     `gorm:"type:varchar(16);index;not null"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	TipAmount    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CouponID     *uuid.UUID      `gorm:"type:varchar(36)"`
	Coupon       *Coupon         `gorm:"foreignKey:CouponID"`
	Items        []OrderItem     `gorm:"foreignKey:OrderID"`
	Version      int64           `gorm:"not null"` // bumped on every write, see db.Store.UpdateOrder
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderItem is one order line. PriceAtOrder is the meal price frozen at placement.
type OrderItem struct {
	ID           uuid.UUID       `gorm:"type:varchar(36);primaryKey"`
	OrderID      uuid.UUID       `gorm:"type:varchar(36);index;not null"`
	MealID       uuid.UUID       `gorm:"type:varchar(36);index;not null"`
	Meal         Meal            `gorm:"foreignKey:MealID"`
	Position     int             `gorm:"not null"` // line order within the order
	Quantity     int             `gorm:"not null"`
	PriceAtOrder decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt    time.Time
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
