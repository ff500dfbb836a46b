package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Restaurant struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primaryKey"`
	Name      string    `gorm:"not null"`
	OwnerID   uuid.UUID `gorm:"type:varchar(36);index;not null"`
	Blocked   bool      `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r *Restaurant) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Meal carries the live price. Orders never read it after placement.
type Meal struct {
	ID           uuid.UUID       `gorm:"type:varchar(36);primaryKey"`
	RestaurantID uuid.UUID       `gorm:"type:varchar(36);index;not null"`
	Name         string          `gorm:"not null"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (m *Meal) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// UserRestaurantBlock bans one user from ordering at one restaurant,
// independently of the user's and the restaurant's own Blocked flags.
type UserRestaurantBlock struct {
	ID           uuid.UUID `gorm:"type:varchar(36);primaryKey"`
	UserID       uuid.UUID `gorm:"type:varchar(36);uniqueIndex:idx_block_user_restaurant;not null"`
	RestaurantID uuid.UUID `gorm:"type:varchar(36);uniqueIndex:idx_block_user_restaurant;not null"`
	BlockedByID  uuid.UUID `gorm:"type:varchar(36);not null"`
	BlockedAt    time.Time `gorm:"not null"`
}

func (b *UserRestaurantBlock) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
