package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Coupon struct {
	ID              uuid.UUID  `gorm:"type:varchar(36);primaryKey"`
	Code            string     `gorm:"uniqueIndex;size:50;not null"`
	DiscountPercent int        `gorm:"not null"` // 1-100
	ExpiresAt       *time.Time // nil means the coupon never expires
	Active          bool       `gorm:"not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (c *Coupon) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
