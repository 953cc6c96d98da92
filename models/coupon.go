package models

import "time"

type CouponType string

const (
	CouponTypePercentage  CouponType = "PERCENTAGE"
	CouponTypeFixedAmount CouponType = "FIXED_AMOUNT"
)

type Coupon struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Code        string     `gorm:"uniqueIndex;not null" json:"code"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Type        CouponType `gorm:"type:VARCHAR(20);not null" json:"type"`
	Value       int64      `gorm:"not null" json:"value"` // percent for PERCENTAGE, paise for FIXED_AMOUNT
	MaxDiscount int64      `json:"max_discount"`          // 0 means uncapped
	MinAmount   int64      `json:"min_amount"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
