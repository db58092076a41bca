package domain

import (
	"time"

	"gorm.io/gorm"
)

type DiscountType string

const (
	DiscountFixed      DiscountType = "fixed"
	DiscountPercentage DiscountType = "percentage"
)

type PromotionalCoupon struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	Code          string       `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // stored uppercase
	DiscountType  DiscountType `gorm:"type:varchar(20);not null;default:fixed" json:"discount_type"`
	DiscountValue float64      `gorm:"not null" json:"discount_value"` // currency units (fixed) or percent
	Active        bool         `gorm:"not null;default:true" json:"active"`
	ExpiresAt     *time.Time   `json:"expires_at,omitempty"`
	MaxUsesPerUser int         `gorm:"not null;default:1" json:"max_uses_per_user"`

	// Stripe-side mirror, provisioned lazily on first validation.
	StripeCouponID *string `gorm:"type:varchar(100)" json:"stripe_coupon_id,omitempty"`

	// Fee types this coupon applies to, comma separated. Empty = all.
	AllowedFeeTypes *string `gorm:"type:text" json:"allowed_fee_types,omitempty"`

	gorm.Model
}

// CouponUsage rows exist in two states: provisional (is_validation = true,
// payment_id carries the "validation_" prefix) written when a user types a
// valid code, and confirmed (is_validation = false, real payment id) written
// by the session verifier. Only provisional rows may ever be deleted.
type CouponUsage struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	UserID       uint    `gorm:"not null;index:idx_coupon_usage_user_fee" json:"user_id"`
	CouponID     uint    `gorm:"not null;index" json:"coupon_id"`
	FeeType      FeeType `gorm:"type:varchar(30);not null;index:idx_coupon_usage_user_fee" json:"fee_type"`
	PaymentID    string  `gorm:"type:varchar(100);not null" json:"payment_id"`
	IsValidation bool    `gorm:"not null;default:false" json:"is_validation"`

	AmountCents   int64 `gorm:"not null" json:"amount_cents"`
	DiscountCents int64 `gorm:"not null" json:"discount_cents"`

	gorm.Model
}

const ValidationPaymentIDPrefix = "validation_"
