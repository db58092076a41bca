package domain

import (
	"gorm.io/gorm"
)

type AffiliateCode struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	Code           string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // stored uppercase
	ReferrerUserID uint   `gorm:"not null;index" json:"referrer_user_id"`            // seller/affiliate
	Active         bool   `gorm:"not null;default:true" json:"active"`
	DiscountCents  int64  `gorm:"not null" json:"discount_cents"`

	gorm.Model
}

type ReferralStatus string

const (
	ReferralStatusPending   ReferralStatus = "pending"
	ReferralStatusCredited  ReferralStatus = "credited"
	ReferralStatusCancelled ReferralStatus = "cancelled"
)

// AffiliateReferral links a referred student to the referrer for commission
// reconciliation. PaymentID is unique so a re-delivered verification cannot
// credit the same payment twice.
type AffiliateReferral struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	ReferrerUserID    uint           `gorm:"not null;index" json:"referrer_user_id"`
	ReferredStudentID uint           `gorm:"not null;index" json:"referred_student_id"`
	PaymentID         uint           `gorm:"uniqueIndex;not null" json:"payment_id"`
	AffiliateCodeID   uint           `gorm:"not null;index" json:"affiliate_code_id"`
	PaymentAmountCents int64         `gorm:"not null" json:"payment_amount_cents"`
	CreditedCents     int64          `gorm:"not null" json:"credited_cents"`
	Status            ReferralStatus `gorm:"type:varchar(20);not null;default:pending" json:"status"`

	gorm.Model
}
