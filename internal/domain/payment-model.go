package domain

import (
	"time"

	"gorm.io/gorm"
)

type FeeType string

const (
	FeeSelectionProcess FeeType = "selection_process"
	FeeApplication      FeeType = "application_fee"
	FeeScholarship      FeeType = "scholarship_fee"
	FeeI20Control       FeeType = "i20_control"
	FeeEnrollment       FeeType = "enrollment_fee"
)

// AllFeeTypes keeps the display order stable for listings.
var AllFeeTypes = []FeeType{
	FeeSelectionProcess,
	FeeApplication,
	FeeScholarship,
	FeeI20Control,
	FeeEnrollment,
}

// ParseFeeType rejects anything outside the closed set. Handlers must not
// pass raw client strings further down.
func ParseFeeType(s string) (FeeType, bool) {
	switch FeeType(s) {
	case FeeSelectionProcess, FeeApplication, FeeScholarship, FeeI20Control, FeeEnrollment:
		return FeeType(s), true
	}
	return "", false
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
	PaymentStatusExpired PaymentStatus = "expired"
)

type Payment struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	StudentID *uint         `gorm:"index" json:"student_id,omitempty"` // nil for EB-3 guest checkout
	GuestEmail *string      `gorm:"type:varchar(255)" json:"guest_email,omitempty"`
	FeeType   FeeType       `gorm:"type:varchar(30);not null;index" json:"fee_type"`
	AmountCents int64       `gorm:"not null" json:"amount_cents"`
	Currency  string        `gorm:"type:varchar(10);not null;default:usd" json:"currency"`
	Status    PaymentStatus `gorm:"type:varchar(20);not null;default:pending" json:"status"`

	StripeSessionID       string  `gorm:"type:varchar(255);uniqueIndex;not null" json:"stripe_session_id"`
	StripePaymentIntentID *string `gorm:"type:varchar(255)" json:"stripe_payment_intent_id,omitempty"`

	ScholarshipIDs *string `gorm:"type:text" json:"scholarship_ids,omitempty"` // comma separated, scholarship_fee only

	PaidAt *time.Time `json:"paid_at,omitempty"`
	gorm.Model
}
