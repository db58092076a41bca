package domain

import (
	"time"

	"gorm.io/gorm"
)

type ZelleStatus string

const (
	ZelleStatusPendingReview ZelleStatus = "pending_review"
	ZelleStatusCodeValidated ZelleStatus = "code_validated"
	ZelleStatusApproved      ZelleStatus = "approved"
	ZelleStatusRejected      ZelleStatus = "rejected"
)

// ZelleTransitions: each status may only move forward. Terminal statuses
// have no entry.
var ZelleTransitions = map[ZelleStatus][]ZelleStatus{
	ZelleStatusPendingReview: {ZelleStatusCodeValidated, ZelleStatusRejected},
	ZelleStatusCodeValidated: {ZelleStatusApproved, ZelleStatusRejected},
}

func (s ZelleStatus) CanTransitionTo(next ZelleStatus) bool {
	for _, allowed := range ZelleTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type ZellePayment struct {
	ID               uint        `gorm:"primaryKey" json:"id"`
	StudentID        uint        `gorm:"not null;index" json:"student_id"`
	FeeType          FeeType     `gorm:"type:varchar(30);not null" json:"fee_type"`
	AmountCents      int64       `gorm:"not null" json:"amount_cents"`
	ConfirmationCode string      `gorm:"type:varchar(50);not null" json:"confirmation_code"`
	Status           ZelleStatus `gorm:"type:varchar(30);not null;default:pending_review" json:"status"`

	ReviewedBy *uint      `json:"reviewed_by,omitempty"` // admin user_id
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`

	History []ZellePaymentHistory `gorm:"foreignKey:ZellePaymentID" json:"history,omitempty"`
	gorm.Model
}

type ZellePaymentHistory struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	ZellePaymentID uint        `gorm:"not null;index" json:"zelle_payment_id"`
	FromStatus     ZelleStatus `gorm:"type:varchar(30);not null" json:"from_status"`
	ToStatus       ZelleStatus `gorm:"type:varchar(30);not null" json:"to_status"`
	ChangedBy      *uint       `json:"changed_by,omitempty"`
	Reason         *string     `gorm:"type:text" json:"reason,omitempty"`

	gorm.Model
}
