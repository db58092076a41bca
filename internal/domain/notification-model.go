package domain

import (
	"gorm.io/gorm"
)

// IdempotencyKey is derived from the business event (for example
// "stripe_connect_payment:<transfer_id>:<application_id>") so that a retried
// webhook delivery maps onto the same row. The unique index does the dedupe.

type StudentNotification struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	StudentID uint    `gorm:"not null;index" json:"student_id"`
	Title     string  `gorm:"type:varchar(255);not null" json:"title"`
	Body      string  `gorm:"type:text;not null" json:"body"`
	Link      *string `gorm:"type:text" json:"link,omitempty"`
	Read      bool    `gorm:"not null;default:false" json:"read"`

	IdempotencyKey string `gorm:"type:varchar(255);uniqueIndex:uidx_student_notifications_idem;not null" json:"idempotency_key"`

	gorm.Model
}

type UniversityNotification struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	UniversityID uint    `gorm:"not null;index" json:"university_id"`
	Title        string  `gorm:"type:varchar(255);not null" json:"title"`
	Body         string  `gorm:"type:text;not null" json:"body"`
	Link         *string `gorm:"type:text" json:"link,omitempty"`
	Read         bool    `gorm:"not null;default:false" json:"read"`

	IdempotencyKey string `gorm:"type:varchar(255);uniqueIndex:uidx_university_notifications_idem;not null" json:"idempotency_key"`

	gorm.Model
}
