package domain

import (
	"gorm.io/gorm"
)

// Package defaults, in cents. A university override (when active) wins.
var DefaultFeeAmounts = map[FeeType]int64{
	FeeSelectionProcess: 35000,
	FeeApplication:      35000,
	FeeScholarship:      55000,
	FeeI20Control:       90000,
	FeeEnrollment:       40000,
}

type UniversityFeeConfiguration struct {
	ID                uint    `gorm:"primaryKey" json:"id"`
	UniversityID      uint    `gorm:"not null;uniqueIndex:uidx_fee_config_univ_fee" json:"university_id"`
	FeeType           FeeType `gorm:"type:varchar(30);not null;uniqueIndex:uidx_fee_config_univ_fee" json:"fee_type"`
	AmountCentsOverride int64 `gorm:"not null" json:"amount_cents_override"`
	Active            bool    `gorm:"not null;default:true" json:"active"`

	gorm.Model
}
