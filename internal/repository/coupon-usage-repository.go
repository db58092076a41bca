package repository

import (
	"errors"

	"github.com/matriculausa/payment_service/internal/domain"
	"gorm.io/gorm"
)

type CouponUsageRepository interface {
	CreateUsage(usage *domain.CouponUsage) error

	// CountConfirmed counts non-validation rows only; provisional rows do
	// not count against a user's usage limit.
	CountConfirmed(userID, couponID uint, feeType domain.FeeType) (int64, error)

	// FinalizeProvisional turns the provisional row for (user, coupon,
	// fee_type) into a confirmed one carrying the real payment id.
	FinalizeProvisional(userID, couponID uint, feeType domain.FeeType, paymentID string) error

	// DeleteProvisional removes only rows tagged is_validation with the
	// synthetic payment-id prefix. Confirmed rows are unreachable by the
	// WHERE clause.
	DeleteProvisional(userID uint, couponID uint, feeType domain.FeeType) (int64, error)
}

type couponUsageRepository struct {
	db *gorm.DB
}

func NewCouponUsageRepository(db *gorm.DB) CouponUsageRepository {
	return &couponUsageRepository{db: db}
}

func (r *couponUsageRepository) CreateUsage(usage *domain.CouponUsage) error {
	if usage == nil {
		return errors.New("nil usage")
	}
	return r.db.Create(usage).Error
}

func (r *couponUsageRepository) CountConfirmed(userID, couponID uint, feeType domain.FeeType) (int64, error) {
	var count int64

	err := r.db.Model(&domain.CouponUsage{}).
		Where("user_id = ? AND coupon_id = ? AND fee_type = ? AND is_validation = ?",
			userID, couponID, feeType, false).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *couponUsageRepository) FinalizeProvisional(userID, couponID uint, feeType domain.FeeType, paymentID string) error {
	res := r.db.Model(&domain.CouponUsage{}).
		Where("user_id = ? AND coupon_id = ? AND fee_type = ? AND is_validation = ?",
			userID, couponID, feeType, true).
		Updates(map[string]any{
			"is_validation": false,
			"payment_id":    paymentID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *couponUsageRepository) DeleteProvisional(userID uint, couponID uint, feeType domain.FeeType) (int64, error) {
	res := r.db.
		Where("user_id = ? AND coupon_id = ? AND fee_type = ? AND is_validation = ? AND payment_id LIKE ?",
			userID, couponID, feeType, true, domain.ValidationPaymentIDPrefix+"%").
		Delete(&domain.CouponUsage{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
