package repository

import (
	"errors"

	"github.com/matriculausa/payment_service/internal/domain"
	"gorm.io/gorm"
)

type CouponRepository interface {
	FindPromotionalByCode(code string) (*domain.PromotionalCoupon, error)
	SavePromotional(coupon *domain.PromotionalCoupon) error
}

type couponRepository struct {
	db *gorm.DB
}

func NewCouponRepository(db *gorm.DB) CouponRepository {
	return &couponRepository{db: db}
}

func (r *couponRepository) FindPromotionalByCode(code string) (*domain.PromotionalCoupon, error) {
	coupon := &domain.PromotionalCoupon{}

	if err := r.db.Where("code = ?", code).First(coupon).Error; err != nil {
		return nil, err
	}

	return coupon, nil
}

func (r *couponRepository) SavePromotional(coupon *domain.PromotionalCoupon) error {
	if coupon == nil {
		return errors.New("nil coupon")
	}
	return r.db.Save(coupon).Error
}
