package repository

import (
	"errors"
	"log"

	"github.com/matriculausa/payment_service/internal/domain"
	"gorm.io/gorm"
)

type AffiliateRepository interface {
	FindCodeByCode(code string) (*domain.AffiliateCode, error)
	CreateReferral(referral *domain.AffiliateReferral) error
	ListReferralsByReferrer(referrerUserID uint, limit, offset int) ([]domain.AffiliateReferral, error)
}

type affiliateRepository struct {
	db *gorm.DB
}

func NewAffiliateRepository(db *gorm.DB) AffiliateRepository {
	return &affiliateRepository{db: db}
}

func (r *affiliateRepository) FindCodeByCode(code string) (*domain.AffiliateCode, error) {
	affiliateCode := &domain.AffiliateCode{}

	if err := r.db.Where("code = ?", code).First(affiliateCode).Error; err != nil {
		return nil, err
	}

	return affiliateCode, nil
}

func (r *affiliateRepository) CreateReferral(referral *domain.AffiliateReferral) error {
	if referral == nil {
		return errors.New("nil referral")
	}

	if err := r.db.Create(referral).Error; err != nil {
		log.Printf("create referral error: %v", err)
		return err
	}
	return nil
}

func (r *affiliateRepository) ListReferralsByReferrer(referrerUserID uint, limit, offset int) ([]domain.AffiliateReferral, error) {
	var referrals []domain.AffiliateReferral

	err := r.db.Where("referrer_user_id = ?", referrerUserID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&referrals).Error
	if err != nil {
		return nil, err
	}
	return referrals, nil
}
